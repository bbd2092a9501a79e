package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

func TestExecuteCallsOnceWithoutRetry(t *testing.T) {
	guard := NewGuard(Config{Enabled: true}, nil)

	attempts := 0
	errUpstream := errors.New("upstream 502")
	err := guard.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errUpstream
	}, nil)
	if !errors.Is(err, errUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	guard := NewGuard(Config{
		Enabled:         true,
		MinRequests:     2,
		FailureRatio:    0.5,
		OpenTimeout:     50 * time.Millisecond,
		HalfOpenMaxCall: 1,
	}, nil)

	errUpstream := errors.New("upstream down")
	for i := 0; i < 2; i++ {
		err := guard.Execute(context.Background(), "op", func(context.Context) error {
			return errUpstream
		}, nil)
		if !errors.Is(err, errUpstream) {
			t.Fatalf("expected upstream error on iteration %d, got %v", i, err)
		}
	}

	err := guard.Execute(context.Background(), "op", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary kind, got %v", err)
	}
}

func TestExecuteIgnoresCallerErrors(t *testing.T) {
	guard := NewGuard(Config{Enabled: true, MinRequests: 1, FailureRatio: 0.5}, nil)

	for i := 0; i < 3; i++ {
		err := guard.Execute(context.Background(), "op", func(context.Context) error {
			return domain.InvalidInput("op", "bad")
		}, nil)
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("expected invalid input on iteration %d, got %v", i, err)
		}
	}
}

func TestExecuteDisabledPassesThrough(t *testing.T) {
	var guard *Guard
	called := false
	if err := guard.Execute(context.Background(), "op", func(context.Context) error {
		called = true
		return nil
	}, nil); err != nil || !called {
		t.Fatalf("expected direct call, got err=%v called=%v", err, called)
	}
}
