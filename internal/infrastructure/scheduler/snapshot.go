package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

const snapshotTimeout = 2 * time.Minute

// SnapshotSource produces the lifecycle tally.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (domain.LifecycleCounts, error)
}

// SnapshotSink receives every finished snapshot run.
type SnapshotSink interface {
	FinishSnapshot(service string, duration time.Duration, err error)
	SetLifecycleCounts(byLifecycle map[string]int)
	SetReconciliationCounts(passed, failed, pending int)
}

// SnapshotScheduler runs the dashboard snapshot on a cron schedule and
// exports the result as gauges.
type SnapshotScheduler struct {
	engine  *cron.Cron
	spec    string
	service string
	source  SnapshotSource
	sink    SnapshotSink
	logger  *slog.Logger
}

func NewSnapshotScheduler(spec, service string, source SnapshotSource, sink SnapshotSink, logger *slog.Logger) (*SnapshotScheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse snapshot schedule %q: %w", spec, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotScheduler{
		engine:  cron.New(cron.WithLocation(time.UTC)),
		spec:    spec,
		service: service,
		source:  source,
		sink:    sink,
		logger:  logger,
	}, nil
}

func (s *SnapshotScheduler) Start() error {
	if _, err := s.engine.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		_ = s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("add snapshot job: %w", err)
	}
	s.engine.Start()
	s.logger.Info("snapshot_scheduler_started", "schedule", s.spec)
	return nil
}

// RunOnce takes one snapshot and publishes it to the sink.
func (s *SnapshotScheduler) RunOnce(ctx context.Context) error {
	started := time.Now()
	counts, err := s.source.Snapshot(ctx)
	s.sink.FinishSnapshot(s.service, time.Since(started), err)
	if err != nil {
		s.logger.Error("snapshot_failed", "error", err)
		return err
	}

	byLifecycle := make(map[string]int, len(counts.ByState))
	for state, n := range counts.ByState {
		byLifecycle[string(state)] = n
	}
	s.sink.SetLifecycleCounts(byLifecycle)
	s.sink.SetReconciliationCounts(counts.Passed, counts.Failed, counts.Pending)

	s.logger.Info("snapshot_taken",
		"groups", counts.Groups,
		"rows", counts.Rows,
		"reconciliations_failed", counts.Failed,
	)
	return nil
}

// Stop waits for a running job to finish.
func (s *SnapshotScheduler) Stop() {
	<-s.engine.Stop().Done()
	s.logger.Info("snapshot_scheduler_stopped")
}
