package httpadapter

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/config"
	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

type dashboardFake struct {
	rows      []domain.StatusRow
	groups    []domain.GroupSummary
	detail    *domain.GroupDetail
	err       error
	lastQuery domain.OverviewQuery
	lastID    string
	lastRole  string
}

func (f *dashboardFake) Rows(context.Context) ([]domain.StatusRow, error) {
	return f.rows, f.err
}

func (f *dashboardFake) Overview(_ context.Context, q domain.OverviewQuery) ([]domain.GroupSummary, error) {
	f.lastQuery = q
	return f.groups, f.err
}

func (f *dashboardFake) Detail(_ context.Context, customerID, roleLabel string) (*domain.GroupDetail, error) {
	f.lastID, f.lastRole = customerID, roleLabel
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *dashboardFake) Snapshot(context.Context) (domain.LifecycleCounts, error) {
	return domain.LifecycleCounts{Groups: len(f.groups)}, f.err
}

type uploadsFake struct {
	result   *domain.SubmissionResult
	err      error
	received domain.SubmissionRequest
	contents []string
	finalize domain.FinalizeUploadRequest
}

func (f *uploadsFake) Submit(_ context.Context, req domain.SubmissionRequest) (*domain.SubmissionResult, error) {
	f.received = req
	for _, file := range req.Files {
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		data, _ := io.ReadAll(rc)
		_ = rc.Close()
		f.contents = append(f.contents, string(data))
	}
	return f.result, f.err
}

func (f *uploadsFake) InitUpload(_ context.Context, req domain.InitUploadRequest) (*domain.InitUploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.InitUploadResult{CustomerID: "101", RoleID: "7", BatchID: "b1"}, nil
}

func (f *uploadsFake) FinalizeUpload(_ context.Context, req domain.FinalizeUploadRequest) (int, error) {
	f.finalize = req
	return len(req.Files), f.err
}

type downloadsFake struct {
	link string
	err  error
}

func (f downloadsFake) DownloadURL(context.Context, string) (string, error) {
	return f.link, f.err
}

type overridesFake struct {
	records []domain.OverrideRecord
	deleted []string
}

func (f *overridesFake) List(context.Context) ([]domain.OverrideRecord, error) {
	return f.records, nil
}

func (f *overridesFake) Set(_ context.Context, kind domain.OverrideKind, groupKey string) (domain.OverrideRecord, error) {
	if !kind.Valid() {
		return domain.OverrideRecord{}, domain.InvalidInput("set override", "unknown kind")
	}
	rec := domain.OverrideRecord{Kind: kind, GroupKey: groupKey, SetAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *overridesFake) Delete(_ context.Context, kind domain.OverrideKind, groupKey string) error {
	f.deleted = append(f.deleted, string(kind)+"|"+groupKey)
	return nil
}

type localFilesFake struct {
	content string
}

func (f localFilesFake) Verify(ref domain.ObjectRef, _ string, sig string) error {
	if sig != "good" {
		return domain.WrapError(domain.ErrUnauthorized, "verify link", io.EOF)
	}
	return nil
}

func (f localFilesFake) Open(_ context.Context, ref domain.ObjectRef) (io.ReadCloser, error) {
	if ref.Path != "101/a.pdf" {
		return nil, domain.WrapError(domain.ErrNotFound, "open file", io.EOF)
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

type testDeps struct {
	dashboard *dashboardFake
	uploads   *uploadsFake
	overrides *overridesFake
}

func newTestHandler(cfg config.Config) http.Handler {
	handler, _ := newTestHandlerWithDeps(cfg)
	return handler
}

func newTestHandlerWithDeps(cfg config.Config) (http.Handler, testDeps) {
	deps := testDeps{
		dashboard: &dashboardFake{},
		uploads:   &uploadsFake{},
		overrides: &overridesFake{},
	}
	handler := NewRouter(cfg, Dependencies{
		Dashboard:  deps.dashboard,
		Uploads:    deps.uploads,
		Downloads:  downloadsFake{link: "https://files.example/signed"},
		Overrides:  deps.overrides,
		LocalFiles: localFilesFake{content: "%PDF-1.4 test"},
	}).Handler()
	return handler, deps
}
