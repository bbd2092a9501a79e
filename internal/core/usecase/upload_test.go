package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

func newUploadForTest() (*UploadUseCase, *customerRegistryFake, *objectStorageFake, *uploadQueueFake, *eventPublisherFake) {
	customers := &customerRegistryFake{roles: map[string]string{"Käufer (angestellt)": "r-2"}}
	storage := newObjectStorageFake()
	queue := &uploadQueueFake{}
	events := &eventPublisherFake{}
	uc := NewUploadUseCase(customers, storage, queue, events, inspectorFake{}, nil, UploadOptions{Workers: 2, MaxFileBytes: 32})
	return uc, customers, storage, queue, events
}

func TestSubmitPartialBatch(t *testing.T) {
	uc, customers, storage, queue, events := newUploadForTest()
	req := domain.SubmissionRequest{
		GivenName:  " Erika ",
		FamilyName: "Muster",
		RoleLabel:  "Käufer (angestellt)",
		Files: []domain.UploadFile{
			memFile("lohn-1.pdf", "%PDF-1.7 one"),
			memFile("gross.pdf", "%PDF-1.7 "+strings.Repeat("x", 40)),
			memFile("lohn-2.pdf", "%PDF-1.7 two"),
		},
	}

	result, err := uc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.AcceptedCount != 2 {
		t.Fatalf("expected 2 accepted files, got %d", result.AcceptedCount)
	}
	if len(result.Failures) != 1 || !strings.HasPrefix(result.Failures[0], "gross.pdf:") {
		t.Fatalf("expected itemized failure for gross.pdf, got %v", result.Failures)
	}
	if result.Message != "2 Datei(en) erfolgreich hochgeladen" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if len(customers.created) != 1 || customers.created[0] != "Erika Muster" {
		t.Fatalf("unexpected customer creation %v", customers.created)
	}
	if len(queue.entries) != 2 || len(storage.saved) != 2 {
		t.Fatalf("expected 2 queue rows and 2 stored objects, got %d and %d", len(queue.entries), len(storage.saved))
	}
	for i, entry := range queue.entries {
		if entry.Status != domain.QueueStatusPending || entry.BatchID != result.BatchID || entry.RoleID != "r-2" {
			t.Fatalf("unexpected queue entry %+v", entry)
		}
		if !strings.HasPrefix(entry.StoragePath, result.CustomerID+"/") || !strings.HasSuffix(entry.StoragePath, ".pdf") {
			t.Fatalf("unexpected storage path %q", entry.StoragePath)
		}
		if entry.OriginalName == "gross.pdf" {
			t.Fatalf("queue row %d created for rejected file", i)
		}
	}
	if len(result.Outcomes) != 3 || result.Outcomes[1].Stored() || !result.Outcomes[0].Stored() {
		t.Fatalf("expected outcomes in input order, got %+v", result.Outcomes)
	}
	if len(events.events) != 1 || events.events[0].FileCount != 2 {
		t.Fatalf("expected one batch event for 2 files, got %+v", events.events)
	}
}

func TestSubmitNothingStoredStillReportsOutcomes(t *testing.T) {
	uc, _, _, queue, events := newUploadForTest()
	result, err := uc.Submit(context.Background(), domain.SubmissionRequest{
		GivenName: "A", FamilyName: "B", RoleLabel: "Käufer (angestellt)",
		Files: []domain.UploadFile{memFile("notes.txt", "hello")},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.AcceptedCount != 0 || len(result.Failures) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(queue.entries) != 0 || len(events.events) != 0 {
		t.Fatal("expected no queue rows and no event")
	}
}

func TestSubmitValidation(t *testing.T) {
	uc, _, _, _, _ := newUploadForTest()
	cases := []domain.SubmissionRequest{
		{GivenName: "", FamilyName: "B", RoleLabel: "Käufer (angestellt)", Files: []domain.UploadFile{memFile("a.pdf", "%PDF")}},
		{GivenName: "A", FamilyName: "B", RoleLabel: "Käufer (angestellt)"},
		{GivenName: "A", FamilyName: "B", RoleLabel: "Mieter", Files: []domain.UploadFile{memFile("a.pdf", "%PDF")}},
	}
	for i, req := range cases {
		if _, err := uc.Submit(context.Background(), req); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("case %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestSubmitQueueFailureDiscardsStoredFiles(t *testing.T) {
	uc, _, storage, queue, _ := newUploadForTest()
	queue.err = errors.New("db down")
	_, err := uc.Submit(context.Background(), domain.SubmissionRequest{
		GivenName: "A", FamilyName: "B", RoleLabel: "Käufer (angestellt)",
		Files: []domain.UploadFile{memFile("a.pdf", "%PDF a"), memFile("b.pdf", "%PDF b")},
	})
	if err == nil {
		t.Fatal("expected enqueue error")
	}
	if len(storage.deleted) != 2 {
		t.Fatalf("expected stored files to be discarded, got %v", storage.deleted)
	}
}

func TestSubmitStorageFailureIsItemized(t *testing.T) {
	uc, _, storage, _, _ := newUploadForTest()
	storage.failNames["%PDF bad"] = true
	result, err := uc.Submit(context.Background(), domain.SubmissionRequest{
		GivenName: "A", FamilyName: "B", RoleLabel: "Käufer (angestellt)",
		Files: []domain.UploadFile{memFile("ok.pdf", "%PDF ok"), memFile("bad.pdf", "%PDF bad")},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.AcceptedCount != 1 || result.Outcomes[1].Stored() {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestSubmitPublishFailureIsNotFatal(t *testing.T) {
	uc, _, _, queue, events := newUploadForTest()
	events.err = errors.New("nats down")
	result, err := uc.Submit(context.Background(), domain.SubmissionRequest{
		GivenName: "A", FamilyName: "B", RoleLabel: "Käufer (angestellt)",
		Files: []domain.UploadFile{memFile("a.pdf", "%PDF a")},
	})
	if err != nil || result.AcceptedCount != 1 || len(queue.entries) != 1 {
		t.Fatalf("expected success despite publish failure, got %+v, %v", result, err)
	}
}

func TestInitAndFinalizeUpload(t *testing.T) {
	uc, _, _, queue, events := newUploadForTest()
	ctx := context.Background()

	initRes, err := uc.InitUpload(ctx, domain.InitUploadRequest{GivenName: "A", FamilyName: "B", RoleLabel: "Käufer (angestellt)"})
	if err != nil {
		t.Fatalf("init upload: %v", err)
	}
	if initRes.CustomerID == "" || initRes.RoleID != "r-2" || initRes.BatchID == "" {
		t.Fatalf("unexpected init result %+v", initRes)
	}

	count, err := uc.FinalizeUpload(ctx, domain.FinalizeUploadRequest{
		CustomerID: initRes.CustomerID,
		RoleID:     initRes.RoleID,
		BatchID:    initRes.BatchID,
		Files: []domain.FinalizeFile{
			{Path: initRes.CustomerID + "/x.pdf", OriginalName: "x.pdf"},
			{Path: "/" + initRes.CustomerID + "/y.pdf", OriginalName: "y.pdf", PublicURL: "https://cdn/y.pdf"},
		},
	})
	if err != nil {
		t.Fatalf("finalize upload: %v", err)
	}
	if count != 2 || len(queue.entries) != 2 {
		t.Fatalf("expected 2 queue rows, got %d", count)
	}
	if queue.entries[0].FileURL != "https://files.example/upload/"+initRes.CustomerID+"/x.pdf" {
		t.Fatalf("unexpected derived file url %q", queue.entries[0].FileURL)
	}
	if queue.entries[1].FileURL != "https://cdn/y.pdf" || queue.entries[1].StoragePath != initRes.CustomerID+"/y.pdf" {
		t.Fatalf("unexpected second entry %+v", queue.entries[1])
	}
	if len(events.events) != 1 {
		t.Fatalf("expected one event, got %d", len(events.events))
	}
}

func TestFinalizeUploadRejectsForeignPaths(t *testing.T) {
	uc, _, _, queue, _ := newUploadForTest()
	_, err := uc.FinalizeUpload(context.Background(), domain.FinalizeUploadRequest{
		CustomerID: "5", RoleID: "r", BatchID: "b",
		Files: []domain.FinalizeFile{{Path: "6/x.pdf"}},
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(queue.entries) != 0 {
		t.Fatal("expected no queue rows")
	}
}
