package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, "service-key", Options{})
}

func TestStorageSaveSendsAuthHeaders(t *testing.T) {
	var gotPath, gotAuth, gotKey, gotType, gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("apikey")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"Key":"upload/101/a.pdf"}`))
	})

	storage := NewStorage(client, "upload")
	ref, err := storage.Save(context.Background(), "101/a.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if ref.Bucket != "upload" || ref.Path != "101/a.pdf" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if gotPath != "/storage/v1/object/upload/101/a.pdf" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer service-key" || gotKey != "service-key" {
		t.Fatalf("missing auth headers: %q %q", gotAuth, gotKey)
	}
	if gotType != "application/pdf" {
		t.Fatalf("expected content type application/pdf, got %q", gotType)
	}
	if gotBody != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestStorageSaveIncludesBodyInError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket quota exceeded", http.StatusBadGateway)
	})

	_, err := NewStorage(client, "upload").Save(context.Background(), "x.pdf", "application/pdf", strings.NewReader("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "bucket quota exceeded") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestStorageDeleteMapsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	})

	err := NewStorage(client, "upload").Delete(context.Background(), domain.ObjectRef{Bucket: "upload", Path: "gone.pdf"})
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStorageSignedURLResolvesRelativeLink(t *testing.T) {
	var expiresIn float64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/v1/object/sign/upload/101/a.pdf" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]float64
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		expiresIn = payload["expiresIn"]
		_, _ = w.Write([]byte(`{"signedURL":"/object/sign/upload/101/a.pdf?token=abc"}`))
	})

	storage := NewStorage(client, "upload")
	link, err := storage.SignedURL(context.Background(), domain.ObjectRef{Bucket: "upload", Path: "101/a.pdf"}, 2*time.Minute)
	if err != nil {
		t.Fatalf("SignedURL() error = %v", err)
	}
	if expiresIn != 120 {
		t.Fatalf("expected expiresIn 120, got %v", expiresIn)
	}
	want := client.BaseURL() + "/storage/v1/object/sign/upload/101/a.pdf?token=abc"
	if link != want {
		t.Fatalf("expected %q, got %q", want, link)
	}
}

func TestStorageSignedURLEmptyWhenGatewayReturnsNone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	link, err := NewStorage(client, "upload").SignedURL(context.Background(), domain.ObjectRef{Bucket: "upload", Path: "a.pdf"}, time.Minute)
	if err != nil {
		t.Fatalf("SignedURL() error = %v", err)
	}
	if link != "" {
		t.Fatalf("expected empty link, got %q", link)
	}
}

func TestStoragePublicURL(t *testing.T) {
	client := New("https://proj.supabase.co/", "k", Options{})
	got := NewStorage(client, "upload").PublicURL(domain.ObjectRef{Bucket: "upload", Path: "101/a b.pdf"})
	want := "https://proj.supabase.co/storage/v1/object/public/upload/101/a%20b.pdf"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestStatusSourceKeepsNumbersExact(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/dashboard_dokumentenstatus" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[{"kunde_id":12345678901234567,"case_details":{"netto":2100.5}}]`))
	})

	rows, err := NewStatusSource(client).FetchStatusRows(context.Background())
	if err != nil {
		t.Fatalf("FetchStatusRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	id, ok := rows[0]["kunde_id"].(json.Number)
	if !ok || id.String() != "12345678901234567" {
		t.Fatalf("expected exact json.Number id, got %#v", rows[0]["kunde_id"])
	}
}

func TestStatusSourceEmptyView(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	rows, err := NewStatusSource(client).FetchStatusRows(context.Background())
	if err != nil {
		t.Fatalf("FetchStatusRows() error = %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", rows)
	}
}

func TestRegistryRoleLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("rolle") != "eq.Mieter" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":7}]`))
	})
	registry := NewRegistry(client)

	id, err := registry.RoleIDByLabel(context.Background(), "Mieter")
	if err != nil {
		t.Fatalf("RoleIDByLabel() error = %v", err)
	}
	if id != "7" {
		t.Fatalf("expected role id 7, got %q", id)
	}

	_, err = registry.RoleIDByLabel(context.Background(), "Unbekannt")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegistryCreateCustomerAndEnqueue(t *testing.T) {
	var queued []map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/kunden":
			if r.Header.Get("Prefer") != "return=representation" {
				t.Errorf("expected representation preference")
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`[{"id":101}]`))
		case "/rest/v1/upload_queue":
			if err := json.NewDecoder(r.Body).Decode(&queued); err != nil {
				t.Errorf("decode queue rows: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
		default:
			http.NotFound(w, r)
		}
	})
	registry := NewRegistry(client)

	id, err := registry.CreateCustomer(context.Background(), "Erika Muster", "7")
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}
	if id != "101" {
		t.Fatalf("expected customer id 101, got %q", id)
	}

	err = registry.Enqueue(context.Background(), []domain.UploadQueueEntry{
		{CustomerID: "101", RoleID: "7", StoragePath: "101/a.pdf", OriginalName: "a.pdf", BatchID: "b1"},
	})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if len(queued) != 1 || queued[0]["status"] != domain.QueueStatusPending || queued[0]["batch_id"] != "b1" {
		t.Fatalf("unexpected queue payload: %#v", queued)
	}
}
