package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

var returnRepresentation = map[string]string{"Prefer": "return=representation"}

// Registry resolves roles and creates customers through PostgREST.
type Registry struct {
	client *Client
}

func NewRegistry(client *Client) *Registry {
	return &Registry{client: client}
}

func (r *Registry) RoleIDByLabel(ctx context.Context, label string) (string, error) {
	query := url.Values{}
	query.Set("select", "id")
	query.Set("rolle", "eq."+label)
	query.Set("limit", "1")

	var rows []struct {
		ID json.Number `json:"id"`
	}
	if err := r.client.do(ctx, "role lookup", request{method: http.MethodGet, path: "/rest/v1/rollen?" + query.Encode()}, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", domain.WrapError(domain.ErrNotFound, "role lookup", fmt.Errorf("role %q", label))
	}
	return rows[0].ID.String(), nil
}

func (r *Registry) CreateCustomer(ctx context.Context, name, roleID string) (string, error) {
	payload := map[string]string{"name": name, "rolle_id": roleID}
	var rows []struct {
		ID json.Number `json:"id"`
	}
	if err := r.client.doJSON(ctx, "create customer", http.MethodPost, "/rest/v1/kunden?select=id", payload, returnRepresentation, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 || strings.TrimSpace(rows[0].ID.String()) == "" {
		return "", fmt.Errorf("create customer: empty representation")
	}
	return rows[0].ID.String(), nil
}

type queueRow struct {
	CustomerID   string `json:"kunde_id"`
	RoleID       string `json:"rolle_id"`
	StoragePath  string `json:"storage_path"`
	FileURL      string `json:"file_url"`
	OriginalName string `json:"original_name"`
	Status       string `json:"status"`
	BatchID      string `json:"batch_id"`
}

// Enqueue inserts all entries in one bulk request; PostgREST applies it
// atomically.
func (r *Registry) Enqueue(ctx context.Context, entries []domain.UploadQueueEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]queueRow, 0, len(entries))
	for _, e := range entries {
		status := e.Status
		if status == "" {
			status = domain.QueueStatusPending
		}
		rows = append(rows, queueRow{
			CustomerID:   e.CustomerID,
			RoleID:       e.RoleID,
			StoragePath:  e.StoragePath,
			FileURL:      e.FileURL,
			OriginalName: e.OriginalName,
			Status:       status,
			BatchID:      e.BatchID,
		})
	}
	return r.client.doJSON(ctx, "enqueue uploads", http.MethodPost, "/rest/v1/upload_queue", rows, nil, nil)
}
