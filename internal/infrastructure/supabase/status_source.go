package supabase

import (
	"context"
	"net/http"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

const statusViewPath = "/rest/v1/dashboard_dokumentenstatus?select=*"

// StatusSource reads the document status view through PostgREST.
type StatusSource struct {
	client *Client
}

func NewStatusSource(client *Client) *StatusSource {
	return &StatusSource{client: client}
}

func (s *StatusSource) FetchStatusRows(ctx context.Context) ([]domain.RawRow, error) {
	var rows []domain.RawRow
	if err := s.client.do(ctx, "status rows", request{method: http.MethodGet, path: statusViewPath}, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.RawRow{}
	}
	return rows, nil
}
