package supabase

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

// Storage keeps customer files in one Supabase storage bucket.
type Storage struct {
	client *Client
	bucket string
}

func NewStorage(client *Client, bucket string) *Storage {
	return &Storage{client: client, bucket: bucket}
}

func (s *Storage) Bucket() string {
	return s.bucket
}

func (s *Storage) Save(ctx context.Context, path, contentType string, data io.Reader) (domain.ObjectRef, error) {
	ref := domain.ObjectRef{Bucket: s.bucket, Path: path}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	err := s.client.do(ctx, "storage upload", request{
		method:      http.MethodPut,
		path:        objectPath("", ref),
		contentType: contentType,
		body:        data,
		headers:     map[string]string{"x-upsert": "false"},
	}, nil)
	if err != nil {
		return domain.ObjectRef{}, err
	}
	return ref, nil
}

func (s *Storage) Delete(ctx context.Context, ref domain.ObjectRef) error {
	return s.client.do(ctx, "storage delete", request{
		method: http.MethodDelete,
		path:   objectPath("", ref),
	}, nil)
}

// SignedURL returns an empty string when the gateway answers without a link.
func (s *Storage) SignedURL(ctx context.Context, ref domain.ObjectRef, ttl time.Duration) (string, error) {
	seconds := int(math.Ceil(ttl.Seconds()))
	if seconds <= 0 {
		seconds = 1
	}
	var response struct {
		SignedURL string `json:"signedURL"`
	}
	payload := map[string]int{"expiresIn": seconds}
	if err := s.client.doJSON(ctx, "storage sign", http.MethodPost, objectPath("sign/", ref), payload, nil, &response); err != nil {
		return "", err
	}
	return s.absolute(response.SignedURL), nil
}

func (s *Storage) PublicURL(ref domain.ObjectRef) string {
	return s.client.BaseURL() + objectPath("public/", ref)
}

// absolute resolves the gateway's link, which is relative to /storage/v1.
func (s *Storage) absolute(link string) string {
	link = strings.TrimSpace(link)
	switch {
	case link == "":
		return ""
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link
	case strings.HasPrefix(link, "/storage/v1/"):
		return s.client.BaseURL() + link
	default:
		return s.client.BaseURL() + "/storage/v1/" + strings.TrimLeft(link, "/")
	}
}

func objectPath(prefix string, ref domain.ObjectRef) string {
	segments := strings.Split(ref.Path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("/storage/v1/object/%s%s/%s", prefix, url.PathEscape(ref.Bucket), strings.Join(segments, "/"))
}
