package usecase

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
	"github.com/kirillkom/document-status-dashboard/internal/core/ports"
)

const defaultSignedURLTTL = 120 * time.Second

var objectRefPattern = regexp.MustCompile(`^([^/]+)/(.+)$`)

type DownloadUseCase struct {
	storage     ports.ObjectStorage
	projectHost string
	ttl         time.Duration
}

// NewDownloadUseCase accepts full storage URLs only for projectHost; an empty
// host accepts any.
func NewDownloadUseCase(storage ports.ObjectStorage, projectHost string, ttl time.Duration) *DownloadUseCase {
	if ttl <= 0 {
		ttl = defaultSignedURLTTL
	}
	return &DownloadUseCase{storage: storage, projectHost: strings.ToLower(projectHost), ttl: ttl}
}

// DownloadURL returns a short-lived URL, or "" when storage issues none.
func (uc *DownloadUseCase) DownloadURL(ctx context.Context, reference string) (string, error) {
	ref, err := ParseObjectReference(reference, uc.projectHost)
	if err != nil {
		return "", err
	}
	signed, err := uc.storage.SignedURL(ctx, ref, uc.ttl)
	if err != nil {
		return "", fmt.Errorf("sign object url: %w", err)
	}
	return signed, nil
}

// ParseObjectReference accepts a storage URL or a bucket/path reference.
func ParseObjectReference(raw, projectHost string) (domain.ObjectRef, error) {
	const op = "parse object reference"
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.ObjectRef{}, domain.InvalidInput(op, "reference is required")
	}

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		u, err := url.Parse(s)
		if err != nil {
			return domain.ObjectRef{}, domain.WrapError(domain.ErrInvalidInput, op, err)
		}
		if projectHost != "" && strings.ToLower(u.Host) != projectHost {
			return domain.ObjectRef{}, domain.InvalidInput(op, fmt.Sprintf("host %q is not the storage project", u.Host))
		}
		s = u.Path
	} else if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}

	s = strings.TrimLeft(s, "/")
	s = strings.TrimPrefix(s, "storage/v1/object/")
	for _, prefix := range []string{"public/", "sign/", "authenticated/"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}

	m := objectRefPattern.FindStringSubmatch(s)
	if m == nil || strings.Contains(m[2], "..") {
		return domain.ObjectRef{}, domain.InvalidInput(op, fmt.Sprintf("cannot parse %q", raw))
	}
	return domain.ObjectRef{Bucket: m[1], Path: m[2]}, nil
}
