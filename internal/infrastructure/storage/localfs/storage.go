package localfs

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

// Storage is a development object store on the local disk. Buckets are
// directories under basePath; signed links point at the API's file route.
type Storage struct {
	basePath string
	bucket   string
	linkBase string
	secret   []byte
	now      func() time.Time
}

type Options struct {
	BasePath string
	Bucket   string
	// LinkBase is the absolute URL prefix of the file route, e.g.
	// http://localhost:8080/v1/files/local.
	LinkBase string
	Secret   string
}

func New(opts Options) (*Storage, error) {
	basePath := opts.BasePath
	if basePath == "" {
		basePath = "./data/storage"
	}
	bucket := opts.Bucket
	if bucket == "" {
		bucket = "upload"
	}
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, fmt.Errorf("local storage: signing secret is required")
	}
	if err := os.MkdirAll(filepath.Join(basePath, bucket), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{
		basePath: basePath,
		bucket:   bucket,
		linkBase: strings.TrimRight(opts.LinkBase, "/"),
		secret:   []byte(opts.Secret),
		now:      time.Now,
	}, nil
}

func (s *Storage) Bucket() string {
	return s.bucket
}

func (s *Storage) Save(_ context.Context, path, _ string, data io.Reader) (domain.ObjectRef, error) {
	ref := domain.ObjectRef{Bucket: s.bucket, Path: path}
	full, err := s.resolve(ref)
	if err != nil {
		return domain.ObjectRef{}, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return domain.ObjectRef{}, fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return domain.ObjectRef{}, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		_ = os.Remove(full)
		return domain.ObjectRef{}, fmt.Errorf("write file: %w", err)
	}
	return ref, nil
}

func (s *Storage) Open(_ context.Context, ref domain.ObjectRef) (io.ReadCloser, error) {
	full, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.WrapError(domain.ErrNotFound, "open file", err)
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *Storage) Delete(_ context.Context, ref domain.ObjectRef) error {
	full, err := s.resolve(ref)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.WrapError(domain.ErrNotFound, "delete file", err)
	}
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *Storage) SignedURL(_ context.Context, ref domain.ObjectRef, ttl time.Duration) (string, error) {
	if _, err := s.resolve(ref); err != nil {
		return "", err
	}
	expires := s.now().Add(ttl).Unix()
	query := url.Values{}
	query.Set("expires", strconv.FormatInt(expires, 10))
	query.Set("sig", s.sign(ref, expires))
	return s.link(ref) + "?" + query.Encode(), nil
}

func (s *Storage) PublicURL(ref domain.ObjectRef) string {
	return s.link(ref)
}

// Verify checks a signature produced by SignedURL.
func (s *Storage) Verify(ref domain.ObjectRef, expires, sig string) error {
	at, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return domain.InvalidInput("verify link", "malformed expiry")
	}
	if s.now().Unix() > at {
		return domain.WrapError(domain.ErrUnauthorized, "verify link", errors.New("link expired"))
	}
	want := s.sign(ref, at)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return domain.WrapError(domain.ErrUnauthorized, "verify link", errors.New("signature mismatch"))
	}
	return nil
}

func (s *Storage) sign(ref domain.ObjectRef, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = fmt.Fprintf(mac, "%s\n%d", ref.String(), expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Storage) link(ref domain.ObjectRef) string {
	segments := strings.Split(ref.Path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.linkBase + "/" + url.PathEscape(ref.Bucket) + "/" + strings.Join(segments, "/")
}

// resolve maps a reference onto the disk and rejects anything escaping the
// bucket directory.
func (s *Storage) resolve(ref domain.ObjectRef) (string, error) {
	if ref.Bucket != s.bucket {
		return "", domain.WrapError(domain.ErrNotFound, "resolve object", fmt.Errorf("unknown bucket %q", ref.Bucket))
	}
	clean := filepath.Clean(filepath.FromSlash(ref.Path))
	if ref.Path == "" || filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, "..") {
		return "", domain.InvalidInput("resolve object", "object path escapes bucket")
	}
	return filepath.Join(s.basePath, s.bucket, clean), nil
}
