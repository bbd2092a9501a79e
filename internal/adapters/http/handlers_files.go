package httpadapter

import (
	"bufio"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

const localFilesPrefix = "/v1/files/local/"

func (rt *Router) downloadURL(w http.ResponseWriter, r *http.Request) {
	raw, err := bindOptionalQuery(r, "raw")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	link, err := rt.deps.Downloads.DownloadURL(r.Context(), raw)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordDownloadLink(serviceName, link != "")
	}

	var payload *string
	if link != "" {
		payload = &link
	}
	writeJSON(w, http.StatusOK, map[string]*string{"url": payload})
}

// serveLocalFile streams an object of the development store after checking
// its link signature.
func (rt *Router) serveLocalFile(w http.ResponseWriter, r *http.Request) {
	rest, err := url.PathUnescape(strings.TrimPrefix(r.URL.EscapedPath(), localFilesPrefix))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed object path")
		return
	}
	bucket, path, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || path == "" {
		writeError(w, http.StatusBadRequest, "malformed object path")
		return
	}
	ref := domain.ObjectRef{Bucket: bucket, Path: path}

	query := r.URL.Query()
	if err := rt.deps.LocalFiles.Verify(ref, query.Get("expires"), query.Get("sig")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	rc, err := rt.deps.LocalFiles.Open(r.Context(), ref)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	defer rc.Close()

	reader := bufio.NewReaderSize(rc, 3072)
	head, _ := reader.Peek(3072)
	w.Header().Set("Content-Type", mimetype.Detect(head).String())
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}
