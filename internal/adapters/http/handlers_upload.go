package httpadapter

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
)

const (
	multipartMemory = 32 << 20
	jsonBodyLimit   = 1 << 20
)

func (rt *Router) submitUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form is required")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	headers := r.MultipartForm.File["files"]
	files := make([]domain.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, uploadFileFrom(fh))
	}

	result, err := rt.deps.Uploads.Submit(r.Context(), domain.SubmissionRequest{
		GivenName:  r.FormValue("vorname"),
		FamilyName: r.FormValue("nachname"),
		RoleLabel:  r.FormValue("rolle"),
		Files:      files,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordUpload(serviceName, "multipart", result.AcceptedCount, len(result.Failures))
	}

	status := http.StatusCreated
	if result.AcceptedCount == 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func uploadFileFrom(fh *multipart.FileHeader) domain.UploadFile {
	return domain.UploadFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (rt *Router) initUpload(w http.ResponseWriter, r *http.Request) {
	var req domain.InitUploadRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	result, err := rt.deps.Uploads.InitUpload(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (rt *Router) finalizeUpload(w http.ResponseWriter, r *http.Request) {
	var req domain.FinalizeUploadRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	count, err := rt.deps.Uploads.FinalizeUpload(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordUpload(serviceName, "direct", count, 0)
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, jsonBodyLimit))
	if err := dec.Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
