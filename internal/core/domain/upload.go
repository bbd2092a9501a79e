package domain

import (
	"io"
	"time"
)

const QueueStatusPending = "pending"

// UploadFile is one file of a submission batch. Open may be called once.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type SubmissionRequest struct {
	GivenName  string
	FamilyName string
	RoleLabel  string
	Files      []UploadFile
}

// FileOutcome reports what happened to a single file; either ObjectRef or
// Error is set.
type FileOutcome struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	ObjectRef   string `json:"object_ref,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (o FileOutcome) Stored() bool {
	return o.ObjectRef != "" && o.Error == ""
}

type SubmissionResult struct {
	BatchID       string        `json:"batch_id"`
	CustomerID    string        `json:"customer_id"`
	RoleID        string        `json:"role_id"`
	AcceptedCount int           `json:"accepted_count"`
	Outcomes      []FileOutcome `json:"outcomes"`
	Message       string        `json:"message"`
	Failures      []string      `json:"failures,omitempty"`
}

// UploadQueueEntry is one upload_queue row handed to the backend pipeline.
type UploadQueueEntry struct {
	CustomerID   string
	RoleID       string
	StoragePath  string
	FileURL      string
	OriginalName string
	Status       string
	BatchID      string
}

type InitUploadRequest struct {
	GivenName  string `json:"vorname"`
	FamilyName string `json:"nachname"`
	RoleLabel  string `json:"rolleName"`
}

type InitUploadResult struct {
	CustomerID string `json:"kundeId"`
	RoleID     string `json:"rolleId"`
	BatchID    string `json:"batchId"`
}

type FinalizeFile struct {
	Path         string `json:"path"`
	OriginalName string `json:"originalName"`
	PublicURL    string `json:"publicUrl,omitempty"`
}

type FinalizeUploadRequest struct {
	CustomerID string         `json:"kundeId"`
	RoleID     string         `json:"rolleId"`
	BatchID    string         `json:"batchId"`
	Files      []FinalizeFile `json:"files"`
}

// ObjectRef locates a stored object inside the object store.
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}

func (r ObjectRef) String() string {
	return r.Bucket + "/" + r.Path
}

// UploadQueuedEvent is published once per batch after the queue rows exist.
type UploadQueuedEvent struct {
	BatchID    string    `json:"batch_id"`
	CustomerID string    `json:"customer_id"`
	RoleLabel  string    `json:"role_label"`
	FileCount  int       `json:"file_count"`
	QueuedAt   time.Time `json:"queued_at"`
}

// InspectedFile is the accepted form of an uploaded file.
type InspectedFile struct {
	ContentType string
	Extension   string
	Pages       int
}
