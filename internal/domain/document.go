package domain

import "time"

// Document is an opaque reference to an uploaded case file in object storage.
type Document struct {
	ID          string
	CaseID      string
	Name        string
	ObjectKey   string
	ContentType string
	Size        int64
	UploadedBy  int64
	UploadedAt  time.Time
}
