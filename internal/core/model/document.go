package model

import (
	"path"
	"time"
)

type DocumentID string

// Document is an uploaded note as the owning backend reports it.
// Immutable once created; only derived artifacts change over time.
type Document struct {
	ID         DocumentID
	Name       string
	FileName   string
	FileURL    string
	UploadedAt time.Time
}

// BaseFileName returns the last element of the source file reference,
// the way the original listing displays it.
func (d Document) BaseFileName() string {
	if d.FileName == "" {
		return ""
	}

	return path.Base(d.FileName)
}
