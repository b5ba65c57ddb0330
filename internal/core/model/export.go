package model

import (
	"time"

	"github.com/rs/xid"
)

type ExportID string

func NewExportID() ExportID {
	return ExportID(xid.New().String())
}

// ExportRecord is the result of a single export attempt. Records are
// ephemeral: every export click is a fresh attempt and nothing is cached,
// since each attempt creates a new page upstream.
type ExportRecord struct {
	ID         ExportID
	DocumentID DocumentID
	PageID     string
	PageURL    string
	ExportedAt time.Time
}
