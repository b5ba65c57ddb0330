package port

import (
	"context"
	"io"

	"github.com/memoir-notes/memoir/internal/core/model"
)

type Upload struct {
	Name     string
	FileName string
	Data     io.Reader
}

// BackendClient is the interface boundary with the owning Memoir backend.
// Authentication, storage and the OCR/summary engines all live behind it;
// this module only consumes the results.
type BackendClient interface {
	Login(ctx context.Context, username string, password string) error
	Logout(ctx context.Context) error
	Authenticated() bool

	ListDocuments(ctx context.Context) ([]model.Document, error)
	UploadDocuments(ctx context.Context, uploads []Upload) ([]model.Document, error)

	GetArtifact(ctx context.Context, id model.DocumentID, kind model.ArtifactKind) (string, error)
	RegenerateArtifact(ctx context.Context, id model.DocumentID, kind model.ArtifactKind) (string, error)

	NotionStatus(ctx context.Context) (*model.IntegrationLink, error)
	CompleteNotionIntegration(ctx context.Context) (*model.IntegrationLink, error)
	DisconnectNotion(ctx context.Context) error
}
