package memoir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/memoir-notes/memoir/internal/core/model"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/pkg/errors"
)

type noteResponse struct {
	ID         json.Number `json:"id"`
	Name       string      `json:"name"`
	File       string      `json:"file"`
	FileURL    string      `json:"file_url"`
	UploadedAt time.Time   `json:"uploaded_at"`
}

type listNotesResponse struct {
	Results []noteResponse `json:"results"`
}

// ListDocuments implements [port.BackendClient].
func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	var res listNotesResponse

	if err := c.jsonRequest(ctx, http.MethodGet, "/api/notes/", c.authHeader(), nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	documents := make([]model.Document, 0, len(res.Results))
	for _, note := range res.Results {
		documents = append(documents, note.toDocument())
	}

	return documents, nil
}

// UploadDocuments implements [port.BackendClient]. Files and names travel
// as paired multipart fields; each part's content type is sniffed from the
// file's leading bytes.
func (c *Client) UploadDocuments(ctx context.Context, uploads []port.Upload) ([]model.Document, error) {
	if len(uploads) == 0 {
		return nil, errors.Wrap(port.ErrMissingField, "at least one file is required")
	}

	var body bytes.Buffer

	writer := multipart.NewWriter(&body)

	for _, upload := range uploads {
		data, err := io.ReadAll(upload.Data)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		header := make(map[string][]string)
		header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="files"; filename="%s"`, upload.FileName)}
		header["Content-Type"] = []string{mimetype.Detect(data).String()}

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		if _, err := part.Write(data); err != nil {
			return nil, errors.WithStack(err)
		}

		if err := writer.WriteField("names", upload.Name); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, errors.WithStack(err)
	}

	header := c.authHeader()
	header.Set("Content-Type", writer.FormDataContentType())

	var buff bytes.Buffer

	if err := c.request(ctx, http.MethodPost, "/api/notes/upload/", header, &body, &buff); err != nil {
		return nil, errors.WithStack(err)
	}

	var notes []noteResponse
	if err := json.Unmarshal(buff.Bytes(), &notes); err != nil {
		return nil, errors.Wrap(port.ErrUpstreamMalformed, err.Error())
	}

	documents := make([]model.Document, 0, len(notes))
	for _, note := range notes {
		documents = append(documents, note.toDocument())
	}

	return documents, nil
}

type artifactResponse struct {
	OCRText     string `json:"ocr_text"`
	SummaryText string `json:"summary_text"`
}

func (r artifactResponse) text(kind model.ArtifactKind) string {
	if kind == model.ArtifactKindOCR {
		return r.OCRText
	}

	return r.SummaryText
}

// GetArtifact implements [port.BackendClient].
func (c *Client) GetArtifact(ctx context.Context, id model.DocumentID, kind model.ArtifactKind) (string, error) {
	var res artifactResponse

	path := fmt.Sprintf("/api/get-%s/%s/", kind, id)

	if err := c.jsonRequest(ctx, http.MethodGet, path, c.authHeader(), nil, &res); err != nil {
		return "", errors.WithStack(err)
	}

	return res.text(kind), nil
}

// RegenerateArtifact implements [port.BackendClient].
func (c *Client) RegenerateArtifact(ctx context.Context, id model.DocumentID, kind model.ArtifactKind) (string, error) {
	var res artifactResponse

	path := fmt.Sprintf("/api/regenerate-%s/%s/", kind, id)

	if err := c.jsonRequest(ctx, http.MethodPost, path, c.authHeader(), nil, &res); err != nil {
		return "", errors.WithStack(err)
	}

	return res.text(kind), nil
}

func (n noteResponse) toDocument() model.Document {
	return model.Document{
		ID:         model.DocumentID(n.ID.String()),
		Name:       n.Name,
		FileName:   n.File,
		FileURL:    n.FileURL,
		UploadedAt: n.UploadedAt,
	}
}
