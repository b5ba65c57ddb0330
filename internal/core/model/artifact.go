package model

type ArtifactKind string

const (
	ArtifactKindOCR     ArtifactKind = "ocr"
	ArtifactKindSummary ArtifactKind = "summary"
)

type ArtifactStatus string

const (
	ArtifactStatusAbsent  ArtifactStatus = "absent"
	ArtifactStatusLoading ArtifactStatus = "loading"
	ArtifactStatusReady   ArtifactStatus = "ready"
	ArtifactStatusFailed  ArtifactStatus = "failed"
)

// ArtifactKey identifies a derived artifact. At most one fetch may be in
// flight per key at any time.
type ArtifactKey struct {
	DocumentID DocumentID
	Kind       ArtifactKind
}

// Artifact is a derived text result for a document. A ready value stays
// valid until an explicit regeneration overwrites it; a failed value is a
// cached placeholder so the caller can render the error without retrying.
type Artifact struct {
	Key    ArtifactKey
	Status ArtifactStatus
	Text   string
	Reason string
}

func (a Artifact) Ready() bool {
	return a.Status == ArtifactStatusReady
}

func (a Artifact) Settled() bool {
	return a.Status == ArtifactStatusReady || a.Status == ArtifactStatusFailed
}
