package port

import (
	"context"

	"github.com/jomei/notionapi"
)

type ConversionResult struct {
	Blocks   notionapi.Blocks
	RichText []notionapi.RichText
}

// Converter wraps the markdown to block conversion engine behind a stable
// contract. Conversion is pure: identical input yields identical output.
type Converter interface {
	Convert(ctx context.Context, markdown string) (*ConversionResult, error)
}
