package setup

import (
	"context"

	"github.com/memoir-notes/memoir/internal/config"
	"github.com/memoir-notes/memoir/internal/core/service"
	"github.com/pkg/errors"
)

var getDocumentPipelineFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*service.DocumentPipeline, error) {
	backend, err := getBackendClientFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create backend client from config")
	}

	converter, err := getConverterFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create converter from config")
	}

	notion, err := getNotionFactoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create notion factory from config")
	}

	return service.NewDocumentPipeline(backend, converter, notion), nil
})

// NewDocumentPipelineFromConfig exposes the shared pipeline to non-HTTP
// entrypoints.
func NewDocumentPipelineFromConfig(ctx context.Context, conf *config.Config) (*service.DocumentPipeline, error) {
	pipeline, err := getDocumentPipelineFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return pipeline, nil
}
