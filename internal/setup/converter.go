package setup

import (
	"context"

	"github.com/memoir-notes/memoir/internal/config"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/memoir-notes/memoir/internal/markdown"
)

var getConverterFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (port.Converter, error) {
	return markdown.NewConverter(), nil
})
