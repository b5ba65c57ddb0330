package setup

import (
	"context"

	"github.com/memoir-notes/memoir/internal/adapter/notion"
	"github.com/memoir-notes/memoir/internal/config"
	"github.com/memoir-notes/memoir/internal/core/port"
)

var getNotionFactoryFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (port.NotionFactory, error) {
	return notion.NewFactory(conf.Notion.Timeout), nil
})
