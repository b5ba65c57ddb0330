package setup

import (
	"context"

	"github.com/memoir-notes/memoir/internal/config"
	"github.com/memoir-notes/memoir/internal/http"
	"github.com/memoir-notes/memoir/internal/http/handler/metrics"
	"github.com/memoir-notes/memoir/internal/http/handler/relay"
	"github.com/memoir-notes/memoir/internal/http/middleware/ratelimit"
	"github.com/pkg/errors"
)

func NewHTTPServerFromConfig(ctx context.Context, conf *config.Config) (*http.Server, error) {
	converter, err := getConverterFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create converter from config")
	}

	notion, err := getNotionFactoryFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create notion factory from config")
	}

	relayHandler := relay.NewHandler(converter, notion,
		relay.WithOperatorKey(conf.Notion.APIKey),
		relay.WithDefaultDatabaseID(conf.Notion.DatabaseID),
	)

	options := []http.OptionFunc{
		http.WithAddress(conf.HTTP.Address),
		http.WithBaseURL(conf.HTTP.BaseURL),
		http.WithAllowedOrigins(conf.HTTP.CORS.AllowedOrigins...),
		http.WithMount("/metrics/", metrics.NewHandler()),
		http.WithMount("/", relayHandler),
	}

	if conf.HTTP.RateLimit.Enabled {
		rl := conf.HTTP.RateLimit
		options = append(options, http.WithMiddlewares(
			ratelimit.Middleware(rl.TrustHeaders, rl.Interval, rl.MaxBurst, rl.CacheSize, rl.CacheTTL),
		))
	}

	server := http.NewServer(options...)

	return server, nil
}
