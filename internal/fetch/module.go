package fetch

import (
	"go.uber.org/fx"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/internal/pipeline"
)

// newClient builds the standings client from the loaded configuration.
func newClient(cfg *appconfig.Config) *Client {
	return NewClient(cfg.Standlake.Fetch)
}

// Module is the Fx module providing the landing stage handler.
var Module = fx.Options(
	fx.Provide(newClient),
	fx.Provide(fx.Annotate(
		NewFetcher,
		fx.As(new(pipeline.Handler)),
	)),
)
