package telemetry

import (
	"context"

	"go.uber.org/fx"

	appconfig "github.com/tigerroll/standlake/internal/config"
)

// NewProviders is the Fx constructor for the telemetry providers, hooking
// their shutdown into the application lifecycle.
func NewProviders(lc fx.Lifecycle, cfg *appconfig.Config) (*Providers, error) {
	providers, err := New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return providers.Shutdown(ctx)
		},
	})

	return providers, nil
}

// Module is the Fx module providing the telemetry providers.
var Module = fx.Options(
	fx.Provide(NewProviders),
)
