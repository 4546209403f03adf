package metrics

import (
	"go.uber.org/fx"

	appconfig "github.com/tigerroll/standlake/internal/config"
)

// NewRecorder selects the MetricRecorder implementation from the
// configuration: Prometheus when metrics are enabled, a no-op otherwise.
func NewRecorder(cfg *appconfig.Config) MetricRecorder {
	if cfg.Standlake.Metrics.Enabled {
		return NewPrometheusRecorder()
	}
	return NewNoopRecorder()
}

// Module is the Fx module providing the metric recorder.
var Module = fx.Options(
	fx.Provide(NewRecorder),
)
