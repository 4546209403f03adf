package convert

import (
	"go.uber.org/fx"

	"github.com/tigerroll/standlake/internal/pipeline"
)

// Module is the Fx module providing the columnar stage handler.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewConverter,
		fx.As(new(pipeline.Handler)),
	)),
)
