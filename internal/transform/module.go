package transform

import (
	"go.uber.org/fx"

	"github.com/tigerroll/standlake/internal/pipeline"
)

// Module is the Fx module providing the final stage handler.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewTransformer,
		fx.As(new(pipeline.Handler)),
	)),
)
