// Package local provides the Fx module for the local storage adapter.
package local

import (
	"go.uber.org/fx"

	"github.com/tigerroll/standlake/pkg/storage"
)

// Module is the Fx module for the local storage adapter.
// It provides the LocalProvider to the Fx application graph.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewLocalProvider,
		fx.As(new(storage.StorageProvider)),
		fx.ResultTags(`group:"storage_providers"`),
	)),
)
