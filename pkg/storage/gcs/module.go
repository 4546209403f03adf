// Package gcs provides the Fx module for the Google Cloud Storage adapter.
package gcs

import (
	"go.uber.org/fx"

	"github.com/tigerroll/standlake/pkg/storage"
)

// Module is the Fx module for the GCS storage adapter.
// It provides the GCSProvider to the Fx application graph.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewGCSProvider,
		fx.As(new(storage.StorageProvider)),
		fx.ResultTags(`group:"storage_providers"`),
	)),
)
