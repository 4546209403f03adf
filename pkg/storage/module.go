package storage

import (
	"go.uber.org/fx"

	appconfig "github.com/tigerroll/standlake/internal/config"
)

// ResolverParams collects the registered storage providers and the
// application configuration for the resolver constructor.
type ResolverParams struct {
	fx.In
	Providers []StorageProvider `group:"storage_providers"`
	Cfg       *appconfig.Config
}

// NewResolver builds the ConnectionResolver from all StorageProviders
// registered in the Fx graph.
func NewResolver(p ResolverParams) *ConnectionResolver {
	providerMap := make(map[string]StorageProvider)
	for _, provider := range p.Providers {
		providerMap[provider.Type()] = provider
	}
	return NewConnectionResolver(providerMap, p.Cfg.Standlake.StorageConfigs)
}

// Module is the Fx module providing the storage connection resolver.
// Adapter modules (local, gcs) contribute providers via the
// "storage_providers" group.
var Module = fx.Options(
	fx.Provide(NewResolver),
)
