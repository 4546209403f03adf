package manifest

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/fx"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/pkg/database"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

// RepositoryParams collects the registered database providers and the
// application configuration for the repository constructor.
type RepositoryParams struct {
	fx.In
	Providers []database.DBProvider `group:"db_providers"`
	Cfg       *appconfig.Config
}

// NewRepository builds the manifest Repository. When the configured manifest
// database reference has no configuration the NoopRepository is returned and
// stages fall back to listing their input tier. Otherwise the connection is
// established through the matching provider and the schema is migrated
// before the repository is handed out.
func NewRepository(p RepositoryParams) (Repository, error) {
	ref := p.Cfg.Standlake.Pipeline.ManifestDBRef
	rawConfig, ok := p.Cfg.Standlake.DatabaseConfigs[ref]
	if !ok {
		logger.Infof("No database configuration for manifest ref '%s'; manifest disabled.", ref)
		return NewNoopRepository(), nil
	}

	var typed struct {
		Type string `yaml:"type"`
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &typed, TagName: "yaml"})
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest config decoder: %w", err)
	}
	if err := decoder.Decode(rawConfig); err != nil {
		return nil, fmt.Errorf("failed to decode manifest database type for '%s': %w", ref, err)
	}

	var provider database.DBProvider
	for _, candidate := range p.Providers {
		if candidate.Type() == typed.Type {
			provider = candidate
			break
		}
	}
	if provider == nil {
		return nil, fmt.Errorf("no database provider found for type '%s' (manifest ref '%s')", typed.Type, ref)
	}

	conn, err := provider.GetConnection(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest database connection '%s': %w", ref, err)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}

	return NewGormRepository(conn.GORM()), nil
}

// Module is the Fx module providing the manifest repository.
var Module = fx.Options(
	fx.Provide(NewRepository),
)
