package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/standlake/pkg/util/exception"
	"github.com/tigerroll/standlake/pkg/util/logger"

	"go.uber.org/fx"
)

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	// EmbeddedConfig contains the raw bytes of the configuration file.
	EmbeddedConfig EmbeddedConfig
	// EnvFilePath is the path to the .env file, if any.
	EnvFilePath string `name:"envFilePath" optional:"true"`
}

// LoadConfig loads configuration from the embedded YAML and environment
// variables. It is expected to be called once during startup.
//
// Resolution order: struct defaults, embedded YAML, environment variables
// (upper-cased yaml path, e.g. STANDLAKE_SYSTEM_LOGGING_LEVEL), then
// validation.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, exception.NewStageError(moduleName, "failed to apply configuration defaults", err, false)
	}

	if err := yaml.Unmarshal(embeddedConfig, cfg); err != nil {
		return nil, exception.NewStageError(moduleName, "failed to unmarshal embedded config", err, false)
	}

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewStageError(moduleName, "failed to load config from environment variables", err, false)
	}

	// The API key is conventionally sourced from the environment rather than
	// the embedded YAML.
	if cfg.Standlake.Fetch.APIKey == "" {
		cfg.Standlake.Fetch.APIKey = os.Getenv("FOOTBALL_API_KEY")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, exception.NewStageError(moduleName, "configuration validation failed", err, false)
	}

	return cfg, nil
}

// NewConfigProvider is an Fx provider that loads and provides *Config.
// It also sets the global logger level from the loaded configuration.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := LoadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Standlake.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Standlake.System.Logging.Level)

	return cfg, nil
}

// loadStructFromEnv recursively loads configuration values into a struct from
// environment variables, using the "yaml" tag to build the variable name.
// Map-typed fields (the named database/storage configs) are left to their
// providers to decode.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}

		if err := setField(field, envValue); err != nil {
			return exception.NewStageErrorf(moduleName, "failed to set field '%s' from env var '%s': %v", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField assigns an environment variable value to a scalar struct field.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	}
	return nil
}

// Module is the Fx module providing the application configuration.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
)
