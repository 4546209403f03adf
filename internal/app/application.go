// Package app assembles the Fx application each stage binary runs: the
// loaded configuration, the storage and database adapters, the manifest,
// metrics and telemetry, and the run driver around the stage handler.
package app

import (
	"context"
	"errors"
	"os"
	"strings"

	"go.uber.org/fx"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/internal/manifest"
	"github.com/tigerroll/standlake/internal/pipeline"
	"github.com/tigerroll/standlake/internal/telemetry"
	gormmysql "github.com/tigerroll/standlake/pkg/database/gorm/mysql"
	gormpostgres "github.com/tigerroll/standlake/pkg/database/gorm/postgres"
	gormsqlite "github.com/tigerroll/standlake/pkg/database/gorm/sqlite"
	"github.com/tigerroll/standlake/pkg/metrics"
	"github.com/tigerroll/standlake/pkg/storage"
	"github.com/tigerroll/standlake/pkg/storage/gcs"
	"github.com/tigerroll/standlake/pkg/storage/local"
	"github.com/tigerroll/standlake/pkg/util/exception"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

// Exit codes reported to the external trigger. A retryable failure asks for
// a re-trigger; a permanent one signals that re-running the same invocation
// cannot succeed.
const (
	ExitOK               = 0
	ExitRetryableFailure = 1
	ExitPermanentFailure = 2
)

// exitCodeFor maps a stage run error to the process exit code. Errors that
// do not carry a retryable classification are treated as retryable, since a
// re-trigger is the safer default.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	var stageErr *exception.StageError
	if errors.As(err, &stageErr) && !stageErr.IsRetryable() {
		return ExitPermanentFailure
	}
	return ExitRetryableFailure
}

// DBModules maps adapter names to their Fx modules. Importing the dialect
// packages here also registers their dialector factories.
var DBModules = map[string]fx.Option{
	"sqlite":   gormsqlite.Module,
	"mysql":    gormmysql.Module,
	"postgres": gormpostgres.Module,
}

// DBProviderOptions selects the database provider modules to register from
// the DB_ADAPTERS environment variable (comma-separated). All supported
// dialects are registered when it is unset.
func DBProviderOptions() []fx.Option {
	adapters := os.Getenv("DB_ADAPTERS")
	if adapters == "" {
		adapters = "postgres,mysql,sqlite"
	}

	options := make([]fx.Option, 0)
	for _, adapterName := range strings.Split(adapters, ",") {
		adapterName = strings.TrimSpace(adapterName)
		if adapterName == "" {
			continue
		}

		module, ok := DBModules[adapterName]
		if !ok {
			logger.Warnf("DB provider '%s' is configured but not recognized/supported. Skipping.", adapterName)
			continue
		}
		options = append(options, module)
		logger.Debugf("DB provider '%s' selected and registered.", adapterName)
	}
	return options
}

// newRunner builds the run driver around the stage handler supplied by the
// binary's stage module.
func newRunner(handler pipeline.Handler, repo manifest.Repository, recorder metrics.MetricRecorder, providers *telemetry.Providers) *pipeline.Runner {
	return pipeline.NewRunner(handler, repo, recorder, providers.Tracer())
}

// RunStage sets up and runs one stage binary using uber-fx. The stageModule
// must provide a pipeline.Handler.
func RunStage(appCtx context.Context, envFilePath string, embeddedConfig appconfig.EmbeddedConfig, stageModule fx.Option) {
	app := fx.New(
		fx.Supply(
			embeddedConfig,
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(
				appCtx,
				fx.As(new(context.Context)),
				fx.ResultTags(`name:"appCtx"`),
			),
		),

		logger.Module,
		appconfig.Module,

		local.Module,
		gcs.Module,
		storage.Module,

		fx.Options(DBProviderOptions()...),
		manifest.Module,

		metrics.Module,
		telemetry.Module,

		stageModule,
		fx.Provide(newRunner),

		fx.Invoke(fx.Annotate(startStage, fx.ParamTags(
			"",              // lc fx.Lifecycle
			"",              // shutdowner fx.Shutdowner
			"",              // runner *pipeline.Runner
			`name:"appCtx"`, // appCtx context.Context
		))),
	)

	app.Run()

	if app.Err() != nil {
		logger.Fatalf("Application run failed: %v", app.Err())
	}
}

// startStage is invoked by Fx to run the stage once and shut down with an
// exit code reflecting the outcome. A retryable failure exits 1 so the
// external trigger re-runs the stage; a permanent failure exits 2 so it
// does not.
func startStage(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	runner *pipeline.Runner,
	appCtx context.Context,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				exitCode := ExitOK

				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered in stage execution: %v", r)
						exitCode = ExitRetryableFailure
					}
					if err := shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()

				if _, err := runner.Run(appCtx); err != nil {
					exitCode = exitCodeFor(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("Application is shutting down.")
			return nil
		},
	})
}
