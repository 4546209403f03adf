package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "embed"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tigerroll/standlake/internal/app"
	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/internal/fetch"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

// embeddedConfig embeds the content of the application's YAML configuration
// file, loaded at startup.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// main is the entry point of the fetcher binary. It runs the landing stage
// once and exits; scheduling is left to an external trigger.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handling for graceful shutdown (e.g., Ctrl+C)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Attempting to stop the stage...", sig)
		cancel()
	}()

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	app.RunStage(ctx, envFilePath, appconfig.EmbeddedConfig(embeddedConfig), fetch.Module)
	os.Exit(0)
}
