// Command sercha-notes indexes notes and answers semantic queries over them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-notes/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driven/notes"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-notes/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-notes/internal/core/services"
	"github.com/custodia-labs/sercha-notes/internal/logger"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal; anything else is worth a warning.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Loading .env: %v", err)
	}

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires adapters into services for the directories chosen on
// the command line.
func bootstrap(_ context.Context, paths cli.Paths) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(paths.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}

	// The throttle is fixed for the life of the process.
	initial, err := services.NewSettingsService(configStore, nil).Get()
	if err != nil {
		return nil, nil, fmt.Errorf("reading settings: %w", err)
	}

	client := ai.NewClient(
		ai.WithFallbackAPIKey(os.Getenv("OPENAI_API_KEY")),
		ai.WithRequestsPerSecond(initial.RequestsPerSecond),
	)
	settings := services.NewSettingsService(configStore, client)

	store, err := sqlite.NewStore(paths.DataDir)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("opening index: %w", err)
	}
	logger.Debug("Index at %s, config at %s", store.Path(), configStore.Path())

	indexing := services.NewIndexingService(store, client, settings)
	svc := &cli.Services{
		Indexing: indexing,
		Search:   services.NewSearchService(store, client, settings),
		Stats:    services.NewStatsService(store),
		Settings: settings,
		Notes:    services.NewNotesService(indexing, notes.NewLoader()),
	}

	release := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Closing index: %v", err)
		}
		if err := client.Close(); err != nil {
			logger.Warn("Closing embedding client: %v", err)
		}
	}
	return svc, release, nil
}
