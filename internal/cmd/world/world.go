// Package world parses world command flags and launches the world service.
package world

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/emberhollow/worldcore/internal/platform/config"
	"github.com/emberhollow/worldcore/internal/platform/otel"
	"github.com/emberhollow/worldcore/internal/world/app"
)

// Config holds world command configuration.
type Config struct {
	DBPath       string        `env:"WORLDCORE_DB_PATH" envDefault:"world.db"`
	SaveInterval time.Duration `env:"WORLDCORE_SAVE_INTERVAL" envDefault:"30s"`
	// RelocationInstanceID is the fallback destination for entities evicted
	// from deleted locations.
	RelocationInstanceID string `env:"WORLDCORE_DEFAULT_RELOCATION_INSTANCE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the world sqlite database")
	fs.DurationVar(&cfg.SaveInterval, "save-interval", cfg.SaveInterval, "Interval between world persistence flushes")
	fs.StringVar(&cfg.RelocationInstanceID, "relocation-instance", cfg.RelocationInstanceID, "Instance that receives occupants of deleted locations")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the world service and blocks until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "world")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	a, err := app.New(app.Config{
		DBPath:                      cfg.DBPath,
		SaveInterval:                cfg.SaveInterval,
		DefaultRelocationInstanceID: cfg.RelocationInstanceID,
	})
	if err != nil {
		return err
	}

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
