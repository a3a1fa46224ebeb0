// Package app wires the world service: storage, world state, the transit
// coordinator, the rules engine, and the generation gate, plus the periodic
// persistence loop.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/emberhollow/worldcore/internal/telemetry"
	"github.com/emberhollow/worldcore/internal/world/generation"
	"github.com/emberhollow/worldcore/internal/world/storage"
	"github.com/emberhollow/worldcore/internal/world/generation/schemaval"
	"github.com/emberhollow/worldcore/internal/world/rules"
	"github.com/emberhollow/worldcore/internal/world/state"
	"github.com/emberhollow/worldcore/internal/world/storage/sqlite"
	"github.com/emberhollow/worldcore/internal/world/transit"
)

const defaultSaveInterval = 30 * time.Second

// saveFlushTimeout bounds the final flush during shutdown.
const saveFlushTimeout = 10 * time.Second

// Config holds world service configuration.
type Config struct {
	DBPath       string
	SaveInterval time.Duration
	// DefaultRelocationInstanceID receives entities evicted from deleted
	// locations.
	DefaultRelocationInstanceID string
	// Generator produces AI location candidates. Nil disables AI creation;
	// template-based creation still works.
	Generator generation.Generator
}

// App owns the wired world service components.
type App struct {
	Store       *sqlite.Store
	Worlds      *state.Manager
	Rules       *rules.Engine
	Updaters    *transit.Registry
	Triggers    *transit.Triggers
	Coordinator *transit.Coordinator
	Gate        *generation.Gate
	Events      *telemetry.Emitter

	saveInterval      time.Duration
	relocationTarget  string
	cleanerRegistered bool
}

// New wires the world service from configuration.
func New(cfg Config) (*App, error) {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open world store: %w", err)
	}

	worlds := state.NewManager(store)
	engine := rules.NewEngine(worlds)
	registry := transit.NewRegistry()
	triggers := transit.NewTriggers(worlds, engine)
	coordinator := transit.NewCoordinator(worlds, registry, triggers)

	validator, err := schemaval.New(worlds)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("compile candidate schema: %w", err)
	}

	events := telemetry.NewEmitter(store)
	gate := generation.NewGate(worlds, store, cfg.Generator, validator, events)

	saveInterval := cfg.SaveInterval
	if saveInterval <= 0 {
		saveInterval = defaultSaveInterval
	}

	return &App{
		Store:            store,
		Worlds:           worlds,
		Rules:            engine,
		Updaters:         registry,
		Triggers:         triggers,
		Coordinator:      coordinator,
		Gate:             gate,
		Events:           events,
		saveInterval:     saveInterval,
		relocationTarget: cfg.DefaultRelocationInstanceID,
	}, nil
}

// RegisterUpdater binds an entity type to its location updater.
func (a *App) RegisterUpdater(entityType transit.EntityType, updater transit.LocationUpdater) {
	a.Updaters.Register(entityType, updater)
}

// RegisterOccupantLister enables relocation cleanup on instance deletion:
// occupants of deleted locations are moved to the configured fallback
// instance.
func (a *App) RegisterOccupantLister(occupants transit.OccupantLister) {
	if occupants == nil || a.cleanerRegistered {
		return
	}
	a.Worlds.RegisterCleaner(transit.NewRelocationCleaner(a.Coordinator, occupants, a.relocationTarget))
	a.cleanerRegistered = true
}

// DeleteInstance removes a location instance, runs registered cleaners, and
// records the deletion.
func (a *App) DeleteInstance(ctx context.Context, guildID, instanceID string) {
	a.Worlds.DeleteInstance(ctx, guildID, instanceID)
	if err := a.Events.Emit(ctx, storage.TelemetryEvent{
		GuildID: guildID,
		Kind:    telemetry.KindInstanceDeleted,
		Attrs:   map[string]string{"instance_id": instanceID},
	}); err != nil {
		log.Printf("world: record instance deletion %s: %v", instanceID, err)
	}
}

// Run drives the periodic persistence loop until the context is canceled,
// then performs a final flush and closes the store.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), saveFlushTimeout)
			err := a.Worlds.SaveAll(flushCtx)
			cancel()
			if err != nil {
				log.Printf("world: final save: %v", err)
			}
			if closeErr := a.Store.Close(); closeErr != nil {
				log.Printf("world: close store: %v", closeErr)
			}
			return ctx.Err()
		case <-ticker.C:
			if err := a.Worlds.SaveAll(ctx); err != nil {
				log.Printf("world: periodic save: %v", err)
				if emitErr := a.Events.Emit(ctx, storage.TelemetryEvent{
					Kind:  telemetry.KindWorldSaveFailed,
					Attrs: map[string]string{"error": err.Error()},
				}); emitErr != nil {
					log.Printf("world: record save failure: %v", emitErr)
				}
			}
		}
	}
}

// Close releases the store without running the persistence loop.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
