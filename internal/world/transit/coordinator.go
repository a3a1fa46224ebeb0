package transit

import (
	"context"
	"strings"

	apperrors "github.com/emberhollow/worldcore/internal/errors"
	"github.com/emberhollow/worldcore/internal/world/state"
)

// Move describes one entity transit request. FromID and ToID may each be
// empty: an originless move skips departure handling, a destinationless move
// skips arrival handling.
type Move struct {
	GuildID    string
	EntityID   string
	EntityType EntityType
	FromID     string
	ToID       string
	Context    map[string]any
}

// Result reports the outcome of a move.
type Result struct {
	Moved bool
	// DepartureContext and ArrivalContext expose the augmented trigger
	// contexts so callers can observe what the rule engine saw.
	DepartureContext map[string]any
	ArrivalContext   map[string]any
}

// Coordinator validates move endpoints and sequences departure triggers, the
// entity-type location update, and arrival triggers.
type Coordinator struct {
	worlds   *state.Manager
	updaters *Registry
	triggers *Triggers
}

// NewCoordinator creates a move coordinator.
func NewCoordinator(worlds *state.Manager, updaters *Registry, triggers *Triggers) *Coordinator {
	return &Coordinator{worlds: worlds, updaters: updaters, triggers: triggers}
}

// MoveEntity moves an entity between two location instances.
//
// Ordering within one call is fixed: departure triggers run strictly before
// the entity-type update, which runs strictly before arrival triggers.
// Departure triggers fire once the source is validated and are not rolled
// back when a later step fails; the world reacts to the departure no matter
// how the move ends. Callers must treat any error as "location unchanged".
func (c *Coordinator) MoveEntity(ctx context.Context, move Move) (Result, error) {
	result := Result{}

	// Step 1: resolve the source endpoint, instance and template both,
	// before any side effect.
	hasSource := strings.TrimSpace(move.FromID) != ""
	if hasSource {
		source, ok := c.worlds.Instance(move.GuildID, move.FromID)
		if !ok {
			return result, apperrors.New(apperrors.CodeLocationInstanceNotFound, "source instance not found").
				WithMetadata(map[string]string{"InstanceID": move.FromID})
		}
		if _, ok := c.worlds.Template(move.GuildID, source.TemplateID); !ok {
			return result, apperrors.New(apperrors.CodeLocationTemplateNotFound, "source template not found").
				WithMetadata(map[string]string{"TemplateID": source.TemplateID})
		}
	}

	// Step 2: destination validity is checked before any mutation or trigger.
	hasDestination := strings.TrimSpace(move.ToID) != ""
	if hasDestination {
		destination, ok := c.worlds.Instance(move.GuildID, move.ToID)
		if !ok {
			return result, apperrors.New(apperrors.CodeLocationInstanceNotFound, "destination instance not found").
				WithMetadata(map[string]string{"InstanceID": move.ToID})
		}
		if _, ok := c.worlds.Template(move.GuildID, destination.TemplateID); !ok {
			return result, apperrors.New(apperrors.CodeLocationTemplateNotFound, "destination template not found").
				WithMetadata(map[string]string{"TemplateID": destination.TemplateID})
		}
	}

	// Step 3: departure triggers run unconditionally once the endpoints are
	// validated, even if the updater is missing or fails below.
	if hasSource {
		result.DepartureContext = c.triggers.HandleEntityDeparture(ctx, move.GuildID, move.EntityID, move.EntityType, move.FromID, move.Context)
	}

	// Step 4: updater resolution happens after departure triggers already
	// ran; a missing updater fails the move but the departure stands.
	updater, err := c.updaters.Lookup(move.EntityType)
	if err != nil {
		return result, apperrors.Wrap(apperrors.CodeTransitUpdaterMissing, "resolve location updater", err).
			WithMetadata(map[string]string{"EntityType": string(move.EntityType)})
	}

	// Step 5: the type-specific update decides whether the entity moved.
	if err := updater.UpdateEntityLocation(ctx, move.GuildID, move.EntityID, move.ToID); err != nil {
		return result, apperrors.Wrap(apperrors.CodeTransitMoveFailed, "update entity location", err)
	}

	// Step 6: arrival triggers run only after a successful update.
	if hasDestination {
		result.ArrivalContext = c.triggers.HandleEntityArrival(ctx, move.GuildID, move.EntityID, move.EntityType, move.ToID, move.Context)
	}

	result.Moved = true
	return result, nil
}
