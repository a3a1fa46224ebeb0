package transit

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/emberhollow/worldcore/internal/world/state"
)

var _ state.Cleaner = (*RelocationCleaner)(nil)

// Occupant identifies one entity present at a location instance.
type Occupant struct {
	EntityID   string
	EntityType EntityType
}

// OccupantLister enumerates the entities currently at an instance. Entity
// services own occupancy; transit only consumes it during cleanup.
type OccupantLister interface {
	ListOccupants(ctx context.Context, guildID, instanceID string) ([]Occupant, error)
}

// RelocationCleaner evacuates a deleted instance by moving every occupant to
// a configured fallback instance.
type RelocationCleaner struct {
	coordinator *Coordinator
	occupants   OccupantLister
	// defaultTargetID receives evacuees. Empty means occupants are moved to
	// no location at all.
	defaultTargetID string
}

// NewRelocationCleaner creates a cleanup collaborator over the coordinator.
func NewRelocationCleaner(coordinator *Coordinator, occupants OccupantLister, defaultTargetID string) *RelocationCleaner {
	return &RelocationCleaner{
		coordinator:     coordinator,
		occupants:       occupants,
		defaultTargetID: strings.TrimSpace(defaultTargetID),
	}
}

// CleanupInstance relocates each occupant of the instance being deleted. A
// failed relocation is logged and does not block the others; the first error
// is returned after every occupant has been attempted.
func (c *RelocationCleaner) CleanupInstance(ctx context.Context, guildID, instanceID string) error {
	if c == nil || c.occupants == nil {
		return nil
	}

	occupants, err := c.occupants.ListOccupants(ctx, guildID, instanceID)
	if err != nil {
		return fmt.Errorf("list occupants of instance %s: %w", instanceID, err)
	}

	var firstErr error
	for _, occupant := range occupants {
		// The deleted instance is already gone from the cache, so the move is
		// originless: no departure triggers fire for a location that no
		// longer exists.
		_, err := c.coordinator.MoveEntity(ctx, Move{
			GuildID:    guildID,
			EntityID:   occupant.EntityID,
			EntityType: occupant.EntityType,
			ToID:       c.defaultTargetID,
			Context:    map[string]any{"reason": "location_deleted"},
		})
		if err != nil {
			log.Printf("world: relocate %s %s from deleted instance %s: %v", occupant.EntityType, occupant.EntityID, instanceID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
