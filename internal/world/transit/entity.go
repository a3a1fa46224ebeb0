// Package transit moves entities between location instances, sequencing
// departure triggers, the entity-type location update, and arrival triggers.
package transit

import (
	"context"
	"errors"
	"strings"
)

// EntityType selects which location updater handles a moving entity.
type EntityType string

const (
	// EntityTypeCharacter is a player-controlled character.
	EntityTypeCharacter EntityType = "character"
	// EntityTypeNPC is a non-player character.
	EntityTypeNPC EntityType = "npc"
	// EntityTypeParty is a grouped set of characters moving together.
	EntityTypeParty EntityType = "party"
	// EntityTypeItem is a world item.
	EntityTypeItem EntityType = "item"
)

var (
	// ErrInvalidEntityType indicates an unrecognized entity type tag.
	ErrInvalidEntityType = errors.New("entity type is invalid")
	// ErrUpdaterMissing indicates no location updater is registered for the
	// entity type.
	ErrUpdaterMissing = errors.New("no location updater registered for entity type")
)

// ParseEntityType canonicalizes an entity type tag.
func ParseEntityType(value string) (EntityType, error) {
	switch EntityType(strings.ToLower(strings.TrimSpace(value))) {
	case EntityTypeCharacter:
		return EntityTypeCharacter, nil
	case EntityTypeNPC:
		return EntityTypeNPC, nil
	case EntityTypeParty:
		return EntityTypeParty, nil
	case EntityTypeItem:
		return EntityTypeItem, nil
	default:
		return "", ErrInvalidEntityType
	}
}

// LocationUpdater applies a location change for one entity type.
//
// A nil error means the entity now resides at the new instance. Implementors
// own their entity bookkeeping; transit only sequences the call.
type LocationUpdater interface {
	UpdateEntityLocation(ctx context.Context, guildID, entityID, instanceID string) error
}

// Registry holds one location updater per entity type.
type Registry struct {
	updaters map[EntityType]LocationUpdater
}

// NewRegistry creates an empty updater registry.
func NewRegistry() *Registry {
	return &Registry{updaters: map[EntityType]LocationUpdater{}}
}

// Register binds an updater to an entity type, replacing any previous one.
func (r *Registry) Register(entityType EntityType, updater LocationUpdater) {
	if updater == nil {
		return
	}
	r.updaters[entityType] = updater
}

// Lookup resolves the updater for an entity type.
func (r *Registry) Lookup(entityType EntityType) (LocationUpdater, error) {
	if r == nil {
		return nil, ErrUpdaterMissing
	}
	updater, ok := r.updaters[entityType]
	if !ok || updater == nil {
		return nil, ErrUpdaterMissing
	}
	return updater, nil
}
