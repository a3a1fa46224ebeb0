package state

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/emberhollow/worldcore/internal/platform/id"
	"github.com/emberhollow/worldcore/internal/world/location"
	"github.com/emberhollow/worldcore/internal/world/storage"
)

// Cleaner relocates or evicts one kind of contained entity when its location
// instance is deleted.
type Cleaner interface {
	CleanupInstance(ctx context.Context, guildID, instanceID string) error
}

// Store is the persistence surface the manager needs.
type Store interface {
	storage.TemplateStore
	storage.InstanceStore
}

// Manager owns one World per guild and mediates every mutation to it.
type Manager struct {
	store       Store
	worlds      map[string]*World
	cleaners    []Cleaner
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewManager creates a Manager backed by the given store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:       store,
		worlds:      map[string]*World{},
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// RegisterCleaner adds a per-entity-type cleanup collaborator invoked on
// instance deletion.
func (m *Manager) RegisterCleaner(cleaner Cleaner) {
	if cleaner != nil {
		m.cleaners = append(m.cleaners, cleaner)
	}
}

// WithClock overrides the manager clock. Intended for tests.
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	if clock != nil {
		m.clock = clock
	}
	return m
}

// WithIDGenerator overrides id generation. Intended for tests.
func (m *Manager) WithIDGenerator(generator func() (string, error)) *Manager {
	if generator != nil {
		m.idGenerator = generator
	}
	return m
}

// Guild returns the world for a guild, creating an empty one on first use.
func (m *Manager) Guild(guildID string) *World {
	world, ok := m.worlds[guildID]
	if !ok {
		world = NewWorld(guildID)
		m.worlds[guildID] = world
	}
	return world
}

// GuildIDs returns the ids of every world currently in memory, sorted.
func (m *Manager) GuildIDs() []string {
	ids := make([]string, 0, len(m.worlds))
	for guildID := range m.worlds {
		ids = append(ids, guildID)
	}
	sort.Strings(ids)
	return ids
}

// Template returns a template by guild-scoped lookup.
func (m *Manager) Template(guildID, templateID string) (location.Template, bool) {
	return m.Guild(guildID).Template(templateID)
}

// Instance returns an instance by guild-scoped lookup.
func (m *Manager) Instance(guildID, instanceID string) (location.Instance, bool) {
	return m.Guild(guildID).Instance(instanceID)
}

// PutTemplate caches a template and marks it dirty for the next save.
func (m *Manager) PutTemplate(template location.Template) {
	if strings.TrimSpace(template.ID) == "" || strings.TrimSpace(template.GuildID) == "" {
		return
	}
	world := m.Guild(template.GuildID)
	world.putTemplate(template)
	world.markTemplateDirty(template.ID)
}

// CreateInstance derives a fresh instance from a guild template.
//
// It returns nil when the template is absent. On success the instance is
// cached, active, and marked dirty.
func (m *Manager) CreateInstance(guildID, templateID string, overrides location.Overrides) *location.Instance {
	world := m.Guild(guildID)
	template, ok := world.Template(templateID)
	if !ok {
		return nil
	}

	instance, err := location.Instantiate(template, overrides, m.clock, m.idGenerator)
	if err != nil {
		log.Printf("world: instantiate template %s for guild %s: %v", templateID, guildID, err)
		return nil
	}

	world.putInstance(instance)
	world.markInstanceDirty(instance.ID)
	return &instance
}

// AddInstance inserts an already-built instance into the cache and marks it
// dirty. Used by moderation-gated activation, which constructs instances from
// approved data rather than from a cached template.
func (m *Manager) AddInstance(instance location.Instance) {
	if strings.TrimSpace(instance.ID) == "" || strings.TrimSpace(instance.GuildID) == "" {
		return
	}
	world := m.Guild(instance.GuildID)
	world.putInstance(instance)
	world.markInstanceDirty(instance.ID)
}

// UpdateState merges patch keys into an instance's state variables and marks
// it dirty. Absent instances are a no-op with no dirty mark.
func (m *Manager) UpdateState(guildID, instanceID string, patch map[string]any) {
	world := m.Guild(guildID)
	instance, ok := world.Instance(instanceID)
	if !ok {
		return
	}

	instance.StateVariables = location.DeepMerge(instance.StateVariables, patch)
	instance.UpdatedAt = m.clock().UTC()
	world.putInstance(instance)
	world.markInstanceDirty(instanceID)
}

// SetActive toggles an instance's active flag and marks it dirty.
func (m *Manager) SetActive(guildID, instanceID string, active bool) {
	world := m.Guild(guildID)
	instance, ok := world.Instance(instanceID)
	if !ok {
		return
	}

	instance.IsActive = active
	instance.UpdatedAt = m.clock().UTC()
	world.putInstance(instance)
	world.markInstanceDirty(instanceID)
}

// DeleteInstance removes an instance from the cache, runs registered cleanup
// collaborators, and schedules the persistence delete. Unknown ids are a
// no-op.
func (m *Manager) DeleteInstance(ctx context.Context, guildID, instanceID string) {
	world := m.Guild(guildID)
	if _, ok := world.Instance(instanceID); !ok {
		return
	}

	delete(world.instances, instanceID)
	for _, cleaner := range m.cleaners {
		if err := cleaner.CleanupInstance(ctx, guildID, instanceID); err != nil {
			log.Printf("world: cleanup after deleting instance %s in guild %s: %v", instanceID, guildID, err)
		}
	}
	world.markInstanceDeleted(instanceID)
}

// MarkDirty flags an instance for the next save. Idempotent.
func (m *Manager) MarkDirty(guildID, instanceID string) {
	if strings.TrimSpace(instanceID) == "" {
		return
	}
	m.Guild(guildID).markInstanceDirty(instanceID)
}
