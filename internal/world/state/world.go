// Package state owns the live per-guild world: cached templates and
// instances, dirty/deleted change tracking, and load/save against storage.
//
// Mutation follows a single-writer-per-guild discipline. The surrounding
// system serializes access per guild turn, so no locking happens here; each
// guild's World is an independent value with no shared mutable state.
package state

import (
	"github.com/emberhollow/worldcore/internal/world/location"
)

// World holds the live topology for one guild.
type World struct {
	guildID string

	templates map[string]location.Template
	instances map[string]location.Instance

	dirtyTemplates map[string]struct{}
	dirtyInstances map[string]struct{}
	// deletedInstances and dirtyInstances are mutually exclusive: deleting an
	// instance removes it from the dirty set.
	deletedInstances map[string]struct{}
}

// NewWorld creates an empty world for a guild.
func NewWorld(guildID string) *World {
	return &World{
		guildID:          guildID,
		templates:        map[string]location.Template{},
		instances:        map[string]location.Instance{},
		dirtyTemplates:   map[string]struct{}{},
		dirtyInstances:   map[string]struct{}{},
		deletedInstances: map[string]struct{}{},
	}
}

// GuildID returns the guild this world belongs to.
func (w *World) GuildID() string {
	return w.guildID
}

// Template returns the template with the given id, if cached.
func (w *World) Template(templateID string) (location.Template, bool) {
	template, ok := w.templates[templateID]
	return template, ok
}

// Instance returns the instance with the given id, if cached.
func (w *World) Instance(instanceID string) (location.Instance, bool) {
	instance, ok := w.instances[instanceID]
	return instance, ok
}

// Templates returns the number of cached templates.
func (w *World) Templates() int {
	return len(w.templates)
}

// Instances returns the number of cached instances.
func (w *World) Instances() int {
	return len(w.instances)
}

func (w *World) putTemplate(template location.Template) {
	w.templates[template.ID] = template
}

func (w *World) putInstance(instance location.Instance) {
	w.instances[instance.ID] = instance
	delete(w.deletedInstances, instance.ID)
}

func (w *World) markTemplateDirty(templateID string) {
	if w.dirtyTemplates == nil {
		w.dirtyTemplates = map[string]struct{}{}
	}
	w.dirtyTemplates[templateID] = struct{}{}
}

func (w *World) markInstanceDirty(instanceID string) {
	if _, deleted := w.deletedInstances[instanceID]; deleted {
		return
	}
	if w.dirtyInstances == nil {
		w.dirtyInstances = map[string]struct{}{}
	}
	w.dirtyInstances[instanceID] = struct{}{}
}

func (w *World) markInstanceDeleted(instanceID string) {
	if w.deletedInstances == nil {
		w.deletedInstances = map[string]struct{}{}
	}
	w.deletedInstances[instanceID] = struct{}{}
	delete(w.dirtyInstances, instanceID)
}

// DirtyInstances reports the instance ids awaiting a persistence write.
func (w *World) DirtyInstances() []string {
	return setKeys(w.dirtyInstances)
}

// DeletedInstances reports the instance ids awaiting a persistence delete.
func (w *World) DeletedInstances() []string {
	return setKeys(w.deletedInstances)
}

func setKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	return keys
}
