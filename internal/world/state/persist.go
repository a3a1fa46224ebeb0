package state

import (
	"context"
	"fmt"
	"log"

	"github.com/emberhollow/worldcore/internal/platform/i18n"
	"github.com/emberhollow/worldcore/internal/world/location"
	"github.com/emberhollow/worldcore/internal/world/storage"
)

// Load hydrates a guild's template and instance caches from storage.
//
// Loading replaces the cached world wholesale and resets change tracking.
// Individual fields that failed to parse have already been degraded to empty
// defaults by the store; Load never aborts on content problems.
func (m *Manager) Load(ctx context.Context, guildID string) error {
	if m.store == nil {
		return fmt.Errorf("world store is not configured")
	}

	templates, err := m.store.ListTemplates(ctx, guildID)
	if err != nil {
		return fmt.Errorf("load templates for guild %s: %w", guildID, err)
	}
	instances, err := m.store.ListInstances(ctx, guildID)
	if err != nil {
		return fmt.Errorf("load instances for guild %s: %w", guildID, err)
	}

	world := NewWorld(guildID)
	for _, record := range templates {
		world.putTemplate(templateFromRecord(record))
	}
	for _, record := range instances {
		world.putInstance(instanceFromRecord(record))
	}
	m.worlds[guildID] = world
	return nil
}

// Save flushes a guild's dirty and deleted sets to storage.
//
// Each set entry is cleared only when its write succeeded, so a failed write
// stays scheduled for the next save. Save performs no I/O when both sets are
// empty.
func (m *Manager) Save(ctx context.Context, guildID string) error {
	if m.store == nil {
		return fmt.Errorf("world store is not configured")
	}

	world := m.Guild(guildID)
	if len(world.dirtyTemplates) == 0 && len(world.dirtyInstances) == 0 && len(world.deletedInstances) == 0 {
		return nil
	}

	var firstErr error

	for templateID := range world.dirtyTemplates {
		template, ok := world.Template(templateID)
		if !ok {
			delete(world.dirtyTemplates, templateID)
			continue
		}
		if err := m.store.PutTemplate(ctx, templateToRecord(template)); err != nil {
			log.Printf("world: save template %s for guild %s: %v", templateID, guildID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		delete(world.dirtyTemplates, templateID)
	}

	for instanceID := range world.dirtyInstances {
		instance, ok := world.Instance(instanceID)
		if !ok {
			delete(world.dirtyInstances, instanceID)
			continue
		}
		if err := m.store.PutInstance(ctx, instanceToRecord(instance)); err != nil {
			log.Printf("world: save instance %s for guild %s: %v", instanceID, guildID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		delete(world.dirtyInstances, instanceID)
	}

	for instanceID := range world.deletedInstances {
		if err := m.store.DeleteInstance(ctx, guildID, instanceID); err != nil {
			log.Printf("world: delete instance %s for guild %s: %v", instanceID, guildID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		delete(world.deletedInstances, instanceID)
	}

	return firstErr
}

// SaveAll flushes every in-memory world. The first error is returned after
// all guilds have been attempted.
func (m *Manager) SaveAll(ctx context.Context) error {
	var firstErr error
	for _, guildID := range m.GuildIDs() {
		if err := m.Save(ctx, guildID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func templateFromRecord(record storage.TemplateRecord) location.Template {
	return location.Template{
		ID:               record.ID,
		GuildID:          record.GuildID,
		Name:             i18n.Text(record.Name),
		Description:      i18n.Text(record.Description),
		Properties:       record.Properties,
		DefaultExits:     record.DefaultExits,
		InitialState:     record.InitialState,
		OnEnterTriggers:  triggersFromRecords(record.OnEnterTriggers),
		OnExitTriggers:   triggersFromRecords(record.OnExitTriggers),
		AvailableActions: record.AvailableActions,
		ItemIDs:          record.ItemIDs,
		ChannelID:        record.ChannelID,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

func templateToRecord(template location.Template) storage.TemplateRecord {
	return storage.TemplateRecord{
		ID:               template.ID,
		GuildID:          template.GuildID,
		Name:             template.Name,
		Description:      template.Description,
		Properties:       template.Properties,
		DefaultExits:     template.DefaultExits,
		InitialState:     template.InitialState,
		OnEnterTriggers:  triggersToRecords(template.OnEnterTriggers),
		OnExitTriggers:   triggersToRecords(template.OnExitTriggers),
		AvailableActions: template.AvailableActions,
		ItemIDs:          template.ItemIDs,
		ChannelID:        template.ChannelID,
		CreatedAt:        template.CreatedAt,
		UpdatedAt:        template.UpdatedAt,
	}
}

func instanceFromRecord(record storage.InstanceRecord) location.Instance {
	return location.Instance{
		ID:             record.ID,
		GuildID:        record.GuildID,
		TemplateID:     record.TemplateID,
		Name:           i18n.Text(record.Name),
		Description:    i18n.Text(record.Description),
		Exits:          record.Exits,
		StateVariables: record.StateVariables,
		IsActive:       record.IsActive,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func instanceToRecord(instance location.Instance) storage.InstanceRecord {
	return storage.InstanceRecord{
		ID:             instance.ID,
		GuildID:        instance.GuildID,
		TemplateID:     instance.TemplateID,
		Name:           instance.Name,
		Description:    instance.Description,
		Exits:          instance.Exits,
		StateVariables: instance.StateVariables,
		IsActive:       instance.IsActive,
		CreatedAt:      instance.CreatedAt,
		UpdatedAt:      instance.UpdatedAt,
	}
}

func triggersFromRecords(records []storage.TriggerRecord) []location.Trigger {
	if records == nil {
		return nil
	}
	triggers := make([]location.Trigger, len(records))
	for i, record := range records {
		triggers[i] = location.Trigger{Action: record.Action, Data: record.Data}
	}
	return triggers
}

func triggersToRecords(triggers []location.Trigger) []storage.TriggerRecord {
	if triggers == nil {
		return nil
	}
	records := make([]storage.TriggerRecord, len(triggers))
	for i, trigger := range triggers {
		records[i] = storage.TriggerRecord{Action: trigger.Action, Data: trigger.Data}
	}
	return records
}
