package transit

import (
	"context"
	"log"

	"github.com/emberhollow/worldcore/internal/world/location"
	"github.com/emberhollow/worldcore/internal/world/state"
)

// Context keys added to the trigger context before rule execution.
const (
	ContextKeyInstanceID = "location_instance_id"
	ContextKeyTemplateID = "location_template_id"
	ContextKeyEntityID   = "entity_id"
	ContextKeyEntityType = "entity_type"
)

// RuleExecutor runs an ordered trigger list. Execution failures are the
// executor's own concern and are not surfaced to transit.
type RuleExecutor interface {
	ExecuteTriggers(ctx context.Context, guildID string, triggers []location.Trigger, tctx map[string]any) error
}

// Triggers resolves a location's trigger lists and forwards them to the rule
// executor with an augmented context.
type Triggers struct {
	worlds *state.Manager
	rules  RuleExecutor
}

// NewTriggers creates a trigger executor over the given world manager.
func NewTriggers(worlds *state.Manager, rules RuleExecutor) *Triggers {
	return &Triggers{worlds: worlds, rules: rules}
}

// HandleEntityArrival runs a location's on-enter triggers for an arriving
// entity and returns the augmented trigger context.
func (t *Triggers) HandleEntityArrival(ctx context.Context, guildID, entityID string, entityType EntityType, instanceID string, tctx map[string]any) map[string]any {
	return t.execute(ctx, guildID, entityID, entityType, instanceID, tctx, func(template location.Template) []location.Trigger {
		return template.OnEnterTriggers
	})
}

// HandleEntityDeparture runs a location's on-exit triggers for a departing
// entity and returns the augmented trigger context.
func (t *Triggers) HandleEntityDeparture(ctx context.Context, guildID, entityID string, entityType EntityType, instanceID string, tctx map[string]any) map[string]any {
	return t.execute(ctx, guildID, entityID, entityType, instanceID, tctx, func(template location.Template) []location.Trigger {
		return template.OnExitTriggers
	})
}

// execute is a silent no-op when the instance or its template cannot be
// resolved or the trigger list is empty; an unresolvable location is not an
// error at this layer.
func (t *Triggers) execute(ctx context.Context, guildID, entityID string, entityType EntityType, instanceID string, tctx map[string]any, pick func(location.Template) []location.Trigger) map[string]any {
	augmented := augmentContext(tctx, entityID, entityType, instanceID, "")
	if t == nil || t.worlds == nil || t.rules == nil {
		return augmented
	}

	instance, ok := t.worlds.Instance(guildID, instanceID)
	if !ok {
		return augmented
	}
	template, ok := t.worlds.Template(guildID, instance.TemplateID)
	if !ok {
		return augmented
	}

	triggers := pick(template)
	if len(triggers) == 0 {
		return augmented
	}

	augmented = augmentContext(tctx, entityID, entityType, instanceID, template.ID)
	if err := t.rules.ExecuteTriggers(ctx, guildID, triggers, augmented); err != nil {
		log.Printf("world: trigger execution at instance %s in guild %s: %v", instanceID, guildID, err)
	}
	return augmented
}

func augmentContext(tctx map[string]any, entityID string, entityType EntityType, instanceID, templateID string) map[string]any {
	augmented := make(map[string]any, len(tctx)+4)
	for key, value := range tctx {
		augmented[key] = value
	}
	augmented[ContextKeyInstanceID] = instanceID
	if templateID != "" {
		augmented[ContextKeyTemplateID] = templateID
	}
	if entityID != "" {
		augmented[ContextKeyEntityID] = entityID
	}
	if entityType != "" {
		augmented[ContextKeyEntityType] = string(entityType)
	}
	return augmented
}
