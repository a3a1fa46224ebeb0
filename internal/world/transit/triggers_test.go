package transit

import (
	"context"
	"errors"
	"testing"

	"github.com/emberhollow/worldcore/internal/platform/i18n"
	"github.com/emberhollow/worldcore/internal/world/location"
	"github.com/emberhollow/worldcore/internal/world/state"
)

func TestHandleEntityArrivalAugmentsContext(t *testing.T) {
	worlds, instA, _ := clearingWorld(t)
	rules := &recordingRules{}
	triggers := NewTriggers(worlds, rules)

	tctx := map[string]any{"reason": "spawn"}
	augmented := triggers.HandleEntityArrival(context.Background(), "guild-1", "e1", EntityTypeCharacter, instA, tctx)

	if augmented[ContextKeyInstanceID] != instA {
		t.Fatalf("augmented instance = %v", augmented[ContextKeyInstanceID])
	}
	if augmented[ContextKeyTemplateID] != "tpl-clearing" {
		t.Fatalf("augmented template = %v", augmented[ContextKeyTemplateID])
	}
	if augmented["reason"] != "spawn" {
		t.Fatal("expected original context keys preserved")
	}
	if _, ok := tctx[ContextKeyInstanceID]; ok {
		t.Fatal("expected caller map untouched; augmentation is a return value")
	}
	if len(rules.calls) != 1 {
		t.Fatalf("rule executor invoked %d times", len(rules.calls))
	}
}

func TestTriggerHandlingSilentNoOps(t *testing.T) {
	worlds, _, _ := clearingWorld(t)

	bare := state.NewManager(nil)
	bareTemplate := location.Template{ID: "tpl-bare", GuildID: "guild-1", Name: i18n.Text{"en-US": "Bare"}}
	bare.PutTemplate(bareTemplate)
	bareInstance := bare.CreateInstance("guild-1", "tpl-bare", location.Overrides{})

	tests := []struct {
		name       string
		worlds     *state.Manager
		instanceID string
	}{
		{name: "unknown instance", worlds: worlds, instanceID: "inst-void"},
		{name: "empty trigger list", worlds: bare, instanceID: bareInstance.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := &recordingRules{}
			triggers := NewTriggers(tt.worlds, rules)

			augmented := triggers.HandleEntityArrival(context.Background(), "guild-1", "e1", EntityTypeCharacter, tt.instanceID, nil)
			if len(rules.calls) != 0 {
				t.Fatalf("expected silent no-op, executor invoked %d times", len(rules.calls))
			}
			if augmented[ContextKeyInstanceID] != tt.instanceID {
				t.Fatal("expected augmented context even when nothing executes")
			}
		})
	}
}

func TestTriggerExecutorFailureNotSurfaced(t *testing.T) {
	worlds, instA, _ := clearingWorld(t)
	rules := &recordingRules{err: errors.New("lua panic")}
	triggers := NewTriggers(worlds, rules)

	augmented := triggers.HandleEntityDeparture(context.Background(), "guild-1", "e1", EntityTypeCharacter, instA, nil)
	if augmented == nil {
		t.Fatal("expected augmented context despite executor failure")
	}
	if len(rules.calls) != 1 {
		t.Fatalf("rule executor invoked %d times", len(rules.calls))
	}
}

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		value   string
		want    EntityType
		wantErr bool
	}{
		{value: "character", want: EntityTypeCharacter},
		{value: " NPC ", want: EntityTypeNPC},
		{value: "Party", want: EntityTypeParty},
		{value: "item", want: EntityTypeItem},
		{value: "dragon", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseEntityType(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEntityType) {
					t.Fatalf("expected ErrInvalidEntityType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseEntityType(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
