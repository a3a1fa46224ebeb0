package state

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/emberhollow/worldcore/internal/platform/i18n"
	"github.com/emberhollow/worldcore/internal/world/location"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func sequenceIDs(prefix string) func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("%s-%d", prefix, n), nil
	}
}

func newTestManager(store Store) *Manager {
	return NewManager(store).WithClock(fixedClock).WithIDGenerator(sequenceIDs("inst"))
}

func seedClearing(m *Manager) location.Template {
	template := location.Template{
		ID:      "tpl-clearing",
		GuildID: "guild-1",
		Name:    i18n.Text{"en-US": "The Clearing"},
		InitialState: map[string]any{
			"weather": "clear",
			"flags":   map[string]any{"lit": false, "locked": true},
		},
	}
	m.Guild("guild-1").putTemplate(template)
	return template
}

func TestCreateInstanceMergesTemplateState(t *testing.T) {
	manager := newTestManager(nil)
	seedClearing(manager)

	created := manager.CreateInstance("guild-1", "tpl-clearing", location.Overrides{
		InitialState: map[string]any{
			"weather": "storm",
			"flags":   map[string]any{"lit": true},
		},
	})
	if created == nil {
		t.Fatal("expected instance")
	}

	fetched, ok := manager.Instance("guild-1", created.ID)
	if !ok {
		t.Fatal("expected instance cached")
	}
	want := map[string]any{
		"weather": "storm",
		"flags":   map[string]any{"lit": true, "locked": true},
	}
	if !reflect.DeepEqual(fetched.StateVariables, want) {
		t.Fatalf("state = %+v, want %+v", fetched.StateVariables, want)
	}
	if !fetched.IsActive {
		t.Fatal("expected active instance")
	}

	dirty := manager.Guild("guild-1").DirtyInstances()
	if len(dirty) != 1 || dirty[0] != created.ID {
		t.Fatalf("dirty set = %v", dirty)
	}
}

func TestCreateInstanceMissingTemplate(t *testing.T) {
	manager := newTestManager(nil)

	if created := manager.CreateInstance("guild-1", "tpl-missing", location.Overrides{}); created != nil {
		t.Fatalf("expected nil for missing template, got %+v", created)
	}
	if dirty := manager.Guild("guild-1").DirtyInstances(); len(dirty) != 0 {
		t.Fatalf("expected empty dirty set, got %v", dirty)
	}
}

func TestCreateInstanceIsGuildScoped(t *testing.T) {
	manager := newTestManager(nil)
	seedClearing(manager)

	if created := manager.CreateInstance("guild-2", "tpl-clearing", location.Overrides{}); created != nil {
		t.Fatal("expected template lookup to be guild scoped")
	}
}

func TestUpdateStateDisjointPatchesCommute(t *testing.T) {
	left := newTestManager(nil)
	seedClearing(left)
	instance := left.CreateInstance("guild-1", "tpl-clearing", location.Overrides{})

	right := newTestManager(nil)
	seedClearing(right)
	other := right.CreateInstance("guild-1", "tpl-clearing", location.Overrides{})

	left.UpdateState("guild-1", instance.ID, map[string]any{"weather": "fog"})
	left.UpdateState("guild-1", instance.ID, map[string]any{"visitors": 3})

	right.UpdateState("guild-1", other.ID, map[string]any{"weather": "fog", "visitors": 3})

	gotLeft, _ := left.Instance("guild-1", instance.ID)
	gotRight, _ := right.Instance("guild-1", other.ID)
	if !reflect.DeepEqual(gotLeft.StateVariables, gotRight.StateVariables) {
		t.Fatalf("sequential = %+v, union = %+v", gotLeft.StateVariables, gotRight.StateVariables)
	}
}

func TestUpdateStateAbsentInstanceIsNoOp(t *testing.T) {
	manager := newTestManager(nil)

	manager.UpdateState("guild-1", "inst-missing", map[string]any{"weather": "fog"})
	if dirty := manager.Guild("guild-1").DirtyInstances(); len(dirty) != 0 {
		t.Fatalf("expected no dirty mark, got %v", dirty)
	}
}

type recordingCleaner struct {
	calls []string
	err   error
}

func (c *recordingCleaner) CleanupInstance(_ context.Context, guildID, instanceID string) error {
	c.calls = append(c.calls, guildID+"/"+instanceID)
	return c.err
}

func TestDeleteInstance(t *testing.T) {
	manager := newTestManager(nil)
	seedClearing(manager)
	instance := manager.CreateInstance("guild-1", "tpl-clearing", location.Overrides{})

	cleaner := &recordingCleaner{}
	manager.RegisterCleaner(cleaner)

	manager.DeleteInstance(context.Background(), "guild-1", instance.ID)

	if _, ok := manager.Instance("guild-1", instance.ID); ok {
		t.Fatal("expected instance evicted from cache")
	}
	if len(cleaner.calls) != 1 || cleaner.calls[0] != "guild-1/"+instance.ID {
		t.Fatalf("cleaner calls = %v", cleaner.calls)
	}

	world := manager.Guild("guild-1")
	if deleted := world.DeletedInstances(); len(deleted) != 1 || deleted[0] != instance.ID {
		t.Fatalf("deleted set = %v", deleted)
	}
	// An id never sits in both change sets at once.
	if dirty := world.DirtyInstances(); len(dirty) != 0 {
		t.Fatalf("dirty set = %v", dirty)
	}
}

func TestDeleteInstanceUnknownIDIsNoOp(t *testing.T) {
	manager := newTestManager(nil)
	cleaner := &recordingCleaner{}
	manager.RegisterCleaner(cleaner)

	manager.DeleteInstance(context.Background(), "guild-1", "inst-missing")

	if len(cleaner.calls) != 0 {
		t.Fatalf("expected no cleanup calls, got %v", cleaner.calls)
	}
	if deleted := manager.Guild("guild-1").DeletedInstances(); len(deleted) != 0 {
		t.Fatalf("deleted set = %v", deleted)
	}
}

func TestDeleteInstanceContinuesPastCleanerError(t *testing.T) {
	manager := newTestManager(nil)
	seedClearing(manager)
	instance := manager.CreateInstance("guild-1", "tpl-clearing", location.Overrides{})

	failing := &recordingCleaner{err: fmt.Errorf("relocate failed")}
	trailing := &recordingCleaner{}
	manager.RegisterCleaner(failing)
	manager.RegisterCleaner(trailing)

	manager.DeleteInstance(context.Background(), "guild-1", instance.ID)

	if len(trailing.calls) != 1 {
		t.Fatal("expected later cleaners to still run")
	}
	if deleted := manager.Guild("guild-1").DeletedInstances(); len(deleted) != 1 {
		t.Fatalf("deleted set = %v", deleted)
	}
}

func TestMarkDirtyIdempotent(t *testing.T) {
	manager := newTestManager(nil)

	manager.MarkDirty("guild-1", "inst-1")
	manager.MarkDirty("guild-1", "inst-1")

	if dirty := manager.Guild("guild-1").DirtyInstances(); len(dirty) != 1 {
		t.Fatalf("dirty set = %v", dirty)
	}
}

func TestMarkDirtySkipsDeletedID(t *testing.T) {
	manager := newTestManager(nil)
	seedClearing(manager)
	instance := manager.CreateInstance("guild-1", "tpl-clearing", location.Overrides{})
	manager.DeleteInstance(context.Background(), "guild-1", instance.ID)

	manager.MarkDirty("guild-1", instance.ID)

	if dirty := manager.Guild("guild-1").DirtyInstances(); len(dirty) != 0 {
		t.Fatalf("expected deleted id to stay out of dirty set, got %v", dirty)
	}
}
