package transit

import (
	"context"
	"errors"
	"testing"
)

type fakeOccupants struct {
	occupants []Occupant
	err       error
}

func (f *fakeOccupants) ListOccupants(_ context.Context, _, _ string) ([]Occupant, error) {
	return f.occupants, f.err
}

func TestRelocationCleanerMovesOccupants(t *testing.T) {
	worlds, instA, instB := clearingWorld(t)
	rules := &recordingRules{}
	updater := &fakeUpdater{}
	coordinator := newCoordinator(worlds, rules, updater)

	occupants := &fakeOccupants{occupants: []Occupant{
		{EntityID: "e1", EntityType: EntityTypeCharacter},
		{EntityID: "e2", EntityType: EntityTypeCharacter},
	}}
	cleaner := NewRelocationCleaner(coordinator, occupants, instB)

	if err := cleaner.CleanupInstance(context.Background(), "guild-1", instA); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if len(updater.calls) != 2 {
		t.Fatalf("updater calls = %v", updater.calls)
	}
	for _, call := range updater.calls {
		if call != "guild-1/e1->"+instB && call != "guild-1/e2->"+instB {
			t.Fatalf("unexpected relocation %q", call)
		}
	}
	// Moves are originless; only arrival triggers fire at the fallback.
	for _, call := range rules.calls {
		if call.triggers[0].Action != "log_entry" {
			t.Fatalf("expected arrival triggers only, got %+v", call.triggers)
		}
	}
}

func TestRelocationCleanerContinuesPastFailures(t *testing.T) {
	worlds, instA, instB := clearingWorld(t)
	rules := &recordingRules{}
	updater := &fakeUpdater{err: errors.New("entity is rooted")}
	coordinator := newCoordinator(worlds, rules, updater)

	occupants := &fakeOccupants{occupants: []Occupant{
		{EntityID: "e1", EntityType: EntityTypeCharacter},
		{EntityID: "e2", EntityType: EntityTypeCharacter},
	}}
	cleaner := NewRelocationCleaner(coordinator, occupants, instB)

	if err := cleaner.CleanupInstance(context.Background(), "guild-1", instA); err == nil {
		t.Fatal("expected first relocation error surfaced")
	}
	if len(updater.calls) != 2 {
		t.Fatalf("every occupant must be attempted, calls = %v", updater.calls)
	}
}

func TestRelocationCleanerListFailure(t *testing.T) {
	worlds, instA, instB := clearingWorld(t)
	coordinator := newCoordinator(worlds, &recordingRules{}, &fakeUpdater{})
	cleaner := NewRelocationCleaner(coordinator, &fakeOccupants{err: errors.New("service down")}, instB)

	if err := cleaner.CleanupInstance(context.Background(), "guild-1", instA); err == nil {
		t.Fatal("expected error when occupants cannot be listed")
	}
}

func TestRelocationCleanerWithoutListerIsNoOp(t *testing.T) {
	worlds, instA, instB := clearingWorld(t)
	coordinator := newCoordinator(worlds, &recordingRules{}, &fakeUpdater{})
	cleaner := NewRelocationCleaner(coordinator, nil, instB)

	if err := cleaner.CleanupInstance(context.Background(), "guild-1", instA); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
