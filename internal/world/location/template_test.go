package location

import (
	"errors"
	"testing"
	"time"

	"github.com/emberhollow/worldcore/internal/platform/i18n"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func staticID(value string) func() (string, error) {
	return func() (string, error) { return value, nil }
}

func TestNormalizeCreateTemplateInput(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateTemplateInput
		wantErr error
	}{
		{
			name:    "missing guild id",
			input:   CreateTemplateInput{Name: i18n.Text{"en-US": "Clearing"}},
			wantErr: ErrEmptyGuildID,
		},
		{
			name:    "missing name",
			input:   CreateTemplateInput{GuildID: "guild-1"},
			wantErr: ErrEmptyName,
		},
		{
			name:  "valid",
			input: CreateTemplateInput{GuildID: " guild-1 ", Name: i18n.Text{"en-US": "Clearing"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCreateTemplateInput(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NormalizeCreateTemplateInput error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeCreateTemplateInput error = %v", err)
			}
			if got.GuildID != "guild-1" {
				t.Fatalf("expected trimmed guild id, got %q", got.GuildID)
			}
		})
	}
}

func TestCreateTemplate(t *testing.T) {
	template, err := CreateTemplate(CreateTemplateInput{
		GuildID:      "guild-1",
		Name:         i18n.Text{"en-US": "The Clearing"},
		InitialState: map[string]any{"weather": "clear"},
		OnEnterTriggers: []Trigger{
			{Action: "log_entry", Data: map[string]any{"message": "Entered"}},
		},
	}, fixedClock, staticID("tpl-1"))
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	if template.ID != "tpl-1" {
		t.Fatalf("template id = %q", template.ID)
	}
	if !template.CreatedAt.Equal(fixedClock()) || !template.UpdatedAt.Equal(fixedClock()) {
		t.Fatal("expected clock-derived timestamps")
	}
	if len(template.OnEnterTriggers) != 1 || template.OnEnterTriggers[0].Action != "log_entry" {
		t.Fatalf("unexpected triggers %+v", template.OnEnterTriggers)
	}
}

func TestCreateTemplateCopiesInput(t *testing.T) {
	state := map[string]any{"weather": "clear"}
	template, err := CreateTemplate(CreateTemplateInput{
		GuildID:      "guild-1",
		Name:         i18n.Text{"en-US": "The Clearing"},
		InitialState: state,
	}, fixedClock, staticID("tpl-1"))
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	state["weather"] = "storm"
	if template.InitialState["weather"] != "clear" {
		t.Fatal("expected template state detached from input")
	}
}
