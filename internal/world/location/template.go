// Package location models world topology: shared location templates and the
// live per-guild instances derived from them.
package location

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emberhollow/worldcore/internal/platform/i18n"
	"github.com/emberhollow/worldcore/internal/platform/id"
)

var (
	// ErrEmptyGuildID indicates a guild ID is required.
	ErrEmptyGuildID = errors.New("guild id is required")
	// ErrEmptyName indicates a template needs at least one localized name.
	ErrEmptyName = errors.New("template name is required")
	// ErrEmptyTemplateID indicates a template ID is required.
	ErrEmptyTemplateID = errors.New("template id is required")
	// ErrEmptyInstanceID indicates an instance ID is required.
	ErrEmptyInstanceID = errors.New("instance id is required")
)

// Trigger is a declarative action descriptor executed by the rule engine when
// an entity enters or leaves a location.
type Trigger struct {
	Action string
	Data   map[string]any
}

// Clone returns an independent copy of the trigger.
func (t Trigger) Clone() Trigger {
	return Trigger{Action: t.Action, Data: cloneValueMap(t.Data)}
}

// CloneTriggers copies an ordered trigger list.
func CloneTriggers(triggers []Trigger) []Trigger {
	if triggers == nil {
		return nil
	}
	cloned := make([]Trigger, len(triggers))
	for i, trigger := range triggers {
		cloned[i] = trigger.Clone()
	}
	return cloned
}

// Template is the shared, read-mostly blueprint for a class of locations.
// Many instances derive from one template.
type Template struct {
	ID               string
	GuildID          string
	Name             i18n.Text
	Description      i18n.Text
	Properties       map[string]any
	DefaultExits     map[string]string
	InitialState     map[string]any
	OnEnterTriggers  []Trigger
	OnExitTriggers   []Trigger
	AvailableActions []string
	ItemIDs          []string
	ChannelID        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateTemplateInput describes the fields needed to author a template.
type CreateTemplateInput struct {
	GuildID          string
	Name             i18n.Text
	Description      i18n.Text
	Properties       map[string]any
	DefaultExits     map[string]string
	InitialState     map[string]any
	OnEnterTriggers  []Trigger
	OnExitTriggers   []Trigger
	AvailableActions []string
	ItemIDs          []string
	ChannelID        string
}

// NormalizeCreateTemplateInput trims and validates template authoring input.
func NormalizeCreateTemplateInput(input CreateTemplateInput) (CreateTemplateInput, error) {
	input.GuildID = strings.TrimSpace(input.GuildID)
	if input.GuildID == "" {
		return CreateTemplateInput{}, ErrEmptyGuildID
	}
	if len(input.Name) == 0 {
		return CreateTemplateInput{}, ErrEmptyName
	}
	input.ChannelID = strings.TrimSpace(input.ChannelID)
	return input, nil
}

// CreateTemplate creates a new template with a generated ID and timestamps.
func CreateTemplate(input CreateTemplateInput, now func() time.Time, idGenerator func() (string, error)) (Template, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateTemplateInput(input)
	if err != nil {
		return Template{}, err
	}

	templateID, err := idGenerator()
	if err != nil {
		return Template{}, fmt.Errorf("generate template id: %w", err)
	}

	createdAt := now().UTC()
	return Template{
		ID:               templateID,
		GuildID:          normalized.GuildID,
		Name:             normalized.Name.Clone(),
		Description:      normalized.Description.Clone(),
		Properties:       cloneValueMap(normalized.Properties),
		DefaultExits:     cloneStringMap(normalized.DefaultExits),
		InitialState:     cloneValueMap(normalized.InitialState),
		OnEnterTriggers:  CloneTriggers(normalized.OnEnterTriggers),
		OnExitTriggers:   CloneTriggers(normalized.OnExitTriggers),
		AvailableActions: cloneStrings(normalized.AvailableActions),
		ItemIDs:          cloneStrings(normalized.ItemIDs),
		ChannelID:        normalized.ChannelID,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}, nil
}
