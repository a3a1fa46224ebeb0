package location

import (
	"fmt"
	"strings"
	"time"

	"github.com/emberhollow/worldcore/internal/platform/i18n"
	"github.com/emberhollow/worldcore/internal/platform/id"
)

// Instance is a concrete, mutable, per-guild occurrence of a location derived
// from a template. TemplateID is a weak reference used for lookup only.
//
// Exit targets are not validated against existing instance ids; the topology
// is allowed to dangle and resolves lazily when an entity moves.
type Instance struct {
	ID             string
	GuildID        string
	TemplateID     string
	Name           i18n.Text
	Description    i18n.Text
	Exits          map[string]string
	StateVariables map[string]any
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Overrides carries per-instance deviations from the source template.
type Overrides struct {
	Name         i18n.Text
	Description  i18n.Text
	Exits        map[string]string
	InitialState map[string]any
}

// Instantiate derives a fresh instance from a template.
//
// State variables are the template initial state deep-merged with the override
// state, overrides winning on conflict. Exits start from the template default
// exits and are overlaid with override exits; targets may reference instances
// that do not exist yet.
func Instantiate(template Template, overrides Overrides, now func() time.Time, idGenerator func() (string, error)) (Instance, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if strings.TrimSpace(template.ID) == "" {
		return Instance{}, ErrEmptyTemplateID
	}
	if strings.TrimSpace(template.GuildID) == "" {
		return Instance{}, ErrEmptyGuildID
	}

	instanceID, err := idGenerator()
	if err != nil {
		return Instance{}, fmt.Errorf("generate instance id: %w", err)
	}

	exits := cloneStringMap(template.DefaultExits)
	for direction, target := range overrides.Exits {
		if exits == nil {
			exits = map[string]string{}
		}
		exits[direction] = target
	}

	createdAt := now().UTC()
	return Instance{
		ID:             instanceID,
		GuildID:        template.GuildID,
		TemplateID:     template.ID,
		Name:           overrides.Name.Clone(),
		Description:    overrides.Description.Clone(),
		Exits:          exits,
		StateVariables: DeepMerge(template.InitialState, overrides.InitialState),
		IsActive:       true,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}, nil
}

// DisplayName resolves the instance name for a locale, falling back to the
// template name when the instance carries no override.
func (i Instance) DisplayName(template Template, locale string) string {
	if value, ok := i.Name.Resolve(locale); ok {
		return value
	}
	if value, ok := template.Name.Resolve(locale); ok {
		return value
	}
	return i.ID
}

// DisplayDescription resolves the instance description for a locale, falling
// back to the template description.
func (i Instance) DisplayDescription(template Template, locale string) string {
	if value, ok := i.Description.Resolve(locale); ok {
		return value
	}
	value, _ := template.Description.Resolve(locale)
	return value
}
