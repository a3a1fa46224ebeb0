package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/emberhollow/worldcore/internal/world/storage"
)

const templateColumns = `id, guild_id, name, description, properties, default_exits, initial_state, on_enter_triggers, on_exit_triggers, available_actions, item_ids, channel_id, created_at, updated_at`

// PutTemplate upserts a location template record.
func (s *Store) PutTemplate(ctx context.Context, record storage.TemplateRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("template id is required")
	}
	if strings.TrimSpace(record.GuildID) == "" {
		return fmt.Errorf("guild id is required")
	}

	name, err := encodeStringMap(record.Name)
	if err != nil {
		return err
	}
	description, err := encodeStringMap(record.Description)
	if err != nil {
		return err
	}
	properties, err := encodeAnyMap(record.Properties)
	if err != nil {
		return err
	}
	defaultExits, err := encodeStringMap(record.DefaultExits)
	if err != nil {
		return err
	}
	initialState, err := encodeAnyMap(record.InitialState)
	if err != nil {
		return err
	}
	onEnter, err := encodeTriggers(record.OnEnterTriggers)
	if err != nil {
		return err
	}
	onExit, err := encodeTriggers(record.OnExitTriggers)
	if err != nil {
		return err
	}
	actions, err := encodeStrings(record.AvailableActions)
	if err != nil {
		return err
	}
	itemIDs, err := encodeStrings(record.ItemIDs)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO location_templates (
	id, guild_id, name, description, properties, default_exits, initial_state, on_enter_triggers, on_exit_triggers, available_actions, item_ids, channel_id, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(guild_id, id) DO UPDATE SET
	name = excluded.name,
	description = excluded.description,
	properties = excluded.properties,
	default_exits = excluded.default_exits,
	initial_state = excluded.initial_state,
	on_enter_triggers = excluded.on_enter_triggers,
	on_exit_triggers = excluded.on_exit_triggers,
	available_actions = excluded.available_actions,
	item_ids = excluded.item_ids,
	channel_id = excluded.channel_id,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.GuildID,
		name,
		description,
		properties,
		defaultExits,
		initialState,
		onEnter,
		onExit,
		actions,
		itemIDs,
		strings.TrimSpace(record.ChannelID),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put template: %w", err)
	}
	return nil
}

// GetTemplate fetches a template record by guild-scoped id.
func (s *Store) GetTemplate(ctx context.Context, guildID, templateID string) (storage.TemplateRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.TemplateRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.TemplateRecord{}, fmt.Errorf("storage is not configured")
	}
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return storage.TemplateRecord{}, fmt.Errorf("guild id is required")
	}
	templateID = strings.TrimSpace(templateID)
	if templateID == "" {
		return storage.TemplateRecord{}, fmt.Errorf("template id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+templateColumns+`
FROM location_templates
WHERE guild_id = ? AND id = ?
`, guildID, templateID)

	record, err := scanTemplate(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.TemplateRecord{}, storage.ErrNotFound
		}
		return storage.TemplateRecord{}, fmt.Errorf("get template: %w", err)
	}
	return record, nil
}

// ListTemplates returns every template record for a guild.
func (s *Store) ListTemplates(ctx context.Context, guildID string) ([]storage.TemplateRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, fmt.Errorf("guild id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+templateColumns+`
FROM location_templates
WHERE guild_id = ?
ORDER BY id
`, guildID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var records []storage.TemplateRecord
	for rows.Next() {
		record, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan template row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate template rows: %w", err)
	}
	return records, nil
}

func scanTemplate(scan func(...any) error) (storage.TemplateRecord, error) {
	var (
		record       storage.TemplateRecord
		name         string
		description  string
		properties   string
		defaultExits string
		initialState string
		onEnter      string
		onExit       string
		actions      string
		itemIDs      string
		createdAt    int64
		updatedAt    int64
	)
	if err := scan(
		&record.ID,
		&record.GuildID,
		&name,
		&description,
		&properties,
		&defaultExits,
		&initialState,
		&onEnter,
		&onExit,
		&actions,
		&itemIDs,
		&record.ChannelID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.TemplateRecord{}, err
	}

	label := "template " + record.ID
	record.Name = decodeStringMap(name, label+" name")
	record.Description = decodeStringMap(description, label+" description")
	record.Properties = decodeAnyMap(properties, label+" properties")
	record.DefaultExits = decodeStringMap(defaultExits, label+" default exits")
	record.InitialState = decodeAnyMap(initialState, label+" initial state")
	record.OnEnterTriggers = decodeTriggers(onEnter, label+" on-enter triggers")
	record.OnExitTriggers = decodeTriggers(onExit, label+" on-exit triggers")
	record.AvailableActions = decodeStrings(actions, label+" available actions")
	record.ItemIDs = decodeStrings(itemIDs, label+" item ids")
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
