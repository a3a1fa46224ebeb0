package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/emberhollow/worldcore/internal/world/storage"
)

const instanceColumns = `id, guild_id, template_id, name, description, exits, state_variables, is_active, created_at, updated_at`

// PutInstance upserts a location instance record.
func (s *Store) PutInstance(ctx context.Context, record storage.InstanceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("instance id is required")
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
	exits, err := encodeStringMap(record.Exits)
	if err != nil {
		return err
	}
	stateVariables, err := encodeAnyMap(record.StateVariables)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO location_instances (
	id, guild_id, template_id, name, description, exits, state_variables, is_active, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(guild_id, id) DO UPDATE SET
	template_id = excluded.template_id,
	name = excluded.name,
	description = excluded.description,
	exits = excluded.exits,
	state_variables = excluded.state_variables,
	is_active = excluded.is_active,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.GuildID,
		strings.TrimSpace(record.TemplateID),
		name,
		description,
		exits,
		stateVariables,
		record.IsActive,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put instance: %w", err)
	}
	return nil
}

// GetInstance fetches an instance record by guild-scoped id.
func (s *Store) GetInstance(ctx context.Context, guildID, instanceID string) (storage.InstanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.InstanceRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.InstanceRecord{}, fmt.Errorf("storage is not configured")
	}
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return storage.InstanceRecord{}, fmt.Errorf("guild id is required")
	}
	instanceID = strings.TrimSpace(instanceID)
	if instanceID == "" {
		return storage.InstanceRecord{}, fmt.Errorf("instance id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+instanceColumns+`
FROM location_instances
WHERE guild_id = ? AND id = ?
`, guildID, instanceID)

	record, err := scanInstance(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.InstanceRecord{}, storage.ErrNotFound
		}
		return storage.InstanceRecord{}, fmt.Errorf("get instance: %w", err)
	}
	return record, nil
}

// ListInstances returns every instance record for a guild.
func (s *Store) ListInstances(ctx context.Context, guildID string) ([]storage.InstanceRecord, error) {
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
SELECT `+instanceColumns+`
FROM location_instances
WHERE guild_id = ?
ORDER BY id
`, guildID)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()

	var records []storage.InstanceRecord
	for rows.Next() {
		record, err := scanInstance(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan instance row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instance rows: %w", err)
	}
	return records, nil
}

// DeleteInstance removes an instance record. Deleting an absent id is not an
// error.
func (s *Store) DeleteInstance(ctx context.Context, guildID, instanceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return fmt.Errorf("guild id is required")
	}
	instanceID = strings.TrimSpace(instanceID)
	if instanceID == "" {
		return fmt.Errorf("instance id is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM location_instances
WHERE guild_id = ? AND id = ?
`, guildID, instanceID); err != nil {
		return fmt.Errorf("delete instance: %w", err)
	}
	return nil
}

func scanInstance(scan func(...any) error) (storage.InstanceRecord, error) {
	var (
		record         storage.InstanceRecord
		name           string
		description    string
		exits          string
		stateVariables string
		createdAt      int64
		updatedAt      int64
	)
	if err := scan(
		&record.ID,
		&record.GuildID,
		&record.TemplateID,
		&name,
		&description,
		&exits,
		&stateVariables,
		&record.IsActive,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.InstanceRecord{}, err
	}

	label := "instance " + record.ID
	record.Name = decodeStringMap(name, label+" name")
	record.Description = decodeStringMap(description, label+" description")
	record.Exits = decodeStringMap(exits, label+" exits")
	record.StateVariables = decodeAnyMap(stateVariables, label+" state variables")
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
