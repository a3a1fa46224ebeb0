package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/emberhollow/worldcore/internal/world/storage"
)

// AppendProvenance appends one content provenance row.
func (s *Store) AppendProvenance(ctx context.Context, record storage.ProvenanceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("provenance id is required")
	}
	if strings.TrimSpace(record.GuildID) == "" {
		return fmt.Errorf("guild id is required")
	}
	if strings.TrimSpace(record.Action) == "" {
		return fmt.Errorf("action is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO content_provenance (
	id, guild_id, user_id, content_type, action, request_id, payload, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.GuildID,
		strings.TrimSpace(record.UserID),
		record.ContentType,
		record.Action,
		strings.TrimSpace(record.RequestID),
		record.Payload,
		toMillis(record.CreatedAt),
	); err != nil {
		return fmt.Errorf("append provenance: %w", err)
	}
	return nil
}

// ListProvenance returns a guild's provenance rows in append order.
func (s *Store) ListProvenance(ctx context.Context, guildID string) ([]storage.ProvenanceRecord, error) {
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
SELECT id, guild_id, user_id, content_type, action, request_id, payload, created_at
FROM content_provenance
WHERE guild_id = ?
ORDER BY created_at, id
`, guildID)
	if err != nil {
		return nil, fmt.Errorf("list provenance: %w", err)
	}
	defer rows.Close()

	var records []storage.ProvenanceRecord
	for rows.Next() {
		var (
			record    storage.ProvenanceRecord
			createdAt int64
		)
		if err := rows.Scan(
			&record.ID,
			&record.GuildID,
			&record.UserID,
			&record.ContentType,
			&record.Action,
			&record.RequestID,
			&record.Payload,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan provenance row: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provenance rows: %w", err)
	}
	return records, nil
}
