package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/emberhollow/worldcore/internal/world/storage"
)

// AppendTelemetryEvent appends one telemetry event row.
func (s *Store) AppendTelemetryEvent(ctx context.Context, event storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(event.Kind) == "" {
		return fmt.Errorf("event kind is required")
	}

	attrs, err := encodeStringMap(event.Attrs)
	if err != nil {
		return err
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO telemetry_events (guild_id, kind, attrs, created_at)
VALUES (?, ?, ?, ?)
`,
		strings.TrimSpace(event.GuildID),
		event.Kind,
		attrs,
		toMillis(event.Timestamp),
	); err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}

// ListTelemetryEvents returns a guild's telemetry events in append order.
func (s *Store) ListTelemetryEvents(ctx context.Context, guildID string) ([]storage.TelemetryEvent, error) {
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
SELECT guild_id, kind, attrs, created_at
FROM telemetry_events
WHERE guild_id = ?
ORDER BY seq
`, guildID)
	if err != nil {
		return nil, fmt.Errorf("list telemetry events: %w", err)
	}
	defer rows.Close()

	var events []storage.TelemetryEvent
	for rows.Next() {
		var (
			event     storage.TelemetryEvent
			attrs     string
			createdAt int64
		)
		if err := rows.Scan(&event.GuildID, &event.Kind, &attrs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan telemetry event row: %w", err)
		}
		event.Attrs = decodeStringMap(attrs, "telemetry event attrs")
		event.Timestamp = fromMillis(createdAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate telemetry event rows: %w", err)
	}
	return events, nil
}
