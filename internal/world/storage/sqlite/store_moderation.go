package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/emberhollow/worldcore/internal/world/storage"
)

const pendingRequestColumns = `id, guild_id, user_id, content_type, payload, status, moderator_id, moderator_notes, created_at, updated_at, reviewed_at`

// PutPendingRequest upserts a moderation request record.
func (s *Store) PutPendingRequest(ctx context.Context, record storage.PendingRequestRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("request id is required")
	}
	if strings.TrimSpace(record.GuildID) == "" {
		return fmt.Errorf("guild id is required")
	}
	if strings.TrimSpace(record.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(record.Status) == "" {
		return fmt.Errorf("status is required")
	}

	var reviewedAt sql.NullInt64
	if record.ReviewedAt != nil {
		reviewedAt = sql.NullInt64{Int64: toMillis(*record.ReviewedAt), Valid: true}
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO moderation_requests (
	id, guild_id, user_id, content_type, payload, status, moderator_id, moderator_notes, created_at, updated_at, reviewed_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	guild_id = excluded.guild_id,
	user_id = excluded.user_id,
	content_type = excluded.content_type,
	payload = excluded.payload,
	status = excluded.status,
	moderator_id = excluded.moderator_id,
	moderator_notes = excluded.moderator_notes,
	updated_at = excluded.updated_at,
	reviewed_at = excluded.reviewed_at
`,
		record.ID,
		record.GuildID,
		record.UserID,
		record.ContentType,
		record.Payload,
		record.Status,
		strings.TrimSpace(record.ModeratorID),
		strings.TrimSpace(record.ModeratorNotes),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
		reviewedAt,
	)
	if err != nil {
		return fmt.Errorf("put moderation request: %w", err)
	}
	return nil
}

// GetPendingRequest fetches a moderation request record by id.
func (s *Store) GetPendingRequest(ctx context.Context, requestID string) (storage.PendingRequestRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.PendingRequestRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PendingRequestRecord{}, fmt.Errorf("storage is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return storage.PendingRequestRecord{}, fmt.Errorf("request id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+pendingRequestColumns+`
FROM moderation_requests
WHERE id = ?
`, requestID)

	record, err := scanPendingRequest(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PendingRequestRecord{}, storage.ErrNotFound
		}
		return storage.PendingRequestRecord{}, fmt.Errorf("get moderation request: %w", err)
	}
	return record, nil
}

// ListPendingRequests returns a guild's moderation requests, optionally
// filtered by status.
func (s *Store) ListPendingRequests(ctx context.Context, guildID, status string) ([]storage.PendingRequestRecord, error) {
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

	var (
		rows *sql.Rows
		err  error
	)
	if strings.TrimSpace(status) == "" {
		rows, err = s.sqlDB.QueryContext(ctx, `
SELECT `+pendingRequestColumns+`
FROM moderation_requests
WHERE guild_id = ?
ORDER BY created_at, id
`, guildID)
	} else {
		rows, err = s.sqlDB.QueryContext(ctx, `
SELECT `+pendingRequestColumns+`
FROM moderation_requests
WHERE guild_id = ? AND status = ?
ORDER BY created_at, id
`, guildID, strings.TrimSpace(status))
	}
	if err != nil {
		return nil, fmt.Errorf("list moderation requests: %w", err)
	}
	defer rows.Close()

	var records []storage.PendingRequestRecord
	for rows.Next() {
		record, err := scanPendingRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan moderation request row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moderation request rows: %w", err)
	}
	return records, nil
}

// DeletePendingRequest removes a moderation request record.
func (s *Store) DeletePendingRequest(ctx context.Context, requestID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return fmt.Errorf("request id is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM moderation_requests
WHERE id = ?
`, requestID); err != nil {
		return fmt.Errorf("delete moderation request: %w", err)
	}
	return nil
}

func scanPendingRequest(scan func(...any) error) (storage.PendingRequestRecord, error) {
	var (
		record     storage.PendingRequestRecord
		createdAt  int64
		updatedAt  int64
		reviewedAt sql.NullInt64
	)
	if err := scan(
		&record.ID,
		&record.GuildID,
		&record.UserID,
		&record.ContentType,
		&record.Payload,
		&record.Status,
		&record.ModeratorID,
		&record.ModeratorNotes,
		&createdAt,
		&updatedAt,
		&reviewedAt,
	); err != nil {
		return storage.PendingRequestRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	if reviewedAt.Valid {
		value := fromMillis(reviewedAt.Int64)
		record.ReviewedAt = &value
	}
	return record, nil
}
