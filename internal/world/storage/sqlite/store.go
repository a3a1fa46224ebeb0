// Package sqlite provides SQLite-backed persistence for world records.
//
// Map and list columns are stored as JSON text. Malformed JSON read back from
// the database degrades to an empty default with a logged diagnostic instead
// of failing the load; one corrupt field must not take a guild's world down.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/emberhollow/worldcore/internal/platform/storage/sqlitemigrate"
	"github.com/emberhollow/worldcore/internal/world/storage"
	"github.com/emberhollow/worldcore/internal/world/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func encodeStringMap(values map[string]string) (string, error) {
	if len(values) == 0 {
		return "{}", nil
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal string map: %w", err)
	}
	return string(encoded), nil
}

func encodeAnyMap(values map[string]any) (string, error) {
	if len(values) == 0 {
		return "{}", nil
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal map: %w", err)
	}
	return string(encoded), nil
}

func encodeStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal string list: %w", err)
	}
	return string(encoded), nil
}

func encodeTriggers(triggers []storage.TriggerRecord) (string, error) {
	if len(triggers) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal(triggers)
	if err != nil {
		return "", fmt.Errorf("marshal triggers: %w", err)
	}
	return string(encoded), nil
}

// decodeStringMap degrades malformed JSON to nil with a diagnostic.
func decodeStringMap(raw, field string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return nil
	}
	var values map[string]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		log.Printf("sqlite: malformed %s, using empty value: %v", field, err)
		return nil
	}
	return values
}

// decodeAnyMap degrades malformed JSON to nil with a diagnostic.
func decodeAnyMap(raw, field string) map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return nil
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		log.Printf("sqlite: malformed %s, using empty value: %v", field, err)
		return nil
	}
	return values
}

// decodeStrings degrades malformed JSON to nil with a diagnostic.
func decodeStrings(raw, field string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		log.Printf("sqlite: malformed %s, using empty value: %v", field, err)
		return nil
	}
	return values
}

// decodeTriggers degrades malformed JSON to nil with a diagnostic.
func decodeTriggers(raw, field string) []storage.TriggerRecord {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return nil
	}
	var triggers []storage.TriggerRecord
	if err := json.Unmarshal([]byte(raw), &triggers); err != nil {
		log.Printf("sqlite: malformed %s, using empty value: %v", field, err)
		return nil
	}
	return triggers
}

// Store provides SQLite-backed persistence for world records.
type Store struct {
	sqlDB *sql.DB
}

// DB returns the underlying sql.DB instance.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

// Open opens a SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}
