// Package storage defines persistence interfaces and records for world state.
//
// Records are flat snapshots of domain values. Stores own serialization; the
// state layer owns caching and change tracking.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// TriggerRecord stores one declarative trigger action.
type TriggerRecord struct {
	Action string
	Data   map[string]any
}

// TemplateRecord stores a persisted location template.
type TemplateRecord struct {
	ID               string
	GuildID          string
	Name             map[string]string
	Description      map[string]string
	Properties       map[string]any
	DefaultExits     map[string]string
	InitialState     map[string]any
	OnEnterTriggers  []TriggerRecord
	OnExitTriggers   []TriggerRecord
	AvailableActions []string
	ItemIDs          []string
	ChannelID        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// InstanceRecord stores a persisted location instance.
type InstanceRecord struct {
	ID             string
	GuildID        string
	TemplateID     string
	Name           map[string]string
	Description    map[string]string
	Exits          map[string]string
	StateVariables map[string]any
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PendingRequestRecord stores a persisted moderation request.
type PendingRequestRecord struct {
	ID             string
	GuildID        string
	UserID         string
	ContentType    string
	Payload        string
	Status         string
	ModeratorID    string
	ModeratorNotes string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ReviewedAt     *time.Time
}

// ProvenanceRecord stores an audit entry for generated or activated content.
type ProvenanceRecord struct {
	ID          string
	GuildID     string
	UserID      string
	ContentType string
	Action      string
	RequestID   string
	Payload     string
	CreatedAt   time.Time
}

// TelemetryEvent stores one operational telemetry event.
type TelemetryEvent struct {
	GuildID   string
	Kind      string
	Attrs     map[string]string
	Timestamp time.Time
}

// TemplateStore persists location templates per guild.
type TemplateStore interface {
	PutTemplate(ctx context.Context, record TemplateRecord) error
	GetTemplate(ctx context.Context, guildID, templateID string) (TemplateRecord, error)
	ListTemplates(ctx context.Context, guildID string) ([]TemplateRecord, error)
}

// InstanceStore persists location instances per guild.
type InstanceStore interface {
	PutInstance(ctx context.Context, record InstanceRecord) error
	GetInstance(ctx context.Context, guildID, instanceID string) (InstanceRecord, error)
	ListInstances(ctx context.Context, guildID string) ([]InstanceRecord, error)
	DeleteInstance(ctx context.Context, guildID, instanceID string) error
}

// ModerationStore persists pending moderation requests.
type ModerationStore interface {
	PutPendingRequest(ctx context.Context, record PendingRequestRecord) error
	GetPendingRequest(ctx context.Context, requestID string) (PendingRequestRecord, error)
	ListPendingRequests(ctx context.Context, guildID, status string) ([]PendingRequestRecord, error)
	DeletePendingRequest(ctx context.Context, requestID string) error
}

// ProvenanceStore records an audit trail for generated and activated content.
type ProvenanceStore interface {
	AppendProvenance(ctx context.Context, record ProvenanceRecord) error
}

// TelemetryStore records operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, event TelemetryEvent) error
}

// WorldStore aggregates every persistence concern of the world service.
type WorldStore interface {
	TemplateStore
	InstanceStore
	ModerationStore
	ProvenanceStore
	TelemetryStore
}
