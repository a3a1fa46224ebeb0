// Package generation admits new location instances into a guild's world.
//
// Template-derived instances are created directly. AI-generated candidates
// never touch the live world on the request path: they are validated, parked
// as pending moderation requests, and only activated once a GM approves them.
package generation

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	apperrors "github.com/emberhollow/worldcore/internal/errors"
	"github.com/emberhollow/worldcore/internal/platform/i18n"
	"github.com/emberhollow/worldcore/internal/platform/id"
	"github.com/emberhollow/worldcore/internal/telemetry"
	"github.com/emberhollow/worldcore/internal/world/generation/schemaval"
	"github.com/emberhollow/worldcore/internal/world/location"
	"github.com/emberhollow/worldcore/internal/world/moderation"
	"github.com/emberhollow/worldcore/internal/world/state"
	"github.com/emberhollow/worldcore/internal/world/storage"
)

// Generator produces a serialized location candidate from a free-form prompt.
// Prompt construction and model selection are the implementation's concern.
type Generator interface {
	GenerateLocation(ctx context.Context, guildID, prompt string) ([]byte, error)
}

// Validator checks a candidate payload before it reaches moderation.
type Validator interface {
	ValidatePayload(guildID string, payload []byte) schemaval.Result
}

// Store is the persistence surface the gate needs.
type Store interface {
	storage.ModerationStore
	storage.ProvenanceStore
}

// Directive describes what kind of location instance a caller wants. Exactly
// one of TemplateID and Prompt should be set.
type Directive struct {
	TemplateID string
	Prompt     string
	Overrides  location.Overrides
}

// CreateResult reports the outcome of a create request. Instance is set for
// direct template creation; Pending is set when an AI candidate was parked
// for moderation and no instance exists yet.
type CreateResult struct {
	Instance *location.Instance
	Pending  *moderation.Request
}

// Gate coordinates instance creation, candidate generation, validation, and
// the moderation workflow.
type Gate struct {
	worlds      *state.Manager
	store       Store
	generator   Generator
	validator   Validator
	events      *telemetry.Emitter
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewGate creates a generation gate. The generator may be nil when AI
// creation is disabled; direct template creation still works.
func NewGate(worlds *state.Manager, store Store, generator Generator, validator Validator, events *telemetry.Emitter) *Gate {
	return &Gate{
		worlds:      worlds,
		store:       store,
		generator:   generator,
		validator:   validator,
		events:      events,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// WithGenerator sets the candidate generator. AI creation is rejected until
// one is configured.
func (g *Gate) WithGenerator(generator Generator) *Gate {
	g.generator = generator
	return g
}

// WithClock overrides the gate clock. Intended for tests.
func (g *Gate) WithClock(clock func() time.Time) *Gate {
	if clock != nil {
		g.clock = clock
	}
	return g
}

// WithIDGenerator overrides id generation. Intended for tests.
func (g *Gate) WithIDGenerator(generator func() (string, error)) *Gate {
	if generator != nil {
		g.idGenerator = generator
	}
	return g
}

// CreateLocationInstance handles one create directive.
//
// A directive naming a template creates the instance immediately. A directive
// carrying a prompt generates a candidate, validates it, and parks it for
// moderation; the caller receives a pending marker and no instance. AI
// candidates require a requesting user for provenance. Any error means
// nothing was created or persisted.
func (g *Gate) CreateLocationInstance(ctx context.Context, guildID string, directive Directive, userID string) (CreateResult, error) {
	if strings.TrimSpace(directive.TemplateID) != "" {
		instance := g.worlds.CreateInstance(guildID, directive.TemplateID, directive.Overrides)
		if instance == nil {
			return CreateResult{}, apperrors.New(apperrors.CodeLocationTemplateNotFound, "template not found").
				WithMetadata(map[string]string{"TemplateID": directive.TemplateID})
		}
		return CreateResult{Instance: instance}, nil
	}

	if strings.TrimSpace(directive.Prompt) == "" {
		return CreateResult{}, apperrors.New(apperrors.CodeGenerationInvalidPayload, "directive names neither a template nor a prompt")
	}
	if strings.TrimSpace(userID) == "" {
		return CreateResult{}, apperrors.New(apperrors.CodeModerationEmptyUserID, "ai-generated content requires a requesting user")
	}
	if g.generator == nil {
		return CreateResult{}, apperrors.New(apperrors.CodeGenerationFailed, "no generator configured")
	}

	payload, err := g.generator.GenerateLocation(ctx, guildID, directive.Prompt)
	if err != nil {
		g.emit(ctx, guildID, telemetry.KindGenerationFailed, map[string]string{"stage": "generate"})
		return CreateResult{}, apperrors.Wrap(apperrors.CodeGenerationFailed, "generate location candidate", err)
	}

	validation := g.validator.ValidatePayload(guildID, payload)
	if !validation.OK() {
		g.emit(ctx, guildID, telemetry.KindGenerationFailed, map[string]string{
			"stage":  "validate",
			"issues": strings.Join(validation.Issues, "; "),
		})
		return CreateResult{}, apperrors.New(apperrors.CodeGenerationInvalidPayload, "candidate failed validation").
			WithMetadata(map[string]string{"Issues": strings.Join(validation.Issues, "; ")})
	}
	if validation.Status == schemaval.StatusRequiresReview {
		log.Printf("world: candidate for guild %s flagged for review: %s", guildID, strings.Join(validation.Issues, "; "))
	}

	request, err := moderation.Create(moderation.CreateInput{
		GuildID:     guildID,
		UserID:      userID,
		ContentType: moderation.ContentTypeLocation,
		Payload:     string(payload),
	}, g.clock, g.idGenerator)
	if err != nil {
		return CreateResult{}, apperrors.Wrap(apperrors.CodeGenerationFailed, "create moderation request", err)
	}

	if err := g.store.PutPendingRequest(ctx, requestToRecord(request)); err != nil {
		return CreateResult{}, apperrors.Wrap(apperrors.CodeGenerationFailed, "persist moderation request", err)
	}
	g.appendProvenance(ctx, request.GuildID, request.UserID, "generated", request.ID, request.Payload)
	g.emit(ctx, guildID, telemetry.KindModerationSubmitted, map[string]string{
		"request_id": request.ID,
		"validation": string(validation.Status),
	})

	return CreateResult{Pending: &request}, nil
}

// ActivateFromModeratedData builds a live instance from approved candidate
// data, bypassing generation and validation. A provenance entry records who
// the content was generated for.
func (g *Gate) ActivateFromModeratedData(ctx context.Context, guildID string, payload []byte, userID string) (*location.Instance, error) {
	candidate, err := schemaval.Decode(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeActivationFailed, "decode approved candidate", err)
	}

	name, err := i18n.NewText(candidate.Name)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeActivationFailed, "candidate name locales", err)
	}
	description, err := i18n.NewText(candidate.Description)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeActivationFailed, "candidate description locales", err)
	}

	overrides := location.Overrides{
		Name:         name,
		Description:  description,
		Exits:        candidate.Exits,
		InitialState: candidate.StateVariables,
	}

	var instance *location.Instance
	if candidate.TemplateID != "" {
		if _, ok := g.worlds.Template(guildID, candidate.TemplateID); ok {
			instance = g.worlds.CreateInstance(guildID, candidate.TemplateID, overrides)
		}
	}
	if instance == nil {
		// Template-less or dangling-template candidates become standalone
		// instances.
		instanceID, err := g.idGenerator()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeActivationFailed, "generate instance id", err)
		}
		createdAt := g.clock().UTC()
		built := location.Instance{
			ID:             instanceID,
			GuildID:        guildID,
			TemplateID:     candidate.TemplateID,
			Name:           name,
			Description:    description,
			Exits:          candidate.Exits,
			StateVariables: candidate.StateVariables,
			IsActive:       true,
			CreatedAt:      createdAt,
			UpdatedAt:      createdAt,
		}
		g.worlds.AddInstance(built)
		instance = &built
	}

	g.appendProvenance(ctx, guildID, userID, "activated", "", string(payload))
	return instance, nil
}

// Review applies a GM decision to a pending request. Approval activates the
// candidate; an activation error parks the request as activation_failed with
// its data retained. Rejection keeps the request for audit.
func (g *Gate) Review(ctx context.Context, requestID string, input moderation.ReviewInput) (moderation.Request, *location.Instance, error) {
	record, err := g.store.GetPendingRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return moderation.Request{}, nil, apperrors.New(apperrors.CodeNotFound, "moderation request not found").
				WithMetadata(map[string]string{"RequestID": requestID})
		}
		return moderation.Request{}, nil, apperrors.Wrap(apperrors.CodeUnknown, "load moderation request", err)
	}
	request := recordToRequest(record)

	input, err = moderation.NormalizeReviewInput(input)
	if err != nil {
		return moderation.Request{}, nil, apperrors.Wrap(apperrors.CodeModerationInvalidDecision, "review moderation request", err)
	}

	// Edited payloads re-enter validation; a GM edit must not smuggle in a
	// malformed candidate.
	if input.Decision == moderation.DecisionApproveEdited {
		validation := g.validator.ValidatePayload(request.GuildID, []byte(input.EditedPayload))
		if !validation.OK() {
			return moderation.Request{}, nil, apperrors.New(apperrors.CodeGenerationInvalidPayload, "edited candidate failed validation").
				WithMetadata(map[string]string{"Issues": strings.Join(validation.Issues, "; ")})
		}
	}

	reviewed, err := moderation.Review(request, input, g.clock)
	if err != nil {
		switch {
		case errors.Is(err, moderation.ErrNotPending):
			return moderation.Request{}, nil, apperrors.Wrap(apperrors.CodeModerationNotPending, "review moderation request", err)
		case errors.Is(err, moderation.ErrInvalidDecision), errors.Is(err, moderation.ErrMissingEditedPayload):
			return moderation.Request{}, nil, apperrors.Wrap(apperrors.CodeModerationInvalidDecision, "review moderation request", err)
		default:
			return moderation.Request{}, nil, apperrors.Wrap(apperrors.CodeModerationInvalidTransition, "review moderation request", err)
		}
	}

	g.emit(ctx, reviewed.GuildID, telemetry.KindModerationReviewed, map[string]string{
		"request_id": reviewed.ID,
		"decision":   string(input.Decision),
		"status":     string(reviewed.Status),
	})

	if reviewed.Status == moderation.StatusRejected {
		if err := g.store.PutPendingRequest(ctx, requestToRecord(reviewed)); err != nil {
			return moderation.Request{}, nil, apperrors.Wrap(apperrors.CodeUnknown, "persist rejected request", err)
		}
		return reviewed, nil, nil
	}

	instance, err := g.ActivateFromModeratedData(ctx, reviewed.GuildID, []byte(reviewed.Payload), reviewed.UserID)
	if err != nil {
		failed, markErr := moderation.MarkActivationFailed(reviewed, g.clock)
		if markErr != nil {
			return moderation.Request{}, nil, apperrors.Wrap(apperrors.CodeActivationFailed, "mark activation failed", markErr)
		}
		if putErr := g.store.PutPendingRequest(ctx, requestToRecord(failed)); putErr != nil {
			log.Printf("world: persist activation_failed request %s: %v", failed.ID, putErr)
		}
		g.emit(ctx, failed.GuildID, telemetry.KindActivationFailed, map[string]string{"request_id": failed.ID})
		return failed, nil, apperrors.Wrap(apperrors.CodeActivationFailed, "activate approved candidate", err)
	}

	// The approved candidate is live; the request has served its purpose.
	if err := g.store.DeletePendingRequest(ctx, reviewed.ID); err != nil {
		log.Printf("world: delete activated request %s: %v", reviewed.ID, err)
	}
	return reviewed, instance, nil
}

// ListPending returns a guild's open review queue.
func (g *Gate) ListPending(ctx context.Context, guildID string) ([]moderation.Request, error) {
	records, err := g.store.ListPendingRequests(ctx, guildID, string(moderation.StatusPending))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "list pending requests", err)
	}
	requests := make([]moderation.Request, 0, len(records))
	for _, record := range records {
		requests = append(requests, recordToRequest(record))
	}
	return requests, nil
}

func (g *Gate) appendProvenance(ctx context.Context, guildID, userID, action, requestID, payload string) {
	entryID, err := g.idGenerator()
	if err != nil {
		log.Printf("world: generate provenance id: %v", err)
		return
	}
	record := storage.ProvenanceRecord{
		ID:          entryID,
		GuildID:     guildID,
		UserID:      userID,
		ContentType: string(moderation.ContentTypeLocation),
		Action:      action,
		RequestID:   requestID,
		Payload:     payload,
		CreatedAt:   g.clock().UTC(),
	}
	if err := g.store.AppendProvenance(ctx, record); err != nil {
		log.Printf("world: append provenance for guild %s: %v", guildID, err)
	}
}

func (g *Gate) emit(ctx context.Context, guildID, kind string, attrs map[string]string) {
	if err := g.events.Emit(ctx, storage.TelemetryEvent{GuildID: guildID, Kind: kind, Attrs: attrs}); err != nil {
		log.Printf("world: emit %s for guild %s: %v", kind, guildID, err)
	}
}

func requestToRecord(request moderation.Request) storage.PendingRequestRecord {
	return storage.PendingRequestRecord{
		ID:             request.ID,
		GuildID:        request.GuildID,
		UserID:         request.UserID,
		ContentType:    string(request.ContentType),
		Payload:        request.Payload,
		Status:         string(request.Status),
		ModeratorID:    request.ModeratorID,
		ModeratorNotes: request.ModeratorNotes,
		CreatedAt:      request.CreatedAt,
		UpdatedAt:      request.UpdatedAt,
		ReviewedAt:     request.ReviewedAt,
	}
}

func recordToRequest(record storage.PendingRequestRecord) moderation.Request {
	return moderation.Request{
		ID:             record.ID,
		GuildID:        record.GuildID,
		UserID:         record.UserID,
		ContentType:    moderation.ContentType(record.ContentType),
		Payload:        record.Payload,
		Status:         moderation.Status(record.Status),
		ModeratorID:    record.ModeratorID,
		ModeratorNotes: record.ModeratorNotes,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
		ReviewedAt:     record.ReviewedAt,
	}
}
