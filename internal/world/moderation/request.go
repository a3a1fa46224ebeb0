// Package moderation models the human checkpoint between AI-generated
// candidate content and its activation in the live world.
//
// Requests move one way: pending is the only reviewable state, approved and
// approved-with-edits lead to activation, and rejected requests are retained
// for audit. A failed activation parks the request for manual recovery
// instead of discarding the approved data.
package moderation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emberhollow/worldcore/internal/platform/id"
)

// ContentType identifies what kind of world content a request carries.
type ContentType string

const (
	// ContentTypeLocation is an AI-authored location instance candidate.
	ContentTypeLocation ContentType = "location"
)

// Status represents request lifecycle state.
type Status string

const (
	// StatusPending indicates the request awaits GM review.
	StatusPending Status = "pending"
	// StatusApproved indicates a GM accepted the candidate as generated.
	StatusApproved Status = "approved"
	// StatusApprovedEdited indicates a GM accepted the candidate after edits.
	StatusApprovedEdited Status = "approved_edited"
	// StatusRejected indicates a GM rejected the candidate. Terminal.
	StatusRejected Status = "rejected"
	// StatusActivationFailed indicates activation of an approved candidate
	// raised an error; the data is kept for manual recovery.
	StatusActivationFailed Status = "activation_failed"
)

// Decision represents a review action taken by a GM.
type Decision string

const (
	// DecisionApprove accepts the candidate unchanged.
	DecisionApprove Decision = "approve"
	// DecisionApproveEdited accepts the candidate with GM edits.
	DecisionApproveEdited Decision = "approve_edited"
	// DecisionReject refuses the candidate.
	DecisionReject Decision = "reject"
)

var (
	// ErrEmptyID indicates an ID is required.
	ErrEmptyID = errors.New("id is required")
	// ErrEmptyGuildID indicates a guild ID is required.
	ErrEmptyGuildID = errors.New("guild id is required")
	// ErrEmptyUserID indicates a requesting user ID is required.
	ErrEmptyUserID = errors.New("requesting user id is required")
	// ErrEmptyPayload indicates candidate data is required.
	ErrEmptyPayload = errors.New("candidate payload is required")
	// ErrInvalidContentType indicates an unsupported content type.
	ErrInvalidContentType = errors.New("content type is invalid")
	// ErrEmptyModeratorID indicates a moderator ID is required.
	ErrEmptyModeratorID = errors.New("moderator id is required")
	// ErrInvalidDecision indicates the review decision is unsupported.
	ErrInvalidDecision = errors.New("decision is invalid")
	// ErrMissingEditedPayload indicates approve-with-edits needs edited data.
	ErrMissingEditedPayload = errors.New("edited payload is required for approve with edits")
	// ErrNotPending indicates reviewed requests are immutable.
	ErrNotPending = errors.New("moderation request is not pending")
	// ErrNotApproved indicates only approved requests can fail activation.
	ErrNotApproved = errors.New("moderation request is not approved")
)

// Request stores one candidate awaiting or past GM review.
type Request struct {
	ID      string
	GuildID string
	// UserID is the user whose directive produced the candidate. AI content
	// always carries this provenance.
	UserID string

	ContentType ContentType
	// Payload is the serialized candidate data as it should be activated.
	Payload string

	Status Status

	ModeratorID    string
	ModeratorNotes string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ReviewedAt *time.Time
}

// CreateInput contains the fields required to park a candidate for review.
type CreateInput struct {
	GuildID     string
	UserID      string
	ContentType ContentType
	Payload     string
}

// ReviewInput contains the fields required to review one pending request.
type ReviewInput struct {
	ModeratorID string
	Decision    Decision
	Notes       string
	// EditedPayload replaces the candidate payload for DecisionApproveEdited.
	EditedPayload string
}

// NormalizeCreateInput canonicalizes and validates request creation input.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.GuildID = strings.TrimSpace(input.GuildID)
	if input.GuildID == "" {
		return CreateInput{}, ErrEmptyGuildID
	}

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return CreateInput{}, ErrEmptyUserID
	}

	if input.ContentType != ContentTypeLocation {
		return CreateInput{}, ErrInvalidContentType
	}

	if strings.TrimSpace(input.Payload) == "" {
		return CreateInput{}, ErrEmptyPayload
	}

	return input, nil
}

// NormalizeReviewInput canonicalizes and validates review input.
func NormalizeReviewInput(input ReviewInput) (ReviewInput, error) {
	input.ModeratorID = strings.TrimSpace(input.ModeratorID)
	if input.ModeratorID == "" {
		return ReviewInput{}, ErrEmptyModeratorID
	}

	input.Decision = Decision(strings.ToLower(strings.TrimSpace(string(input.Decision))))
	switch input.Decision {
	case DecisionApprove, DecisionReject:
	case DecisionApproveEdited:
		if strings.TrimSpace(input.EditedPayload) == "" {
			return ReviewInput{}, ErrMissingEditedPayload
		}
	default:
		return ReviewInput{}, ErrInvalidDecision
	}

	input.Notes = strings.TrimSpace(input.Notes)
	return input, nil
}

// Create constructs a normalized pending request.
func Create(input CreateInput, now func() time.Time, idGenerator func() (string, error)) (Request, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateInput(input)
	if err != nil {
		return Request{}, err
	}

	requestID, err := idGenerator()
	if err != nil {
		return Request{}, fmt.Errorf("generate moderation request id: %w", err)
	}

	createdAt := now().UTC()
	return Request{
		ID:          requestID,
		GuildID:     normalized.GuildID,
		UserID:      normalized.UserID,
		ContentType: normalized.ContentType,
		Payload:     normalized.Payload,
		Status:      StatusPending,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// Review applies one GM decision to a pending request, returning the new
// request state or a transition-rejected error.
func Review(request Request, input ReviewInput, now func() time.Time) (Request, error) {
	if now == nil {
		now = time.Now
	}

	normalized, err := NormalizeReviewInput(input)
	if err != nil {
		return Request{}, err
	}

	request.ID = strings.TrimSpace(request.ID)
	if request.ID == "" {
		return Request{}, ErrEmptyID
	}
	if request.Status != StatusPending {
		return Request{}, ErrNotPending
	}

	reviewedAt := now().UTC()
	request.ModeratorID = normalized.ModeratorID
	request.ModeratorNotes = normalized.Notes
	request.ReviewedAt = &reviewedAt
	request.UpdatedAt = reviewedAt

	switch normalized.Decision {
	case DecisionApprove:
		request.Status = StatusApproved
	case DecisionApproveEdited:
		request.Status = StatusApprovedEdited
		request.Payload = normalized.EditedPayload
	case DecisionReject:
		request.Status = StatusRejected
	}
	return request, nil
}

// MarkActivationFailed records that activating an approved request raised an
// error. The payload is preserved for manual recovery.
func MarkActivationFailed(request Request, now func() time.Time) (Request, error) {
	if now == nil {
		now = time.Now
	}

	if request.Status != StatusApproved && request.Status != StatusApprovedEdited {
		return Request{}, ErrNotApproved
	}

	request.Status = StatusActivationFailed
	request.UpdatedAt = now().UTC()
	return request, nil
}

// Terminal reports whether no further transition can leave the status.
func (s Status) Terminal() bool {
	return s == StatusRejected
}
