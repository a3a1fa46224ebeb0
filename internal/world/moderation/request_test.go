package moderation

import (
	"errors"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func staticID(value string) func() (string, error) {
	return func() (string, error) { return value, nil }
}

func TestCreate(t *testing.T) {
	createdAt := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	request, err := Create(CreateInput{
		GuildID:     " guild-1 ",
		UserID:      " user-9 ",
		ContentType: ContentTypeLocation,
		Payload:     `{"name":"Sunken Crypt"}`,
	}, fixedClock(createdAt), staticID("req-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if request.ID != "req-1" {
		t.Fatalf("ID = %q", request.ID)
	}
	if request.GuildID != "guild-1" || request.UserID != "user-9" {
		t.Fatalf("ids not trimmed: %q %q", request.GuildID, request.UserID)
	}
	if request.Status != StatusPending {
		t.Fatalf("Status = %q, want pending", request.Status)
	}
	if !request.CreatedAt.Equal(createdAt) || !request.UpdatedAt.Equal(createdAt) {
		t.Fatal("expected created and updated timestamps from clock")
	}
	if request.ReviewedAt != nil {
		t.Fatal("expected no review timestamp at creation")
	}
}

func TestCreateValidation(t *testing.T) {
	valid := CreateInput{
		GuildID:     "guild-1",
		UserID:      "user-9",
		ContentType: ContentTypeLocation,
		Payload:     "{}",
	}

	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		wantErr error
	}{
		{name: "missing guild", mutate: func(in *CreateInput) { in.GuildID = " " }, wantErr: ErrEmptyGuildID},
		{name: "missing user", mutate: func(in *CreateInput) { in.UserID = "" }, wantErr: ErrEmptyUserID},
		{name: "unknown content type", mutate: func(in *CreateInput) { in.ContentType = "spell" }, wantErr: ErrInvalidContentType},
		{name: "empty payload", mutate: func(in *CreateInput) { in.Payload = "  " }, wantErr: ErrEmptyPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			if _, err := Create(input, nil, nil); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReviewDecisions(t *testing.T) {
	reviewedAt := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)
	pending := Request{
		ID:      "req-1",
		GuildID: "guild-1",
		UserID:  "user-9",
		Status:  StatusPending,
		Payload: `{"name":"Sunken Crypt"}`,
	}

	tests := []struct {
		name        string
		input       ReviewInput
		wantStatus  Status
		wantPayload string
	}{
		{
			name:        "approve",
			input:       ReviewInput{ModeratorID: "gm-1", Decision: DecisionApprove, Notes: " fine as is "},
			wantStatus:  StatusApproved,
			wantPayload: `{"name":"Sunken Crypt"}`,
		},
		{
			name:        "approve with edits",
			input:       ReviewInput{ModeratorID: "gm-1", Decision: DecisionApproveEdited, EditedPayload: `{"name":"Drowned Crypt"}`},
			wantStatus:  StatusApprovedEdited,
			wantPayload: `{"name":"Drowned Crypt"}`,
		},
		{
			name:        "reject",
			input:       ReviewInput{ModeratorID: "gm-1", Decision: DecisionReject, Notes: "tone"},
			wantStatus:  StatusRejected,
			wantPayload: `{"name":"Sunken Crypt"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviewed, err := Review(pending, tt.input, fixedClock(reviewedAt))
			if err != nil {
				t.Fatalf("review: %v", err)
			}
			if reviewed.Status != tt.wantStatus {
				t.Fatalf("Status = %q, want %q", reviewed.Status, tt.wantStatus)
			}
			if reviewed.Payload != tt.wantPayload {
				t.Fatalf("Payload = %q, want %q", reviewed.Payload, tt.wantPayload)
			}
			if reviewed.ModeratorID != "gm-1" {
				t.Fatalf("ModeratorID = %q", reviewed.ModeratorID)
			}
			if reviewed.ReviewedAt == nil || !reviewed.ReviewedAt.Equal(reviewedAt) {
				t.Fatalf("ReviewedAt = %v", reviewed.ReviewedAt)
			}
			if !reviewed.UpdatedAt.Equal(reviewedAt) {
				t.Fatalf("UpdatedAt = %v", reviewed.UpdatedAt)
			}
		})
	}
}

func TestReviewValidation(t *testing.T) {
	pending := Request{ID: "req-1", GuildID: "guild-1", Status: StatusPending}

	tests := []struct {
		name    string
		request Request
		input   ReviewInput
		wantErr error
	}{
		{
			name:    "missing moderator",
			request: pending,
			input:   ReviewInput{Decision: DecisionApprove},
			wantErr: ErrEmptyModeratorID,
		},
		{
			name:    "unknown decision",
			request: pending,
			input:   ReviewInput{ModeratorID: "gm-1", Decision: "maybe"},
			wantErr: ErrInvalidDecision,
		},
		{
			name:    "edits without payload",
			request: pending,
			input:   ReviewInput{ModeratorID: "gm-1", Decision: DecisionApproveEdited},
			wantErr: ErrMissingEditedPayload,
		},
		{
			name:    "missing request id",
			request: Request{Status: StatusPending},
			input:   ReviewInput{ModeratorID: "gm-1", Decision: DecisionApprove},
			wantErr: ErrEmptyID,
		},
		{
			name:    "already approved",
			request: Request{ID: "req-1", Status: StatusApproved},
			input:   ReviewInput{ModeratorID: "gm-1", Decision: DecisionReject},
			wantErr: ErrNotPending,
		},
		{
			name:    "already rejected",
			request: Request{ID: "req-1", Status: StatusRejected},
			input:   ReviewInput{ModeratorID: "gm-1", Decision: DecisionApprove},
			wantErr: ErrNotPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Review(tt.request, tt.input, nil); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Review() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReviewDecisionCaseInsensitive(t *testing.T) {
	pending := Request{ID: "req-1", Status: StatusPending}
	reviewed, err := Review(pending, ReviewInput{ModeratorID: "gm-1", Decision: " APPROVE "}, nil)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != StatusApproved {
		t.Fatalf("Status = %q, want approved", reviewed.Status)
	}
}

func TestMarkActivationFailed(t *testing.T) {
	failedAt := time.Date(2026, time.March, 3, 8, 0, 0, 0, time.UTC)

	for _, status := range []Status{StatusApproved, StatusApprovedEdited} {
		t.Run(string(status), func(t *testing.T) {
			failed, err := MarkActivationFailed(Request{ID: "req-1", Status: status, Payload: "{}"}, fixedClock(failedAt))
			if err != nil {
				t.Fatalf("mark: %v", err)
			}
			if failed.Status != StatusActivationFailed {
				t.Fatalf("Status = %q", failed.Status)
			}
			if failed.Payload != "{}" {
				t.Fatal("expected payload preserved for manual recovery")
			}
			if !failed.UpdatedAt.Equal(failedAt) {
				t.Fatalf("UpdatedAt = %v", failed.UpdatedAt)
			}
		})
	}

	for _, status := range []Status{StatusPending, StatusRejected, StatusActivationFailed} {
		t.Run("invalid from "+string(status), func(t *testing.T) {
			if _, err := MarkActivationFailed(Request{ID: "req-1", Status: status}, nil); !errors.Is(err, ErrNotApproved) {
				t.Fatalf("MarkActivationFailed() error = %v, want ErrNotApproved", err)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{status: StatusPending, want: false},
		{status: StatusApproved, want: false},
		{status: StatusApprovedEdited, want: false},
		{status: StatusRejected, want: true},
		{status: StatusActivationFailed, want: false},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Fatalf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
