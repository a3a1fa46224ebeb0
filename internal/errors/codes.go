// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Location errors
	CodeLocationEmptyGuildID     Code = "LOCATION_EMPTY_GUILD_ID"
	CodeLocationEmptyID          Code = "LOCATION_EMPTY_ID"
	CodeLocationInvalidLocale    Code = "LOCATION_INVALID_LOCALE"
	CodeLocationTemplateNotFound Code = "LOCATION_TEMPLATE_NOT_FOUND"
	CodeLocationInstanceNotFound Code = "LOCATION_INSTANCE_NOT_FOUND"

	// Transit errors
	CodeTransitUnknownEntityType Code = "TRANSIT_UNKNOWN_ENTITY_TYPE"
	CodeTransitUpdaterMissing    Code = "TRANSIT_UPDATER_MISSING"
	CodeTransitMoveFailed        Code = "TRANSIT_MOVE_FAILED"

	// Moderation errors
	CodeModerationEmptyUserID       Code = "MODERATION_EMPTY_USER_ID"
	CodeModerationInvalidDecision   Code = "MODERATION_INVALID_DECISION"
	CodeModerationInvalidTransition Code = "MODERATION_INVALID_STATUS_TRANSITION"
	CodeModerationNotPending        Code = "MODERATION_REQUEST_NOT_PENDING"

	// Generation errors
	CodeGenerationFailed         Code = "GENERATION_FAILED"
	CodeGenerationInvalidPayload Code = "GENERATION_INVALID_PAYLOAD"
	CodeActivationFailed         Code = "ACTIVATION_FAILED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeLocationEmptyGuildID,
		CodeLocationEmptyID,
		CodeLocationInvalidLocale,
		CodeModerationEmptyUserID,
		CodeModerationInvalidDecision,
		CodeGenerationInvalidPayload:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeModerationInvalidTransition,
		CodeModerationNotPending,
		CodeTransitUpdaterMissing,
		CodeTransitMoveFailed,
		CodeActivationFailed:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeLocationTemplateNotFound,
		CodeLocationInstanceNotFound,
		CodeTransitUnknownEntityType:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
