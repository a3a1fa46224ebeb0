package i18n

// Error codes must match the codes defined in internal/errors/codes.go.
const (
	CodeLocationEmptyGuildID        = "LOCATION_EMPTY_GUILD_ID"
	CodeLocationEmptyID             = "LOCATION_EMPTY_ID"
	CodeLocationInvalidLocale       = "LOCATION_INVALID_LOCALE"
	CodeLocationTemplateNotFound    = "LOCATION_TEMPLATE_NOT_FOUND"
	CodeLocationInstanceNotFound    = "LOCATION_INSTANCE_NOT_FOUND"
	CodeTransitUnknownEntityType    = "TRANSIT_UNKNOWN_ENTITY_TYPE"
	CodeTransitUpdaterMissing       = "TRANSIT_UPDATER_MISSING"
	CodeTransitMoveFailed           = "TRANSIT_MOVE_FAILED"
	CodeModerationEmptyUserID       = "MODERATION_EMPTY_USER_ID"
	CodeModerationInvalidDecision   = "MODERATION_INVALID_DECISION"
	CodeModerationInvalidTransition = "MODERATION_INVALID_STATUS_TRANSITION"
	CodeModerationNotPending        = "MODERATION_REQUEST_NOT_PENDING"
	CodeGenerationFailed            = "GENERATION_FAILED"
	CodeGenerationInvalidPayload    = "GENERATION_INVALID_PAYLOAD"
	CodeActivationFailed            = "ACTIVATION_FAILED"
	CodeNotFound                    = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Location errors
		CodeLocationEmptyGuildID:     "Guild ID is required",
		CodeLocationEmptyID:          "Location ID is required",
		CodeLocationInvalidLocale:    "Invalid locale specified for location content",
		CodeLocationTemplateNotFound: "The location template was not found",
		CodeLocationInstanceNotFound: "The location was not found",

		// Transit errors
		CodeTransitUnknownEntityType: "Unknown entity type: {{.EntityType}}",
		CodeTransitUpdaterMissing:    "No movement handler is registered for {{.EntityType}}",
		CodeTransitMoveFailed:        "The entity could not be moved",

		// Moderation errors
		CodeModerationEmptyUserID:       "AI-generated content requires a requesting user",
		CodeModerationInvalidDecision:   "Moderation decision must be approve, approve with edits, or reject",
		CodeModerationInvalidTransition: "Cannot transition request from {{.FromStatus}} to {{.ToStatus}}",
		CodeModerationNotPending:        "The moderation request has already been reviewed",

		// Generation errors
		CodeGenerationFailed:         "Content generation failed",
		CodeGenerationInvalidPayload: "Generated content failed validation",
		CodeActivationFailed:         "Approved content could not be activated",

		// Storage errors
		CodeNotFound: "The requested resource was not found",
	},
}
