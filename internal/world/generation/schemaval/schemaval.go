// Package schemaval validates AI-generated location candidates before they
// reach moderation.
//
// Validation has two layers: a JSON Schema pass over the raw payload, and a
// cross-reference pass against the guild's cached world. Schema violations
// fail the candidate outright; dangling references only flag it for closer
// review, since a GM may approve content pointing at locations that do not
// exist yet.
package schemaval

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/emberhollow/worldcore/internal/world/location"
)

//go:embed location_candidate.schema.json
var candidateSchema string

// Status classifies a validation outcome.
type Status string

const (
	// StatusSuccess means the candidate is well-formed and fully resolvable.
	StatusSuccess Status = "success"
	// StatusRequiresReview means the candidate is well-formed but carries
	// references a moderator should inspect.
	StatusRequiresReview Status = "requires_review"
	// StatusFailure means the candidate is malformed and must not proceed.
	StatusFailure Status = "failure"
)

// Result reports a validation outcome with human-readable issues.
type Result struct {
	Status Status
	Issues []string
}

// OK reports whether the candidate may proceed to moderation.
func (r Result) OK() bool {
	return r.Status != StatusFailure
}

// Candidate is the decoded shape of a location candidate payload.
type Candidate struct {
	TemplateID       string            `json:"template_id,omitempty"`
	Name             map[string]string `json:"name"`
	Description      map[string]string `json:"description,omitempty"`
	Exits            map[string]string `json:"exits,omitempty"`
	StateVariables   map[string]any    `json:"state_variables,omitempty"`
	Properties       map[string]any    `json:"properties,omitempty"`
	AvailableActions []string          `json:"available_actions,omitempty"`
	ItemIDs          []string          `json:"item_ids,omitempty"`
}

// Decode parses a candidate payload without validating it.
func Decode(payload []byte) (Candidate, error) {
	var candidate Candidate
	if err := json.Unmarshal(payload, &candidate); err != nil {
		return Candidate{}, fmt.Errorf("decode location candidate: %w", err)
	}
	return candidate, nil
}

// WorldResolver answers guild-scoped lookups for the cross-reference pass.
type WorldResolver interface {
	Template(guildID, templateID string) (location.Template, bool)
	Instance(guildID, instanceID string) (location.Instance, bool)
}

// Validator validates location candidate payloads.
type Validator struct {
	schema *jsonschema.Schema
	worlds WorldResolver
}

// New compiles the embedded candidate schema. The resolver may be nil, which
// skips the cross-reference pass.
func New(worlds WorldResolver) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("location_candidate.schema.json", strings.NewReader(candidateSchema)); err != nil {
		return nil, fmt.Errorf("add candidate schema resource: %w", err)
	}
	schema, err := compiler.Compile("location_candidate.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile candidate schema: %w", err)
	}
	return &Validator{schema: schema, worlds: worlds}, nil
}

// ValidatePayload validates one raw candidate payload for a guild.
func (v *Validator) ValidatePayload(guildID string, payload []byte) Result {
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Result{Status: StatusFailure, Issues: []string{fmt.Sprintf("payload is not valid JSON: %v", err)}}
	}
	if err := v.schema.Validate(decoded); err != nil {
		return Result{Status: StatusFailure, Issues: []string{err.Error()}}
	}

	candidate, err := Decode(payload)
	if err != nil {
		return Result{Status: StatusFailure, Issues: []string{err.Error()}}
	}

	issues := v.crossReference(guildID, candidate)
	if len(issues) > 0 {
		return Result{Status: StatusRequiresReview, Issues: issues}
	}
	return Result{Status: StatusSuccess}
}

// crossReference checks that ids named by the candidate resolve in the guild's
// cached world.
func (v *Validator) crossReference(guildID string, candidate Candidate) []string {
	if v.worlds == nil {
		return nil
	}

	var issues []string
	if candidate.TemplateID != "" {
		if _, ok := v.worlds.Template(guildID, candidate.TemplateID); !ok {
			issues = append(issues, fmt.Sprintf("template %q does not exist", candidate.TemplateID))
		}
	}

	directions := make([]string, 0, len(candidate.Exits))
	for direction := range candidate.Exits {
		directions = append(directions, direction)
	}
	sort.Strings(directions)
	for _, direction := range directions {
		target := candidate.Exits[direction]
		if _, ok := v.worlds.Instance(guildID, target); !ok {
			issues = append(issues, fmt.Sprintf("exit %q targets unknown instance %q", direction, target))
		}
	}
	return issues
}
