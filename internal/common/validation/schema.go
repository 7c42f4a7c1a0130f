// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const preferencesSchema = `{
	"type": ["object", "null"],
	"properties": {
		"max_age_diff": {"type": ["integer", "null"]}
	}
}`

// ProfileSchema describes one dating profile as accepted by every adapter.
// Every field is optional; defaults are filled in later.
var ProfileSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"name":        {"type": ["string", "null"]},
		"age":         {"type": ["integer", "null"], "minimum": 0},
		"interests":   {"type": ["array", "null"], "items": {"type": "string"}},
		"location":    {"type": ["string", "null"]},
		"preferences": ` + preferencesSchema + `
	}
}`

// MatchRequestSchema describes the flat two-profile body of the REST endpoint.
var MatchRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"name1":        {"type": ["string", "null"]},
		"age1":         {"type": ["integer", "null"], "minimum": 0},
		"interests1":   {"type": ["array", "null"], "items": {"type": "string"}},
		"location1":    {"type": ["string", "null"]},
		"preferences1": ` + preferencesSchema + `,
		"name2":        {"type": ["string", "null"]},
		"age2":         {"type": ["integer", "null"], "minimum": 0},
		"interests2":   {"type": ["array", "null"], "items": {"type": "string"}},
		"location2":    {"type": ["string", "null"]},
		"preferences2": ` + preferencesSchema + `
	}
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator holds a compiled JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles schemaJSON.
func NewValidator(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// MustValidator is NewValidator for schemas known at compile time.
func MustValidator(schemaJSON string) *Validator {
	v, err := NewValidator(schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

var (
	profileValidator      = MustValidator(ProfileSchema)
	matchRequestValidator = MustValidator(MatchRequestSchema)
)

// ValidateBytes validates a raw JSON document.
func (v *Validator) ValidateBytes(document []byte) *ValidationResult {
	return v.validate(gojsonschema.NewBytesLoader(document))
}

// ValidateDocument validates an already decoded value (maps, slices, structs).
func (v *Validator) ValidateDocument(document interface{}) *ValidationResult {
	return v.validate(gojsonschema.NewGoLoader(document))
}

func (v *Validator) validate(loader gojsonschema.JSONLoader) *ValidationResult {
	result, err := v.schema.Validate(loader)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_JSON",
			}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return out
}

// ValidateProfile validates a single profile document.
func ValidateProfile(document []byte) *ValidationResult {
	return profileValidator.ValidateBytes(document)
}

// ValidateProfileDocument validates a decoded profile, as found inside job variables.
func ValidateProfileDocument(document interface{}) *ValidationResult {
	return profileValidator.ValidateDocument(document)
}

// ValidateMatchRequest validates the flat REST body.
func ValidateMatchRequest(document []byte) *ValidationResult {
	return matchRequestValidator.ValidateBytes(document)
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return messages
}

// Error joins every message, for wrapping into a validation StandardError.
func (vr *ValidationResult) Error() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
