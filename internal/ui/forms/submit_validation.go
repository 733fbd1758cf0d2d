package forms

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Its-donkey/circuit-console/internal/ui/model"
)

// DefaultMinTokenLength is the shortest provider token accepted before connecting.
const DefaultMinTokenLength = 10

// Field identifies which input a validation failure belongs to.
type Field string

const (
	FieldToken      Field = "token"
	FieldConnection Field = "connection"
	FieldCode       Field = "code"
	FieldMeasure    Field = "measure"
)

// ValidationError is a client-side guard failure. It never reaches the network.
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// MeasureMatch selects how circuit text is scanned for measurement operations.
type MeasureMatch string

const (
	// MatchSubstring accepts any occurrence of "measure", including "measure_all".
	MatchSubstring MeasureMatch = "substring"
	// MatchWord only accepts measure or measure_all as whole words.
	MatchWord MeasureMatch = "word"
)

var measureWord = regexp.MustCompile(`\bmeasure(_all)?\b`)

// ParseMeasureMatch maps a configuration value onto a MeasureMatch, defaulting to substring.
func ParseMeasureMatch(raw string) MeasureMatch {
	if MeasureMatch(strings.ToLower(strings.TrimSpace(raw))) == MatchWord {
		return MatchWord
	}
	return MatchSubstring
}

// HasMeasurement reports whether code contains a measurement marker.
func (m MeasureMatch) HasMeasurement(code string) bool {
	if m == MatchWord {
		return measureWord.MatchString(code)
	}
	return strings.Contains(code, "measure") || strings.Contains(code, "measure_all")
}

// ValidateToken checks the connect precondition. minLength of one or less only requires a non-empty token.
func ValidateToken(token string, minLength int) *ValidationError {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return &ValidationError{Field: FieldToken, Message: MsgTokenRequired}
	}
	if minLength > 1 && utf8.RuneCountInString(trimmed) < minLength {
		return &ValidationError{
			Field:   FieldToken,
			Message: fmt.Sprintf("IBM Quantum token must be at least %d characters.", minLength),
		}
	}
	return nil
}

// SubmitInput is what the page holds at the moment submit is clicked.
type SubmitInput struct {
	Code   string
	Target string
	Mode   model.Mode
	Shots  int
	Token  string
}

// ValidateSubmission applies the submit guards in order and stops at the first failure.
func ValidateSubmission(session model.Session, input SubmitInput, match MeasureMatch) *ValidationError {
	if !session.Connected {
		return &ValidationError{Field: FieldConnection, Message: MsgConnectFirst}
	}
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return &ValidationError{Field: FieldCode, Message: MsgCodeRequired}
	}
	if input.Mode.RequiresMeasurement() && !match.HasMeasurement(code) {
		return &ValidationError{Field: FieldMeasure, Message: MsgMeasurementRequired}
	}
	return nil
}

// BuildSubmissionRequest assembles the request for an input that passed validation.
func BuildSubmissionRequest(input SubmitInput) model.SubmissionRequest {
	return model.SubmissionRequest{
		Code:   strings.TrimSpace(input.Code),
		Target: input.Target,
		Mode:   input.Mode,
		Shots:  input.Shots,
		Token:  strings.TrimSpace(input.Token),
	}
}
