package assessment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinels matched by the concrete error types through errors.Is.
var (
	ErrIncompleteInput    = errors.New("incomplete questionnaire")
	ErrInvalidAnswer      = errors.New("invalid answer")
	ErrInvalidDemographic = errors.New("invalid demographics")
)

// IncompleteInputError is returned by Score when a constitution question
// has no answer.
type IncompleteInputError struct {
	Missing []int
}

func (e *IncompleteInputError) Error() string {
	ids := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		ids[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("incomplete questionnaire: missing answers for question(s) %s", strings.Join(ids, ", "))
}

func (e *IncompleteInputError) Is(target error) bool { return target == ErrIncompleteInput }

// InvalidAnswerError reports an answer that does not fit its question.
type InvalidAnswerError struct {
	QuestionID int
	Value      string
	Reason     string
}

func (e *InvalidAnswerError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid answer for question %d: %q: %s", e.QuestionID, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid answer for question %d: %s", e.QuestionID, e.Reason)
}

func (e *InvalidAnswerError) Is(target error) bool { return target == ErrInvalidAnswer }

// InvalidDemographicError reports an unusable demographic field.
type InvalidDemographicError struct {
	Field  string
	Reason string
}

func (e *InvalidDemographicError) Error() string {
	return fmt.Sprintf("invalid demographics: %s %s", e.Field, e.Reason)
}

func (e *InvalidDemographicError) Is(target error) bool { return target == ErrInvalidDemographic }

// IsValidationError reports whether err came from input validation in this
// package.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrIncompleteInput) ||
		errors.Is(err, ErrInvalidAnswer) ||
		errors.Is(err, ErrInvalidDemographic)
}

// ErrorKind names the validation failure carried by err for metrics and
// logs: "incomplete_input", "invalid_answer", "invalid_demographic", "ok"
// for nil, or "internal" for anything else.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrIncompleteInput):
		return "incomplete_input"
	case errors.Is(err, ErrInvalidAnswer):
		return "invalid_answer"
	case errors.Is(err, ErrInvalidDemographic):
		return "invalid_demographic"
	default:
		return "internal"
	}
}
