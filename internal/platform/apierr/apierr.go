// Package apierr maps service and engine errors onto HTTP responses.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahara/ahara/internal/assessment"
	"github.com/ahara/ahara/internal/platform/db"
)

// ErrInvalid marks request validation failures raised by services.
var ErrInvalid = errors.New("invalid request")

type invalidError struct{ msg string }

func (e *invalidError) Error() string        { return e.msg }
func (e *invalidError) Is(target error) bool { return target == ErrInvalid }

// Invalidf builds a validation error that maps to 400.
func Invalidf(format string, args ...interface{}) error {
	return &invalidError{msg: fmt.Sprintf(format, args...)}
}

// Detail is the body of a 422 response.
type Detail struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
	// Missing lists unanswered question ids.
	Missing    []int  `json:"missing,omitempty"`
	QuestionID int    `json:"question_id,omitempty"`
	Value      string `json:"value,omitempty"`
	Field      string `json:"field,omitempty"`
}

// FromError picks the status for err:
//
//	400 ErrInvalid
//	404 db.ErrNotFound
//	422 assessment validation errors
//	500 anything else, with err kept as the internal cause for logging
func FromError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &he):
		return he
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case assessment.IsValidationError(err):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, detail(err))
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
}

func detail(err error) Detail {
	d := Detail{Message: err.Error(), Kind: assessment.ErrorKind(err)}
	var incomplete *assessment.IncompleteInputError
	var answer *assessment.InvalidAnswerError
	var demo *assessment.InvalidDemographicError
	switch {
	case errors.As(err, &incomplete):
		d.Missing = incomplete.Missing
	case errors.As(err, &answer):
		d.QuestionID = answer.QuestionID
		d.Value = answer.Value
	case errors.As(err, &demo):
		d.Field = demo.Field
	}
	return d
}
