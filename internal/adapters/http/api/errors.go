package api

import (
	"errors"
	"net/http"

	"github.com/okian/regatta/internal/adapters/repository"
	"github.com/okian/regatta/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrDuplicateRequest = errors.New("request already processed")
)

// statusFor maps an error to an HTTP status and a response code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrEmptyName),
		errors.Is(err, model.ErrUnknownStatus),
		errors.Is(err, model.ErrDuplicateSkipper),
		errors.Is(err, model.ErrNotAbsence):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
