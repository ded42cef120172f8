package shared

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/daftar-erp/daftar/internal/platform/httpx"
)

// Respond maps master-data errors onto the shared problem responses.
func Respond(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, err))
	case errors.Is(err, ErrDuplicate):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrDuplicate, err))
	case errors.Is(err, ErrValidation), errors.Is(err, ErrRequiredField), errors.Is(err, ErrInvalidID):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
	case errors.Is(err, ErrSystemProtected), errors.Is(err, ErrInUse):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrConflict, err))
	default:
		httpx.RespondError(w, err)
	}
}
