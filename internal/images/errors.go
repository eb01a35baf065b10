package images

import (
	"errors"
	"net/http"

	"github.com/kektor/gallery-images/internal/comments"
	"github.com/kektor/gallery-images/internal/storage"
	"github.com/kektor/gallery-images/internal/users"
	"github.com/kektor/gallery-images/pkg/scroll"
)

// Domain errors for image operations.
var (
	ErrNotFound       = errors.New("image not found")
	ErrDuplicate      = errors.New("image storage key already exists")
	ErrForbidden      = errors.New("image does not belong to user")
	ErrInvalidPayload = errors.New("invalid image payload")
	ErrMissingActor   = errors.New("acting user id required")
)

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
// UserNotFound and UsernameNotFound surface as 404 but indicate a
// referential gap with the identity service rather than a client mistake.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, users.ErrUsernameNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrMissingActor),
		errors.Is(err, scroll.ErrInvalidCursor),
		errors.Is(err, scroll.ErrInvalidTillDate):
		return http.StatusBadRequest
	case errors.Is(err, users.ErrUpstream),
		errors.Is(err, comments.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, storage.ErrUpload):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
