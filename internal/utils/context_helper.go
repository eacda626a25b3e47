package utils

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
)

const (
	ContextKeyUser = "user"
	ContextKeyNote = "note"
)

// ActorFromContext returns the authenticated user, or nil for a guest.
// The auth middleware always sets the key, so a missing key means the
// route was wired without it.
func ActorFromContext(c echo.Context) *entity.User {
	val := c.Get(ContextKeyUser)
	if val == nil {
		return nil
	}

	user, ok := val.(*entity.User)
	if !ok {
		log.Warnf("expected user type at %q context key, got %T", ContextKeyUser, val)
		return nil
	}
	return user
}

// GetUserFromContext is like ActorFromContext but rejects guests.
func GetUserFromContext(c echo.Context) (*entity.User, apierror.ErrorResponse) {
	user := ActorFromContext(c)
	if user.IsGuest() {
		return nil, apierror.UnauthorizedError
	}
	return user, nil
}

// GetNoteFromContext returns the note resolved by the access gate. The
// gate resolves exactly once per request; handlers must use this instead
// of resolving again.
func GetNoteFromContext(c echo.Context) (*entity.Note, apierror.ErrorResponse) {
	val := c.Get(ContextKeyNote)
	if val == nil {
		log.Errorf("route %s read a nil note from context; is the access gate installed?", c.Path())
		return nil, apierror.InternalServerError
	}

	note, ok := val.(*entity.Note)
	if !ok {
		log.Errorf("expected note type at %q context key, got %T", ContextKeyNote, val)
		return nil, apierror.InternalServerError
	}
	return note, nil
}
