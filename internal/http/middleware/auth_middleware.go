package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/domain/events"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
)

type UserRepository interface {
	FindActiveBySub(sub string) (*entity.User, error)
}

// SessionTerminator severs the live realtime connections of a user.
type SessionTerminator interface {
	TerminateUserConnections(ctx context.Context, userID int64, evt events.SocketEvent)
}

type AuthMiddlewareConfig struct {
	UserRepo UserRepository

	// Sessions, when set, is used to kick disabled accounts off their
	// websocket connections the moment they are detected.
	Sessions SessionTerminator
}

// NewAuthMiddleware resolves the requester identity from the bearer
// token and stores it in the request context. Requests without an
// Authorization header proceed as the guest principal (a nil user);
// whether a guest may do anything is the access gate's decision, not
// this middleware's.
func NewAuthMiddleware(cfg *AuthMiddlewareConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				c.Set(utils.ContextKeyUser, (*entity.User)(nil))
				return next(c)
			}

			tokenData, err := utils.ParseTokenDataCtx(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			user, err := cfg.UserRepo.FindActiveBySub(tokenData.Sub)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, apierror.InternalServerError)
			}

			if user == nil {
				// User deleted in DB but still has a valid token???
				return c.JSON(http.StatusUnauthorized, apierror.UnauthorizedError)
			}

			if user.Suspended || !user.Active {
				if cfg.Sessions != nil {
					go cfg.Sessions.TerminateUserConnections(context.Background(), user.ID, &events.ConnectionKill{})
				}
				return c.JSON(http.StatusForbidden, apierror.AccountDisabledError)
			}

			c.Set(utils.ContextKeyUser, user)
			return next(c)
		}
	}
}
