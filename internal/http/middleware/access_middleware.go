package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/domain/policy"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
)

// ParamIDOrAlias is the path parameter the gate resolves notes from.
const ParamIDOrAlias = "idOrAlias"

// NoteResolver turns an id-or-alias path token into a note. It must be
// pure: no side effects, identical answers for repeated calls within a
// request absent concurrent mutation.
type NoteResolver interface {
	ResolveNote(idOrAlias string) (*entity.Note, apierror.ErrorResponse)
}

// AccessGate guards the note routes. Each gated route declares its
// required permission at startup via Require; at request time the gate
// looks the declaration up, resolves the note for non-CREATE levels and
// asks the policy for a decision. A route without a declaration is a
// wiring defect and always denies.
//
// The resolved note is stored in the request context so handlers never
// resolve a second time.
type AccessGate struct {
	resolver NoteResolver
	policy   *policy.NotePolicy
	prefix   string
	required map[string]entity.Permission
}

// NewAccessGate builds a gate for the routes under the given group
// prefix (e.g. "/api/notes").
func NewAccessGate(resolver NoteResolver, notePolicy *policy.NotePolicy, prefix string) *AccessGate {
	return &AccessGate{
		resolver: resolver,
		policy:   notePolicy,
		prefix:   prefix,
		required: make(map[string]entity.Permission),
	}
}

// Require declares the permission a route needs. Call once per route at
// startup; the table is read-only afterwards.
func (g *AccessGate) Require(method, path string, perm entity.Permission) {
	g.required[routeKey(method, path)] = perm
}

// Middleware is the request-time stage. It runs after the auth
// middleware and short-circuits with a JSON error on deny.
func (g *AccessGate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			required, ok := g.required[routeKey(c.Request().Method, c.Path())]
			if !ok {
				// Echo registers catch-all routes under every group
				// with middleware; requests matching nothing real are
				// dispatched through them so group middleware still
				// runs. Those carry echo's own not-found handler, so
				// pass them on for a plain 404.
				if g.isCatchAll(c.Path()) {
					return next(c)
				}

				// Fail closed: a gated route with no declared
				// permission must never let a request through.
				log.Errorf("access gate: no required permission declared for %s %s; denying",
					c.Request().Method, c.Path())
				return c.JSON(apierror.RouteMisconfiguredError.Code(), apierror.RouteMisconfiguredError)
			}

			actor := utils.ActorFromContext(c)

			if required == entity.PermissionCreate {
				if denial := g.policy.Evaluate(actor, required, nil); denial != nil {
					return c.JSON(denial.Code(), denial)
				}
				return next(c)
			}

			idOrAlias := strings.TrimSpace(c.Param(ParamIDOrAlias))
			if idOrAlias == "" {
				return c.JSON(apierror.NotFoundError.Code(), apierror.NotFoundError)
			}

			note, apierr := g.resolver.ResolveNote(idOrAlias)
			if apierr != nil {
				return c.JSON(apierr.Code(), apierr)
			}

			if denial := g.policy.Evaluate(actor, required, note); denial != nil {
				return c.JSON(denial.Code(), denial)
			}

			c.Set(utils.ContextKeyNote, note)
			return next(c)
		}
	}
}

// ValidateRoutes checks at boot that every registered route under the
// gate's prefix has a declared permission, so a forgotten Require call
// surfaces as a startup failure instead of a stream of denied requests.
// Echo's group catch-all registrations are not real routes and are not
// subject to declaration.
func (g *AccessGate) ValidateRoutes(e *echo.Echo) error {
	var missing []string
	for _, route := range e.Routes() {
		if !strings.HasPrefix(route.Path, g.prefix) || route.Method == echo.RouteNotFound {
			continue
		}
		if _, ok := g.required[routeKey(route.Method, route.Path)]; !ok {
			missing = append(missing, route.Method+" "+route.Path)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("access gate: routes without a declared permission: %s",
			strings.Join(missing, ", "))
	}
	return nil
}

// isCatchAll reports whether the matched route path is one of the
// not-found registrations echo adds for a middleware-bearing group:
// the group prefix itself and prefix/*.
func (g *AccessGate) isCatchAll(path string) bool {
	return path == g.prefix || path == g.prefix+"/*"
}

func routeKey(method, path string) string {
	return method + " " + path
}
