package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/domain/policy"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
)

// fakeResolver resolves from a fixed table; id precedence is the
// resolver implementation's concern, so here tokens map directly.
type fakeResolver struct {
	notes map[string]*entity.Note
	calls int
}

func (f *fakeResolver) ResolveNote(idOrAlias string) (*entity.Note, apierror.ErrorResponse) {
	f.calls++
	note, ok := f.notes[idOrAlias]
	if !ok {
		return nil, apierror.NotFoundError
	}
	return note, nil
}

func strPtr(s string) *string { return &s }

func gateEnv(t *testing.T) (*echo.Echo, *AccessGate, *fakeResolver, *entity.User) {
	t.Helper()

	owner := &entity.User{ID: 1, Username: "owner", Active: true}
	note := &entity.Note{
		ID:            10,
		PublicID:      "f0e1d2c3-0003-4d7c-a000-000000000003",
		Alias:         strPtr("my-note"),
		OwnerID:       owner.ID,
		Content:       "# mine",
		DefaultAccess: entity.AccessNone,
	}

	resolver := &fakeResolver{notes: map[string]*entity.Note{
		note.PublicID: note,
		"my-note":     note,
	}}

	gate := NewAccessGate(resolver, policy.NewNotePolicy(false), "/api/notes")
	e := echo.New()
	return e, gate, resolver, owner
}

// identityMiddleware plants the actor the way the auth middleware would.
func identityMiddleware(user *entity.User) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(utils.ContextKeyUser, user)
			return next(c)
		}
	}
}

func do(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

// A route the gate guards but nobody declared a permission for must
// deny every request, even the owner's on an existing note.
func TestMissingDeclarationFailsClosed(t *testing.T) {
	e, gate, _, owner := gateEnv(t)

	grp := e.Group("/api/notes", identityMiddleware(owner), gate.Middleware())
	grp.GET("/:idOrAlias", func(c echo.Context) error {
		return c.String(http.StatusOK, "leaked")
	})
	// No gate.Require call on purpose.

	w := do(e, http.MethodGet, "/api/notes/my-note")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestCreateSkipsResolution(t *testing.T) {
	e, gate, resolver, owner := gateEnv(t)

	grp := e.Group("/api/notes", identityMiddleware(owner), gate.Middleware())
	grp.POST("", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})
	gate.Require(http.MethodPost, "/api/notes", entity.PermissionCreate)

	w := do(e, http.MethodPost, "/api/notes")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if resolver.calls != 0 {
		t.Errorf("resolver called %d times on CREATE, want 0", resolver.calls)
	}
}

func TestCreateDeniesGuest(t *testing.T) {
	e, gate, _, _ := gateEnv(t)

	grp := e.Group("/api/notes", identityMiddleware(nil), gate.Middleware())
	grp.POST("", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})
	gate.Require(http.MethodPost, "/api/notes", entity.PermissionCreate)

	w := do(e, http.MethodPost, "/api/notes")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

// Resolution failure surfaces as 404, never as a permission denial.
func TestUnknownIdentifierIsNotFound(t *testing.T) {
	e, gate, _, owner := gateEnv(t)

	grp := e.Group("/api/notes", identityMiddleware(owner), gate.Middleware())
	grp.GET("/:idOrAlias", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	gate.Require(http.MethodGet, "/api/notes/:idOrAlias", entity.PermissionRead)

	w := do(e, http.MethodGet, "/api/notes/missing-alias")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPolicyDenial(t *testing.T) {
	e, gate, _, _ := gateEnv(t)
	stranger := &entity.User{ID: 99, Username: "stranger", Active: true}

	grp := e.Group("/api/notes", identityMiddleware(stranger), gate.Middleware())
	grp.PUT("/:idOrAlias", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	gate.Require(http.MethodPut, "/api/notes/:idOrAlias", entity.PermissionWrite)

	w := do(e, http.MethodPut, "/api/notes/my-note")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

// An allowed request reaches the handler with the resolved note already
// in the context: one resolution per request, total.
func TestAllowedRequestCarriesNote(t *testing.T) {
	e, gate, resolver, owner := gateEnv(t)

	grp := e.Group("/api/notes", identityMiddleware(owner), gate.Middleware())
	grp.GET("/:idOrAlias", func(c echo.Context) error {
		note, apierr := utils.GetNoteFromContext(c)
		if apierr != nil {
			return c.JSON(apierr.Code(), apierr)
		}
		return c.String(http.StatusOK, note.PublicID)
	})
	gate.Require(http.MethodGet, "/api/notes/:idOrAlias", entity.PermissionRead)

	w := do(e, http.MethodGet, "/api/notes/my-note")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != "f0e1d2c3-0003-4d7c-a000-000000000003" {
		t.Errorf("handler saw note %q", got)
	}
	if resolver.calls != 1 {
		t.Errorf("resolver called %d times, want exactly 1", resolver.calls)
	}
}

func TestValidateRoutes(t *testing.T) {
	e, gate, _, owner := gateEnv(t)

	grp := e.Group("/api/notes", identityMiddleware(owner), gate.Middleware())
	grp.GET("/:idOrAlias", func(c echo.Context) error { return nil })
	grp.DELETE("/:idOrAlias", func(c echo.Context) error { return nil })

	gate.Require(http.MethodGet, "/api/notes/:idOrAlias", entity.PermissionRead)

	if err := gate.ValidateRoutes(e); err == nil {
		t.Fatal("expected validation error for undeclared DELETE route")
	}

	gate.Require(http.MethodDelete, "/api/notes/:idOrAlias", entity.PermissionOwner)
	if err := gate.ValidateRoutes(e); err != nil {
		t.Fatalf("validation failed after declaring all routes: %v", err)
	}
}

// Echo dispatches requests that match no real route through the group's
// own not-found registrations; those must surface as plain 404s rather
// than a misconfiguration denial.
func TestUnmatchedPathFallsThroughToNotFound(t *testing.T) {
	e, gate, resolver, owner := gateEnv(t)

	grp := e.Group("/api/notes", identityMiddleware(owner), gate.Middleware())
	grp.GET("/:idOrAlias", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	gate.Require(http.MethodGet, "/api/notes/:idOrAlias", entity.PermissionRead)

	if err := gate.ValidateRoutes(e); err != nil {
		t.Fatalf("validation failed: %v", err)
	}

	for _, target := range []string{"/api/notes/a/b/c", "/api/notes"} {
		w := do(e, http.MethodPatch, target)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, w.Code)
		}
	}
	if resolver.calls != 0 {
		t.Errorf("resolver called %d times on unmatched paths, want 0", resolver.calls)
	}
}
