package access

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mediconnect/api/internal/domain/identity"
	"github.com/mediconnect/api/internal/platform/auth"
)

type mockProfileSource struct {
	profiles map[string]*identity.Profile
}

func (m *mockProfileSource) GetByIdentityID(_ context.Context, id string) (*identity.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return p, nil
}

func newTestHandler(roles map[string]Role) *Handler {
	repo := newMockRoleRepo()
	for id, role := range roles {
		repo.roles[id] = role
	}
	svc := NewService(repo, zerolog.Nop())
	return NewHandler(svc, &mockProfileSource{profiles: map[string]*identity.Profile{
		"doc-1": {IdentityID: "doc-1", FullName: "Dr. Rao"},
	}})
}

func authedContext(e *echo.Echo, method, path, identityID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, nil)
	if identityID != "" {
		ctx := context.WithValue(req.Context(), auth.IdentityIDKey, identityID)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestProtect_Unauthenticated(t *testing.T) {
	e := echo.New()
	h := newTestHandler(nil)

	handler := h.Protect(RoleDoctor)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	c, _ := authedContext(e, http.MethodGet, "/", "")

	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	body, _ := httpErr.Message.(echo.Map)
	if body["redirect"] != RouteSignIn {
		t.Errorf("redirect hint = %v, want %q", body["redirect"], RouteSignIn)
	}
}

func TestProtect_WrongRoleRedirectHint(t *testing.T) {
	e := echo.New()
	h := newTestHandler(map[string]Role{"doc-1": RoleDoctor})

	handler := h.Protect(RolePatient)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	c, _ := authedContext(e, http.MethodGet, "/", "doc-1")

	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
	body, _ := httpErr.Message.(echo.Map)
	if body["redirect"] != RouteDoctorHome {
		t.Errorf("redirect hint = %v, want doctor home", body["redirect"])
	}
}

func TestProtect_MatchSetsRoleOnContext(t *testing.T) {
	e := echo.New()
	h := newTestHandler(map[string]Role{"doc-1": RoleDoctor})

	var gotRole Role
	handler := h.Protect(RoleDoctor)(func(c echo.Context) error {
		gotRole = RoleFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	c, rec := authedContext(e, http.MethodGet, "/", "doc-1")

	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if gotRole != RoleDoctor {
		t.Errorf("role on context = %q, want doctor", gotRole)
	}
}

func TestProtect_FallbackGrantsPatient(t *testing.T) {
	e := echo.New()
	h := newTestHandler(nil) // no stored roles at all

	handler := h.Protect(RolePatient)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	c, rec := authedContext(e, http.MethodGet, "/", "brand-new-user")

	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 via patient fallback", rec.Code)
	}
}

func TestProtect_RoleNoneIsIdentityOnly(t *testing.T) {
	e := echo.New()
	h := newTestHandler(map[string]Role{"doc-1": RoleDoctor})

	handler := h.Protect(RoleNone)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	c, rec := authedContext(e, http.MethodGet, "/", "doc-1")

	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for any authenticated role", rec.Code)
	}
}

func TestMe(t *testing.T) {
	e := echo.New()
	h := newTestHandler(map[string]Role{"doc-1": RoleDoctor})

	c, rec := authedContext(e, http.MethodGet, "/me", "doc-1")
	if err := h.Me(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		IdentityID string            `json:"identity_id"`
		Role       Role              `json:"role"`
		Profile    *identity.Profile `json:"profile"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.IdentityID != "doc-1" || resp.Role != RoleDoctor {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Profile == nil || resp.Profile.FullName != "Dr. Rao" {
		t.Errorf("profile missing from response: %+v", resp.Profile)
	}
}

func TestMe_NoProfile(t *testing.T) {
	e := echo.New()
	h := newTestHandler(nil)

	c, rec := authedContext(e, http.MethodGet, "/me", "new-user")
	if err := h.Me(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["role"] != "patient" {
		t.Errorf("role = %v, want patient fallback", resp["role"])
	}
	if _, ok := resp["profile"]; ok {
		t.Error("profile should be omitted when none exists")
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	e := echo.New()
	h := newTestHandler(nil)

	c, _ := authedContext(e, http.MethodGet, "/me", "")
	err := h.Me(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
