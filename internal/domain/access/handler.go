package access

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediconnect/api/internal/domain/identity"
	"github.com/mediconnect/api/internal/platform/auth"
)

type roleContextKey string

// RoleKey is the request-context key holding the resolved role set by
// Protect.
const RoleKey roleContextKey = "resolved_role"

// RoleFromContext returns the role resolved by Protect, or RoleNone when the
// request did not pass through it.
func RoleFromContext(ctx context.Context) Role {
	role, _ := ctx.Value(RoleKey).(Role)
	return role
}

// ProfileSource supplies the profile shown on /me.
type ProfileSource interface {
	GetByIdentityID(ctx context.Context, identityID string) (*identity.Profile, error)
}

type Handler struct {
	svc      *Service
	profiles ProfileSource
}

func NewHandler(svc *Service, profiles ProfileSource) *Handler {
	return &Handler{svc: svc, profiles: profiles}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/me", h.Me)
}

// Protect returns middleware that resolves the caller's role through the
// store-backed lookup and enforces the required role. An unauthenticated
// caller gets 401 with the sign-in route; a wrong-role caller gets 403 with
// their own role's home as a redirect hint. RoleNone requires authentication
// only. The resolved role is placed on the request context either way.
func (h *Handler) Protect(required Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			identityID := auth.IdentityFromContext(ctx)
			if identityID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
					"message":  "authentication required",
					"redirect": RouteSignIn,
				})
			}

			role := h.svc.Resolve(ctx, identityID)
			if required != RoleNone && role != required {
				return echo.NewHTTPError(http.StatusForbidden, echo.Map{
					"message":  "insufficient role",
					"redirect": HomeRoute(role),
				})
			}

			ctx = context.WithValue(ctx, RoleKey, role)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

type meResponse struct {
	IdentityID string            `json:"identity_id"`
	Role       Role              `json:"role"`
	Profile    *identity.Profile `json:"profile,omitempty"`
}

// Me returns the caller's identity, resolved role and profile. The profile
// is omitted when none exists yet.
func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	identityID := auth.IdentityFromContext(ctx)
	if identityID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
			"message":  "authentication required",
			"redirect": RouteSignIn,
		})
	}

	resp := meResponse{
		IdentityID: identityID,
		Role:       h.svc.Resolve(ctx, identityID),
	}
	if profile, err := h.profiles.GetByIdentityID(ctx, identityID); err == nil {
		resp.Profile = profile
	}

	return c.JSON(http.StatusOK, resp)
}
