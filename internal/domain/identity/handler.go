package identity

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediconnect/api/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/me/profile", h.GetProfile)
	g.PUT("/me/profile", h.UpdateProfile)
}

// GetProfile returns the caller's own profile.
func (h *Handler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	identityID := auth.IdentityFromContext(ctx)
	if identityID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	p, err := h.svc.GetByIdentityID(ctx, identityID)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load profile")
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateProfile writes the caller's own profile. The identity comes from the
// token, never the body, so a caller cannot write another identity's
// profile.
func (h *Handler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	identityID := auth.IdentityFromContext(ctx)
	if identityID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.svc.Update(ctx, identityID, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}
