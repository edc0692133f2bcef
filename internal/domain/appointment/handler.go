package appointment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mediconnect/api/internal/domain/access"
	"github.com/mediconnect/api/internal/platform/auth"
)

type Handler struct {
	svc  *Service
	gate *access.Handler
}

func NewHandler(svc *Service, gate *access.Handler) *Handler {
	return &Handler{svc: svc, gate: gate}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/appointments", h.Book, h.gate.Protect(access.RolePatient))
	g.GET("/appointments", h.List, h.gate.Protect(access.RoleNone))
	g.PATCH("/appointments/:id/status", h.SetStatus, h.gate.Protect(access.RoleDoctor))
	g.PATCH("/appointments/:id/notes", h.Annotate, h.gate.Protect(access.RoleDoctor))
	g.DELETE("/appointments/:id", h.Cancel, h.gate.Protect(access.RolePatient))
	g.POST("/appointments/:id/whatsapp-link", h.WhatsAppLink, h.gate.Protect(access.RoleDoctor))
}

// httpError maps the service error taxonomy onto HTTP statuses.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotPending):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "storage error")
	}
}

func (h *Handler) Book(c echo.Context) error {
	ctx := c.Request().Context()

	var in BookInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.svc.Book(ctx, auth.IdentityFromContext(ctx), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

// List returns the caller's appointments joined with the other party:
// doctors see their patients, everyone else sees their doctors.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	identityID := auth.IdentityFromContext(ctx)

	if access.RoleFromContext(ctx) == access.RoleDoctor {
		views, err := h.svc.ListForDoctor(ctx, identityID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": views})
	}

	views, err := h.svc.ListForPatient(ctx, identityID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views})
}

type setStatusInput struct {
	Status Status `json:"status"`
}

func (h *Handler) SetStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var in setStatusInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.svc.SetStatus(ctx, auth.IdentityFromContext(ctx), id, in.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Annotate(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var in AnnotateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.svc.Annotate(ctx, auth.IdentityFromContext(ctx), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	if err := h.svc.Cancel(ctx, auth.IdentityFromContext(ctx), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type whatsappInput struct {
	Message    string `json:"message"`
	TemplateID string `json:"template_id"`
}

// WhatsAppLink composes the wa.me deep link for the patient of an
// appointment. The client opens it; no delivery happens server-side.
func (h *Handler) WhatsAppLink(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var in whatsappInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	link, err := h.svc.ComposeWhatsAppLink(ctx, auth.IdentityFromContext(ctx), id, in.TemplateID, in.Message)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"link": link})
}
