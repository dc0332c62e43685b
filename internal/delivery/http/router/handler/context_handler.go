package handler

import (
	"net/http"

	"guarita/internal/delivery/http/response"
	"guarita/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ContextHandler exposes the auth context to the kiosk shell.
type ContextHandler struct {
	access usecase.AccessUsecase
}

// NewContextHandler is the constructor for ContextHandler, injected by Fx.
func NewContextHandler(access usecase.AccessUsecase) *ContextHandler {
	return &ContextHandler{access: access}
}

// Get returns the current auth context snapshot.
func (h *ContextHandler) Get(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.access.Context(), "")
}

// Probe runs a remote health check and returns the resulting context.
func (h *ContextHandler) Probe(c echo.Context) error {
	h.access.CheckRemoteHealth(c.Request().Context())

	return response.Success(c, http.StatusOK, h.access.Context(), "")
}
