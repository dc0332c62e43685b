package handler

import (
	"net/http"
	"strconv"

	"guarita/internal/delivery/http/response"
	"guarita/internal/domain/repository"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const defaultAuditLimit = 20

// AuditHandler exposes the session audit trail.
type AuditHandler struct {
	trail repository.AuditTrail
}

// NewAuditHandler is the constructor for AuditHandler, injected by Fx.
func NewAuditHandler(trail repository.AuditTrail) *AuditHandler {
	return &AuditHandler{trail: trail}
}

// Recent returns the most recent session records, newest first.
func (h *AuditHandler) Recent(c echo.Context) error {
	limit := defaultAuditLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return response.BadRequest(c, "INVALID_LIMIT", "O parâmetro limit deve ser um inteiro positivo.")
		}
		limit = parsed
	}

	records, err := h.trail.Recent(limit)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, records, "")
}
