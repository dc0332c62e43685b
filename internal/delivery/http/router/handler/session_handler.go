// Package handler contains the HTTP handlers of the control API.
package handler

import (
	"log/slog"
	"net/http"

	"guarita/internal/delivery/http/response"
	"guarita/internal/domain/entity"
	domainerrors "guarita/internal/domain/errors"
	"guarita/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UnlockInput is the credential payload of the unlock request.
type UnlockInput struct {
	CPF       string `json:"cpf"`
	OAB       string `json:"oab"`
	BirthDate string `json:"birthDate"`
}

// EndInput optionally names the release reason; defaults to manual.
type EndInput struct {
	Reason string `json:"reason"`
}

// SessionHandler exposes authentication and session lifecycle over the
// control API consumed by the kiosk shell.
type SessionHandler struct {
	access  usecase.AccessUsecase
	session usecase.SessionUsecase
	logger  *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler, injected by Fx.
func NewSessionHandler(access usecase.AccessUsecase, session usecase.SessionUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		access:  access,
		session: session,
		logger:  logger,
	}
}

// Unlock authenticates the three credential factors and starts a session.
func (h *SessionHandler) Unlock(c echo.Context) error {
	var input UnlockInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Dados de acesso ilegíveis.")
	}

	user, err := h.access.Authenticate(c.Request().Context(), entity.Credentials{
		CPF:       input.CPF,
		OAB:       input.OAB,
		BirthDate: input.BirthDate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	snapshot, err := h.session.Start(*user)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, snapshot, "Sessão iniciada")
}

// End releases the active session.
func (h *SessionHandler) End(c echo.Context) error {
	var input EndInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Pedido ilegível.")
	}

	reason := entity.ReleaseManual
	switch input.Reason {
	case "", string(entity.ReleaseManual):
	case string(entity.ReleaseTampered):
		reason = entity.ReleaseTampered
	case string(entity.ReleaseShutdown):
		reason = entity.ReleaseShutdown
	default:
		return response.BadRequest(c, "INVALID_REASON", "Motivo de encerramento desconhecido.")
	}

	if !h.session.Release(reason) {
		return domainerrors.ErrNoSession
	}

	return response.Success(c, http.StatusOK, nil, "Sessão encerrada")
}

// Current returns a snapshot of the active session.
func (h *SessionHandler) Current(c echo.Context) error {
	snapshot, active := h.session.Snapshot()
	if !active {
		return domainerrors.ErrNoSession
	}

	return response.Success(c, http.StatusOK, snapshot, "")
}
