// Package presenter contains the default service.Presenter implementation.
// The real window shell subscribes over the control API; this one records
// every presentation transition in the log so a headless daemon still shows
// what the shell would be doing.
package presenter

import (
	"log/slog"

	"guarita/internal/domain/entity"
	"guarita/internal/domain/service"
)

type logPresenter struct {
	logger *slog.Logger
}

// NewLogPresenter creates a presenter that logs every transition.
func NewLogPresenter(logger *slog.Logger) service.Presenter {
	return &logPresenter{logger: logger.With(slog.String("component", "presenter"))}
}

func (p *logPresenter) CreateLoginView() {
	p.logger.Info("Presenting login view")
}

func (p *logPresenter) CreateSessionWidget() {
	p.logger.Info("Presenting session widget")
}

func (p *logPresenter) ShowLoginView() {
	p.logger.Info("Returning to locked login view")
}

func (p *logPresenter) HideAll() {
	p.logger.Info("Hiding all views")
}

func (p *logPresenter) Broadcast(ctx entity.AuthContext) {
	p.logger.Info("Auth context updated",
		slog.String("provider", ctx.AuthProvider.String()),
		slog.String("status", ctx.AuthStatus.String()),
		slog.String("details", ctx.AuthDetails),
	)
}
