// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"guarita/internal/domain/credential"
	"guarita/internal/domain/entity"
	domainerrors "guarita/internal/domain/errors"
	"guarita/internal/domain/repository"
	"guarita/internal/domain/service"
	"guarita/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accessService implements the AccessUsecase interface. All state behind
// the mutex is replaced wholesale on transitions; readers always observe a
// consistent provider, status and configuration.
type accessService struct {
	registry  repository.UserRegistry
	config    repository.ConfigStore
	validator service.RemoteValidator
	presenter service.Presenter
	logger    *slog.Logger

	mu          sync.Mutex
	cfg         *entity.AppConfig
	status      entity.AuthStatus
	details     string
	users       []entity.AuthorizedUser
	unsubConfig repository.Unsubscribe
	unsubUsers  repository.Unsubscribe
	subscribers map[int]func(entity.AuthContext)
	nextSubID   int
}

// AccessServiceParams holds dependencies for the access service, injected by Fx.
type AccessServiceParams struct {
	fx.In

	Registry  repository.UserRegistry
	Config    repository.ConfigStore
	Validator service.RemoteValidator
	Presenter service.Presenter
	Logger    *slog.Logger
}

// NewAccessService is the constructor for accessService.
func NewAccessService(params AccessServiceParams) usecase.AccessUsecase {
	return &accessService{
		registry:    params.Registry,
		config:      params.Config,
		validator:   params.Validator,
		presenter:   params.Presenter,
		logger:      params.Logger,
		status:      entity.StatusChecking,
		subscribers: make(map[int]func(entity.AuthContext)),
	}
}

// Initialize performs the first configuration load, wires the selected
// provider and starts watching the configuration source. The first load is
// the only fatal one; reload failures later keep the last good config.
func (srv *accessService) Initialize(ctx context.Context) error {
	cfg, err := srv.config.Load()
	if err != nil {
		return errors.Wrap(err, "initial config load")
	}

	srv.applyConfig(ctx, cfg)

	unsubscribe, err := srv.config.Watch(func(err error, cfg *entity.AppConfig) {
		if err != nil {
			srv.logger.Warn("Config reload failed, keeping previous configuration",
				slog.Any("error", err))

			return
		}

		srv.logger.Info("Configuration reloaded",
			slog.String("provider", cfg.AuthProvider.String()))
		srv.applyConfig(context.Background(), cfg)
	})
	if err != nil {
		srv.logger.Warn("Config watch unavailable, hot reload disabled", slog.Any("error", err))
	} else {
		srv.mu.Lock()
		srv.unsubConfig = unsubscribe
		srv.mu.Unlock()
	}

	return nil
}

// Shutdown releases the configuration and registry watchers.
func (srv *accessService) Shutdown() {
	srv.mu.Lock()
	unsubConfig := srv.unsubConfig
	unsubUsers := srv.unsubUsers
	srv.unsubConfig = nil
	srv.unsubUsers = nil
	srv.mu.Unlock()

	if unsubConfig != nil {
		unsubConfig()
	}
	if unsubUsers != nil {
		unsubUsers()
	}
}

// applyConfig swaps in a new configuration and rewires the provider. The
// old registry watcher is torn down before the new provider goes live, so a
// stale watcher can never fire into the new state.
func (srv *accessService) applyConfig(ctx context.Context, cfg *entity.AppConfig) {
	srv.mu.Lock()
	if srv.unsubUsers != nil {
		srv.unsubUsers()
		srv.unsubUsers = nil
	}
	srv.cfg = cfg
	provider := cfg.AuthProvider
	if provider == entity.ProviderRemote {
		srv.users = nil
	}
	srv.mu.Unlock()

	if provider == entity.ProviderRemote {
		srv.bootstrapRemote(ctx)

		return
	}

	srv.bootstrapLocal()
}

// bootstrapLocal loads the trusted registry and starts watching it.
func (srv *accessService) bootstrapLocal() {
	users, err := srv.registry.Load()
	if err != nil {
		srv.logger.Error("Local registry load failed", slog.Any("error", err))
		srv.transition(entity.StatusOffline, "Não foi possível carregar a base local de usuários.")

		return
	}

	srv.mu.Lock()
	srv.users = users
	srv.mu.Unlock()

	unsubscribe, err := srv.registry.Watch(srv.onRegistryChange)
	if err != nil {
		srv.logger.Warn("Registry watch unavailable, hot reload disabled", slog.Any("error", err))
	} else {
		srv.mu.Lock()
		srv.unsubUsers = unsubscribe
		srv.mu.Unlock()
	}

	srv.transition(entity.StatusOnline, fmt.Sprintf("Base local carregada com %d registro(s).", len(users)))
}

// onRegistryChange handles a registry reload. A failed reload keeps the
// last good user list and downgrades the status so the operator notices.
func (srv *accessService) onRegistryChange(err error, users []entity.AuthorizedUser) {
	if err != nil {
		srv.logger.Error("Local registry reload failed", slog.Any("error", err))
		srv.transition(entity.StatusDegraded, "Falha ao recarregar a base local; mantendo a versão anterior.")

		return
	}

	srv.mu.Lock()
	srv.users = users
	srv.mu.Unlock()

	srv.logger.Info("Local registry reloaded", slog.Int("users", len(users)))
	srv.transition(entity.StatusOnline, fmt.Sprintf("Base local carregada com %d registro(s).", len(users)))
}

// bootstrapRemote announces the probe and runs the first health check.
func (srv *accessService) bootstrapRemote(ctx context.Context) {
	srv.transition(entity.StatusChecking, "Verificando disponibilidade da API…")
	srv.CheckRemoteHealth(ctx)
}

// CheckRemoteHealth probes the remote health endpoint and updates the auth
// context. A no-op under the local provider.
func (srv *accessService) CheckRemoteHealth(ctx context.Context) {
	srv.mu.Lock()
	cfg := srv.cfg
	srv.mu.Unlock()

	if cfg == nil || cfg.AuthProvider != entity.ProviderRemote {
		return
	}

	if cfg.API.BaseURL == "" {
		srv.transition(entity.StatusDegraded, "Endpoint de validação da API não configurado.")

		return
	}

	healthURL := cfg.API.HealthURL()
	if healthURL == "" {
		srv.transition(entity.StatusDegraded, "Endpoint de saúde não configurado; prosseguindo com cautela.")

		return
	}

	statusCode, err := srv.validator.Health(ctx, healthURL, cfg.API.Timeout())
	switch {
	case errors.Is(err, service.ErrRemoteTimeout):
		srv.transition(entity.StatusOffline, "Tempo de espera excedido.")
	case err != nil:
		srv.logger.Warn("Health check failed", slog.Any("error", err))
		srv.transition(entity.StatusOffline, "API indisponível. Verifique a conexão da estação.")
	case statusCode >= 200 && statusCode < 300:
		srv.transition(entity.StatusOnline, "API disponível.")
	default:
		srv.transition(entity.StatusOffline, fmt.Sprintf("API respondeu com status %d.", statusCode))
	}
}

// Authenticate validates the three credential factors and authenticates
// against the active provider. Invalid input never reaches any backend.
func (srv *accessService) Authenticate(ctx context.Context, creds entity.Credentials) (*entity.SessionUser, error) {
	if strings.TrimSpace(creds.CPF) == "" &&
		strings.TrimSpace(creds.OAB) == "" &&
		strings.TrimSpace(creds.BirthDate) == "" {
		return nil, domainerrors.ErrCredentialsMissing
	}

	normalized := entity.Credentials{
		CPF:       credential.NormalizeCPF(creds.CPF),
		OAB:       credential.NormalizeOAB(creds.OAB),
		BirthDate: credential.NormalizeBirthDate(creds.BirthDate),
	}

	var violations []string
	if !credential.ValidateCPF(normalized.CPF) {
		violations = append(violations, "CPF inválido.")
	}
	if !credential.ValidateOAB(normalized.OAB) {
		violations = append(violations, "OAB inválida.")
	}
	if !credential.ValidateBirthDate(normalized.BirthDate) {
		violations = append(violations, "Data de nascimento inválida.")
	}
	if len(violations) > 0 {
		return nil, domainerrors.ErrCredentialsInvalid.WithDetails(strings.Join(violations, " "))
	}

	srv.mu.Lock()
	cfg := srv.cfg
	users := srv.users
	srv.mu.Unlock()

	if cfg != nil && cfg.AuthProvider == entity.ProviderRemote {
		return srv.authenticateRemote(ctx, cfg, normalized)
	}

	return srv.authenticateLocal(normalized, users)
}

func (srv *accessService) authenticateLocal(creds entity.Credentials, users []entity.AuthorizedUser) (*entity.SessionUser, error) {
	found := credential.FindAuthorized(creds, users)
	if found == nil {
		srv.logger.Info("Credentials not found in local registry")

		return nil, domainerrors.ErrUserNotAuthorized
	}

	return &entity.SessionUser{
		Name: found.Name,
		CPF:  found.CPF,
		OAB:  found.OAB,
		Role: found.Role,
	}, nil
}

func (srv *accessService) authenticateRemote(ctx context.Context, cfg *entity.AppConfig, creds entity.Credentials) (*entity.SessionUser, error) {
	validateURL := cfg.API.ValidateURL()
	if validateURL == "" {
		srv.transition(entity.StatusDegraded, "Endpoint de validação da API não configurado.")

		return nil, domainerrors.ErrRemoteNotConfigured
	}

	result, err := srv.validator.Validate(ctx, validateURL, cfg.API.Timeout(), creds)
	if errors.Is(err, service.ErrRemoteTimeout) {
		srv.transition(entity.StatusOffline, "Tempo de espera excedido.")

		return nil, domainerrors.ErrRemoteTimeout
	}
	if err != nil {
		srv.logger.Warn("Validation request failed", slog.Any("error", err))
		srv.transition(entity.StatusOffline, "API indisponível. Verifique a conexão da estação.")

		return nil, domainerrors.ErrRemoteUnavailable
	}

	if result.StatusCode < 200 || result.StatusCode >= 300 {
		srv.logger.Warn("Validation API answered unhealthily", slog.Int("status", result.StatusCode))
		srv.transition(entity.StatusDegraded, fmt.Sprintf("API respondeu com status %d.", result.StatusCode))

		return nil, domainerrors.ErrRemoteUnavailable
	}

	if !result.Success {
		// The API is healthy; the credentials were simply refused.
		srv.transition(entity.StatusOnline, "API disponível. Credenciais não autorizadas.")

		if result.Message != "" {
			return nil, domainerrors.ErrRemoteRejected.WithDetails(result.Message)
		}

		return nil, domainerrors.ErrRemoteRejected
	}

	srv.transition(entity.StatusOnline, "API disponível.")

	name := result.UserName
	if name == "" {
		name = "Usuário autorizado"
	}

	// Only the public name is trusted from the remote answer. Remote users
	// get the shorter session of the two roles.
	return &entity.SessionUser{
		Name: name,
		Role: entity.RoleEstagiario,
	}, nil
}

// Context returns the current read-only auth context snapshot.
func (srv *accessService) Context() entity.AuthContext {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	ctx := entity.AuthContext{
		AuthProvider: entity.ProviderLocal,
		AuthStatus:   srv.status,
		AuthDetails:  srv.details,
	}
	if srv.cfg != nil {
		ctx.AuthProvider = srv.cfg.AuthProvider
		ctx.APIBaseURL = srv.cfg.API.BaseURL
		ctx.Session = srv.cfg.Session
	}

	return ctx
}

// Subscribe registers a context listener and returns its removal handle.
func (srv *accessService) Subscribe(fn func(entity.AuthContext)) repository.Unsubscribe {
	srv.mu.Lock()
	id := srv.nextSubID
	srv.nextSubID++
	srv.subscribers[id] = fn
	srv.mu.Unlock()

	return func() {
		srv.mu.Lock()
		delete(srv.subscribers, id)
		srv.mu.Unlock()
	}
}

// transition replaces status and details, then broadcasts the new context
// to the presenter and all subscribers outside the lock.
func (srv *accessService) transition(status entity.AuthStatus, details string) {
	srv.mu.Lock()
	srv.status = status
	srv.details = details
	srv.mu.Unlock()

	srv.broadcast()
}

func (srv *accessService) broadcast() {
	ctx := srv.Context()

	srv.mu.Lock()
	listeners := make([]func(entity.AuthContext), 0, len(srv.subscribers))
	for _, fn := range srv.subscribers {
		listeners = append(listeners, fn)
	}
	srv.mu.Unlock()

	srv.presenter.Broadcast(ctx)
	for _, fn := range listeners {
		fn(ctx)
	}
}
