package impl

import (
	"context"
	"testing"

	"guarita/internal/domain/entity"
	domainerrors "guarita/internal/domain/errors"
	"guarita/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accessFixture struct {
	svc       *accessService
	config    *fakeConfigStore
	registry  *fakeRegistry
	validator *fakeValidator
	presenter *fakePresenter
}

func newAccessFixture(cfg *entity.AppConfig) *accessFixture {
	f := &accessFixture{
		config:    &fakeConfigStore{cfg: cfg},
		registry:  &fakeRegistry{users: testUsers},
		validator: &fakeValidator{},
		presenter: &fakePresenter{},
	}
	f.svc = NewAccessService(AccessServiceParams{
		Registry:  f.registry,
		Config:    f.config,
		Validator: f.validator,
		Presenter: f.presenter,
		Logger:    discardLogger(),
	}).(*accessService)

	return f
}

func (f *accessFixture) initialize(t *testing.T) {
	t.Helper()
	require.NoError(t, f.svc.Initialize(context.Background()))
	t.Cleanup(f.svc.Shutdown)
}

func TestAccessService_InitializeLocal(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderLocal))
	f.initialize(t)

	ctx := f.svc.Context()
	assert.Equal(t, entity.ProviderLocal, ctx.AuthProvider)
	assert.Equal(t, entity.StatusOnline, ctx.AuthStatus)
	assert.Equal(t, "Base local carregada com 2 registro(s).", ctx.AuthDetails)
	assert.Equal(t, 180, ctx.Session.AdvogadoMinutes)

	// The transition reached the presenter.
	last, ok := f.presenter.lastBroadcast()
	require.True(t, ok)
	assert.Equal(t, entity.StatusOnline, last.AuthStatus)
}

func TestAccessService_InitializeFatalOnConfigError(t *testing.T) {
	f := newAccessFixture(nil)
	f.config.loadErr = errors.New("config on fire")

	err := f.svc.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config on fire")
}

func TestAccessService_InitializeLocalRegistryBroken(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderLocal))
	f.registry.loadErr = errors.New("bad registry")
	f.initialize(t)

	ctx := f.svc.Context()
	assert.Equal(t, entity.StatusOffline, ctx.AuthStatus)
	assert.Equal(t, "Não foi possível carregar a base local de usuários.", ctx.AuthDetails)
}

func TestAccessService_AuthenticateMissing(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderLocal))
	f.initialize(t)

	_, err := f.svc.Authenticate(context.Background(), entity.Credentials{BirthDate: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCredentialsMissing))
}

func TestAccessService_AuthenticateInvalidAggregatesAllViolations(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderRemote))
	f.initialize(t)

	_, err := f.svc.Authenticate(context.Background(), entity.Credentials{
		CPF:       "123",
		OAB:       "!!",
		BirthDate: "not a date",
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CREDENTIALS_INVALID", appErr.ErrorCode())
	assert.Contains(t, appErr.Details(), "CPF inválido.")
	assert.Contains(t, appErr.Details(), "OAB inválida.")
	assert.Contains(t, appErr.Details(), "Data de nascimento inválida.")

	// Invalid input never reaches the backend.
	assert.Zero(t, f.validator.validateCalls)
}

func TestAccessService_AuthenticateLocal(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderLocal))
	f.initialize(t)

	// Formatted input still matches after normalization.
	user, err := f.svc.Authenticate(context.Background(), entity.Credentials{
		CPF:       "123.456.789-09",
		OAB:       "sp 123456",
		BirthDate: "01/01/1990",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", user.Name)
	assert.Equal(t, entity.RoleAdvogado, user.Role)
	assert.Equal(t, "12345678909", user.CPF)
}

func TestAccessService_AuthenticateLocalNotFound(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderLocal))
	f.initialize(t)

	_, err := f.svc.Authenticate(context.Background(), entity.Credentials{
		CPF:       "12345678909",
		OAB:       "RJ9876", // belongs to the other user
		BirthDate: "1990-01-01",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotAuthorized))
}

func TestAccessService_AuthenticateRemoteSuccess(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderRemote))
	f.validator.healthStatus = 200
	f.validator.result = &service.RemoteValidation{StatusCode: 200, Success: true, UserName: "Carla Dias"}
	f.initialize(t)

	user, err := f.svc.Authenticate(context.Background(), entity.Credentials{
		CPF:       "12345678909",
		OAB:       "SP123456",
		BirthDate: "1990-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "Carla Dias", user.Name)
	assert.Equal(t, entity.RoleEstagiario, user.Role)
	assert.Empty(t, user.CPF) // only the name is trusted from the remote answer

	assert.Equal(t, "https://api.example.org/api/v1/advogados/validar", f.validator.lastURL)
	assert.Equal(t, "12345678909", f.validator.lastCreds.CPF)
	assert.Equal(t, entity.StatusOnline, f.svc.Context().AuthStatus)
}

func TestAccessService_AuthenticateRemoteRejected(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderRemote))
	f.validator.healthStatus = 200
	f.validator.result = &service.RemoteValidation{StatusCode: 200, Success: false, Message: "Cadastro suspenso."}
	f.initialize(t)

	_, err := f.svc.Authenticate(context.Background(), entity.Credentials{
		CPF:       "12345678909",
		OAB:       "SP123456",
		BirthDate: "1990-01-01",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRemoteRejected))

	// A business rejection does not degrade the provider.
	ctx := f.svc.Context()
	assert.Equal(t, entity.StatusOnline, ctx.AuthStatus)
	assert.Equal(t, "API disponível. Credenciais não autorizadas.", ctx.AuthDetails)
}

func TestAccessService_AuthenticateRemoteFailures(t *testing.T) {
	valid := entity.Credentials{CPF: "12345678909", OAB: "SP123456", BirthDate: "1990-01-01"}

	tests := []struct {
		name        string
		setup       func(*fakeValidator)
		wantErr     error
		wantStatus  entity.AuthStatus
		wantDetails string
	}{
		{
			name:        "timeout",
			setup:       func(v *fakeValidator) { v.validateErr = service.ErrRemoteTimeout },
			wantErr:     domainerrors.ErrRemoteTimeout,
			wantStatus:  entity.StatusOffline,
			wantDetails: "Tempo de espera excedido.",
		},
		{
			name:        "network failure",
			setup:       func(v *fakeValidator) { v.validateErr = errors.New("connection refused") },
			wantErr:     domainerrors.ErrRemoteUnavailable,
			wantStatus:  entity.StatusOffline,
			wantDetails: "API indisponível. Verifique a conexão da estação.",
		},
		{
			name: "server error status",
			setup: func(v *fakeValidator) {
				v.result = &service.RemoteValidation{StatusCode: 500}
			},
			wantErr:     domainerrors.ErrRemoteUnavailable,
			wantStatus:  entity.StatusDegraded,
			wantDetails: "API respondeu com status 500.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newAccessFixture(testConfig(entity.ProviderRemote))
			f.validator.healthStatus = 200
			tc.setup(f.validator)
			f.initialize(t)

			_, err := f.svc.Authenticate(context.Background(), valid)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr))

			ctx := f.svc.Context()
			assert.Equal(t, tc.wantStatus, ctx.AuthStatus)
			assert.Equal(t, tc.wantDetails, ctx.AuthDetails)
		})
	}
}

func TestAccessService_AuthenticateRemoteNotConfigured(t *testing.T) {
	cfg := testConfig(entity.ProviderRemote)
	cfg.API.BaseURL = ""
	f := newAccessFixture(cfg)
	f.initialize(t)

	_, err := f.svc.Authenticate(context.Background(), entity.Credentials{
		CPF:       "12345678909",
		OAB:       "SP123456",
		BirthDate: "1990-01-01",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRemoteNotConfigured))
	assert.Equal(t, entity.StatusDegraded, f.svc.Context().AuthStatus)
}

func TestAccessService_CheckRemoteHealth(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*entity.AppConfig, *fakeValidator)
		wantStatus  entity.AuthStatus
		wantDetails string
	}{
		{
			name:        "healthy",
			setup:       func(_ *entity.AppConfig, v *fakeValidator) { v.healthStatus = 204 },
			wantStatus:  entity.StatusOnline,
			wantDetails: "API disponível.",
		},
		{
			name:        "unhealthy status",
			setup:       func(_ *entity.AppConfig, v *fakeValidator) { v.healthStatus = 503 },
			wantStatus:  entity.StatusOffline,
			wantDetails: "API respondeu com status 503.",
		},
		{
			name:        "timeout",
			setup:       func(_ *entity.AppConfig, v *fakeValidator) { v.healthErr = service.ErrRemoteTimeout },
			wantStatus:  entity.StatusOffline,
			wantDetails: "Tempo de espera excedido.",
		},
		{
			name:        "no health endpoint",
			setup:       func(cfg *entity.AppConfig, _ *fakeValidator) { cfg.API.HealthPath = "" },
			wantStatus:  entity.StatusDegraded,
			wantDetails: "Endpoint de saúde não configurado; prosseguindo com cautela.",
		},
		{
			name:        "no base URL",
			setup:       func(cfg *entity.AppConfig, _ *fakeValidator) { cfg.API.BaseURL = "" },
			wantStatus:  entity.StatusDegraded,
			wantDetails: "Endpoint de validação da API não configurado.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(entity.ProviderRemote)
			f := newAccessFixture(cfg)
			tc.setup(cfg, f.validator)
			f.initialize(t)

			ctx := f.svc.Context()
			assert.Equal(t, tc.wantStatus, ctx.AuthStatus)
			assert.Equal(t, tc.wantDetails, ctx.AuthDetails)
		})
	}
}

func TestAccessService_CheckRemoteHealthLocalNoop(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderLocal))
	f.initialize(t)

	f.svc.CheckRemoteHealth(context.Background())
	assert.Zero(t, f.validator.healthCalls)
}

func TestAccessService_ConfigReloadSwitchesProvider(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderLocal))
	f.validator.healthStatus = 200
	f.initialize(t)

	require.Equal(t, entity.ProviderLocal, f.svc.Context().AuthProvider)

	f.config.fireChange(nil, testConfig(entity.ProviderRemote))

	ctx := f.svc.Context()
	assert.Equal(t, entity.ProviderRemote, ctx.AuthProvider)
	assert.Equal(t, entity.StatusOnline, ctx.AuthStatus)

	// The registry watcher from the local provider was torn down.
	assert.Equal(t, 1, f.registry.unsubscribed)
}

func TestAccessService_ConfigReloadFailureKeepsPrevious(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderLocal))
	f.initialize(t)

	before := f.svc.Context()
	f.config.fireChange(errors.New("broken json"), nil)

	assert.Equal(t, before, f.svc.Context())
}

func TestAccessService_RegistryReload(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderLocal))
	f.initialize(t)

	f.registry.fireChange(nil, testUsers[:1])
	ctx := f.svc.Context()
	assert.Equal(t, entity.StatusOnline, ctx.AuthStatus)
	assert.Equal(t, "Base local carregada com 1 registro(s).", ctx.AuthDetails)

	// The second user is gone from the in-memory registry.
	_, err := f.svc.Authenticate(context.Background(), entity.Credentials{
		CPF:       "52998224725",
		OAB:       "RJ9876",
		BirthDate: "1985-12-31",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotAuthorized))

	// A broken reload keeps the last good user list and flags the status.
	f.registry.fireChange(errors.New("bad json"), nil)
	ctx = f.svc.Context()
	assert.Equal(t, entity.StatusDegraded, ctx.AuthStatus)
	assert.Equal(t, "Falha ao recarregar a base local; mantendo a versão anterior.", ctx.AuthDetails)

	user, err := f.svc.Authenticate(context.Background(), entity.Credentials{
		CPF:       "12345678909",
		OAB:       "SP123456",
		BirthDate: "1990-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", user.Name)
}

func TestAccessService_SubscribeAndUnsubscribe(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderLocal))

	var got []entity.AuthContext
	unsubscribe := f.svc.Subscribe(func(ctx entity.AuthContext) {
		got = append(got, ctx)
	})

	f.initialize(t)
	require.NotEmpty(t, got)
	assert.Equal(t, entity.StatusOnline, got[len(got)-1].AuthStatus)

	seen := len(got)
	unsubscribe()
	f.registry.fireChange(nil, testUsers[:1])
	assert.Len(t, got, seen)
}

func TestAccessService_ShutdownReleasesWatchers(t *testing.T) {
	f := newAccessFixture(testConfig(entity.ProviderLocal))
	require.NoError(t, f.svc.Initialize(context.Background()))

	f.svc.Shutdown()
	assert.Equal(t, 1, f.config.unsubscribed)
	assert.Equal(t, 1, f.registry.unsubscribed)

	// Idempotent.
	f.svc.Shutdown()
	assert.Equal(t, 1, f.config.unsubscribed)
}
