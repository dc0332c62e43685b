package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"guarita/internal/domain/entity"
	"guarita/internal/domain/repository"
	"guarita/internal/domain/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig builds a complete operational config for the given provider.
func testConfig(provider entity.AuthProvider) *entity.AppConfig {
	cfg := &entity.AppConfig{AuthProvider: provider}
	cfg.API.BaseURL = "https://api.example.org"
	cfg.API.ValidatePath = "/api/v1/advogados/validar"
	cfg.API.HealthPath = "/health"
	cfg.API.TimeoutMs = 8000
	cfg.Session.AdvogadoMinutes = 180
	cfg.Session.EstagiarioMinutes = 120
	cfg.Session.WarningsAdv = []int{150, 120, 90, 30, 10}
	cfg.Session.WarningsEst = []int{90, 60, 30, 10}

	return cfg
}

var testUsers = []entity.AuthorizedUser{
	{Name: "Ana Souza", CPF: "12345678909", OAB: "SP123456", BirthDate: "1990-01-01", Role: entity.RoleAdvogado},
	{Name: "Bruno Lima", CPF: "52998224725", OAB: "RJ9876", BirthDate: "1985-12-31", Role: entity.RoleEstagiario},
}

// --- fakes ---

type fakeConfigStore struct {
	mu           sync.Mutex
	cfg          *entity.AppConfig
	loadErr      error
	onChange     func(error, *entity.AppConfig)
	unsubscribed int
}

func (f *fakeConfigStore) Load() (*entity.AppConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loadErr != nil {
		return nil, f.loadErr
	}

	return f.cfg, nil
}

func (f *fakeConfigStore) Watch(onChange func(error, *entity.AppConfig)) (repository.Unsubscribe, error) {
	f.mu.Lock()
	f.onChange = onChange
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		f.unsubscribed++
		f.mu.Unlock()
	}, nil
}

func (f *fakeConfigStore) fireChange(err error, cfg *entity.AppConfig) {
	f.mu.Lock()
	onChange := f.onChange
	f.mu.Unlock()

	onChange(err, cfg)
}

type fakeRegistry struct {
	mu           sync.Mutex
	users        []entity.AuthorizedUser
	loadErr      error
	onChange     func(error, []entity.AuthorizedUser)
	unsubscribed int
}

func (f *fakeRegistry) Load() ([]entity.AuthorizedUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loadErr != nil {
		return nil, f.loadErr
	}

	return f.users, nil
}

func (f *fakeRegistry) Watch(onChange func(error, []entity.AuthorizedUser)) (repository.Unsubscribe, error) {
	f.mu.Lock()
	f.onChange = onChange
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		f.unsubscribed++
		f.mu.Unlock()
	}, nil
}

func (f *fakeRegistry) fireChange(err error, users []entity.AuthorizedUser) {
	f.mu.Lock()
	onChange := f.onChange
	f.mu.Unlock()

	onChange(err, users)
}

type fakeValidator struct {
	mu            sync.Mutex
	result        *service.RemoteValidation
	validateErr   error
	healthStatus  int
	healthErr     error
	validateCalls int
	healthCalls   int
	lastURL       string
	lastCreds     entity.Credentials
}

func (f *fakeValidator) Validate(_ context.Context, url string, _ time.Duration, creds entity.Credentials) (*service.RemoteValidation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.validateCalls++
	f.lastURL = url
	f.lastCreds = creds

	if f.validateErr != nil {
		return nil, f.validateErr
	}

	return f.result, nil
}

func (f *fakeValidator) Health(_ context.Context, url string, _ time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.healthCalls++
	f.lastURL = url

	if f.healthErr != nil {
		return 0, f.healthErr
	}

	return f.healthStatus, nil
}

type fakePresenter struct {
	mu             sync.Mutex
	loginViews     int
	sessionWidgets int
	showLogins     int
	hides          int
	broadcasts     []entity.AuthContext
}

func (f *fakePresenter) CreateLoginView() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginViews++
}

func (f *fakePresenter) CreateSessionWidget() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionWidgets++
}

func (f *fakePresenter) ShowLoginView() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.showLogins++
}

func (f *fakePresenter) HideAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hides++
}

func (f *fakePresenter) Broadcast(ctx entity.AuthContext) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, ctx)
}

func (f *fakePresenter) lastBroadcast() (entity.AuthContext, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.broadcasts) == 0 {
		return entity.AuthContext{}, false
	}

	return f.broadcasts[len(f.broadcasts)-1], true
}

type fakeTrail struct {
	mu        sync.Mutex
	records   []entity.SessionRecord
	recordErr error
}

func (f *fakeTrail) Record(record entity.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.recordErr != nil {
		return f.recordErr
	}
	f.records = append(f.records, record)

	return nil
}

func (f *fakeTrail) Recent(limit int) ([]entity.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit > len(f.records) {
		limit = len(f.records)
	}
	recent := make([]entity.SessionRecord, 0, limit)
	for i := len(f.records) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, f.records[i])
	}

	return recent, nil
}

// fakeAccess satisfies AccessUsecase for session tests; only Context matters.
type fakeAccess struct {
	session entity.SessionConfig
}

func (f *fakeAccess) Initialize(context.Context) error { return nil }

func (f *fakeAccess) Shutdown() {}

func (f *fakeAccess) Authenticate(context.Context, entity.Credentials) (*entity.SessionUser, error) {
	return nil, nil
}

func (f *fakeAccess) CheckRemoteHealth(context.Context) {}

func (f *fakeAccess) Context() entity.AuthContext {
	return entity.AuthContext{Session: f.session}
}

func (f *fakeAccess) Subscribe(func(entity.AuthContext)) repository.Unsubscribe {
	return func() {}
}
