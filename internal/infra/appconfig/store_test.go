package appconfig

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"guarita/internal/domain/entity"
	"guarita/internal/infra/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadAbsentSourceReturnsDefaults(t *testing.T) {
	src := source.NewMemory(nil)
	src.SetAbsent()

	cfg, err := New(src).Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, entity.ProviderLocal, cfg.AuthProvider)
	assert.Equal(t, 180, cfg.Session.AdvogadoMinutes)
	assert.Equal(t, []int{150, 120, 90, 30, 10}, cfg.Session.WarningsAdv)
}

func TestStore_LoadMergesOverDefaultsPerField(t *testing.T) {
	payload := `{
		"authProvider": "remote",
		"api": {"baseUrl": "https://oab.example.org", "timeoutMs": 2500},
		"session": {"estagiarioMinutes": 90}
	}`

	cfg, err := New(source.NewMemory([]byte(payload))).Load()
	require.NoError(t, err)

	assert.Equal(t, entity.ProviderRemote, cfg.AuthProvider)
	assert.Equal(t, "https://oab.example.org", cfg.API.BaseURL)
	assert.Equal(t, 2500, cfg.API.TimeoutMs)
	assert.Equal(t, 90, cfg.Session.EstagiarioMinutes)

	// Untouched fields keep their defaults.
	assert.Equal(t, "/api/v1/advogados/validar", cfg.API.ValidatePath)
	assert.Equal(t, "/health", cfg.API.HealthPath)
	assert.Equal(t, 180, cfg.Session.AdvogadoMinutes)
	assert.Equal(t, []int{90, 60, 30, 10}, cfg.Session.WarningsEst)
}

func TestStore_LoadInvalidJSON(t *testing.T) {
	_, err := New(source.NewMemory([]byte(`{"authProvider": `))).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestStore_LoadValidationAggregatesAllViolations(t *testing.T) {
	payload := `{
		"authProvider": "carrier-pigeon",
		"api": {"timeoutMs": 0, "healthPath": "health"},
		"session": {"advogadoMinutes": -5, "warningsAdv": [30, -1]}
	}`

	_, err := New(source.NewMemory([]byte(payload))).Load()
	require.Error(t, err)

	// Every violation shows up in the one reported error.
	assert.Contains(t, err.Error(), "authProvider")
	assert.Contains(t, err.Error(), "api.timeoutMs")
	assert.Contains(t, err.Error(), "api.healthPath")
	assert.Contains(t, err.Error(), "session.advogadoMinutes")
	assert.Contains(t, err.Error(), "session.warningsAdv")
}

func TestStore_WatchDebouncesBursts(t *testing.T) {
	src := source.NewMemory([]byte(`{}`))
	store := newStore(src, 20*time.Millisecond)

	var reloads atomic.Int32
	var mu sync.Mutex
	var lastCfg *entity.AppConfig

	unsubscribe, err := store.Watch(func(err error, cfg *entity.AppConfig) {
		require.NoError(t, err)
		reloads.Add(1)
		mu.Lock()
		lastCfg = cfg
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsubscribe()

	// A burst of notifications within the debounce window coalesces into a
	// single reload.
	src.Set([]byte(`{"session": {"advogadoMinutes": 60}}`))
	src.Notify()
	src.Notify()

	assert.Eventually(t, func() bool {
		return reloads.Load() == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, lastCfg)
	assert.Equal(t, 60, lastCfg.Session.AdvogadoMinutes)
}

// slowSource blocks reads until released, so a test can unsubscribe while
// a debounced reload is still in flight.
type slowSource struct {
	*source.Memory
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (s *slowSource) Load() ([]byte, error) {
	s.once.Do(func() { close(s.started) })
	<-s.release

	return s.Memory.Load()
}

func TestStore_WatchNeverDeliversAfterUnsubscribe(t *testing.T) {
	src := &slowSource{
		Memory:  source.NewMemory([]byte(`{}`)),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := newStore(src, time.Millisecond)

	var reloads atomic.Int32
	unsubscribe, err := store.Watch(func(error, *entity.AppConfig) { reloads.Add(1) })
	require.NoError(t, err)

	src.Notify()

	select {
	case <-src.started:
	case <-time.After(time.Second):
		t.Fatal("debounced reload never started")
	}

	// The reload is mid-read; stopping the timer cannot cancel it, but the
	// outcome must still be dropped.
	unsubscribe()
	close(src.release)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), reloads.Load())
}

func TestStore_WatchReportsLoadFailure(t *testing.T) {
	src := source.NewMemory([]byte(`{}`))
	store := newStore(src, time.Millisecond)

	var mu sync.Mutex
	var gotErr error
	unsubscribe, err := store.Watch(func(err error, _ *entity.AppConfig) {
		mu.Lock()
		gotErr = err
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsubscribe()

	src.Set([]byte(`not json`))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return gotErr != nil
	}, time.Second, 5*time.Millisecond)
}
