// Package appconfig loads, merges and watches the operational configuration
// of the kiosk. Config read from the source is deep-merged over safe
// defaults per field, and the merged result is validated as a whole.
package appconfig

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"guarita/internal/domain/entity"
	"guarita/internal/domain/repository"

	"github.com/go-playground/validator/v10"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// debounceWindow coalesces change-notification bursts into one reload.
// Editors commonly write a file several times per save.
const debounceWindow = 200 * time.Millisecond

// Defaults returns the built-in configuration used when the config source
// is absent, and as the base layer of every merge.
func Defaults() *entity.AppConfig {
	cfg := &entity.AppConfig{AuthProvider: entity.ProviderLocal}
	cfg.API.BaseURL = ""
	cfg.API.ValidatePath = "/api/v1/advogados/validar"
	cfg.API.HealthPath = "/health"
	cfg.API.TimeoutMs = 8000
	cfg.Session.AdvogadoMinutes = 180
	cfg.Session.EstagiarioMinutes = 120
	cfg.Session.WarningsAdv = []int{150, 120, 90, 30, 10}
	cfg.Session.WarningsEst = []int{90, 60, 30, 10}

	return cfg
}

func defaultsMap() map[string]any {
	defaults := Defaults()

	return map[string]any{
		"authProvider": defaults.AuthProvider.String(),
		"api": map[string]any{
			"baseUrl":      defaults.API.BaseURL,
			"validatePath": defaults.API.ValidatePath,
			"healthPath":   defaults.API.HealthPath,
			"timeoutMs":    defaults.API.TimeoutMs,
		},
		"session": map[string]any{
			"advogadoMinutes":   defaults.Session.AdvogadoMinutes,
			"estagiarioMinutes": defaults.Session.EstagiarioMinutes,
			"warningsAdv":       defaults.Session.WarningsAdv,
			"warningsEst":       defaults.Session.WarningsEst,
		},
	}
}

// Store reads the app configuration from an injected source.
type Store struct {
	source   repository.Source
	validate *validator.Validate
	debounce time.Duration
}

// New creates a configuration store over the given source.
func New(src repository.Source) *Store {
	return newStore(src, debounceWindow)
}

func newStore(src repository.Source, debounce time.Duration) *Store {
	validate := validator.New()
	// Report violations under the json field names the operator actually
	// writes in the config file.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return &Store{
		source:   src,
		validate: validate,
		debounce: debounce,
	}
}

// Load reads the source and produces a complete AppConfig. An absent source
// is not an error: the defaults are returned unmodified. Present but
// unparsable content fails with a descriptive error. Otherwise the parsed
// document is deep-merged over the defaults per field and the merged result
// is validated; validation reports every violation at once.
func (s *Store) Load() (*entity.AppConfig, error) {
	payload, err := s.source.Load()
	if err != nil {
		if errors.Is(err, repository.ErrSourceNotFound) {
			return Defaults(), nil
		}

		return nil, errors.Wrap(err, "read app config")
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "load config defaults")
	}
	if err := k.Load(rawbytes.Provider(payload), kjson.Parser()); err != nil {
		return nil, errors.Wrap(err, "app config file contains invalid JSON")
	}

	cfg := &entity.AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal app config")
	}

	if err := s.validateMerged(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateMerged checks the invariants of the merged configuration and
// aggregates all violations into a single error.
func (s *Store) validateMerged(cfg *entity.AppConfig) error {
	err := s.validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate app config")
	}

	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		// Namespace is e.g. "AppConfig.session.advogadoMinutes"; drop the
		// struct name so the message matches the file layout.
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		violations = append(violations, path+" violates rule "+fe.Tag())
	}

	return errors.Errorf("invalid app config: %s", strings.Join(violations, "; "))
}

// Watch subscribes to change notifications, debouncing bursts into a single
// reload, then invokes onChange with the reload outcome. After unsubscribe
// returns, onChange is never invoked again: Stop cannot cancel an AfterFunc
// callback already running, so delivery rechecks the closed flag under the
// same mutex unsubscribe takes.
func (s *Store) Watch(onChange func(error, *entity.AppConfig)) (repository.Unsubscribe, error) {
	var mu sync.Mutex
	var timer *time.Timer
	var closed bool

	unsubscribe, err := s.source.Watch(func() {
		mu.Lock()
		defer mu.Unlock()

		if closed {
			return
		}
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(s.debounce, func() {
			cfg, err := s.Load()

			mu.Lock()
			defer mu.Unlock()

			if closed {
				return
			}
			if err != nil {
				onChange(err, nil)

				return
			}

			onChange(nil, cfg)
		})
	})
	if err != nil {
		return nil, err
	}

	return func() {
		mu.Lock()
		closed = true
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()

		unsubscribe()
	}, nil
}
