package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"guarita/config"
	"guarita/internal/delivery"
	"guarita/internal/delivery/http"
	"guarita/internal/delivery/http/middleware"
	"guarita/internal/delivery/http/router/handler"
	"guarita/internal/domain/entity"
	"guarita/internal/domain/repository"
	"guarita/internal/domain/service"
	"guarita/internal/infra/appconfig"
	"guarita/internal/infra/audit"
	"guarita/internal/infra/kiosklock"
	logs "guarita/internal/infra/log"
	"guarita/internal/infra/presenter"
	"guarita/internal/infra/registry"
	"guarita/internal/infra/remote"
	"guarita/internal/infra/source"
	"guarita/internal/usecase"
	"guarita/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startEngine,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		newKioskLock,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newUserRegistry,
			newConfigStore,
			newAuditTrail,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newRemoteValidator,
			presenter.NewLogPresenter,
		),
	)
}

func newUserRegistry(cfg *config.Config) repository.UserRegistry {
	return registry.New(source.NewFile(cfg.Kiosk.RegistryFile))
}

func newConfigStore(cfg *config.Config) repository.ConfigStore {
	return appconfig.New(source.NewFile(cfg.Kiosk.AppConfigFile))
}

type auditParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
}

func newAuditTrail(params auditParams) (repository.AuditTrail, error) {
	path := params.Config.Kiosk.AuditFile
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create audit dir")
	}

	trail, err := audit.Open(path)
	if err != nil {
		return nil, err
	}

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return trail.Close()
		},
	})

	return trail, nil
}

func newRemoteValidator(logger *slog.Logger) service.RemoteValidator {
	return remote.NewClient(logger)
}

func newKioskLock(cfg *config.Config, logger *slog.Logger) *kiosklock.Manager {
	return kiosklock.NewManager(cfg.Kiosk.LockFile, logger)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAccessService,
			impl.NewSessionService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewSessionHandler,
			handler.NewContextHandler,
			handler.NewAuditHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

type engineParams struct {
	fx.In
	fx.Lifecycle

	Access    usecase.AccessUsecase
	Session   usecase.SessionUsecase
	Lock      *kiosklock.Manager
	Presenter service.Presenter
	Logger    *slog.Logger
}

// startEngine boots the access-control engine: initial config load, login
// view, and the tamper watch on the kiosk lock file.
func startEngine(ctx context.Context, params engineParams) error {
	if err := params.Access.Initialize(ctx); err != nil {
		return errors.Wrap(err, "initialize access engine")
	}

	params.Presenter.CreateLoginView()

	unsubLock, err := params.Lock.Watch(func() {
		if params.Session.Release(entity.ReleaseTampered) {
			params.Logger.Warn("Session force-released after kiosk lock tampering")
		}
	})
	if err != nil {
		params.Logger.Warn("Kiosk lock watch unavailable", slog.Any("error", err))
	}

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			params.Session.Release(entity.ReleaseShutdown)
			if unsubLock != nil {
				unsubLock()
			}
			params.Access.Shutdown()
			params.Presenter.HideAll()

			return nil
		},
	})

	return nil
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
