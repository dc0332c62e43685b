package repository

import "guarita/internal/domain/entity"

// UserRegistry loads and watches the local trusted-user registry. Load
// rejects the whole registry on any invalid entry; watchers never observe a
// partial one.
type UserRegistry interface {
	Load() ([]entity.AuthorizedUser, error)
	Watch(onChange func(error, []entity.AuthorizedUser)) (Unsubscribe, error)
}

// ConfigStore loads and watches the hot-reloadable operational
// configuration. Load always yields a complete configuration merged over
// defaults, or an error describing every violation.
type ConfigStore interface {
	Load() (*entity.AppConfig, error)
	Watch(onChange func(error, *entity.AppConfig)) (Unsubscribe, error)
}
