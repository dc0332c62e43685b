// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"guarita/internal/domain/entity"
	"guarita/internal/domain/repository"
)

// AccessUsecase is the access-control engine: it owns the active
// authentication provider, its liveness status, and the authentication
// decision itself. The delivery layer and the session lifecycle depend on
// this contract.
type AccessUsecase interface {
	// Initialize loads the operational configuration, wires the selected
	// provider and starts the config watcher. A failed first config load is
	// fatal; later reload failures keep the last good configuration.
	Initialize(ctx context.Context) error

	// Shutdown releases all watchers. Safe to call more than once.
	Shutdown()

	// Authenticate normalizes and validates the three credential factors,
	// then authenticates against the active provider. Validation failures
	// never reach any backend.
	Authenticate(ctx context.Context, creds entity.Credentials) (*entity.SessionUser, error)

	// CheckRemoteHealth probes the remote API health endpoint and updates
	// the auth context accordingly. A no-op under the local provider.
	CheckRemoteHealth(ctx context.Context)

	// Context returns the current read-only auth context snapshot.
	Context() entity.AuthContext

	// Subscribe registers a listener for auth context changes. The listener
	// is invoked after every state transition, outside internal locks.
	Subscribe(fn func(entity.AuthContext)) repository.Unsubscribe
}
