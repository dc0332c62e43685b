// Package delivery defines the contract every transport front-end of the
// daemon fulfills.
package delivery

import "context"

// Delivery is a long-running transport surface, started once at boot.
type Delivery interface {
	Serve(ctx context.Context) error
}
