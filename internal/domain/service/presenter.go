// Package service declares interfaces for external collaborators consumed
// by the use cases. Implementations live under internal/infra.
package service

import "guarita/internal/domain/entity"

// Presenter is the window/presentation layer of the kiosk shell. It is out
// of scope for this daemon: the shell decides how views are shown, hidden
// and resized; the daemon only tells it when.
type Presenter interface {
	// CreateLoginView prepares the locked login screen.
	CreateLoginView()
	// CreateSessionWidget shows the floating countdown widget.
	CreateSessionWidget()
	// ShowLoginView returns the kiosk to the locked login state.
	ShowLoginView()
	// HideAll hides every open view.
	HideAll()
	// Broadcast fans an auth context change out to every open view.
	Broadcast(ctx entity.AuthContext)
}
