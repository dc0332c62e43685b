package service

import (
	"context"
	"time"

	"guarita/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrRemoteTimeout marks a remote call that hit its configured deadline.
// Callers distinguish it from other transport failures when deciding the
// provider status message.
var ErrRemoteTimeout = errors.New("request timed out")

// RemoteValidation carries the outcome of a credential validation call.
// StatusCode is always set when the request reached the server, regardless
// of the HTTP status. Only the remote user's public name is ever surfaced;
// arbitrary remote-supplied fields stop at the client.
type RemoteValidation struct {
	StatusCode int
	Success    bool
	Message    string
	UserName   string
}

// RemoteValidator talks to the central validation API. Credentials are
// normalized by the caller before validation. Timeouts are passed per call
// because they come from hot-reloadable configuration.
type RemoteValidator interface {
	Validate(ctx context.Context, url string, timeout time.Duration, creds entity.Credentials) (*RemoteValidation, error)
	Health(ctx context.Context, url string, timeout time.Duration) (int, error)
}
