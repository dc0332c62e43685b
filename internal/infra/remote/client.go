// Package remote is the HTTP client for the central validation API used
// when the kiosk runs with the remote authentication provider.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"guarita/internal/domain/entity"
	"guarita/internal/domain/service"

	"github.com/pkg/errors"
)

// ErrTimeout marks a request that hit the configured deadline.
var ErrTimeout = service.ErrRemoteTimeout

// validatePayload is the credential payload POSTed to the validation
// endpoint.
type validatePayload struct {
	CPF       string `json:"cpf"`
	OAB       string `json:"oab"`
	BirthDate string `json:"birthDate"`
}

// validateBody mirrors the wire response of the validation endpoint.
type validateBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *struct {
		Name string `json:"name"`
	} `json:"user"`
}

// Client talks to the validation API. It implements
// service.RemoteValidator.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a validation API client.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Validate POSTs the normalized credentials to the given URL, bounded by
// the given timeout. A reachable server always yields a result; transport
// failures yield an error (ErrTimeout when the deadline was hit).
func (c *Client) Validate(ctx context.Context, url string, timeout time.Duration, creds entity.Credentials) (*service.RemoteValidation, error) {
	body, err := json.Marshal(validatePayload{
		CPF:       creds.CPF,
		OAB:       creds.OAB,
		BirthDate: creds.BirthDate,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(reqCtx, err, "validate credentials")
	}
	defer resp.Body.Close()

	parsed := parseBody(resp.Body)

	result := &service.RemoteValidation{
		StatusCode: resp.StatusCode,
		Success:    parsed.Success,
		Message:    parsed.Message,
	}
	if parsed.User != nil {
		result.UserName = parsed.User.Name
	}

	c.logger.Debug("Validation API responded",
		slog.Int("status", resp.StatusCode),
		slog.Bool("success", result.Success),
	)

	return result, nil
}

// Health probes the health endpoint and returns the HTTP status code.
func (c *Client) Health(ctx context.Context, url string, timeout time.Duration) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, c.transportError(reqCtx, err, "health check")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

func (c *Client) transportError(ctx context.Context, err error, op string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrap(ErrTimeout, op)
	}

	return errors.Wrap(err, op)
}

// parseBody decodes the response body leniently: a body that is not valid
// JSON is treated as empty rather than as a transport failure.
func parseBody(r io.Reader) validateBody {
	var parsed validateBody
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return validateBody{}
	}

	return parsed
}
