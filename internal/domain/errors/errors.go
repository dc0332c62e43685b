// Package errors defines the application error taxonomy. Internal components
// raise these typed failures; only the access-control and session services
// translate them into user-facing context, and the presentation layer never
// inspects anything beyond status and message.
package errors

import (
	"net/http"

	"github.com/pkg/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types. User-facing messages are pt-BR, the language of
// the kiosk screens.
var (
	// Credential validation errors (never retried, surfaced immediately)
	ErrCredentialsMissing = NewBaseError(
		http.StatusBadRequest,
		"CREDENTIALS_MISSING",
		"Nenhum dado de acesso foi informado.",
		"",
	)

	ErrCredentialsInvalid = NewBaseError(
		http.StatusBadRequest,
		"CREDENTIALS_INVALID",
		"Dados de acesso inválidos.",
		"",
	)

	// Not-found errors: deliberately generic so a caller cannot tell which
	// factor was wrong.
	ErrUserNotAuthorized = NewBaseError(
		http.StatusUnauthorized,
		"USER_NOT_AUTHORIZED",
		"Credenciais não localizadas na base local.",
		"",
	)

	ErrRemoteRejected = NewBaseError(
		http.StatusUnauthorized,
		"REMOTE_REJECTED",
		"Acesso negado pela API.",
		"",
	)

	// Transient I/O errors (downgrade status, retried only by the next
	// natural trigger)
	ErrRemoteUnavailable = NewBaseError(
		http.StatusBadGateway,
		"REMOTE_UNAVAILABLE",
		"Não foi possível validar as credenciais na API. Tente novamente ou contacte o suporte.",
		"",
	)

	ErrRemoteTimeout = NewBaseError(
		http.StatusGatewayTimeout,
		"REMOTE_TIMEOUT",
		"Tempo de espera excedido.",
		"",
	)

	ErrRemoteNotConfigured = NewBaseError(
		http.StatusServiceUnavailable,
		"REMOTE_NOT_CONFIGURED",
		"Endpoint de validação da API não configurado.",
		"",
	)

	// Registry / configuration errors
	ErrRegistryInvalid = NewBaseError(
		http.StatusInternalServerError,
		"REGISTRY_INVALID",
		"O arquivo de usuários autorizados é inválido.",
		"",
	)

	ErrConfigInvalid = NewBaseError(
		http.StatusInternalServerError,
		"CONFIG_INVALID",
		"A configuração da aplicação é inválida.",
		"",
	)

	// Session lifecycle errors
	ErrSessionActive = NewBaseError(
		http.StatusConflict,
		"SESSION_ACTIVE",
		"Já existe uma sessão ativa nesta estação.",
		"",
	)

	ErrNoSession = NewBaseError(
		http.StatusNotFound,
		"NO_SESSION",
		"Nenhuma sessão ativa.",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Erro interno do sistema.",
		"",
	)
)
