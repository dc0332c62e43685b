package entity

import (
	"strings"
	"time"
)

// AuthProvider selects the authentication backend in use.
type AuthProvider string

const (
	// ProviderLocal authenticates against the local trusted registry file.
	ProviderLocal AuthProvider = "local"
	// ProviderRemote authenticates against the central validation API.
	ProviderRemote AuthProvider = "remote"
)

// String returns the string representation of the AuthProvider.
func (p AuthProvider) String() string {
	return string(p)
}

// APIConfig holds the remote validation API endpoints and timeout.
type APIConfig struct {
	BaseURL      string `json:"baseUrl" koanf:"baseUrl"`
	ValidatePath string `json:"validatePath" koanf:"validatePath" validate:"required,startswith=/"`
	HealthPath   string `json:"healthPath" koanf:"healthPath" validate:"required,startswith=/"`
	TimeoutMs    int    `json:"timeoutMs" koanf:"timeoutMs" validate:"gt=0"`
}

// Timeout returns the configured API timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// ValidateURL returns the full credential validation endpoint, or empty
// when no base URL is configured.
func (c APIConfig) ValidateURL() string {
	return JoinURL(c.BaseURL, c.ValidatePath)
}

// HealthURL returns the full health endpoint, or empty when either the base
// URL or the health path is not configured.
func (c APIConfig) HealthURL() string {
	if c.HealthPath == "" {
		return ""
	}

	return JoinURL(c.BaseURL, c.HealthPath)
}

// JoinURL concatenates a base URL and a resource path with exactly one
// separator, regardless of trailing or leading slashes on either side.
// Returns empty when the base is empty.
func JoinURL(baseURL, resourcePath string) string {
	if baseURL == "" {
		return ""
	}
	if resourcePath == "" {
		return baseURL
	}

	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(resourcePath, "/")
}

// SessionConfig holds the role-keyed session durations and warning
// schedules, all expressed in minutes.
type SessionConfig struct {
	AdvogadoMinutes   int   `json:"advogadoMinutes" koanf:"advogadoMinutes" validate:"gt=0"`
	EstagiarioMinutes int   `json:"estagiarioMinutes" koanf:"estagiarioMinutes" validate:"gt=0"`
	WarningsAdv       []int `json:"warningsAdv" koanf:"warningsAdv" validate:"dive,gt=0"`
	WarningsEst       []int `json:"warningsEst" koanf:"warningsEst" validate:"dive,gt=0"`
}

// MinutesFor returns the configured session duration in minutes for a role.
func (c SessionConfig) MinutesFor(role Role) int {
	if role == RoleEstagiario {
		return c.EstagiarioMinutes
	}

	return c.AdvogadoMinutes
}

// WarningsFor returns the configured warning schedule in minutes for a role.
func (c SessionConfig) WarningsFor(role Role) []int {
	if role == RoleEstagiario {
		return c.WarningsEst
	}

	return c.WarningsAdv
}

// AppConfig is the hot-reloadable operational configuration. Each reload
// produces a whole new value merged over defaults; it is never mutated in
// place.
type AppConfig struct {
	AuthProvider AuthProvider  `json:"authProvider" koanf:"authProvider" validate:"oneof=local remote"`
	API          APIConfig     `json:"api" koanf:"api"`
	Session      SessionConfig `json:"session" koanf:"session"`
}
