package entity

// AuthStatus reflects the liveness of the active authentication provider.
type AuthStatus string

const (
	// StatusChecking means a health probe or bootstrap is in flight.
	StatusChecking AuthStatus = "checking"
	// StatusOnline means the provider is ready to authenticate.
	StatusOnline AuthStatus = "online"
	// StatusOffline means the provider is unreachable or broken.
	StatusOffline AuthStatus = "offline"
	// StatusDegraded means the provider answered but not healthily; proceed
	// with caution.
	StatusDegraded AuthStatus = "degraded"
)

// String returns the string representation of the AuthStatus.
func (s AuthStatus) String() string {
	return string(s)
}

// AuthContext is the read-only projection broadcast to the presentation
// layer on every state change. It is always replaced wholesale, never
// partially mutated in view of readers.
type AuthContext struct {
	AuthProvider AuthProvider  `json:"authProvider"`
	AuthStatus   AuthStatus    `json:"authStatus"`
	AuthDetails  string        `json:"authDetails"`
	APIBaseURL   string        `json:"apiBaseUrl"`
	Session      SessionConfig `json:"session"`
}
