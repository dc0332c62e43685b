// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

// Role represents the professional role of an authorized user. The role
// decides how long a workstation session lasts and which warning schedule
// applies.
type Role string

const (
	// RoleAdvogado indicates a bar-admitted attorney.
	RoleAdvogado Role = "advogado"
	// RoleEstagiario indicates a supervised intern.
	RoleEstagiario Role = "estagiario"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdvogado, RoleEstagiario:
		return true
	default:
		return false
	}
}

// Credentials is the raw three-factor input presented at the kiosk login
// screen. It is transient: always normalized before use, never persisted.
type Credentials struct {
	CPF       string `json:"cpf"`
	OAB       string `json:"oab"`
	BirthDate string `json:"birthDate"`
}

// AuthorizedUser is one entry of the local trusted registry. All identity
// fields are stored in normalized form and have passed validation at load
// time; the whole registry is rejected otherwise.
type AuthorizedUser struct {
	Name      string `json:"name"`
	CPF       string `json:"cpf"`       // 11 digits, check digits verified
	OAB       string `json:"oab"`       // upper-case, 2-3 letters + 4-6 digits
	BirthDate string `json:"birthDate"` // ISO-8601 date
	Role      Role   `json:"type"`
}

// SessionUser is the narrowed, public view of an authenticated user handed
// to the session lifecycle. Remote authentication only ever fills Name; the
// remaining fields come from the local registry when available.
type SessionUser struct {
	Name string `json:"name"`
	CPF  string `json:"cpf,omitempty"`
	OAB  string `json:"oab,omitempty"`
	Role Role   `json:"type"`
}
