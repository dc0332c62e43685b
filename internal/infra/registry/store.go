// Package registry loads and watches the local trusted-user registry: an
// ordered JSON array of authorized users kept on the kiosk itself as the
// contingency authentication base.
package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"guarita/internal/domain/credential"
	"guarita/internal/domain/entity"
	"guarita/internal/domain/repository"

	"github.com/pkg/errors"
)

// rawEntry mirrors the on-disk shape of one registry record before
// normalization.
type rawEntry struct {
	Name      string `json:"name"`
	CPF       string `json:"cpf"`
	OAB       string `json:"oab"`
	BirthDate string `json:"birthDate"`
	Type      string `json:"type"`
}

// Store reads the registry from an injected source. A load failure rejects
// the whole registry; there is never a partial one.
type Store struct {
	source repository.Source
}

// New creates a registry store over the given source.
func New(src repository.Source) *Store {
	return &Store{source: src}
}

// Load reads and parses the registry. It fails when the source is
// unreadable, the content is not valid JSON, the top-level value is not an
// array, or any entry carries an invalid identity field. Entry failures
// name the 1-based position of the offending record.
func (s *Store) Load() ([]entity.AuthorizedUser, error) {
	payload, err := s.source.Load()
	if err != nil {
		return nil, errors.Wrap(err, "read authorized users")
	}

	var raw []rawEntry
	if err := json.Unmarshal(payload, &raw); err != nil {
		// Distinguish a non-array top level from malformed JSON.
		var probe any
		if probeErr := json.Unmarshal(payload, &probe); probeErr == nil {
			return nil, errors.New("authorized users file must contain an array of users")
		}

		return nil, errors.Wrap(err, "authorized users file contains invalid JSON")
	}

	users := make([]entity.AuthorizedUser, 0, len(raw))
	for i, entry := range raw {
		user, err := normalizeEntry(entry, i+1)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

func normalizeEntry(entry rawEntry, position int) (entity.AuthorizedUser, error) {
	cpf := credential.NormalizeCPF(entry.CPF)
	oab := credential.NormalizeOAB(entry.OAB)
	birthDate := credential.NormalizeBirthDate(entry.BirthDate)

	if !credential.ValidateCPF(cpf) {
		return entity.AuthorizedUser{}, errors.Errorf("invalid CPF for user at position %d", position)
	}
	if !credential.ValidateOAB(oab) {
		return entity.AuthorizedUser{}, errors.Errorf("invalid OAB for user at position %d", position)
	}
	if !credential.ValidateBirthDate(birthDate) {
		return entity.AuthorizedUser{}, errors.Errorf("invalid birth date for user at position %d", position)
	}

	name := strings.TrimSpace(entry.Name)
	if name == "" {
		name = fmt.Sprintf("Usuário %d", position)
	}

	role := entity.RoleAdvogado
	if strings.Contains(strings.ToLower(entry.Type), "estagi") {
		role = entity.RoleEstagiario
	}

	return entity.AuthorizedUser{
		Name:      name,
		CPF:       cpf,
		OAB:       oab,
		BirthDate: birthDate,
		Role:      role,
	}, nil
}

// Watch subscribes to change notifications on the source; each notification
// re-runs Load and hands the outcome to onChange. onChange never receives a
// partially loaded registry.
func (s *Store) Watch(onChange func(error, []entity.AuthorizedUser)) (repository.Unsubscribe, error) {
	return s.source.Watch(func() {
		users, err := s.Load()
		if err != nil {
			onChange(err, nil)

			return
		}

		onChange(nil, users)
	})
}
