package static

import (
	"context"
	"strings"

	"github.com/crmarques/boxctl/credentials"
	"github.com/crmarques/boxctl/faults"
)

var _ credentials.Store = (*Store)(nil)

// Store serves a token supplied through configuration. It cannot generate one.
type Store struct {
	token string
}

func NewStore(token string) *Store {
	return &Store{token: strings.TrimSpace(token)}
}

func (s *Store) Read(context.Context) (string, bool, error) {
	return s.token, s.token != "", nil
}

func (s *Store) Generate(context.Context) error {
	return faults.NewTypedError(
		faults.CredentialError,
		"credentials.token is empty and a static token cannot be generated",
		nil,
	)
}
