package credentials

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"

	"github.com/crmarques/boxctl/faults"
)

// Store is the backing location of the BoxBilling admin API token.
type Store interface {
	// Read returns the current token; ok is false when none is stored.
	Read(ctx context.Context) (token string, ok bool, err error)
	// Generate stores a fresh token. It must not overwrite an existing one.
	Generate(ctx context.Context) error
}

type Provider interface {
	Token(ctx context.Context) (string, error)
}

var _ Provider = (*TokenProvider)(nil)

// TokenProvider reads the admin token and generates it at most once per
// lookup when it is missing. Nothing is cached between lookups.
type TokenProvider struct {
	store Store
	group singleflight.Group
}

func NewTokenProvider(store Store) *TokenProvider {
	return &TokenProvider{store: store}
}

func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	if p == nil || p.store == nil {
		return "", faults.NewTypedError(faults.CredentialError, "credential store is not configured", nil)
	}

	if err := ctx.Err(); err != nil {
		return "", credentialError("admin API token lookup was canceled", err)
	}

	// The shared lookup outlives any single caller's cancellation; each caller
	// stops waiting on its own context.
	flight := p.group.DoChan("token", func() (any, error) {
		return p.lookup(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return "", credentialError("admin API token lookup was canceled", ctx.Err())
	case result := <-flight:
		if result.Err != nil {
			return "", result.Err
		}
		token, _ := result.Val.(string)
		return token, nil
	}
}

func (p *TokenProvider) lookup(ctx context.Context) (string, error) {
	logger := logr.FromContextOrDiscard(ctx)

	token, ok, err := p.store.Read(ctx)
	if err != nil {
		return "", credentialError("failed to read admin API token", err)
	}
	if ok {
		return token, nil
	}

	logger.V(1).Info("admin API token absent, generating")
	if err := p.store.Generate(ctx); err != nil {
		return "", credentialError("failed to generate admin API token", err)
	}

	token, ok, err = p.store.Read(ctx)
	if err != nil {
		return "", credentialError("failed to read generated admin API token", err)
	}
	if !ok {
		return "", credentialError("admin API token is still absent after generation", nil)
	}
	logger.Info("generated admin API token")
	return token, nil
}

const (
	TokenLength   = 32
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewToken returns a random alphanumeric token of TokenLength characters.
func NewToken() (string, error) {
	limit := big.NewInt(int64(len(tokenAlphabet)))
	buffer := make([]byte, TokenLength)
	for idx := range buffer {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", faults.NewTypedError(faults.InternalError, "failed to generate random token", err)
		}
		buffer[idx] = tokenAlphabet[n.Int64()]
	}
	return string(buffer), nil
}

func credentialError(message string, cause error) error {
	return faults.NewTypedError(faults.CredentialError, message, cause)
}
