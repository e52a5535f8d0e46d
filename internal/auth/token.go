package auth

import (
	"context"
	"errors"
)

// Static errors for err113 compliance.
var (
	ErrNoToken = errors.New("no token available")
)

// TokenManager supplies the bearer credential attached to every request
// issued by the command layer.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	SetToken(token string)
}

// StaticTokenManager holds one fixed token.
type StaticTokenManager struct {
	token string
}

// NewStaticTokenManager creates a token manager around a literal token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken implements TokenManager.GetToken.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	if m.token == "" {
		return "", ErrNoToken
	}

	return m.token, nil
}

// SetToken implements TokenManager.SetToken.
func (m *StaticTokenManager) SetToken(token string) {
	m.token = token
}

// SessionTokenManager defers to an externally-owned session store (the config
// file, a keychain) through a provider func, so the library never learns how
// tokens are persisted.
type SessionTokenManager struct {
	provider func() (string, error)
}

// NewSessionTokenManager creates a token manager around a session provider.
func NewSessionTokenManager(provider func() (string, error)) *SessionTokenManager {
	return &SessionTokenManager{provider: provider}
}

// GetToken implements TokenManager.GetToken.
func (m *SessionTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.provider()
	if err != nil {
		return "", err
	}

	if token == "" {
		return "", ErrNoToken
	}

	return token, nil
}

// SetToken implements TokenManager.SetToken. Session-backed tokens are
// written through the session store, not here.
func (m *SessionTokenManager) SetToken(token string) {}
