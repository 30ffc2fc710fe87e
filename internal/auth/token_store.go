package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSet is the token triple issued by the identity provider. A refresh
// response may omit RefreshToken, in which case the previous one is kept.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
}

func (t TokenSet) Empty() bool {
	return t.IDToken == "" && t.AccessToken == ""
}

// Claims are the id-token fields this client cares about. The token is
// decoded without signature verification: the backend verifies signatures,
// the client only reads claims to drive local state (same trust model as
// the hosted identity SDK).
type Claims struct {
	Subject   string
	Email     string
	Groups    []string
	ExpiresAt time.Time
}

const groupsClaim = "cognito:groups"

func decodeClaims(idToken string) (Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(idToken, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("decode id token: %w", err)
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("decode id token: unexpected claims type")
	}

	var claims Claims
	claims.Subject, _ = mc.GetSubject()
	claims.Email, _ = mc["email"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if raw, ok := mc[groupsClaim].([]any); ok {
		for _, g := range raw {
			if s, ok := g.(string); ok {
				claims.Groups = append(claims.Groups, s)
			}
		}
	}
	return claims, nil
}

// TokenPersistence is durable storage for the token triple. Implementations
// are injected; nothing in this package touches ambient storage.
type TokenPersistence interface {
	Load(ctx context.Context) (TokenSet, error)
	Save(ctx context.Context, set TokenSet) error
	Clear(ctx context.Context) error
}

// TokenStore holds the current token triple and its parsed claims so other
// components never decode tokens themselves.
type TokenStore struct {
	mu          sync.RWMutex
	persistence TokenPersistence
	set         TokenSet
	claims      Claims
	now         func() time.Time
}

func NewTokenStore(persistence TokenPersistence) *TokenStore {
	return &TokenStore{persistence: persistence, now: time.Now}
}

// Restore loads the persisted triple. ErrNoSession when nothing is stored.
func (t *TokenStore) Restore(ctx context.Context) error {
	set, err := t.persistence.Load(ctx)
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}
	if set.Empty() {
		return ErrNoSession
	}
	return t.apply(ctx, set, false)
}

// Set replaces the current triple and persists it. An empty refresh token
// in the new set keeps the previous refresh token.
func (t *TokenStore) Set(ctx context.Context, set TokenSet) error {
	return t.apply(ctx, set, true)
}

func (t *TokenStore) apply(ctx context.Context, set TokenSet, persist bool) error {
	claims, err := decodeClaims(set.IDToken)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if set.RefreshToken == "" {
		set.RefreshToken = t.set.RefreshToken
	}
	t.set = set
	t.claims = claims
	t.mu.Unlock()

	if persist {
		if err := t.persistence.Save(ctx, set); err != nil {
			return fmt.Errorf("save tokens: %w", err)
		}
	}
	return nil
}

func (t *TokenStore) Clear(ctx context.Context) error {
	t.mu.Lock()
	t.set = TokenSet{}
	t.claims = Claims{}
	t.mu.Unlock()
	return t.persistence.Clear(ctx)
}

func (t *TokenStore) AccessToken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.set.AccessToken
}

func (t *TokenStore) RefreshToken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.set.RefreshToken
}

// Claims returns the parsed id-token claims; false when no token is held.
func (t *TokenStore) Claims() (Claims, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.set.Empty() {
		return Claims{}, false
	}
	return t.claims, true
}

// ExpiresWithin reports whether the id token expires inside the margin.
func (t *TokenStore) ExpiresWithin(margin time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.set.Empty() || t.claims.ExpiresAt.IsZero() {
		return false
	}
	return t.now().Add(margin).After(t.claims.ExpiresAt)
}
