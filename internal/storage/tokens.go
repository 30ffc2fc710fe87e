package storage

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/Abhijith1905/csp-storefront/internal/auth"
	"github.com/spf13/afero"
)

// Tokens persists the session token triple. A missing file loads as an
// empty set; the token store treats that as "no session".
type Tokens struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

func NewTokens(fs afero.Fs, dir string) *Tokens {
	return &Tokens{fs: fs, path: filepath.Join(dir, tokensFile)}
}

func (t *Tokens) Load(_ context.Context) (auth.TokenSet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var set auth.TokenSet
	if _, err := readJSON(t.fs, t.path, &set); err != nil {
		return auth.TokenSet{}, err
	}
	return set, nil
}

func (t *Tokens) Save(_ context.Context, set auth.TokenSet) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return writeJSON(t.fs, t.path, set)
}

func (t *Tokens) Clear(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return removeIfExists(t.fs, t.path)
}
