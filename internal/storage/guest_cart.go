package storage

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/Abhijith1905/csp-storefront/internal/domain"
	"github.com/spf13/afero"
)

// GuestCart persists the guest-origin cart lines. Saving nil or an empty
// slice clears the file.
type GuestCart struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

func NewGuestCart(fs afero.Fs, dir string) *GuestCart {
	return &GuestCart{fs: fs, path: filepath.Join(dir, guestCartFile)}
}

func (g *GuestCart) Load(_ context.Context) ([]domain.CartLine, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var lines []domain.CartLine
	if _, err := readJSON(g.fs, g.path, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (g *GuestCart) Save(_ context.Context, lines []domain.CartLine) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(lines) == 0 {
		return removeIfExists(g.fs, g.path)
	}
	return writeJSON(g.fs, g.path, lines)
}
