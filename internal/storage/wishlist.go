package storage

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Wishlist persists the anonymous wishlist as a plain product-id list.
type Wishlist struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

func NewWishlist(fs afero.Fs, dir string) *Wishlist {
	return &Wishlist{fs: fs, path: filepath.Join(dir, wishlistFile)}
}

func (w *Wishlist) Load(_ context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var ids []string
	if _, err := readJSON(w.fs, w.path, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (w *Wishlist) Save(_ context.Context, ids []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(ids) == 0 {
		return removeIfExists(w.fs, w.path)
	}
	return writeJSON(w.fs, w.path, ids)
}
