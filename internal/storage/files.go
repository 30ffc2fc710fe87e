// Package storage holds the durable client-side state: the guest cart,
// the session token triple, the wishlist and the local order history. All
// of it lives in small JSON files under one data directory, behind an
// afero filesystem so tests run against memory.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	guestCartFile = "guest_cart.json"
	tokensFile    = "tokens.json"
	wishlistFile  = "wishlist.json"
	ordersFile    = "orders.json"
)

// readJSON reports false with no error when the file does not exist;
// absence of local state is a normal first-run condition, not a failure.
func readJSON(fs afero.Fs, path string, v any) (bool, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return false, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// writeJSON goes through a temp file and a rename so a crash mid-write
// never leaves a truncated state file behind.
func writeJSON(fs afero.Fs, path string, v any) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func removeIfExists(fs afero.Fs, path string) error {
	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return err
	}
	return fs.Remove(path)
}
