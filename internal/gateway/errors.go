package gateway

import "errors"

// ErrProductNotFound marks a catalog lookup for an id the API does not
// know. Callers branch on it to distinguish missing from failed.
var ErrProductNotFound = errors.New("product not found")
