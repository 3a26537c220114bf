// Package pkgstore removes update-package binaries from the place they were
// uploaded to. Only file names are known to the server; uploads happen elsewhere.
package pkgstore

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Store is the binary store keyed by file name.
type Store interface {
	// Exists reports whether a file with the given name is stored.
	Exists(ctx context.Context, name string) (bool, error)
	// Delete removes the file and reports whether it was present.
	Delete(ctx context.Context, name string) (bool, error)
	// Kind names the backend for logs ("local", "s3").
	Kind() string
}

// cleanName rejects names that would escape the store root.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty file name")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || path.Clean(name) != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return name, nil
}

// DeleteAll removes every non-empty name, returning the names actually
// removed. It stops at the first error.
func DeleteAll(ctx context.Context, s Store, names ...string) ([]string, error) {
	var removed []string
	seen := map[string]bool{}
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		ok, err := s.Delete(ctx, n)
		if err != nil {
			return removed, fmt.Errorf("delete %s from %s store: %w", n, s.Kind(), err)
		}
		if ok {
			removed = append(removed, n)
		}
	}
	return removed, nil
}
