// Package prefs defines persistence contracts for string-keyed numeric
// preference mappings.
//
// A Store is one partition (suite) of the preference space; a Catalog hands
// out partitions by name. The stable-time cache reads and writes exactly one
// slot through these contracts, so implementations only need durable
// read-after-write semantics for a single key.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates no mapping is stored under the requested key.
var ErrNotFound = errors.New("mapping not found")

// StandardSuite names the default partition. Asking a catalog for this suite
// explicitly resolves to the same partition Standard returns.
const StandardSuite = "standard"

const maxSuiteNameLength = 128

// Store persists string-keyed numeric mappings within one suite.
type Store interface {
	// Mapping returns the mapping stored under key, or ErrNotFound.
	Mapping(ctx context.Context, key string) (map[string]float64, error)
	// SetMapping stores values under key, replacing any prior mapping.
	SetMapping(ctx context.Context, key string, values map[string]float64) error
}

// Catalog resolves suite partitions of one preference medium.
type Catalog interface {
	// Standard returns the default partition.
	Standard() Store
	// Suite returns the partition for the given group name. Resolution
	// fails when the name is not a valid suite identifier.
	Suite(name string) (Store, error)
}

// ValidateSuiteName normalizes and checks a suite identifier. Names are
// trimmed, limited to 128 characters, and restricted to letters, digits,
// dots, underscores, and hyphens.
func ValidateSuiteName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("suite name is required")
	}
	if len(trimmed) > maxSuiteNameLength {
		return "", fmt.Errorf("suite name exceeds %d characters", maxSuiteNameLength)
	}
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return "", fmt.Errorf("suite name contains invalid character %q", r)
		}
	}
	return trimmed, nil
}
