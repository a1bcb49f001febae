// Package ident generates the unique string IDs used across all
// collections. IDs are never reused; dismissal and changelog records
// depend on that.
package ident

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh ID of the form "<prefix>_<uuid4>".
func New(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "_" + uuid.NewString()
}
