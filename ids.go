package trellis

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// NewObjectID returns a fresh type-prefixed id for an application entity,
// e.g. "rect_01h455vb4pex5vsknk084sn02q". The prefix must be lowercase.
func NewObjectID(prefix string) string {
	return typeid.MustGenerate(prefix).String()
}

// ValidateObjectID checks that id is a well-formed typeid with the given
// prefix.
func ValidateObjectID(id, prefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid object id %q: %w", id, err)
	}
	if parsed.Prefix() != prefix {
		return fmt.Errorf("object id %q: prefix %q, want %q", id, parsed.Prefix(), prefix)
	}
	return nil
}
