// Package scenestore persists trellis scene documents.
//
// [FileStore] keeps one JSON file per scene; [PostgresStore] keeps them in
// a jsonb column. Both implement [Store], and [Save]/[Load] move a canvas
// through any Store.
package scenestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/phanxgames/trellis"
)

// IDPrefix is the typeid prefix of scene ids.
const IDPrefix = "scene"

var (
	// ErrNotFound is returned when no document exists for an id.
	ErrNotFound = errors.New("scene not found")
	// ErrInvalidID is returned for ids that are not scene typeids.
	ErrInvalidID = errors.New("invalid scene id")
)

// Store saves and loads serialized scene documents by id.
type Store interface {
	Put(ctx context.Context, id string, doc []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// NewSceneID returns a fresh scene id.
func NewSceneID() string {
	return trellis.NewObjectID(IDPrefix)
}

func validateID(id string) error {
	if err := trellis.ValidateObjectID(id, IDPrefix); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	return nil
}

// Save serializes c and stores it under id.
func Save(ctx context.Context, s Store, id string, c *trellis.Canvas, opts trellis.SaveOptions) error {
	doc, err := trellis.SerializeCanvas(c, opts)
	if err != nil {
		return fmt.Errorf("serialize scene %s: %w", id, err)
	}
	if err := s.Put(ctx, id, doc); err != nil {
		return fmt.Errorf("store scene %s: %w", id, err)
	}
	trellis.Logger().Debug("scene saved", "id", id, "bytes", len(doc))
	return nil
}

// Load replaces c's contents with the document stored under id.
func Load(ctx context.Context, s Store, id string, c *trellis.Canvas, opts trellis.LoadOptions) ([]*trellis.Object, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	objs, err := trellis.LoadCanvas(ctx, c, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", id, err)
	}
	return objs, nil
}
