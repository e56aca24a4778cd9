// Package relmap provides the public API for opening a project registry.
// This package exposes the factory while keeping the JSON file store
// internal.
package relmap

import (
	"github.com/mesh-intelligence/relmap/internal/jsonstore"
	"github.com/mesh-intelligence/relmap/pkg/types"
)

// Version is the relmap release.
const Version = "0.3.0"

// Option customizes the store returned by Open.
type Option = jsonstore.Option

// Re-exported store options.
var (
	WithLogger      = jsonstore.WithLogger
	WithClock       = jsonstore.WithClock
	WithIDGenerator = jsonstore.WithIDGenerator
)

// Open validates config and returns a store for the backing file. When
// config.CreateIfMissing is set the file and its directories are created.
//
// Example:
//
//	store, err := relmap.Open(types.Config{
//	    Path:            "data/json/project_directories.json",
//	    CreateIfMissing: true,
//	})
//	id, err := store.Add("Timeline", "/home/me/timeline")
func Open(config types.Config, opts ...Option) (types.Store, error) {
	s, err := jsonstore.New(config, opts...)
	if err != nil {
		return nil, err
	}
	if config.CreateIfMissing {
		if err := s.Bootstrap(); err != nil {
			return nil, err
		}
	}
	return s, nil
}
