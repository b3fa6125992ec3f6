// Package objectstore lists and reads the JSON source objects of a client
// load. s3:// URIs are served from Amazon S3; file:// URIs and plain paths
// from the local filesystem.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Store lists and opens source objects by URI.
type Store interface {
	// List returns the URIs of every object under prefix, in key order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Open returns a reader for one object. The caller closes it.
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// IsS3 reports whether uri names an S3 object or prefix.
func IsS3(uri string) bool {
	return strings.HasPrefix(strings.ToLower(uri), "s3://")
}

// StoreFactory builds a Store on first use.
type StoreFactory func(ctx context.Context) (Store, error)

// Mux routes s3:// URIs to an S3 store and everything else to a local one.
// The S3 store is built lazily so purely local runs never touch AWS config.
type Mux struct {
	local   Store
	factory StoreFactory

	mu     sync.Mutex
	remote Store
}

var _ Store = (*Mux)(nil)

// NewMux creates a Mux. factory may be nil when S3 is never needed.
func NewMux(local Store, factory StoreFactory) *Mux {
	if local == nil {
		panic("local store cannot be nil")
	}
	return &Mux{local: local, factory: factory}
}

func (m *Mux) List(ctx context.Context, prefix string) ([]string, error) {
	s, err := m.route(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, prefix)
}

func (m *Mux) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	s, err := m.route(ctx, uri)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, uri)
}

func (m *Mux) route(ctx context.Context, uri string) (Store, error) {
	if !IsS3(uri) {
		return m.local, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.remote != nil {
		return m.remote, nil
	}
	if m.factory == nil {
		return nil, fmt.Errorf("no S3 store configured for %s", uri)
	}
	remote, err := m.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 store: %w", err)
	}
	m.remote = remote
	return remote, nil
}
