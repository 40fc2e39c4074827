package core

import (
	"context"
	"fmt"
	"sync"
)

// Store is the interface implemented by all release-store backends.
type Store interface {
	// Type returns the backend identifier (e.g. "github", "gitlab").
	Type() string

	// Host returns the base host URL the store is bound to.
	Host() string

	// Release retrieves release metadata, including published assets.
	Release(ctx context.Context, src Source) (*Release, error)

	// URLs returns the URL builder for this store.
	URLs() URLBuilder
}

// Factory creates a store instance bound to a host.
type Factory func(host string, client *Client) Store

var (
	factories = make(map[string]Factory)
	defaults  = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a store factory to the global registry.
// storeType is the backend identifier (e.g. "github", "gitlab", "gitea").
// defaultHost is used when the caller does not override the host.
func Register(storeType string, defaultHost string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[storeType] = factory
	defaults[storeType] = defaultHost
}

// New creates a new store for the given backend type.
// If host is empty, the default host is used.
func New(storeType string, host string, client *Client) (Store, error) {
	mu.RLock()
	factory, ok := factories[storeType]
	defaultHost := defaults[storeType]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown store: %s", storeType)
	}

	if host == "" {
		host = defaultHost
	}

	if client == nil {
		client = DefaultClient()
	}

	return factory(host, client), nil
}

// SupportedStores returns all registered store types.
func SupportedStores() []string {
	mu.RLock()
	defer mu.RUnlock()

	stores := make([]string, 0, len(factories))
	for s := range factories {
		stores = append(stores, s)
	}
	return stores
}

// DefaultHost returns the default host for a store type.
func DefaultHost(storeType string) string {
	mu.RLock()
	defer mu.RUnlock()
	return defaults[storeType]
}
