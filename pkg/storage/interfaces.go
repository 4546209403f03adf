// Package storage defines the common interfaces for the object storage
// backends holding the snapshot tiers. The pipeline stages interact with the
// landing, columnar and final locations exclusively through these interfaces,
// so local filesystem and GCS layouts are interchangeable.
package storage

import (
	"context"
	"io"

	"github.com/mitchellh/mapstructure"

	"github.com/tigerroll/standlake/pkg/util/exception"
)

// StorageConnection represents a connection to one named storage backend.
type StorageConnection interface {
	// Close releases resources held by the connection.
	Close() error
	// Type returns the backend type (e.g., "local", "gcs").
	Type() string
	// Name returns the configured connection name.
	Name() string

	// Upload uploads data to the specified bucket and object name.
	// An empty bucket selects the connection's configured default bucket.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download downloads data from the specified bucket and object name.
	// The returned ReadCloser must be closed by the caller.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// ListObjects lists objects within the specified bucket and prefix,
	// calling fn for each object name found.
	ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error
	// DeleteObject deletes the specified object from the bucket.
	DeleteObject(ctx context.Context, bucket, objectName string) error
}

// StorageProvider manages the acquisition and lifecycle of storage
// connections of one backend type.
type StorageProvider interface {
	// GetConnection retrieves the StorageConnection with the specified name.
	GetConnection(name string) (StorageConnection, error)
	// CloseAll closes all connections managed by this provider.
	CloseAll() error
	// Type returns the backend type handled by this provider.
	Type() string
}

// ProviderGroup is the Fx group tag collecting StorageProvider
// implementations.
const ProviderGroup = "storage_providers"

// ConnectionResolver resolves named storage connections against the set of
// registered providers, using the connection's configured "type" to pick the
// provider.
type ConnectionResolver struct {
	providers map[string]StorageProvider
	configs   map[string]interface{}
}

// NewConnectionResolver creates a ConnectionResolver over the given providers
// and the raw named storage configurations.
func NewConnectionResolver(providers map[string]StorageProvider, configs map[string]interface{}) *ConnectionResolver {
	return &ConnectionResolver{providers: providers, configs: configs}
}

// Resolve returns the storage connection registered under name.
func (r *ConnectionResolver) Resolve(ctx context.Context, name string) (StorageConnection, error) {
	rawConfig, ok := r.configs[name]
	if !ok {
		return nil, exception.NewStageErrorf("storage", "storage connection '%s' not found in configuration", name)
	}

	var typed struct {
		Type string `yaml:"type"`
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &typed, TagName: "yaml"})
	if err != nil {
		return nil, exception.NewStageError("storage", "failed to create storage config decoder", err, false)
	}
	if err := decoder.Decode(rawConfig); err != nil {
		return nil, exception.NewStageErrorf("storage", "failed to decode storage type for '%s': %v", name, err)
	}

	provider, ok := r.providers[typed.Type]
	if !ok {
		return nil, exception.NewStageErrorf("storage", "no storage provider found for type '%s' (connection '%s')", typed.Type, name)
	}

	return provider.GetConnection(name)
}
