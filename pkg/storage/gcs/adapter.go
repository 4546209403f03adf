// Package gcs provides a Google Cloud Storage implementation of the storage
// adapter interfaces.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	gcstorage "cloud.google.com/go/storage"
	"github.com/mitchellh/mapstructure"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/pkg/storage"
	storageConfig "github.com/tigerroll/standlake/pkg/storage/config"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

const (
	// ProviderType defines the type identifier for this GCS storage provider.
	ProviderType = "gcs"
)

// gcsAdapter implements the storage.StorageConnection interface backed by a
// Google Cloud Storage client.
type gcsAdapter struct {
	cfg    storageConfig.StorageConfig
	name   string
	client *gcstorage.Client
}

// Verify that gcsAdapter implements the storage.StorageConnection interface.
var _ storage.StorageConnection = (*gcsAdapter)(nil)

// NewGCSAdapter creates a new gcsAdapter instance.
// If CredentialsFile is set it is passed to the client; otherwise Application
// Default Credentials are used.
func NewGCSAdapter(ctx context.Context, cfg storageConfig.StorageConfig, name string) (storage.StorageConnection, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage adapter '%s': failed to create client: %w", name, err)
	}

	return &gcsAdapter{
		cfg:    cfg,
		name:   name,
		client: client,
	}, nil
}

// Close releases the underlying GCS client.
func (a *gcsAdapter) Close() error {
	if err := a.client.Close(); err != nil {
		return fmt.Errorf("gcs storage adapter '%s': failed to close client: %w", a.name, err)
	}
	logger.Debugf("GCS storage adapter '%s' closed.", a.name)
	return nil
}

// Type returns the type of the adapter, which is "gcs".
func (a *gcsAdapter) Type() string {
	return ProviderType
}

// Name returns the name of this connection.
func (a *gcsAdapter) Name() string {
	return a.name
}

// resolveBucket returns the bucket to target, falling back to the configured
// default when the caller passes an empty name.
func (a *gcsAdapter) resolveBucket(bucket string) (string, error) {
	if bucket == "" {
		bucket = a.cfg.BucketName
	}
	if bucket == "" {
		return "", fmt.Errorf("no bucket specified and no default bucket configured for GCS adapter '%s'", a.name)
	}
	return bucket, nil
}

// Upload uploads data to the specified bucket and object name.
func (a *gcsAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	bucket, err := a.resolveBucket(bucket)
	if err != nil {
		return err
	}

	w := a.client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object 'gs://%s/%s': %w", bucket, objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object 'gs://%s/%s': %w", bucket, objectName, err)
	}
	logger.Debugf("Uploaded data to 'gs://%s/%s' (GCS adapter '%s').", bucket, objectName, a.name)
	return nil
}

// Download downloads data from the specified bucket and object name.
// The returned io.ReadCloser must be closed by the caller.
func (a *gcsAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	bucket, err := a.resolveBucket(bucket)
	if err != nil {
		return nil, err
	}

	r, err := a.client.Bucket(bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object 'gs://%s/%s': %w", bucket, objectName, err)
	}
	logger.Debugf("Downloaded data from 'gs://%s/%s' (GCS adapter '%s').", bucket, objectName, a.name)
	return r, nil
}

// ListObjects lists objects within the specified bucket and prefix, calling
// fn for each object name found.
func (a *gcsAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	bucket, err := a.resolveBucket(bucket)
	if err != nil {
		return err
	}

	it := a.client.Bucket(bucket).Objects(ctx, &gcstorage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list objects in 'gs://%s' with prefix '%s': %w", bucket, prefix, err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
	logger.Debugf("Listed objects in 'gs://%s' with prefix '%s' (GCS adapter '%s').", bucket, prefix, a.name)
	return nil
}

// DeleteObject deletes the specified object from the bucket.
// If the object does not exist, it logs a warning and returns nil.
func (a *gcsAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	bucket, err := a.resolveBucket(bucket)
	if err != nil {
		return err
	}

	if err := a.client.Bucket(bucket).Object(objectName).Delete(ctx); err != nil {
		if errors.Is(err, gcstorage.ErrObjectNotExist) {
			logger.Warnf("Attempted to delete non-existent object 'gs://%s/%s' (GCS adapter '%s').", bucket, objectName, a.name)
			return nil
		}
		return fmt.Errorf("failed to delete object 'gs://%s/%s': %w", bucket, objectName, err)
	}
	logger.Debugf("Deleted object 'gs://%s/%s' (GCS adapter '%s').", bucket, objectName, a.name)
	return nil
}

// GCSProvider implements the storage.StorageProvider interface for managing
// Google Cloud Storage connections.
type GCSProvider struct {
	cfg         *appconfig.Config
	connections map[string]storage.StorageConnection
	mu          sync.RWMutex
}

// NewGCSProvider creates a new GCSProvider instance.
func NewGCSProvider(cfg *appconfig.Config) storage.StorageProvider {
	return &GCSProvider{
		cfg:         cfg,
		connections: make(map[string]storage.StorageConnection),
	}
}

// GetConnection retrieves a StorageConnection by the given name.
// It creates a new connection if one does not already exist for the given name.
func (p *GCSProvider) GetConnection(name string) (storage.StorageConnection, error) {
	p.mu.RLock()
	conn, ok := p.connections[name]
	p.mu.RUnlock()
	if ok {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring lock
	conn, ok = p.connections[name]
	if ok {
		return conn, nil
	}

	namedConfig, ok := p.cfg.Standlake.StorageConfigs[name]
	if !ok {
		return nil, fmt.Errorf("storage configuration for name '%s' not found", name)
	}

	var storageCfg storageConfig.StorageConfig
	decoderConfig := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &storageCfg,
		TagName:  "yaml",
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder for storage config '%s': %w", name, err)
	}
	if err := decoder.Decode(namedConfig); err != nil {
		return nil, fmt.Errorf("failed to decode storage config for '%s': %w", name, err)
	}

	if storageCfg.Type != ProviderType {
		return nil, fmt.Errorf("storage config type mismatch for '%s': expected '%s', got '%s'", name, ProviderType, storageCfg.Type)
	}

	newConn, err := NewGCSAdapter(context.Background(), storageCfg, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS adapter for '%s': %w", name, err)
	}

	p.connections[name] = newConn
	logger.Debugf("Created new GCS storage connection '%s'.", name)
	return newConn, nil
}

// CloseAll closes all connections managed by this provider.
func (p *GCSProvider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close GCS storage connection '%s': %w", name, err))
		}
		delete(p.connections, name)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing GCS storage connections: %v", errs)
	}
	logger.Debugf("All GCS storage connections closed.")
	return nil
}

// Type returns the type of resource handled by this provider, which is "gcs".
func (p *GCSProvider) Type() string {
	return ProviderType
}
