// Package config defines the configuration structure shared by the storage
// adapters.
package config

// StorageConfig holds the settings for one named storage connection.
// Adapters decode the raw map from the application configuration into this
// struct via mapstructure.
type StorageConfig struct {
	// Type is the backend type ("local", "gcs").
	Type string `yaml:"type"`
	// BucketName is the default bucket (or top-level directory for the
	// local backend) used when an operation does not specify one.
	BucketName string `yaml:"bucket_name"`
	// CredentialsFile is the path to a service account key file. Empty
	// means Application Default Credentials. Only meaningful for GCS.
	CredentialsFile string `yaml:"credentials_file"`
	// BaseDir is the root directory for the local backend. Buckets are
	// subdirectories of it.
	BaseDir string `yaml:"base_dir"`
}
