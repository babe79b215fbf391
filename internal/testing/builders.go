package testing

import (
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with a complete, valid config.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			ProjectName:    "proj-a",
			ServiceName:    "api",
			ServiceVersion: "1.0.0",
			DockerHubUser:  "acme",
			Zone:           "ch-gva-2",
			NodeCount:      3,
			NodeDiskGB:     50,
			NodeTypeFamily: "standard",
			NodeTypeSize:   "medium",
			Namespace:      "api",
			Replicas:       2,
			Port:           8080,
			NodePort:       30080,
			CNI:            "calico",
			Level:          "starter",
			Database: config.Database{
				Type:    "postgres",
				Version: "16",
				Plan:    "hobbyist-2",
			},
			ObjectStorage: config.ObjectStorage{BucketName: "assets"},
			Registry:      "docker.io",
			Dockerfile:    "Dockerfile",
			BuildContext:  ".",
			ManifestsDir:  "k8s",
			OutputsDir:    "outputs",
			Credentials: config.Credentials{
				APIKey:         "EXOtestkey0000",
				APISecret:      "secret",
				DockerHubToken: "dckr_pat_test",
			},
		},
	}
}

// WithProject sets the project display name.
func (b *ConfigBuilder) WithProject(name string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.ProjectName = name
	return newBuilder
}

// WithNodes sets the node fleet size and requested type.
func (b *ConfigBuilder) WithNodes(count int, family, size string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.NodeCount = count
	newBuilder.cfg.NodeTypeFamily = family
	newBuilder.cfg.NodeTypeSize = size
	return newBuilder
}

// WithDatabase toggles the managed database.
func (b *ConfigBuilder) WithDatabase(enabled bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Database.Enabled = enabled
	return newBuilder
}

// WithObjectStorage toggles the bucket.
func (b *ConfigBuilder) WithObjectStorage(enabled bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.ObjectStorage.Enabled = enabled
	return newBuilder
}

// WithManifestsDir sets the directory of workload manifests.
func (b *ConfigBuilder) WithManifestsDir(dir string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.ManifestsDir = dir
	return newBuilder
}

// WithOutputsDir sets the directory runs write into.
func (b *ConfigBuilder) WithOutputsDir(dir string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.OutputsDir = dir
	return newBuilder
}

// Build returns the constructed config.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.cfg // copy
	return &cfg
}

// clone copies the builder. Config holds no slices or maps, so a value copy
// is a deep copy.
func (b *ConfigBuilder) clone() *ConfigBuilder {
	return &ConfigBuilder{cfg: b.cfg}
}

// MinimalConfig returns a valid config with optional services disabled.
func MinimalConfig() *config.Config {
	return NewConfigBuilder().Build()
}

// FullConfig returns a config with the database and bucket enabled.
func FullConfig() *config.Config {
	return NewConfigBuilder().
		WithDatabase(true).
		WithObjectStorage(true).
		Build()
}
