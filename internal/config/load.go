package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFilename is the default configuration filename.
const DefaultConfigFilename = "config.yaml"

// Credential environment variables.
const (
	EnvAPIKey         = "EXO_API_KEY"
	EnvAPISecret      = "EXO_API_SECRET"
	EnvDockerHubToken = "DOCKER_HUB_TOKEN"
)

// Load reads the YAML file at path, applies defaults, loads a sibling .env
// file if present, injects credentials from the environment and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := LoadDotenv(envFile); err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.Credentials = CredentialsFromEnv()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML and applies defaults without validating.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Type == "" {
		c.Database.Type = "postgres"
	}
	if c.Database.Version == "" {
		c.Database.Version = "16"
	}
	if c.Database.Plan == "" {
		c.Database.Plan = "hobbyist-2"
	}
	if c.ObjectStorage.BucketName == "" {
		c.ObjectStorage.BucketName = "assets"
	}
	if c.Registry == "" {
		c.Registry = "https://index.docker.io/v1/"
	}
	if c.Dockerfile == "" {
		c.Dockerfile = "Dockerfile"
	}
	if c.BuildContext == "" {
		c.BuildContext = "."
	}
	if c.ManifestsDir == "" {
		c.ManifestsDir = "k8s"
	}
	if c.OutputsDir == "" {
		c.OutputsDir = "outputs"
	}
}

// CredentialsFromEnv reads credentials from the process environment.
func CredentialsFromEnv() Credentials {
	return Credentials{
		APIKey:         os.Getenv(EnvAPIKey),
		APISecret:      os.Getenv(EnvAPISecret),
		DockerHubToken: os.Getenv(EnvDockerHubToken),
	}
}

// LoadDotenv sets KEY=VALUE pairs from path into the environment. Variables
// that are already set win. A missing file is not an error.
func LoadDotenv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// FindConfigFile returns path if set, otherwise config.yaml in the working
// directory.
func FindConfigFile(path string) (string, error) {
	if path == "" {
		path = DefaultConfigFilename
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("config file %s not found: %w", path, err)
	}
	return path, nil
}
