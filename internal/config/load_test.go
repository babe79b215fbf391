package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `project_name: Career Navigator
service_name: api
service_version: "1.4.0"
docker_hub_user: acme
exoscale_zone: ch-gva-2
node_count: 3
node_disk_gb: 50
node_type_family: standard
node_type_size: tiny
k8s_namespace: career
k8s_replicas: 2
k8s_port: 8080
k8s_nodeport: 30080
sks_cni: calico
sks_level: pro
database:
  enabled: true
sos:
  enabled: true
`

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParse_AppliesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "Career Navigator", cfg.ProjectName)
	assert.Equal(t, 3, cfg.NodeCount)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "16", cfg.Database.Version)
	assert.Equal(t, "hobbyist-2", cfg.Database.Plan)
	assert.Equal(t, "assets", cfg.ObjectStorage.BucketName)
	assert.Equal(t, "k8s", cfg.ManifestsDir)
	assert.Equal(t, "outputs", cfg.OutputsDir)
	assert.Equal(t, "https://index.docker.io/v1/", cfg.Registry)
}

func TestParse_InvalidYAML(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte("project_name: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestValidate(t *testing.T) {
	t.Parallel()
	creds := Credentials{APIKey: "EXOabc123456", APISecret: "s", DockerHubToken: "t"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{name: "valid"},
		{
			name:    "missing keys use yaml names",
			mutate:  func(c *Config) { c.ProjectName = ""; c.Zone = "" },
			wantErr: []string{"missing required keys", "project_name", "exoscale_zone"},
		},
		{
			name:    "bad cni",
			mutate:  func(c *Config) { c.CNI = "flannel" },
			wantErr: []string{"invalid values", "sks_cni"},
		},
		{
			name:    "nodeport out of range",
			mutate:  func(c *Config) { c.NodePort = 8080 },
			wantErr: []string{"k8s_nodeport"},
		},
		{
			name:    "missing credentials name env vars",
			mutate:  func(c *Config) { c.Credentials = Credentials{} },
			wantErr: []string{"EXO_API_KEY", "EXO_API_SECRET", "DOCKER_HUB_TOKEN"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Parse([]byte(validYAML))
			require.NoError(t, err)
			cfg.Credentials = creds
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			err = Validate(cfg)
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestLoad_ReadsDotenvAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, validYAML)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"# credentials\nEXO_API_KEY=EXOfromdotenv\nexport EXO_API_SECRET=\"quoted\"\nDOCKER_HUB_TOKEN='tok'\nNOT A PAIR\n",
	), 0o600))

	t.Setenv(EnvAPIKey, "EXOfromshell")
	t.Setenv(EnvAPISecret, "")
	require.NoError(t, os.Unsetenv(EnvAPISecret))
	t.Setenv(EnvDockerHubToken, "")
	require.NoError(t, os.Unsetenv(EnvDockerHubToken))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "EXOfromshell", cfg.Credentials.APIKey, "shell environment wins over .env")
	assert.Equal(t, "quoted", cfg.Credentials.APISecret)
	assert.Equal(t, "tok", cfg.Credentials.DockerHubToken)
	assert.Equal(t, "EXOfroms...", cfg.Credentials.Redacted())
}

func TestLoad_MissingCredentials(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, validYAML)
	for _, k := range []string{EnvAPIKey, EnvAPISecret, EnvDockerHubToken} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), EnvAPIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeConfig(t, dir, validYAML)

	got, err := FindConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = FindConfigFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
