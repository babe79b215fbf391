package config

// Config is the deployment configuration. Non-secret settings come from the
// YAML file; credentials only ever come from the environment.
type Config struct {
	ProjectName    string `yaml:"project_name" validate:"required"`
	ServiceName    string `yaml:"service_name" validate:"required"`
	ServiceVersion string `yaml:"service_version" validate:"required"`
	DockerHubUser  string `yaml:"docker_hub_user" validate:"required"`
	Zone           string `yaml:"exoscale_zone" validate:"required"`

	NodeCount      int    `yaml:"node_count" validate:"required,min=1"`
	NodeDiskGB     int    `yaml:"node_disk_gb" validate:"required,min=20"`
	NodeTypeFamily string `yaml:"node_type_family" validate:"required"`
	NodeTypeSize   string `yaml:"node_type_size" validate:"required"`

	Namespace string `yaml:"k8s_namespace" validate:"required,hostname_rfc1123"`
	Replicas  int    `yaml:"k8s_replicas" validate:"required,min=1"`
	Port      int    `yaml:"k8s_port" validate:"required,min=1,max=65535"`
	NodePort  int    `yaml:"k8s_nodeport" validate:"required,min=30000,max=32767"`

	CNI   string `yaml:"sks_cni" validate:"required,oneof=calico cilium"`
	Level string `yaml:"sks_level" validate:"required,oneof=starter pro"`

	Database      Database      `yaml:"database"`
	ObjectStorage ObjectStorage `yaml:"sos"`

	// Registry is the pull-secret server for the image registry.
	Registry     string `yaml:"registry"`
	Dockerfile   string `yaml:"dockerfile"`
	BuildContext string `yaml:"build_context"`
	ManifestsDir string `yaml:"manifests_dir"`
	OutputsDir   string `yaml:"outputs_dir"`

	Credentials Credentials `yaml:"-"`
}

// Database configures the optional managed database.
type Database struct {
	Enabled bool   `yaml:"enabled"`
	Type    string `yaml:"type" validate:"omitempty,oneof=postgres"`
	Version string `yaml:"version"`
	Plan    string `yaml:"plan"`
}

// ObjectStorage configures the optional per-run bucket.
type ObjectStorage struct {
	Enabled    bool   `yaml:"enabled"`
	BucketName string `yaml:"bucket_name"`
}

// Credentials are read from EXO_API_KEY, EXO_API_SECRET and DOCKER_HUB_TOKEN.
type Credentials struct {
	APIKey         string `validate:"required"`
	APISecret      string `validate:"required"`
	DockerHubToken string `validate:"required"`
}

// Redacted returns the key prefix safe to print.
func (c Credentials) Redacted() string {
	if len(c.APIKey) <= 8 {
		return "****"
	}
	return c.APIKey[:8] + "..."
}
