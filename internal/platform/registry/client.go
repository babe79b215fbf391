package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	dockerregistry "github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
)

// DefaultServer is the Docker Hub registry address.
const DefaultServer = "docker.io"

// BuildSpec describes one image build.
type BuildSpec struct {
	// ContextDir is the build context sent to the daemon.
	ContextDir string
	// Dockerfile is relative to ContextDir.
	Dockerfile string
	Tags       []string
}

// Credentials authenticate pushes to a registry.
type Credentials struct {
	Server   string
	Username string
	Password string
}

// Client is the container registry boundary.
type Client interface {
	Build(ctx context.Context, spec BuildSpec) error
	Login(ctx context.Context, creds Credentials) error
	Tag(ctx context.Context, source, target string) error
	Push(ctx context.Context, ref string) error
}

// engineAPI is the subset of the Docker Engine client used here.
type engineAPI interface {
	ImageBuild(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error)
	ImageTag(ctx context.Context, source, target string) error
	ImagePush(ctx context.Context, ref string, options image.PushOptions) (io.ReadCloser, error)
	RegistryLogin(ctx context.Context, auth dockerregistry.AuthConfig) (dockerregistry.AuthenticateOKBody, error)
}

// DockerClient implements Client against the local Docker daemon.
type DockerClient struct {
	api  engineAPI
	out  io.Writer
	auth string
}

// NewDockerClient connects to the daemon configured in the environment
// (DOCKER_HOST and friends). Build and push progress is streamed to out.
func NewDockerClient(out io.Writer) (*DockerClient, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return newDockerClient(cli, out), nil
}

func newDockerClient(api engineAPI, out io.Writer) *DockerClient {
	if out == nil {
		out = io.Discard
	}
	return &DockerClient{api: api, out: out}
}

// Build builds an image from spec and tags it with every tag in spec.Tags.
func (c *DockerClient) Build(ctx context.Context, spec BuildSpec) error {
	if len(spec.Tags) == 0 {
		return errors.New("at least one image tag is required")
	}
	log.Printf("[Registry] Building %s from %s...", spec.Tags[0], spec.ContextDir)

	buildContext, err := archive.TarWithOptions(spec.ContextDir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("failed to archive build context %s: %w", spec.ContextDir, err)
	}
	defer buildContext.Close()

	resp, err := c.api.ImageBuild(ctx, buildContext, types.ImageBuildOptions{
		Tags:       spec.Tags,
		Dockerfile: spec.Dockerfile,
		Remove:     true,
	})
	if err != nil {
		return fmt.Errorf("docker build request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := c.stream(resp.Body); err != nil {
		return fmt.Errorf("docker build failed: %w", err)
	}
	return nil
}

// Login verifies the credentials and keeps them for later pushes.
func (c *DockerClient) Login(ctx context.Context, creds Credentials) error {
	server := creds.Server
	if server == "" {
		server = DefaultServer
	}
	auth := dockerregistry.AuthConfig{
		Username:      creds.Username,
		Password:      creds.Password,
		ServerAddress: server,
	}
	if _, err := c.api.RegistryLogin(ctx, auth); err != nil {
		return fmt.Errorf("registry login to %s failed: %w", server, err)
	}
	encoded, err := dockerregistry.EncodeAuthConfig(auth)
	if err != nil {
		return fmt.Errorf("failed to encode registry auth: %w", err)
	}
	c.auth = encoded
	log.Printf("[Registry] Logged in to %s as %s", server, creds.Username)
	return nil
}

// Tag adds target as another name for source.
func (c *DockerClient) Tag(ctx context.Context, source, target string) error {
	if err := c.api.ImageTag(ctx, source, target); err != nil {
		return fmt.Errorf("failed to tag %s as %s: %w", source, target, err)
	}
	return nil
}

// Push uploads ref using the credentials from Login.
func (c *DockerClient) Push(ctx context.Context, ref string) error {
	log.Printf("[Registry] Pushing %s...", ref)
	body, err := c.api.ImagePush(ctx, ref, image.PushOptions{RegistryAuth: c.auth})
	if err != nil {
		return fmt.Errorf("docker push request for %s failed: %w", ref, err)
	}
	defer body.Close()

	if err := c.stream(body); err != nil {
		return fmt.Errorf("docker push of %s failed: %w", ref, err)
	}
	return nil
}

// stream relays daemon progress and surfaces the error message embedded in
// the stream, which is how the daemon reports build and push failures.
func (c *DockerClient) stream(body io.Reader) error {
	err := jsonmessage.DisplayJSONMessagesStream(body, c.out, 0, false, nil)
	if err == nil {
		return nil
	}
	var jerr *jsonmessage.JSONError
	if errors.As(err, &jerr) {
		return errors.New(jerr.Message)
	}
	return err
}

var _ Client = (*DockerClient)(nil)
