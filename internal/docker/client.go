package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"stevedore/pkg/logging"
)

const dockerSubsystem = "Docker"

// execCommandContext is a variable to allow mocking in tests.
var execCommandContext = exec.CommandContext

// Client drives image operations through the Docker CLI.
type Client struct {
	// binary is the docker executable name; overridable for tests.
	binary string
}

// NewClient creates a Docker client and verifies that the docker
// binary is present and the daemon is reachable.
func NewClient() (*Client, error) {
	if _, err := exec.LookPath("docker"); err != nil {
		return nil, fmt.Errorf("docker command not found in PATH: %w", err)
	}

	c := &Client{binary: "docker"}
	if err := c.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("docker daemon not accessible: %w", err)
	}
	return c, nil
}

// Ping checks daemon reachability. Read-only; never takes a lock.
func (c *Client) Ping(ctx context.Context) error {
	cmd := execCommandContext(ctx, c.binary, "info")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker daemon not accessible: %w", err)
	}
	return nil
}

// BuildOptions is the desired state for an image build.
type BuildOptions struct {
	// ContextDir is the build context directory.
	ContextDir string

	// Dockerfile is the path to the Dockerfile, relative to the
	// context directory unless absolute. Empty means the Docker
	// default (Dockerfile in the context root).
	Dockerfile string

	// Platform is the target platform (e.g. "linux/amd64"). Empty
	// means the daemon default.
	Platform string

	// Tags are the image references to apply to the built image.
	Tags []string

	// BuildArgs are --build-arg key/value pairs.
	BuildArgs map[string]string

	// Target selects a stage in a multi-stage Dockerfile.
	Target string

	// NoCache disables the build cache.
	NoCache bool

	// Pull always attempts to pull newer versions of base images.
	Pull bool
}

// BuildResult is the observed state after a successful build.
type BuildResult struct {
	ImageID  string        `json:"image_id"`
	Tags     []string      `json:"tags"`
	Output   string        `json:"output,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Build runs docker build with the given options.
func (c *Client) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	start := time.Now()

	args := []string{"build"}
	if opts.Dockerfile != "" {
		args = append(args, "-f", opts.Dockerfile)
	}
	for _, tag := range opts.Tags {
		args = append(args, "-t", tag)
	}
	if opts.Platform != "" {
		args = append(args, "--platform", opts.Platform)
	}
	if opts.Target != "" {
		args = append(args, "--target", opts.Target)
	}
	if opts.NoCache {
		args = append(args, "--no-cache")
	}
	if opts.Pull {
		args = append(args, "--pull")
	}
	for k, v := range opts.BuildArgs {
		args = append(args, "--build-arg", fmt.Sprintf("%s=%s", k, v))
	}
	args = append(args, opts.ContextDir)

	logging.Debug(dockerSubsystem, "Running: docker %s", strings.Join(args, " "))

	cmd := execCommandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("docker build failed: %w\nOutput: %s", err, string(output))
	}

	result := &BuildResult{
		Tags:     opts.Tags,
		Output:   string(output),
		Duration: time.Since(start),
	}

	if len(opts.Tags) > 0 {
		if id, err := c.imageID(ctx, opts.Tags[0]); err == nil {
			result.ImageID = id
		}
	}

	logging.Info(dockerSubsystem, "Built image %s in %s", strings.Join(opts.Tags, ", "), result.Duration.Round(time.Millisecond))
	return result, nil
}

// Tag applies a new reference to an existing image.
func (c *Client) Tag(ctx context.Context, source, target string) error {
	logging.Debug(dockerSubsystem, "Tagging %s as %s", source, target)

	cmd := execCommandContext(ctx, c.binary, "tag", source, target)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker tag %s -> %s failed: %w\nOutput: %s", source, target, err, string(output))
	}
	return nil
}

// Push uploads an image reference to its registry and returns the CLI
// output for error categorization.
func (c *Client) Push(ctx context.Context, ref string) (string, error) {
	logging.Info(dockerSubsystem, "Pushing %s", ref)

	cmd := execCommandContext(ctx, c.binary, "push", ref)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("docker push %s failed: %w", ref, err)
	}
	return string(output), nil
}

// Pull downloads an image reference from its registry, optionally for
// a specific platform, and returns the CLI output.
func (c *Client) Pull(ctx context.Context, ref, platform string) (string, error) {
	logging.Info(dockerSubsystem, "Pulling %s", ref)

	args := []string{"pull"}
	if platform != "" {
		args = append(args, "--platform", platform)
	}
	args = append(args, ref)

	cmd := execCommandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("docker pull %s failed: %w", ref, err)
	}
	return string(output), nil
}

// Remove deletes an image reference from the local daemon.
func (c *Client) Remove(ctx context.Context, image string, force bool) error {
	args := []string{"rmi"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, image)

	cmd := execCommandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker rmi %s failed: %w\nOutput: %s", image, err, string(output))
	}
	return nil
}

// ImageSummary is one row of docker images output.
type ImageSummary struct {
	Repository string `json:"Repository"`
	Tag        string `json:"Tag"`
	ID         string `json:"ID"`
	Size       string `json:"Size"`
	CreatedAt  string `json:"CreatedAt"`
}

// Images lists local images, optionally filtered to one repository.
// Read-only; never takes a lock.
func (c *Client) Images(ctx context.Context, repository string) ([]ImageSummary, error) {
	args := []string{"images", "--format", "{{json .}}"}
	if repository != "" {
		args = append(args, repository)
	}

	cmd := execCommandContext(ctx, c.binary, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("docker images failed: %w", err)
	}

	var images []ImageSummary
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if line == "" {
			continue
		}
		var img ImageSummary
		if err := json.Unmarshal([]byte(line), &img); err != nil {
			logging.Warn(dockerSubsystem, "Skipping unparsable image row: %v", err)
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

// Inspect returns the daemon's full JSON description of an image.
// Read-only; never takes a lock.
func (c *Client) Inspect(ctx context.Context, ref string) (map[string]interface{}, error) {
	cmd := execCommandContext(ctx, c.binary, "image", "inspect", ref)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("docker image inspect %s failed: %w", ref, err)
	}

	// docker inspect returns a JSON array, one element per reference.
	var parsed []map[string]interface{}
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, fmt.Errorf("unexpected inspect output for %s: %w", ref, err)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("no inspect data for %s", ref)
	}
	return parsed[0], nil
}

// imageID resolves a reference to its image ID.
func (c *Client) imageID(ctx context.Context, ref string) (string, error) {
	cmd := execCommandContext(ctx, c.binary, "inspect", "-f", "{{.Id}}", ref)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to resolve image ID for %s: %w", ref, err)
	}
	return strings.TrimSpace(string(output)), nil
}
