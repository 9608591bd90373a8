package tools

import (
	"context"
	"fmt"
	"time"

	"stevedore/internal/api"
	"stevedore/internal/docker"
	"stevedore/internal/locking"
	"stevedore/internal/reconcile"
	"stevedore/pkg/logging"
)

const dockerToolsSubsystem = "DockerTools"

// defaultPushRetryDelay is the pause between push attempts when the
// caller does not override it.
const defaultPushRetryDelay = 5 * time.Second

// ImageClient is the slice of the Docker client the provider needs.
// *docker.Client satisfies it; tests substitute a fake.
type ImageClient interface {
	docker.ImageBuilder
	Ping(ctx context.Context) error
	Tag(ctx context.Context, source, target string) error
	Push(ctx context.Context, ref string) (string, error)
	Pull(ctx context.Context, ref, platform string) (string, error)
	Remove(ctx context.Context, image string, force bool) error
	Images(ctx context.Context, repository string) ([]docker.ImageSummary, error)
	Inspect(ctx context.Context, ref string) (map[string]interface{}, error)
}

// DockerProvider implements api.ToolProvider for image operations.
type DockerProvider struct {
	client   ImageClient
	locks    *locking.Registry
	timeouts TimeoutSource
}

// NewDockerProvider creates the Docker tool provider.
func NewDockerProvider(client ImageClient, locks *locking.Registry, timeouts TimeoutSource) *DockerProvider {
	return &DockerProvider{
		client:   client,
		locks:    locks,
		timeouts: timeouts,
	}
}

// GetTools returns metadata for all Docker tools.
func (p *DockerProvider) GetTools() []api.ToolMetadata {
	return []api.ToolMetadata{
		{
			Name:        "build_image",
			Description: "Build a Docker image from a build context directory",
			Args: []api.ArgMetadata{
				{
					Name:        "context",
					Type:        "string",
					Required:    true,
					Description: "Build context directory",
				},
				{
					Name:        "dockerfile",
					Type:        "string",
					Required:    false,
					Description: "Path to the Dockerfile (default: Dockerfile in the context root)",
				},
				{
					Name:        "platform",
					Type:        "string",
					Required:    false,
					Description: "Target platform, e.g. linux/amd64 (default: daemon default)",
				},
				{
					Name:        "tags",
					Type:        "array",
					Required:    false,
					Description: "Image references to apply to the built image",
				},
				{
					Name:        "build_args",
					Type:        "object",
					Required:    false,
					Description: "Build arguments as a JSON object with string values",
				},
				{
					Name:        "target",
					Type:        "string",
					Required:    false,
					Description: "Target stage in a multi-stage Dockerfile",
				},
				{
					Name:        "no_cache",
					Type:        "boolean",
					Required:    false,
					Description: "Disable the build cache (default: false)",
					Default:     false,
				},
				{
					Name:        "pull",
					Type:        "boolean",
					Required:    false,
					Description: "Always pull newer versions of base images (default: false)",
					Default:     false,
				},
			},
		},
		{
			Name:        "tag_image",
			Description: "Apply a new reference to an existing image",
			Args: []api.ArgMetadata{
				{
					Name:        "source",
					Type:        "string",
					Required:    true,
					Description: "Existing image reference",
				},
				{
					Name:        "target",
					Type:        "string",
					Required:    true,
					Description: "New reference to apply",
				},
			},
		},
		{
			Name:        "push_image",
			Description: "Push an image reference to its registry",
			Args: []api.ArgMetadata{
				{
					Name:        "image",
					Type:        "string",
					Required:    true,
					Description: "Image reference to push",
				},
				{
					Name:        "retries",
					Type:        "number",
					Required:    false,
					Description: "Number of retries after a failed push (default: 2)",
					Default:     2,
				},
				{
					Name:        "retry_delay",
					Type:        "string",
					Required:    false,
					Description: "Pause between push attempts, e.g. 5s (default: 5s)",
					Default:     "5s",
				},
			},
		},
		{
			Name:        "pull_image",
			Description: "Pull an image reference from its registry",
			Args: []api.ArgMetadata{
				{
					Name:        "image",
					Type:        "string",
					Required:    true,
					Description: "Image reference to pull",
				},
				{
					Name:        "platform",
					Type:        "string",
					Required:    false,
					Description: "Target platform, e.g. linux/amd64 (default: daemon default)",
				},
			},
		},
		{
			Name:        "remove_image",
			Description: "Remove an image from the local daemon",
			Args: []api.ArgMetadata{
				{
					Name:        "image",
					Type:        "string",
					Required:    true,
					Description: "Image reference to remove",
				},
				{
					Name:        "force",
					Type:        "boolean",
					Required:    false,
					Description: "Force removal (default: false)",
					Default:     false,
				},
			},
		},
		{
			Name:        "list_images",
			Description: "List local images, optionally filtered to one repository",
			Args: []api.ArgMetadata{
				{
					Name:        "repository",
					Type:        "string",
					Required:    false,
					Description: "Repository to filter by",
				},
			},
		},
		{
			Name:        "inspect_image",
			Description: "Return the daemon's full description of an image",
			Args: []api.ArgMetadata{
				{
					Name:        "image",
					Type:        "string",
					Required:    true,
					Description: "Image reference to inspect",
				},
			},
		},
		{
			Name:        "docker_ping",
			Description: "Check that the Docker daemon is reachable",
			Args:        []api.ArgMetadata{},
		},
	}
}

// ExecuteTool executes a Docker tool by name.
func (p *DockerProvider) ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (*api.CallToolResult, error) {
	logging.Debug(dockerToolsSubsystem, "Executing tool %s", toolName)

	switch toolName {
	case "build_image":
		return p.handleBuildImage(ctx, args)
	case "tag_image":
		return p.handleTagImage(ctx, args)
	case "push_image":
		return p.handlePushImage(ctx, args)
	case "pull_image":
		return p.handlePullImage(ctx, args)
	case "remove_image":
		return p.handleRemoveImage(ctx, args)
	case "list_images":
		return p.handleListImages(ctx, args)
	case "inspect_image":
		return p.handleInspectImage(ctx, args)
	case "docker_ping":
		return p.handlePing(ctx)
	default:
		return nil, &api.NotFoundError{
			ResourceType: "tool",
			ResourceName: toolName,
			Message:      fmt.Sprintf("unknown docker tool: %s", toolName),
		}
	}
}

func (p *DockerProvider) handleBuildImage(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	contextDir := stringArg(args, "context")
	if contextDir == "" {
		return errorResult("context argument is required"), nil
	}

	opts := docker.BuildOptions{
		ContextDir: contextDir,
		Dockerfile: stringArg(args, "dockerfile"),
		Platform:   stringArg(args, "platform"),
		Tags:       stringSliceArg(args, "tags"),
		BuildArgs:  stringMapArg(args, "build_args"),
		Target:     stringArg(args, "target"),
		NoCache:    boolArg(args, "no_cache"),
		Pull:       boolArg(args, "pull"),
	}

	identity := reconcile.Identity{Kind: "Image", Name: contextDir}
	if len(opts.Tags) > 0 {
		identity.Name = opts.Tags[0]
	}

	key := docker.BuildKey(opts)
	backend := docker.NewImageBackend(p.client)

	var outcome reconcile.Outcome[*docker.BuildResult]
	err := p.locks.WithLock(ctx, key, p.timeouts.BuildLockTimeout(), func() error {
		var applyErr error
		outcome, applyErr = reconcile.Apply(ctx, identity, opts, backend)
		return applyErr
	})
	if err != nil {
		return errorResult(fmt.Sprintf("Build failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"image_id": outcome.Observed.ImageID,
		"tags":     outcome.Observed.Tags,
		"duration": outcome.Observed.Duration.String(),
	}), nil
}

func (p *DockerProvider) handleTagImage(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	source := stringArg(args, "source")
	target := stringArg(args, "target")
	if source == "" || target == "" {
		return errorResult("source and target arguments are required"), nil
	}

	err := p.locks.WithLock(ctx, docker.TagKey(target), p.timeouts.LockTimeout(), func() error {
		return p.client.Tag(ctx, source, target)
	})
	if err != nil {
		return errorResult(fmt.Sprintf("Tag failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"source": source,
		"target": target,
	}), nil
}

func (p *DockerProvider) handlePushImage(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	image := stringArg(args, "image")
	if image == "" {
		return errorResult("image argument is required"), nil
	}

	policy := reconcile.RetryPolicy{
		Attempts: 1 + intArg(args, "retries", 2),
		Delay:    defaultPushRetryDelay,
	}
	if raw := stringArg(args, "retry_delay"); raw != "" {
		delay, err := time.ParseDuration(raw)
		if err != nil {
			return errorResult(fmt.Sprintf("Invalid retry_delay %q: %v", raw, err)), nil
		}
		policy.Delay = delay
	}

	// output is captured inside the attempt so the last attempt's CLI
	// output survives a failed retry loop for categorization.
	var output string
	err := p.locks.WithLock(ctx, docker.PushKey(image), p.timeouts.BuildLockTimeout(), func() error {
		_, pushErr := reconcile.Retry(ctx, policy, "push "+image, func(ctx context.Context) (string, error) {
			out, err := p.client.Push(ctx, image)
			output = out
			return out, err
		})
		return pushErr
	})
	if err != nil {
		if locking.IsTimeout(err) {
			return errorResult(fmt.Sprintf("Push failed: %v", err)), nil
		}
		category := docker.CategorizePushError(err, output)
		guidance := docker.PushGuidance(category, docker.ExtractRegistry(image))
		return errorResult(fmt.Sprintf("Push failed (%s): %v\n%s", category, err, guidance)), nil
	}

	return jsonResult(map[string]interface{}{
		"image": image,
	}), nil
}

func (p *DockerProvider) handlePullImage(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	image := stringArg(args, "image")
	if image == "" {
		return errorResult("image argument is required"), nil
	}
	platform := stringArg(args, "platform")

	// Pulls share the long bound with builds and pushes; large images
	// legitimately hold the key for minutes.
	err := p.locks.WithLock(ctx, docker.PullKey(image), p.timeouts.BuildLockTimeout(), func() error {
		_, pullErr := p.client.Pull(ctx, image, platform)
		return pullErr
	})
	if err != nil {
		return errorResult(fmt.Sprintf("Pull failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"image": image,
	}), nil
}

func (p *DockerProvider) handleRemoveImage(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	image := stringArg(args, "image")
	if image == "" {
		return errorResult("image argument is required"), nil
	}
	force := boolArg(args, "force")

	err := p.locks.WithLock(ctx, docker.RemoveKey(image), p.timeouts.LockTimeout(), func() error {
		return p.client.Remove(ctx, image, force)
	})
	if err != nil {
		return errorResult(fmt.Sprintf("Remove failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"image": image,
	}), nil
}

func (p *DockerProvider) handleListImages(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	images, err := p.client.Images(ctx, stringArg(args, "repository"))
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to list images: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"images": images,
		"count":  len(images),
	}), nil
}

func (p *DockerProvider) handleInspectImage(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	image := stringArg(args, "image")
	if image == "" {
		return errorResult("image argument is required"), nil
	}

	details, err := p.client.Inspect(ctx, image)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to inspect %s: %v", image, err)), nil
	}
	return jsonResult(details), nil
}

func (p *DockerProvider) handlePing(ctx context.Context) (*api.CallToolResult, error) {
	if err := p.client.Ping(ctx); err != nil {
		return errorResult(fmt.Sprintf("Docker daemon not reachable: %v", err)), nil
	}
	return textResult("Docker daemon is reachable"), nil
}
