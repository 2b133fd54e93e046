package docker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/moby/term"

	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

// RegistryLogin verifies the registry credentials against the daemon and
// returns the encoded auth blob used for authenticated pulls. The password
// only ever lives in process memory.
func RegistryLogin(ctx context.Context, dockerClient *client.Client, username, password string) (string, error) {
	authConfig := registry.AuthConfig{
		Username: username,
		Password: password,
	}

	if _, err := dockerClient.RegistryLogin(ctx, authConfig); err != nil {
		return "", fmt.Errorf("registry login for %s failed: %w", username, err)
	}

	raw, err := json.Marshal(authConfig)
	if err != nil {
		return "", fmt.Errorf("failed to encode registry auth: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// PullImage pulls the given reference, streaming daemon progress to stdout.
func PullImage(ctx context.Context, dockerClient *client.Client, ref, encodedAuth string) error {
	ui.Info("Pulling image '%s'...\n", ref)

	resp, err := dockerClient.ImagePull(ctx, ref, image.PullOptions{RegistryAuth: encodedAuth})
	if err != nil {
		return fmt.Errorf("failed to pull image '%s': %w", ref, err)
	}
	defer resp.Close()

	termFd, isTerm := term.GetFdInfo(os.Stdout)
	if err := jsonmessage.DisplayJSONMessagesStream(resp, os.Stdout, termFd, isTerm, nil); err != nil {
		if jsonErr, ok := err.(*jsonmessage.JSONError); ok {
			return fmt.Errorf("pull failed with error from Docker daemon: %s", jsonErr.Message)
		}
		return fmt.Errorf("failed to stream pull output: %w", err)
	}

	ui.Success("Pulled image '%s'\n", ref)
	return nil
}
