package docker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// Compose operations shell out to `docker compose` against the generated
// file; the stack definition itself lives in internal/compose.

func composeCmd(ctx context.Context, composeFile string, args ...string) *exec.Cmd {
	full := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", full...)
	cmd.Dir = filepath.Dir(composeFile)
	return cmd
}

func ComposeUp(ctx context.Context, composeFile string) error {
	out, err := composeCmd(ctx, composeFile, "up", "-d", "--remove-orphans").CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to start stack: %w\n%s", err, out)
	}
	return nil
}

func ComposeDown(ctx context.Context, composeFile string) error {
	out, err := composeCmd(ctx, composeFile, "down").CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to stop stack: %w\n%s", err, out)
	}
	return nil
}

// ComposeLogs follows the stack logs, optionally scoped to one service.
// Output goes straight to the operator's terminal.
func ComposeLogs(ctx context.Context, composeFile, service string) error {
	args := []string{"logs", "--follow", "--tail", "100"}
	if service != "" {
		args = append(args, service)
	}
	cmd := composeCmd(ctx, composeFile, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// StackState describes one container of the compose project.
type StackState struct {
	Service string
	State   string
	Status  string
}

// StackStates lists the project's containers via the daemon API.
func StackStates(ctx context.Context, dockerClient *client.Client, project string) ([]StackState, error) {
	fl := filters.NewArgs()
	fl.Add("label", "com.docker.compose.project="+project)

	containers, err := dockerClient.ContainerList(ctx, container.ListOptions{All: true, Filters: fl})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var states []StackState
	for _, c := range containers {
		service := c.Labels["com.docker.compose.service"]
		if service == "" && len(c.Names) > 0 {
			service = strings.TrimPrefix(c.Names[0], "/")
		}
		states = append(states, StackState{Service: service, State: c.State, Status: c.Status})
	}
	return states, nil
}

// WaitForStack polls until every container of the project is running and
// none reports unhealthy, or the timeout elapses.
func WaitForStack(ctx context.Context, dockerClient *client.Client, project string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		states, err := StackStates(ctx, dockerClient, project)
		if err != nil {
			return err
		}

		ready := len(states) > 0
		for _, s := range states {
			if s.State != "running" || strings.Contains(s.Status, "unhealthy") {
				ready = false
				break
			}
		}
		if ready {
			return nil
		}

		if time.Now().After(deadline) {
			return stackNotReadyError(states, timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

// stackNotReadyError names what is still in the way at the deadline. An
// empty project usually means compose never created the containers.
func stackNotReadyError(states []StackState, timeout time.Duration) error {
	if len(states) == 0 {
		return fmt.Errorf("stack not ready after %s: no containers found", timeout)
	}
	var pending []string
	for _, s := range states {
		if s.State != "running" {
			pending = append(pending, fmt.Sprintf("%s (%s)", s.Service, s.State))
		} else if strings.Contains(s.Status, "unhealthy") {
			pending = append(pending, fmt.Sprintf("%s (%s)", s.Service, s.Status))
		}
	}
	return fmt.Errorf("stack not ready after %s: %s", timeout, strings.Join(pending, ", "))
}
