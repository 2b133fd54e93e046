package provision

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStepsAppliesInOrder(t *testing.T) {
	var order []string
	mkStep := func(name string) Step {
		return Step{
			Name: name,
			Desc: name,
			Run: func(ctx context.Context) error {
				order = append(order, name)
				return nil
			},
		}
	}

	result, err := RunSteps(context.Background(), []Step{mkStep("first"), mkStep("second"), mkStep("third")}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Equal(t, 3, result.Count(StatusApplied))
	assert.Equal(t, 0, result.Count(StatusSkipped))
}

func TestRunStepsSkipsSatisfiedChecks(t *testing.T) {
	ran := false
	steps := []Step{
		{
			Name:  "already-done",
			Desc:  "already done",
			Check: func(ctx context.Context) (bool, error) { return true, nil },
			Run: func(ctx context.Context) error {
				ran = true
				return nil
			},
		},
	}

	result, err := RunSteps(context.Background(), steps, false)
	require.NoError(t, err)
	assert.False(t, ran, "a satisfied check must prevent the step from running")
	assert.Equal(t, []string{"already-done"}, result.Skipped())
}

func TestRunStepsReuseModeSkipsOneTimeOnly(t *testing.T) {
	var ran []string
	mkStep := func(name string, oneTime bool) Step {
		return Step{
			Name:    name,
			Desc:    name,
			OneTime: oneTime,
			Run: func(ctx context.Context) error {
				ran = append(ran, name)
				return nil
			},
		}
	}

	steps := []Step{
		mkStep("system-packages", true),
		mkStep("nginx-config", false),
		mkStep("docker-runtime", true),
	}

	result, err := RunSteps(context.Background(), steps, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"nginx-config"}, ran)
	assert.ElementsMatch(t, []string{"system-packages", "docker-runtime"}, result.Skipped())
	assert.Equal(t, []string{"nginx-config"}, result.Applied())
}

func TestRunStepsFailFast(t *testing.T) {
	boom := fmt.Errorf("disk full")
	var ran []string
	steps := []Step{
		{Name: "ok", Desc: "ok", Run: func(ctx context.Context) error {
			ran = append(ran, "ok")
			return nil
		}},
		{Name: "broken", Desc: "broken", Run: func(ctx context.Context) error {
			ran = append(ran, "broken")
			return boom
		}},
		{Name: "never", Desc: "never", Run: func(ctx context.Context) error {
			ran = append(ran, "never")
			return nil
		}},
	}

	result, err := RunSteps(context.Background(), steps, false)
	require.Error(t, err)
	assert.Equal(t, []string{"ok", "broken"}, ran)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "broken", stepErr.Step)
	assert.ErrorIs(t, err, boom)

	// The result covers everything up to and including the failure.
	require.Len(t, result.Statuses, 2)
	assert.Equal(t, StatusApplied, result.Statuses[0].Status)
	assert.Equal(t, StatusFailed, result.Statuses[1].Status)
}

func TestRunStepsCheckErrorAborts(t *testing.T) {
	steps := []Step{
		{
			Name:  "probe",
			Desc:  "probe",
			Check: func(ctx context.Context) (bool, error) { return false, errors.New("probe failed") },
			Run:   func(ctx context.Context) error { return nil },
		},
	}

	result, err := RunSteps(context.Background(), steps, false)
	require.Error(t, err)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "probe", stepErr.Step)
	assert.Equal(t, 1, result.Count(StatusFailed))
}

func TestRunStepsSecondRunSkipsWhatTheFirstApplied(t *testing.T) {
	// Model a converging system: each step's check reports whether its
	// first run already happened.
	applied := map[string]bool{}
	mkStep := func(name string) Step {
		return Step{
			Name:  name,
			Desc:  name,
			Check: func(ctx context.Context) (bool, error) { return applied[name], nil },
			Run: func(ctx context.Context) error {
				applied[name] = true
				return nil
			},
		}
	}
	steps := []Step{mkStep("a"), mkStep("b"), mkStep("c")}

	first, err := RunSteps(context.Background(), steps, false)
	require.NoError(t, err)
	second, err := RunSteps(context.Background(), steps, false)
	require.NoError(t, err)

	assert.Equal(t, first.Applied(), second.Skipped())
	assert.Empty(t, second.Applied())
}
