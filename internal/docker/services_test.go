package docker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStackNotReadyError(t *testing.T) {
	err := stackNotReadyError(nil, 2*time.Minute)
	assert.EqualError(t, err, "stack not ready after 2m0s: no containers found")

	err = stackNotReadyError([]StackState{
		{Service: "web", State: "restarting", Status: "Restarting (1) 2 seconds ago"},
		{Service: "worker", State: "running", Status: "Up 10 seconds"},
		{Service: "redis", State: "running", Status: "Up 5 seconds (unhealthy)"},
	}, 2*time.Minute)
	assert.Contains(t, err.Error(), "web (restarting)")
	assert.Contains(t, err.Error(), "redis (Up 5 seconds (unhealthy))")
	assert.NotContains(t, err.Error(), "worker")
}
