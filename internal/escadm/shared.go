package escadm

import (
	"fmt"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
)

// loadSettings returns the saved settings record. Operator commands other
// than setup require a completed provisioning run.
func loadSettings() (config.Settings, error) {
	store := config.NewStore(config.InstallDir())
	settings, found, err := store.Load()
	if err != nil {
		return config.Settings{}, err
	}
	if !found {
		return config.Settings{}, fmt.Errorf("no saved configuration found in %s; run 'escadm setup' first", config.InstallDir())
	}
	return settings, nil
}
