package main

import (
	"os"

	"github.com/dennisneo6969/esc-compose-prod/internal/escadm"
	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

func main() {
	rootCmd := escadm.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		ui.Error("%v\n", err)
		os.Exit(1)
	}
}
