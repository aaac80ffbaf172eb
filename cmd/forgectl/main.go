// Package main is the entry point for the forgectl CLI.
package main

import (
	"os"

	"github.com/appforge-io/forgectl/cmd/forgectl/app"
	"github.com/appforge-io/forgectl/pkg/logger"
)

func main() {
	// Initialize the logger system
	logger.Initialize()

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
