// Package main provides the Docker container entrypoint
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

func main() {
	runType := getEnvWithDefault("RUN_TYPE", "cli")

	switch runType {
	case "cli":
		execBinary("/app/bin/patrol", os.Args[1:]...)
	case "migrate":
		execBinary("/app/bin/db", "migrate")
	case "audit":
		execBinary("/app/bin/db", "audit")
	default:
		fmt.Fprintf(os.Stderr, "Invalid RUN_TYPE %q. Must be one of 'cli', 'migrate' or 'audit'\n", runType)
		fmt.Fprintf(os.Stderr, "Usage: RUN_TYPE=cli patrol-entrypoint [patrol arguments]\n")
		os.Exit(1)
	}
}

// getEnvWithDefault returns the environment variable value or the default if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// execBinary runs the binary with the given arguments and exits with its status on failure.
func execBinary(path string, args ...string) {
	cmd := exec.Command(path, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute %s: %v\n", filepath.Base(path), err)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}
