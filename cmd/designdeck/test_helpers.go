package main

import (
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath returns the path to the designdeck binary under test. CLI
// tests exercise the built binary and are skipped when it is absent or in
// short mode.
func getBinaryPath(t *testing.T) string {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", "designdeck")
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/designdeck ./cmd/designdeck'", binaryPath)
	}

	return binaryPath
}
