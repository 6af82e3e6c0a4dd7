//go:build integration
// +build integration

package e2e

import (
	"os"
	"testing"
)

// TestMain is the entry point for the end-to-end integration tests.
// Each test starts its own disposable PostgreSQL container via
// testcontainers; Docker must be available.
func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
