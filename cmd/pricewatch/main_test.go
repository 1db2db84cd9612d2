package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dbalogun/pricewatch"
	main "github.com/dbalogun/pricewatch/cmd/pricewatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testContext returns a background context for tests.
func testContext() context.Context {
	return context.Background()
}

func TestRun_HelpFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"--help flag", []string{"--help"}},
		{"-h flag", []string{"-h"}},
		{"help command", []string{"help"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := main.NewMain()
			m.DBPath = filepath.Join(t.TempDir(), "test.db")

			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}

			err := m.Run(testContext(), tt.args, stdout, stderr)

			require.NoError(t, err)
			assert.Contains(t, stdout.String(), "Usage: pricewatch")
			assert.Contains(t, stdout.String(), "Commands:")
			assert.Empty(t, stderr.String())
		})
	}
}

func TestRun_NoArgs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(testContext(), []string{}, stdout, stderr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
	assert.Contains(t, stdout.String(), "Usage: pricewatch")
}

func TestRun_HelpWithoutCreatingDB(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "should-not-exist.db")

	m := main.NewMain()
	m.DBPath = dbPath

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(testContext(), []string{"--help"}, stdout, stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Usage: pricewatch")

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "database file should not be created for --help")
}

// TestRun_EndToEnd drives the catalog commands against a real database
// file, the way a user would from the shell.
func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "pricewatch.db")

	run := func(args ...string) (string, string, error) {
		m := main.NewMain()
		m.DBPath = dbPath
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		err := m.Run(testContext(), args, stdout, stderr)
		return stdout.String(), stderr.String(), err
	}

	// Watch a product.
	stdout, _, err := run("add", "https://www.amazon.com/dp/B08N5WRWNW")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Watching amazon")

	// Watching it twice is a conflict.
	_, _, err = run("add", "https://www.amazon.com/dp/B08N5WRWNW")
	require.Error(t, err)
	assert.Equal(t, pricewatch.ECONFLICT, pricewatch.ErrorCode(err))

	// The entry shows up as never scraped.
	stdout, _, err = run("list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "https://www.amazon.com/dp/B08N5WRWNW")
	assert.Contains(t, stdout, "last=never")

	fields := strings.Fields(stdout)
	require.NotEmpty(t, fields)
	entryID := fields[0]

	// Status reflects the single entry.
	stdout, _, err = run("status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Catalog: 1 entries (1 active, 1 never scraped)")
	assert.Contains(t, stdout, "amazon: 1")
	assert.Contains(t, stdout, "Proxy pool: not configured")

	// Deleting needs confirmation.
	_, stderr, err := run("delete", entryID)
	require.Error(t, err)
	assert.Contains(t, stderr, "--force")

	stdout, _, err = run("delete", entryID, "--force")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted")

	stdout, _, err = run("list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No entries found")
}
