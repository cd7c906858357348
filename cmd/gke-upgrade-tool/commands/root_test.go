package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "gke-upgrade-tool", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"upgrade", "status", "versions", "version", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2025-01-10")
	cmd := Version()

	require.NotNil(t, cmd)
	assert.Equal(t, "version", cmd.Use)
	assert.NotNil(t, cmd.Run)
}

func TestVersionsCommand(t *testing.T) {
	cmd := Versions()

	require.NotNil(t, cmd)
	flag := cmd.Flags().Lookup("minor")
	require.NotNil(t, flag)
	assert.Equal(t, "m", flag.Shorthand)
}

func TestStatusCommand(t *testing.T) {
	cmd := Status()

	require.NotNil(t, cmd)
	assert.Equal(t, "status <env-file>", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}
