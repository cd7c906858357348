package handlers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	path := writeEnvFixture(t)
	assert.NoError(t, Status(path))
}

func TestStatus_MissingFile(t *testing.T) {
	err := Status(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read env file")
}
