package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
cycles:
  - startDate: "2025-01-02"
    level: INICIAL
  - id: lider-feb
    startDate: "2025-02-06"
    level: PROGRAMA_LIDER
    capacity: 12
`

func TestLoad(t *testing.T) {
	entries, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-01-02", entries[0].StartDate)
	assert.Equal(t, "INICIAL", entries[0].Level)
	assert.Zero(t, entries[0].Capacity)
	assert.Equal(t, "lider-feb", entries[1].ID)
	assert.Equal(t, 12, entries[1].Capacity)
}

func TestLoadRejectsBadInput(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("cycles: []\n"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("cycles:\n  - startDate: \"2025-01-02\"\n    seats: 4\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	entries, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
