package presets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinyfs/ssfs/presets"
)

func TestGetKnownPreset(t *testing.T) {
	g, err := presets.Get("standard")
	require.NoError(t, err)
	assert.Equal(t, "Standard", g.Name)
	assert.Greater(t, g.TotalBlocks, g.Inodes)
}

func TestGetUnknownPreset(t *testing.T) {
	_, err := presets.Get("does-not-exist")
	assert.Error(t, err)
}

func TestNamesIncludesEveryPreset(t *testing.T) {
	names := presets.Names()
	assert.Contains(t, names, "tiny")
	assert.Contains(t, names, "standard")
	assert.Len(t, names, 4)
}

func TestTotalSizeBytes(t *testing.T) {
	g, err := presets.Get("tiny")
	require.NoError(t, err)
	assert.Equal(t, int64(64*1024), g.TotalSizeBytes(1024))
}
