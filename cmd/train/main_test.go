package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	conf, err := loadConfig("", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, conf.Size)

	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("name: tiny\nmax_examples: 128\nworkers: 3\nseed: 42\n"), 0644))
	conf, err = loadConfig(good, 7)
	require.NoError(t, err)
	assert.Equal(t, "tiny", conf.Name)
	assert.Equal(t, 128, conf.MaxExamples)
	assert.Equal(t, 3, conf.Workers)
	assert.Equal(t, uint64(42), conf.Seed)
	assert.Equal(t, 7, conf.Size, "unset keys keep their defaults")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("size: 9\n"), 0644))
	_, err = loadConfig(bad, 7)
	assert.Error(t, err, "the size no longer matches the network")

	_, err = loadConfig(filepath.Join(dir, "missing.yaml"), 7)
	assert.Error(t, err)
}
