package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigService_DefaultsWithoutFile(t *testing.T) {
	conf := NewConfigService(filepath.Join(t.TempDir(), "config.json")).GetConfig(testContext())
	assert.Equal(t, ":8000", conf.ListenAddress)
	assert.NotEmpty(t, conf.DataDir)
}

func TestConfigService_LoadMissingFile(t *testing.T) {
	s := NewConfigService(filepath.Join(t.TempDir(), "config.json"))
	assert.Error(t, s.Load(testContext()))
}

func TestConfigService_LoadKeepsDefaults(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(filename, []byte("publicUrl: http://10.0.2.2:8000\n"), 0644))

	s := NewConfigService(filename)
	require.NoError(t, s.Load(testContext()))
	conf := s.GetConfig(testContext())
	assert.Equal(t, "http://10.0.2.2:8000", conf.PublicURL)
	assert.Equal(t, ":8000", conf.ListenAddress)
}

func TestConfigService_WriteAndLoad(t *testing.T) {
	for _, name := range []string{"config.json", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "source.json")
			require.NoError(t, os.WriteFile(src, []byte(`{"dataDir":"/srv/eventqr","listenAddress":"127.0.0.1:9000"}`), 0644))
			s := NewConfigService(src)
			require.NoError(t, s.Load(testContext()))

			target := filepath.Join(dir, name)
			require.NoError(t, s.WriteToFile(testContext(), target))

			other := NewConfigService(target)
			require.NoError(t, other.Load(testContext()))
			assert.Equal(t, s.GetConfig(testContext()), other.GetConfig(testContext()))
			assert.Equal(t, "/srv/eventqr", other.GetConfig(testContext()).DataDir)
			assert.Equal(t, "/srv/eventqr/media", other.GetConfig(testContext()).MediaDir())
		})
	}
}
