package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_JSON(t *testing.T) {
	var conf ClientConfig
	require.NoError(t, json.Unmarshal([]byte(`{"loadTimeout":"3s","submitTimeout":1500}`), &conf))
	assert.Equal(t, 3*time.Second, conf.LoadTimeout.Std())
	assert.Equal(t, 1500*time.Millisecond, conf.SubmitTimeout.Std())

	data, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"loadTimeout":"soon"}`), &conf))
	assert.Error(t, json.Unmarshal([]byte(`{"loadTimeout":true}`), &conf))
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yamlFile := filepath.Join(dir, "client.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("platform: ios-simulator\nresetDelay: 500ms\nloadTimeout: 2000\n"), 0644))

	conf := GetDefaultClientConfig()
	require.NoError(t, ReadConfigFile(yamlFile, conf))
	assert.Equal(t, "ios-simulator", conf.Platform)
	assert.Equal(t, 500*time.Millisecond, conf.ResetDelay.Std())
	assert.Equal(t, 2*time.Second, conf.LoadTimeout.Std())
	assert.Equal(t, 10*time.Second, conf.SubmitTimeout.Std(), "defaults stay in place")

	jsonFile := filepath.Join(dir, "client.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"baseUrl":"http://example.org/api/events/"}`), 0644))
	require.NoError(t, ReadConfigFile(jsonFile, conf))
	assert.Equal(t, "http://example.org/api/events/", conf.BaseURL)

	assert.Error(t, ReadConfigFile(filepath.Join(dir, "missing.json"), conf))
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0644))
	assert.Error(t, ReadConfigFile(broken, conf))
}

func TestAppConfig_MediaDir(t *testing.T) {
	assert.Equal(t, "/srv/eventqr/media", AppConfig{DataDir: "/srv/eventqr"}.MediaDir())
}
