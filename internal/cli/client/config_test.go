package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempConfig(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "syllabus")

	old := configDir
	configDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { configDir = old })

	return dir
}

func TestGetConfigPath(t *testing.T) {
	dir := withTempConfig(t)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.json"), path)
}

func TestLoadGlobalConfig_FileNotExists(t *testing.T) {
	withTempConfig(t)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestSaveAndLoadGlobalConfig(t *testing.T) {
	dir := withTempConfig(t)

	err := SaveGlobalConfig(&GlobalConfig{APIKey: "secret-key", APIURL: "http://faq.example"})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, "secret-key", config.APIKey)
	assert.Equal(t, "http://faq.example", config.APIURL)
}

func TestSaveGlobalConfig_Nil(t *testing.T) {
	withTempConfig(t)
	assert.Error(t, SaveGlobalConfig(nil))
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	dir := withTempConfig(t)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600))

	_, err := LoadGlobalConfig()
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestDeleteGlobalConfig(t *testing.T) {
	withTempConfig(t)

	// Deleting a missing file is fine.
	require.NoError(t, DeleteGlobalConfig())

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIKey: "k"}))
	require.NoError(t, DeleteGlobalConfig())

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestResolveAPIURL(t *testing.T) {
	withTempConfig(t)
	t.Setenv(envAPIURL, "")

	source, url := ResolveAPIURL("")
	assert.Equal(t, SourceDefault, source)
	assert.Equal(t, defaultAPIURL, url)

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://from-config"}))
	source, url = ResolveAPIURL("")
	assert.Equal(t, SourceGlobalConfig, source)
	assert.Equal(t, "http://from-config", url)

	t.Setenv(envAPIURL, "http://from-env")
	source, url = ResolveAPIURL("")
	assert.Equal(t, SourceEnv, source)
	assert.Equal(t, "http://from-env", url)

	source, url = ResolveAPIURL("http://from-flag")
	assert.Equal(t, SourceFlag, source)
	assert.Equal(t, "http://from-flag", url)
}

func TestResolveAPIKey(t *testing.T) {
	withTempConfig(t)
	t.Setenv(envAPIKey, "")

	source, key := ResolveAPIKey("")
	assert.Equal(t, SourceDefault, source)
	assert.Empty(t, key)

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIKey: "from-config"}))
	source, key = ResolveAPIKey("")
	assert.Equal(t, SourceGlobalConfig, source)
	assert.Equal(t, "from-config", key)
}

func TestSaveGlobalConfig_LeavesNoTempFile(t *testing.T) {
	dir := withTempConfig(t)
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://x"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.json", entries[0].Name())
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****", maskKey("short"))
	assert.Equal(t, "abcd****wxyz", maskKey("abcdefghijklmnopqrstuvwxyz"))
}
