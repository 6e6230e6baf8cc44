package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with no FORGE_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvDebugLog, "")
	return dir
}

func TestParseCreatesDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.json")

	config, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", config.APIBaseURL)
	assert.Equal(t, 28, config.Chat.SidebarWidth)
	assert.Zero(t, config.Chat.MinInputLength)
	assert.Zero(t, config.RequestTimeoutDuration())
	assert.FileExists(t, path)
}

func TestParseFillsMissingFields(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"request_timeout": 30, "chat": {"min_input_length": 50}}`), 0o644))

	config, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", config.APIBaseURL)
	assert.Equal(t, 30*time.Second, config.RequestTimeoutDuration())
	assert.Equal(t, 50, config.Chat.MinInputLength)
	assert.Equal(t, 28, config.Chat.SidebarWidth)
}

func TestParseEnvironmentOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_base_url": "http://file.example:8000/"}`), 0o644))

	config, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file.example:8000", config.APIBaseURL)

	t.Setenv(EnvAPIURL, "https://coach.example")
	config, err = Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "https://coach.example", config.APIBaseURL)
}

func TestParseDotEnv(t *testing.T) {
	dir := isolate(t)
	os.Unsetenv(EnvAPIURL)
	os.Unsetenv(EnvDebugLog)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FORGE_DEBUG_LOG=/tmp/forge-from-dotenv.log\n"), 0o644))

	config, err := Parse(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/forge-from-dotenv.log", config.DebugLogFile)
	os.Unsetenv(EnvDebugLog)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad scheme", content: `{"api_base_url": "ftp://coach"}`},
		{name: "negative timeout", content: `{"request_timeout": -1}`},
		{name: "tiny sidebar", content: `{"chat": {"sidebar_width": 2}}`},
		{name: "not json", content: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := Parse(path)
			assert.Error(t, err)
		})
	}
}
