// Package configuration loads the forge configuration file.
package configuration

import (
	_ "embed"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/projectforge/forge/internal/coach"
	"github.com/projectforge/forge/internal/debug"
	"github.com/projectforge/forge/internal/file"
)

// DefaultPath is where the configuration lives unless FORGE_CONFIG says otherwise.
const DefaultPath = "~/.config/forge/config.json"

// Environment variables that override the file.
const (
	EnvAPIURL   = "FORGE_API_URL"
	EnvDebugLog = "FORGE_DEBUG_LOG"
)

//go:embed schema.json
var schema []byte

// Config holds configuration for the forge tool.
type Config struct {
	// Backend base URL.
	APIBaseURL string `json:"api_base_url"`
	// Per-request timeout in seconds. 0 leaves requests unbounded.
	RequestTimeout int    `json:"request_timeout"`
	DebugLogFile   string `json:"debug_log_file"`

	Chat ChatConfig `json:"chat"`
}

// ChatConfig holds configuration for forge chat.
type ChatConfig struct {
	// Drafts shorter than this are rejected before submitting. 0 disables the check.
	MinInputLength int `json:"min_input_length"`
	// Persist input history here. Empty keeps it in memory.
	HistoryFile  string `json:"history_file"`
	SidebarWidth int    `json:"sidebar_width"`
	// Default directory for forge export.
	ExportDirectory string `json:"export_directory"`
}

func defaults() Config {
	return Config{
		APIBaseURL:   coach.DefaultBaseURL,
		DebugLogFile: debug.DefaultPath(),
		Chat: ChatConfig{
			SidebarWidth: 28,
		},
	}
}

// RequestTimeoutDuration returns the request timeout, 0 meaning none.
func (c *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Parse a configuration file, creating it with defaults when missing. Missing
// fields take their defaults, then FORGE_* variables from the environment or a
// .env file in the working directory override the file.
func Parse(path string) (*Config, error) {
	path, err := file.ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}
	if err := mergo.Merge(config, defaults()); err != nil {
		return nil, errors.Wrap(err, "applying defaults")
	}
	if err := applyEnvironment(config); err != nil {
		return nil, errors.Wrap(err, "applying environment")
	}
	if err := config.validate(); err != nil {
		return nil, errors.Wrapf(err, "validating %s", path)
	}

	for _, p := range []*string{&config.DebugLogFile, &config.Chat.HistoryFile, &config.Chat.ExportDirectory} {
		if *p, err = file.ExpandPath(*p); err != nil {
			return nil, errors.Wrap(err, "expanding path")
		}
	}
	config.APIBaseURL = strings.TrimRight(config.APIBaseURL, "/")
	return config, nil
}

func applyEnvironment(config *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "loading .env")
	}
	if value := os.Getenv(EnvAPIURL); value != "" {
		config.APIBaseURL = value
	}
	if value := os.Getenv(EnvDebugLog); value != "" {
		config.DebugLogFile = value
	}
	return nil
}

func (c *Config) validate() error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(c))
	if err != nil {
		return errors.Wrap(err, "running schema")
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		problems = append(problems, resultErr.String())
	}
	return errors.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	// Create the directories.
	dir, _ := filepath.Split(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	config := defaults()
	if err := config.save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}
