package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const configFileName = "config.json"

// GlobalConfig is the per-user CLI configuration.
type GlobalConfig struct {
	APIKey string `json:"api_key,omitempty"`
	APIURL string `json:"api_url,omitempty"`
}

// configDir is replaced in tests.
var configDir = func() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, "syllabus"), nil
}

// GetConfigPath returns the location of the config file.
func GetConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadGlobalConfig returns nil and no error when the file does not exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &GlobalConfig{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// SaveGlobalConfig replaces the config file atomically. The file is only
// readable by the current user since it may hold an API key.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(raw, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DeleteGlobalConfig removes the config file if present.
func DeleteGlobalConfig() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// CredentialSource names where a setting was found.
type CredentialSource string

const (
	SourceFlag         CredentialSource = "flag"
	SourceEnv          CredentialSource = "env"
	SourceGlobalConfig CredentialSource = "global_config"
	SourceDefault      CredentialSource = "default"
)

// resolveSetting walks flag, environment, config file and fallback in
// that order and returns the first non-empty value.
func resolveSetting(flagValue, envKey string, fromFile func(*GlobalConfig) string, fallback string) (CredentialSource, string) {
	if flagValue != "" {
		return SourceFlag, flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return SourceEnv, v
	}
	if cfg, err := LoadGlobalConfig(); err == nil && cfg != nil {
		if v := fromFile(cfg); v != "" {
			return SourceGlobalConfig, v
		}
	}
	return SourceDefault, fallback
}

// ResolveAPIURL reports the effective API URL and where it came from.
func ResolveAPIURL(flagAPIURL string) (CredentialSource, string) {
	return resolveSetting(flagAPIURL, envAPIURL, func(c *GlobalConfig) string { return c.APIURL }, defaultAPIURL)
}

// ResolveAPIKey reports the effective API key and where it came from.
// An empty key means requests go out without authorization.
func ResolveAPIKey(flagAPIKey string) (CredentialSource, string) {
	return resolveSetting(flagAPIKey, envAPIKey, func(c *GlobalConfig) string { return c.APIKey }, "")
}
