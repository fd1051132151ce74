/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config holds the user-editable configuration persisted to a YAML
// file in the user scope. Environment variables are read-only overrides at
// runtime. The workflow-automation API token is never written to disk; it
// lives in the OS keyring.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
}

// CanvasConfig tunes the editing engine defaults for new sessions.
type CanvasConfig struct {
	GridSize            float64 `yaml:"grid_size"`
	SnapEnabled         bool    `yaml:"snap_enabled"`
	VirtualizeThreshold int     `yaml:"virtualize_threshold"`
	ViewportBuffer      float64 `yaml:"viewport_buffer"`
	ResizeDebounceMs    int     `yaml:"resize_debounce_ms"`
	HistoryDepth        int     `yaml:"history_depth"`
}

// BackendConfig points at the optional publish backend.
// The token is not stored on disk; it lives in the OS keychain.
type BackendConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the top-level configuration document.
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Backend       BackendConfig `yaml:"backend"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system"},
		Canvas: CanvasConfig{
			GridSize:            10,
			SnapEnabled:         true,
			VirtualizeThreshold: 20,
			ViewportBuffer:      200,
			ResizeDebounceMs:    100,
			HistoryDepth:        100,
		},
		Backend: BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvBackendURL       = "PF_BACKEND_URL"
	EnvBackendTimeoutMs = "PF_BACKEND_TIMEOUT_MS"
	EnvTelemetryOptIn   = "PF_TELEMETRY_OPT_IN"
	EnvGridSize         = "PF_GRID_SIZE"
	EnvSnapEnabled      = "PF_SNAP_ENABLED"
	EnvLogLevel         = "PF_LOG_LEVEL"
	EnvLogFormat        = "PF_LOG_FORMAT"
	EnvLogSource        = "PF_LOG_SOURCE"
	EnvLogFile          = "PF_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService       = "PageForge"
	keyringWorkflowToken = "workflow_token"
)

// TokenStore abstracts the keyring so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// tokenStore defaults to the OS keyring via github.com/zalando/go-keyring.
var tokenStore TokenStore = osKeyring{}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// SetTokenStore swaps the keyring backend; tests install an in-memory stub.
// It returns the previous store so callers can restore it.
func SetTokenStore(s TokenStore) TokenStore {
	old := tokenStore
	tokenStore = s
	return old
}

// WorkflowToken reads the workflow-automation API token from the keyring.
// A missing token is not an error; the empty string is returned.
func WorkflowToken() string {
	tok, err := tokenStore.Get(keyringService, keyringWorkflowToken)
	if err != nil {
		return ""
	}
	return tok
}

// SetWorkflowToken stores (or, with an empty value, deletes) the token.
func SetWorkflowToken(token string) error {
	if token == "" {
		return tokenStore.Delete(keyringService, keyringWorkflowToken)
	}
	return tokenStore.Set(keyringService, keyringWorkflowToken, token)
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PageForge")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PageForge")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "pageforge")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. The workflow token is returned separately; it is
// never part of the struct.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, WorkflowToken(), nil
}

// Save writes the user config YAML and persists the token into the OS
// keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		return SetWorkflowToken(token)
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Canvas.GridSize > 0 {
		dst.Canvas.GridSize = src.Canvas.GridSize
	}
	dst.Canvas.SnapEnabled = src.Canvas.SnapEnabled
	if src.Canvas.VirtualizeThreshold > 0 {
		dst.Canvas.VirtualizeThreshold = src.Canvas.VirtualizeThreshold
	}
	if src.Canvas.ViewportBuffer > 0 {
		dst.Canvas.ViewportBuffer = src.Canvas.ViewportBuffer
	}
	if src.Canvas.ResizeDebounceMs > 0 {
		dst.Canvas.ResizeDebounceMs = src.Canvas.ResizeDebounceMs
	}
	if src.Canvas.HistoryDepth > 0 {
		dst.Canvas.HistoryDepth = src.Canvas.HistoryDepth
	}
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvGridSize)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Canvas.GridSize = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnapEnabled)); v != "" {
		cfg.Canvas.SnapEnabled = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func isTruthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}
