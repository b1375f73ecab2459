/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the per-user
// config directory, checked against an embedded JSON schema, merged over the
// defaults and finally overridden by environment variables.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	applog "curveeditor/internal/log"
	"curveeditor/internal/transform"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaJSON []byte

// ErrInvalid is wrapped by every schema violation reported by Validate.
var ErrInvalid = errors.New("invalid config")

// SchemaError lists the schema violations of a config document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

func (e *SchemaError) Unwrap() error { return ErrInvalid }

// ViewConfig configures the transform service.
type ViewConfig struct {
	// Validation is "production", "strict" or empty for the
	// environment/build default.
	Validation        string  `yaml:"validation"`
	CacheSize         int     `yaml:"cache_size"`
	QuantizePrecision float64 `yaml:"quantize_precision"`
}

// IndexConfig configures the point index grid.
type IndexConfig struct {
	TargetCellSize       float64 `yaml:"target_cell_size"`
	MinGrid              int     `yaml:"min_grid"`
	MaxGrid              int     `yaml:"max_grid"`
	ResizeThresholdPx    float64 `yaml:"resize_threshold_px"`
	ResizeThresholdRatio float64 `yaml:"resize_threshold_ratio"`
	InitialWidth         float64 `yaml:"initial_width"`
	InitialHeight        float64 `yaml:"initial_height"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the user-editable configuration.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	View          ViewConfig    `yaml:"view"`
	Index         IndexConfig   `yaml:"index"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		View:          ViewConfig{CacheSize: 128, QuantizePrecision: 0.1},
		Index: IndexConfig{
			TargetCellSize:       45,
			MinGrid:              10,
			MaxGrid:              50,
			ResizeThresholdPx:    100,
			ResizeThresholdRatio: 0.10,
			InitialWidth:         800,
			InitialHeight:        600,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides. Logging uses the names defined by the
// log package.
const (
	EnvConfigFile     = "CURVE_EDITOR_CONFIG"
	EnvFullValidation = transform.EnvFullValidation
	EnvCacheSize      = "CURVE_EDITOR_CACHE_SIZE"
	EnvLogLevel       = applog.EnvLevel
	EnvLogFormat      = applog.EnvFormat
	EnvLogSource      = applog.EnvSource
	EnvLogFile        = applog.EnvFile
)

// ConfigPath returns the config file path: EnvConfigFile when set,
// otherwise config.yaml in the per-user config directory.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "CurveEditor")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "CurveEditor")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "curveeditor")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "curveeditor")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file at ConfigPath.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), err
	}
	return LoadFile(path)
}

// LoadFile reads path (a missing file is not an error), validates it,
// merges it over the defaults and applies environment overrides.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := Validate(data); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes cfg to the file at ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as YAML to path, creating parent directories.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks a YAML config document against the embedded schema. An
// empty document is valid.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert config to json: %w", err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(js))
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	se := &SchemaError{}
	for _, e := range result.Errors() {
		se.Problems = append(se.Problems, e.String())
	}
	return se
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if v := strings.ToLower(strings.TrimSpace(src.View.Validation)); v != "" {
		dst.View.Validation = v
	}
	if src.View.CacheSize > 0 {
		dst.View.CacheSize = src.View.CacheSize
	}
	if src.View.QuantizePrecision > 0 {
		dst.View.QuantizePrecision = src.View.QuantizePrecision
	}

	idx := &src.Index
	if idx.TargetCellSize > 0 {
		dst.Index.TargetCellSize = idx.TargetCellSize
	}
	if idx.MinGrid > 0 {
		dst.Index.MinGrid = idx.MinGrid
	}
	if idx.MaxGrid > 0 {
		dst.Index.MaxGrid = idx.MaxGrid
	}
	if idx.ResizeThresholdPx > 0 {
		dst.Index.ResizeThresholdPx = idx.ResizeThresholdPx
	}
	if idx.ResizeThresholdRatio > 0 {
		dst.Index.ResizeThresholdRatio = idx.ResizeThresholdRatio
	}
	if idx.InitialWidth > 0 {
		dst.Index.InitialWidth = idx.InitialWidth
	}
	if idx.InitialHeight > 0 {
		dst.Index.InitialHeight = idx.InitialHeight
	}

	// logging
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
	if v := strings.TrimSpace(os.Getenv(EnvFullValidation)); v != "" {
		if m, ok := transform.ParseValidationMode(v); ok {
			cfg.View.Validation = m.String()
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheSize)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.View.CacheSize = n
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "view.validation":
		env = EnvFullValidation
	case "view.cache_size":
		env = EnvCacheSize
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// ValidationMode resolves View.Validation. An empty or unrecognised value
// defers to the environment and build default.
func (v ViewConfig) ValidationMode() transform.ValidationMode {
	if m, ok := transform.ParseValidationMode(v.Validation); ok {
		return m
	}
	return transform.ValidationFromEnv()
}

// LogOptions converts the logging section into log.Init options.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}
