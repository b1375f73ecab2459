/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"curveeditor/internal/transform"

	"github.com/google/go-cmp/cmp"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfigFile, EnvFullValidation, EnvCacheSize, EnvLogLevel, EnvLogFormat, EnvLogSource, EnvLogFile} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if d := cmp.Diff(Defaults(), cfg); d != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", d)
	}
}

func TestLoadFileMergesSections(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
config_version: 1
view:
  validation: Strict
  cache_size: 32
index:
  min_grid: 4
  resize_threshold_ratio: 0.25
logging:
  level: DEBUG
  source: true
unknown_section:
  kept: ignored
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	want := Defaults()
	want.View.Validation = "strict"
	want.View.CacheSize = 32
	want.Index.MinGrid = 4
	want.Index.ResizeThresholdRatio = 0.25
	want.Logging.Level = "debug"
	want.Logging.Source = true
	if d := cmp.Diff(want, cfg); d != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", d)
	}
	if got := cfg.View.ValidationMode(); got != transform.Strict {
		t.Fatalf("ValidationMode() = %v, want strict", got)
	}
}

func TestLoadFileRejectsSchemaViolations(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"zero cache":     "view:\n  cache_size: 0\n",
		"bad precision":  "view:\n  quantize_precision: -1\n",
		"typo in index":  "index:\n  min_gird: 3\n",
		"bad validation": "view:\n  validation: paranoid\n",
		"bad format":     "logging:\n  format: xml\n",
		"not an object":  "- 1\n- 2\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, body))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("LoadFile() error = %v, want ErrInvalid", err)
			}
			var se *SchemaError
			if !errors.As(err, &se) || len(se.Problems) == 0 {
				t.Fatalf("expected SchemaError with problems, got %v", err)
			}
		})
	}
}

func TestLoadFileMalformedYAML(t *testing.T) {
	clearEnv(t)
	_, err := LoadFile(writeConfig(t, "view: [unterminated\n"))
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if errors.Is(err, ErrInvalid) {
		t.Fatalf("decode error should not be a schema error: %v", err)
	}
}

func TestValidateEmptyDocument(t *testing.T) {
	if err := Validate(nil); err != nil {
		t.Fatalf("Validate(nil) = %v", err)
	}
	if err := Validate([]byte("# only a comment\n")); err != nil {
		t.Fatalf("Validate(comment) = %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvFullValidation, "yes")
	t.Setenv(EnvCacheSize, "7")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/tmp/curveeditor.log")
	path := writeConfig(t, "view:\n  validation: production\n  cache_size: 64\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.View.Validation != "strict" || cfg.View.CacheSize != 7 {
		t.Fatalf("view overrides not applied: %#v", cfg.View)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/tmp/curveeditor.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
	if env, ok := EnvOverrideFor("view.cache_size"); !ok || env != EnvCacheSize {
		t.Fatalf("EnvOverrideFor(view.cache_size) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("index.min_grid"); ok {
		t.Fatalf("index.min_grid has no env override")
	}
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvFullValidation, "maybe")
	t.Setenv(EnvCacheSize, "-3")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.View.Validation != "" || cfg.View.CacheSize != Defaults().View.CacheSize {
		t.Fatalf("garbage env applied: %#v", cfg.View)
	}
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv(EnvConfigFile, path)
	if got, err := ConfigPath(); err != nil || got != path {
		t.Fatalf("ConfigPath() = %q, %v", got, err)
	}

	cfg := Defaults()
	cfg.View.Validation = "strict"
	cfg.Index.TargetCellSize = 30
	cfg.Logging.Format = "json"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if d := cmp.Diff(cfg, got); d != "" {
		t.Fatalf("reloaded config mismatch (-want +got):\n%s", d)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := AppConfig{Logging: LoggingConfig{Level: " Debug ", Format: "JSON", Source: true, File: " /var/log/ce.log "}}
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/var/log/ce.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
	if dst.View != Defaults().View || dst.Index != Defaults().Index {
		t.Fatalf("zero sections overwrote defaults: %#v", dst)
	}
}

func TestViewConfigValidationModeFallsBackToEnv(t *testing.T) {
	t.Setenv(EnvFullValidation, "1")
	if got := (ViewConfig{}).ValidationMode(); got != transform.Strict {
		t.Fatalf("ValidationMode() = %v, want strict from env", got)
	}
	if got := (ViewConfig{Validation: "production"}).ValidationMode(); got != transform.Production {
		t.Fatalf("ValidationMode() = %v, want production", got)
	}
}

func TestLogOptions(t *testing.T) {
	o := LoggingConfig{Level: "warn", Format: "json", Source: true, File: "x.log"}.LogOptions()
	if o.Level != "warn" || o.Format != "json" || !o.AddSource || o.File != "x.log" {
		t.Fatalf("LogOptions() = %#v", o)
	}
}
