/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"curveeditor/internal/config"
	"curveeditor/internal/transform"
)

// identityView makes data coordinates equal screen coordinates.
var identityView = []string{"--image-width", "800", "--image-height", "600"}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{config.EnvFullValidation, config.EnvCacheSize, config.EnvLogLevel, config.EnvLogFormat, config.EnvLogSource, config.EnvLogFile} {
		t.Setenv(k, "")
	}
	t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "config.yaml"))

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestMapForwardAndInverse(t *testing.T) {
	args := append([]string{"map", "100", "150", "--pan-x", "20", "--pan-y", "5"}, identityView...)
	if got, want := mustRun(t, args...), "screen: 120 155\n"; got != want {
		t.Fatalf("map = %q, want %q", got, want)
	}
	args = append([]string{"map", "--inverse", "120", "155", "--pan-x", "20", "--pan-y", "5"}, identityView...)
	if got, want := mustRun(t, args...), "data: 100 150\n"; got != want {
		t.Fatalf("map --inverse = %q, want %q", got, want)
	}
}

func TestMapStrictRejectsHugeCoordinates(t *testing.T) {
	_, err := run(t, "map", "1e15", "0", "--strict")
	if !errors.Is(err, transform.ErrValidation) {
		t.Fatalf("map --strict error = %v, want ErrValidation", err)
	}
	if _, err := run(t, "map", "1e15", "0"); err != nil {
		t.Fatalf("production map failed: %v", err)
	}
}

func TestMapRejectsNonNumbers(t *testing.T) {
	if _, err := run(t, "map", "ten", "0"); err == nil || !strings.Contains(err.Error(), "not a number") {
		t.Fatalf("map error = %v", err)
	}
}

func TestPick(t *testing.T) {
	args := append([]string{"pick", "100", "150", "-p", "1,100,150,keyframe", "-p", "2,300,250"}, identityView...)
	if got, want := mustRun(t, args...), "hit: 0 frame=1 x=100 y=150 status=keyframe\n"; got != want {
		t.Fatalf("pick = %q, want %q", got, want)
	}

	args = append([]string{"pick", "300", "250", "-p", "bad", "-p", "2,300,250"}, identityView...)
	if got, want := mustRun(t, args...), "hit: 1 frame=2 x=300 y=250\n"; got != want {
		t.Fatalf("pick with malformed row = %q, want %q", got, want)
	}

	args = append([]string{"pick", "200", "200", "-t", "3", "-p", "1,100,150"}, identityView...)
	if got, want := mustRun(t, args...), "hit: none\n"; got != want {
		t.Fatalf("pick miss = %q, want %q", got, want)
	}
}

func TestSelect(t *testing.T) {
	args := append([]string{"select", "100", "100", "0", "0",
		"-p", "1,50,50", "-p", "2,150,75", "-p", "3,75,200", "-p", "4,25,25"}, identityView...)
	out := mustRun(t, args...)
	if !strings.HasPrefix(out, "selected: 2\n") {
		t.Fatalf("select = %q", out)
	}
	for _, want := range []string{"0 frame=1 x=50 y=50", "3 frame=4 x=25 y=25"} {
		if !strings.Contains(out, want) {
			t.Fatalf("select output missing %q:\n%s", want, out)
		}
	}
}

func TestStats(t *testing.T) {
	args := append([]string{"stats", "-p", "1,10,10", "-p", "2,20,20", "-p", "3,500,500"}, identityView...)
	out := mustRun(t, args...)
	for _, want := range []string{"misses: 1", "size: 1/128", "grid: 17x13", "points: 3", "rebuilds: 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestView(t *testing.T) {
	out := mustRun(t, "view", "--zoom", "2", "--flip-y")
	for _, want := range []string{"zoom_factor: 2", "flip_y_axis: true", "widget_dimensions: [800 600]", "flip y: true (display height 1080)", "hash: "} {
		if !strings.Contains(out, want) {
			t.Fatalf("view output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShowReportsOverrides(t *testing.T) {
	out := mustRun(t, "config", "show")
	if !strings.Contains(out, "cache_size: 128") {
		t.Fatalf("config show:\n%s", out)
	}

	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config", "show"})
	t.Setenv(config.EnvCacheSize, "7")
	if err := root.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"cache_size: 7", "# view.cache_size overridden by " + config.EnvCacheSize} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("config show missing %q:\n%s", want, buf.String())
		}
	}
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(good, []byte("view:\n  cache_size: 16\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("index:\n  min_grid: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if out := mustRun(t, "config", "validate", good); !strings.Contains(out, "ok") {
		t.Fatalf("validate good = %q", out)
	}
	out, err := run(t, "config", "validate", bad)
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("validate bad error = %v", err)
	}
	if !strings.Contains(out, "min_grid") {
		t.Fatalf("validate bad output lacks the field:\n%s", out)
	}

	if _, err := run(t, "--config", bad, "view"); err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("invalid --config error = %v", err)
	}
}

func TestVersion(t *testing.T) {
	if out := mustRun(t, "version"); !strings.HasPrefix(out, "curveeditor ") {
		t.Fatalf("version = %q", out)
	}
}
