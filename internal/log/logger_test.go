/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestInitAndStructuredLoggingToFile verifies that Init with a file handler writes JSON logs
// and that static and contextual attributes are present.
func TestInitAndStructuredLoggingToFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "curveeditor.json")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: fpath, Console: &console})
	t.Cleanup(func() { Init(Options{Console: &bytes.Buffer{}}) })

	l := WithOperation(WithComponent("transform"), "get_transform")
	l.Info("cache miss", slog.String("key", "v"))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(b))
	var last string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if m["app"] != "curveeditor" {
		t.Fatalf("app attr = %v, want curveeditor", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "transform" || m["op"] != "get_transform" {
		t.Fatalf("context attrs mismatch: component=%v op=%v", m["component"], m["op"])
	}
	if m["msg"] != "cache miss" {
		t.Fatalf("msg = %v", m["msg"])
	}
	if !strings.Contains(console.String(), `"msg":"cache miss"`) {
		t.Fatalf("console json output missing record: %q", console.String())
	}
}

func TestInitConsoleFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Console: &buf})
	t.Cleanup(func() { Init(Options{Console: &bytes.Buffer{}}) })

	L().Info("hidden")
	L().Warn("shown", slog.Int("n", 3))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "WRN shown") || !strings.Contains(out, "n=3") {
		t.Fatalf("warn record missing: %q", out)
	}
}
