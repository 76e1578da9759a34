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
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.ConfigVersion != 1 {
		t.Fatalf("config version: %d", cfg.ConfigVersion)
	}
	if cfg.Editor.NudgeStep != 1 {
		t.Fatalf("nudge step default: %d", cfg.Editor.NudgeStep)
	}
	if cfg.Editor.PDFRenderer != "pdftoppm" {
		t.Fatalf("pdf renderer default: %q", cfg.Editor.PDFRenderer)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("logging defaults: %+v", cfg.Logging)
	}
}

func TestMergeInto(t *testing.T) {
	dst := Defaults()
	src := AppConfig{}
	if err := yaml.Unmarshal([]byte("editor:\n  nudge_step: 5\nlogging:\n  level: DEBUG\n"), &src); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	mergeInto(&dst, &src)
	if dst.Editor.NudgeStep != 5 {
		t.Fatalf("nudge step not merged: %d", dst.Editor.NudgeStep)
	}
	if dst.Logging.Level != "debug" {
		t.Fatalf("level not normalized: %q", dst.Logging.Level)
	}
	// untouched fields keep defaults
	if dst.Editor.PDFRenderer != "pdftoppm" {
		t.Fatalf("renderer clobbered: %q", dst.Editor.PDFRenderer)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvNudgeStep, "3")
	t.Setenv(EnvLogFormat, "JSON")
	t.Setenv(EnvTelemetryOptIn, "yes")

	cfg := Defaults()
	applyEnvOverrides(&cfg)
	if cfg.Editor.NudgeStep != 3 {
		t.Fatalf("nudge step override: %d", cfg.Editor.NudgeStep)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("log format override: %q", cfg.Logging.Format)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("telemetry opt-in override not applied")
	}

	if name, ok := EnvOverrideFor("editor.nudge_step"); !ok || name != EnvNudgeStep {
		t.Fatalf("EnvOverrideFor mismatch: %q %v", name, ok)
	}
	if _, ok := EnvOverrideFor("logging.file"); ok {
		t.Fatalf("logging.file should not be overridden")
	}
}

func TestEnvOverrideIgnoresBadNudgeStep(t *testing.T) {
	t.Setenv(EnvNudgeStep, "zero")
	cfg := Defaults()
	applyEnvOverrides(&cfg)
	if cfg.Editor.NudgeStep != 1 {
		t.Fatalf("bad value should keep default: %d", cfg.Editor.NudgeStep)
	}
}
