/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package skin

import (
	"strings"
	"testing"
)

func TestValidateManifestConforms(t *testing.T) {
	issues, err := ValidateManifest([]byte(testManifest))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestValidateManifestMissingRequired(t *testing.T) {
	bad := `{"name": "x", "representations": {}}`
	issues, err := ValidateManifest([]byte(bad))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(issues) == 0 {
		t.Fatalf("missing identifier and empty representations must be flagged")
	}
}

func TestValidateManifestItemShapes(t *testing.T) {
	// Inputs may be a map, a list, or a scalar; a frame without height is
	// invalid.
	bad := strings.Replace(testManifest,
		`"frame": {"x": 10, "y": 10, "width": 20, "height": 20}`,
		`"frame": {"x": 10, "y": 10, "width": 20}`, 1)
	issues, err := ValidateManifest([]byte(bad))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(issues) == 0 {
		t.Fatalf("incomplete frame must be flagged")
	}

	scalar := strings.Replace(testManifest, `"inputs": ["a"]`, `"inputs": "menu"`, 1)
	issues, err = ValidateManifest([]byte(scalar))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("scalar inputs should conform: %v", issues)
	}
}

func TestValidateDocument(t *testing.T) {
	h, err := Open(writeSkinDir(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	issues, err := Validate(h)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}
