/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package skin

import (
	_ "embed"
	"fmt"
	"io/fs"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed skin.schema.json
var manifestSchema []byte

// ValidationIssue is one schema violation in a manifest.
type ValidationIssue struct {
	Field   string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidateManifest checks raw manifest bytes against the manifest schema.
// A nil slice means the manifest conforms; a non-nil error means the check
// itself could not run.
func ValidateManifest(data []byte) ([]ValidationIssue, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(manifestSchema),
		gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	issues := make([]ValidationIssue, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		issues = append(issues, ValidationIssue{Field: e.Field(), Message: e.Description()})
	}
	return issues, nil
}

// Validate checks the document's on-disk manifest against the schema.
func Validate(h *Handle) ([]ValidationIssue, error) {
	data, err := fs.ReadFile(h.source, ManifestFileName)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ValidateManifest(data)
}
