/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package skin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AutosaveCrashSnapshot writes the in-memory manifest to a timestamped
// autosave file without touching the live document, for recovery after a
// crash. Directory documents snapshot into their backups dir; archives
// snapshot next to the archive file.
func AutosaveCrashSnapshot(h *Handle) (string, error) {
	if h == nil {
		return "", errors.New("nil skin handle")
	}
	data, err := json.MarshalIndent(h.Skin, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	var dir string
	if h.Archive {
		dir = filepath.Dir(h.Path)
	} else {
		dir = filepath.Join(h.Path, BackupsDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure autosave dir: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("autosave-%s.json", stamp))
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write autosave: %w", err)
	}
	return path, nil
}
