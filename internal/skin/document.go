/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package skin loads and saves controller-skin documents. A document is
// either a directory containing info.json and its assets, or a .deltaskin
// archive (a zip with the same layout).
package skin

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"skinforge/internal/domain"
)

const (
	ManifestFileName = "info.json"
	ArchiveExt       = ".deltaskin"
	BackupsDirName   = "backups"
)

// Handle keeps track of a skin document loaded from disk.
// Path is the skin directory or the archive file. Skin holds the
// in-memory manifest; Source serves asset references relative to it.
type Handle struct {
	Path         string
	ManifestPath string
	Archive      bool
	Skin         domain.Skin

	source fs.FS
}

// Open loads a skin from a directory or a .deltaskin archive.
func Open(path string) (*Handle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open skin: %w", err)
	}
	if info.IsDir() {
		return openDir(path)
	}
	return openArchive(path)
}

func openDir(root string) (*Handle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		s, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &Handle{Path: root, ManifestPath: mpath, Skin: *s, source: os.DirFS(root)}, nil
	}
	var s domain.Skin
	if uerr := json.Unmarshal(b, &s); uerr != nil {
		bs, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", uerr, berr)
		}
		return &Handle{Path: root, ManifestPath: mpath, Skin: *bs, source: os.DirFS(root)}, nil
	}
	return &Handle{Path: root, ManifestPath: mpath, Skin: s, source: os.DirFS(root)}, nil
}

// openArchive reads the whole archive into memory; skins are small and
// this keeps Save free to rewrite the file underneath.
func openArchive(path string) (*Handle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	mb, err := fs.ReadFile(zr, ManifestFileName)
	if err != nil {
		return nil, fmt.Errorf("archive manifest: %w", err)
	}
	var s domain.Skin
	if err := json.Unmarshal(mb, &s); err != nil {
		return nil, fmt.Errorf("parse archive manifest: %w", err)
	}
	return &Handle{Path: path, Archive: true, Skin: s, source: zr}, nil
}

// Source returns the filesystem serving the document's asset references.
func (h *Handle) Source() fs.FS { return h.source }

// RepresentationNames returns the manifest's representation keys, sorted.
func (h *Handle) RepresentationNames() []string {
	names := make([]string, 0, len(h.Skin.Representations))
	for name := range h.Skin.Representations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Representation resolves one representation by name. An empty name picks
// the first in sorted order.
func (h *Handle) Representation(name string) (domain.Representation, error) {
	if name == "" {
		names := h.RepresentationNames()
		if len(names) == 0 {
			return domain.Representation{}, errors.New("skin has no representations")
		}
		name = names[0]
	}
	rep, ok := h.Skin.Representations[name]
	if !ok {
		return domain.Representation{}, fmt.Errorf("no representation %q", name)
	}
	return rep, nil
}

// Save writes the current Handle.Skin back to disk with transactional
// semantics and a timestamped backup of the previous state. Directory
// documents back up the manifest; archives back up the whole file and are
// rewritten entry by entry with the new manifest.
func Save(h *Handle) error {
	if h == nil {
		return errors.New("nil skin handle")
	}
	if h.Path == "" {
		return errors.New("invalid skin handle: missing path")
	}
	data, err := json.MarshalIndent(h.Skin, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	if h.Archive {
		return saveArchive(h, data)
	}
	return saveDir(h, data)
}

func saveDir(h *Handle, data []byte) error {
	bdir := filepath.Join(h.Path, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	if _, statErr := os.Stat(h.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp)
		if cerr := copyFile(h.ManifestPath, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	temp := filepath.Join(h.Path, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	if _, err := os.Stat(h.ManifestPath); err == nil {
		_ = os.Remove(h.ManifestPath)
	}
	if rerr := os.Rename(temp, h.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// saveArchive rewrites the .deltaskin: every non-manifest entry is copied
// from the in-memory source, the manifest entry is replaced, and the new
// archive renames over the old one after a timestamped backup.
func saveArchive(h *Handle, manifest []byte) error {
	zr, ok := h.source.(*zip.Reader)
	if !ok {
		return errors.New("archive handle without zip source")
	}

	stamp := time.Now().Format("20060102-150405")
	bpath := h.Path + "." + stamp + ".bak"
	if err := copyFile(h.Path, bpath); err != nil {
		return fmt.Errorf("backup archive: %w", err)
	}

	temp := h.Path + fmt.Sprintf(".tmp-%d-%d", os.Getpid(), rand.Int())
	out, err := os.OpenFile(temp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	zw := zip.NewWriter(out)

	werr := func() error {
		for _, f := range zr.File {
			if f.Name == ManifestFileName {
				continue
			}
			w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method})
			if err != nil {
				return err
			}
			rc, err := f.Open()
			if err != nil {
				return err
			}
			_, cerr := io.Copy(w, rc)
			rc.Close()
			if cerr != nil {
				return cerr
			}
		}
		w, err := zw.Create(ManifestFileName)
		if err != nil {
			return err
		}
		_, err = w.Write(manifest)
		return err
	}()
	if werr == nil {
		werr = zw.Close()
	} else {
		_ = zw.Close()
	}
	if cerr := out.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write archive: %w", werr)
	}

	if _, err := os.Stat(h.Path); err == nil {
		_ = os.Remove(h.Path)
	}
	if err := os.Rename(temp, h.Path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace archive: %w", err)
	}

	// Reload the source so asset reads see the saved state.
	nh, err := openArchive(h.Path)
	if err != nil {
		return fmt.Errorf("reopen archive: %w", err)
	}
	h.source = nh.source
	return nil
}

// SaveAs writes the skin as a directory document at a new root and
// updates the handle. Assets are copied from the current source.
func SaveAs(h *Handle, newRoot string) error {
	if h == nil {
		return errors.New("nil skin handle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := os.MkdirAll(newRoot, 0o755); err != nil {
		return fmt.Errorf("create new root: %w", err)
	}
	err := fs.WalkDir(h.source, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == ManifestFileName || strings.HasPrefix(path, BackupsDirName+"/") {
			return nil
		}
		b, err := fs.ReadFile(h.source, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(newRoot, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return writeFileSync(dst, b)
	})
	if err != nil {
		return fmt.Errorf("copy assets: %w", err)
	}
	h.Path = newRoot
	h.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	h.Archive = false
	h.source = os.DirFS(newRoot)
	return Save(h)
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}

// openFromLatestBackup tries to open the latest timestamped backup.
func openFromLatestBackup(root string) (*domain.Skin, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	var s domain.Skin
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return &s, nil
}
