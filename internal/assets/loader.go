/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package assets resolves skin asset references into raster images of an
// exact target size. Raster references (PNG/JPEG) are decoded and scaled;
// resizable references are PDF pages rasterized at size through an
// external renderer (pdftoppm by default).
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"

	"skinforge/internal/domain"
	applog "skinforge/internal/log"
)

var (
	// ErrNotFound reports an asset reference absent from the skin source.
	ErrNotFound = errors.New("asset not found")
	// ErrDecode reports an unreadable raster asset.
	ErrDecode = errors.New("asset decode failed")
	// ErrRender reports a failed PDF rasterization.
	ErrRender = errors.New("asset render failed")
)

// DefaultRenderer is the external PDF rasterizer used when none is
// configured.
const DefaultRenderer = "pdftoppm"

// Loader reads asset references from a skin source filesystem (directory
// or archive).
type Loader struct {
	fsys     fs.FS
	renderer string
	log      *slog.Logger
}

// NewLoader builds a loader over the given source. An empty renderer
// selects DefaultRenderer.
func NewLoader(fsys fs.FS, renderer string) *Loader {
	if renderer == "" {
		renderer = DefaultRenderer
	}
	return &Loader{fsys: fsys, renderer: renderer, log: applog.WithComponent("assets")}
}

// Load resolves ref into an image of exactly size. Resizable references
// are rendered from the first PDF page; everything else is decoded and
// scaled.
func (l *Loader) Load(ref string, size domain.Size, resizable bool) (image.Image, error) {
	data, err := fs.ReadFile(l.fsys, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if resizable {
		return l.renderPDF(data, size)
	}
	return scaleRaster(data, size)
}

// scaleRaster decodes a PNG/JPEG and scales it to the target size.
func scaleRaster(data []byte, size domain.Size) (image.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if b := src.Bounds(); b.Dx() == size.Width && b.Dy() == size.Height {
		return src, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// renderPDF rasterizes the first page of a PDF at the target size via the
// configured external renderer.
func (l *Loader) renderPDF(data []byte, size domain.Size) (image.Image, error) {
	dir, err := os.MkdirTemp("", "skinforge-pdf-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			l.log.Warn("temp dir cleanup failed", slog.String("dir", dir), slog.Any("err", err))
		}
	}()

	in := filepath.Join(dir, "page.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	prefix := filepath.Join(dir, "out")
	cmd := exec.Command(l.renderer, "-png", "-f", "1", "-l", "1",
		"-scale-to-x", strconv.Itoa(size.Width),
		"-scale-to-y", strconv.Itoa(size.Height),
		in, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		l.log.Error("pdf render failed",
			slog.String("renderer", l.renderer),
			slog.String("stderr", stderr.String()),
			slog.Any("err", err))
		return nil, fmt.Errorf("%w: %s: %v", ErrRender, l.renderer, err)
	}

	// pdftoppm names single-page output either out.png or out-1.png
	// depending on version.
	var outPath string
	for _, cand := range []string{prefix + ".png", prefix + "-1.png", prefix + "-01.png"} {
		if _, err := os.Stat(cand); err == nil {
			outPath = cand
			break
		}
	}
	if outPath == "" {
		return nil, fmt.Errorf("%w: renderer produced no output", ErrRender)
	}
	f, err := os.Open(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return img, nil
}
