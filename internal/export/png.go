/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"skinforge/internal/canvas"
	"skinforge/internal/editor"
	"skinforge/internal/skin"
)

// ProofPNG writes one PNG per representation into outDir, named
// proof-<representation>.png. Overlays use the editor's translucent fills
// so the proof matches what the editor shows.
func ProofPNG(h *skin.Handle, loader editor.AssetLoader, outDir string, opt ProofOptions) error {
	if h == nil {
		return fmt.Errorf("skin handle is nil")
	}
	names, err := proofNames(h, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}

	for _, name := range names {
		rep := h.Skin.Representations[name]
		img := image.NewRGBA(image.Rect(0, 0, rep.MappingSize.Width, rep.MappingSize.Height))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

		if opt.IncludeBackground {
			_, ref, ok := rep.Assets.Primary()
			if !ok {
				return fmt.Errorf("representation %q has no assets", name)
			}
			bg, err := loader.Load(ref, rep.MappingSize, rep.Assets.Resizable())
			if err != nil {
				return fmt.Errorf("render background %q: %w", ref, err)
			}
			draw.Draw(img, img.Bounds(), bg, bg.Bounds().Min, draw.Over)
		}

		for _, item := range rep.Items {
			if item.Frame == nil {
				continue
			}
			f := *item.Frame
			edges := item.ExtendedEdges.ResolveAgainst(rep.ExtendedEdges)
			blendRect(img,
				f.X-edges.Left, f.Y-edges.Top,
				edges.Left+f.Width+edges.Right, edges.Top+f.Height+edges.Bottom,
				canvas.ExtendedFill)
			blendRect(img, f.X, f.Y, f.Width, f.Height, canvas.CoreFill)
		}

		out := filepath.Join(outDir, fmt.Sprintf("proof-%s.png", name))
		fl, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create png: %w", err)
		}
		if err := png.Encode(fl, img); err != nil {
			_ = fl.Close()
			return fmt.Errorf("encode png: %w", err)
		}
		if err := fl.Close(); err != nil {
			return fmt.Errorf("close png: %w", err)
		}
	}
	return nil
}

// blendRect composites a translucent fill over the image, clipped to it.
func blendRect(img *image.RGBA, x, y, w, h int, fill color.RGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(img, r, &image.Uniform{C: fill}, image.Point{}, draw.Over)
}
