/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders layout proofs of a skin: the background with every
// input region and its extended halo drawn on top, as a reviewable PDF or
// as PNG images.
package export

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"skinforge/internal/domain"
	"skinforge/internal/editor"
	"skinforge/internal/skin"
)

// ProofOptions controls proof rendering.
// - IncludeBackground embeds the rendered background asset; without it the
//   proof shows geometry on a white page.
// - Labels draws each region's input label at its frame origin.
// - Representations selects which representations to render; empty means
//   all, in sorted name order.
type ProofOptions struct {
	IncludeBackground bool
	Labels            bool
	Representations   []string
}

// Overlay stroke colors match the editor's core/extended fills.
var (
	coreStroke     = [3]int{30, 144, 255}
	extendedStroke = [3]int{220, 20, 60}
)

// ProofPDF writes a multi-page PDF with one page per representation, each
// page sized to the representation's mapping size in points.
func ProofPDF(h *skin.Handle, loader editor.AssetLoader, outPath string, opt ProofOptions) error {
	if h == nil {
		return fmt.Errorf("skin handle is nil")
	}
	names, err := proofNames(h, opt)
	if err != nil {
		return err
	}

	first := h.Skin.Representations[names[0]]
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(first.MappingSize.Width), Ht: float64(first.MappingSize.Height)},
		OrientationStr: "",
	})
	pdf.SetTitle(fmt.Sprintf("%s — layout proof", h.Skin.Name), false)
	pdf.SetFont("Helvetica", "", 8)

	for _, name := range names {
		rep := h.Skin.Representations[name]
		w := float64(rep.MappingSize.Width)
		ht := float64(rep.MappingSize.Height)
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: ht})

		if opt.IncludeBackground {
			if err := embedBackground(pdf, loader, rep, name); err != nil {
				return err
			}
		}

		for _, item := range rep.Items {
			if item.Frame == nil {
				continue
			}
			f := *item.Frame
			edges := item.ExtendedEdges.ResolveAgainst(rep.ExtendedEdges)

			pdf.SetDrawColor(extendedStroke[0], extendedStroke[1], extendedStroke[2])
			pdf.SetLineWidth(0.5)
			pdf.Rect(float64(f.X-edges.Left), float64(f.Y-edges.Top),
				float64(edges.Left+f.Width+edges.Right), float64(edges.Top+f.Height+edges.Bottom), "D")

			pdf.SetDrawColor(coreStroke[0], coreStroke[1], coreStroke[2])
			pdf.SetLineWidth(1)
			pdf.Rect(float64(f.X), float64(f.Y), float64(f.Width), float64(f.Height), "D")

			if opt.Labels && item.Inputs != nil {
				pdf.SetTextColor(coreStroke[0], coreStroke[1], coreStroke[2])
				pdf.Text(float64(f.X)+2, float64(f.Y)-2, item.Inputs.Label())
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// embedBackground renders the representation's primary asset and places it
// full-page behind the geometry.
func embedBackground(pdf *gofpdf.Fpdf, loader editor.AssetLoader, rep domain.Representation, name string) error {
	_, ref, ok := rep.Assets.Primary()
	if !ok {
		return fmt.Errorf("representation %q has no assets", name)
	}
	img, err := loader.Load(ref, rep.MappingSize, rep.Assets.Resizable())
	if err != nil {
		return fmt.Errorf("render background %q: %w", ref, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode background: %w", err)
	}
	imgName := "bg-" + name
	iopt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, iopt, &buf)
	pdf.ImageOptions(imgName, 0, 0, float64(rep.MappingSize.Width), float64(rep.MappingSize.Height), false, iopt, 0, "")
	return nil
}

// proofNames resolves and validates the representation selection.
func proofNames(h *skin.Handle, opt ProofOptions) ([]string, error) {
	names := opt.Representations
	if len(names) == 0 {
		names = h.RepresentationNames()
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("skin has no representations")
	}
	sort.Strings(names)
	for _, n := range names {
		if _, ok := h.Skin.Representations[n]; !ok {
			return nil, fmt.Errorf("no representation %q", n)
		}
	}
	return names, nil
}
