/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"image/color"

	"skinforge/internal/canvas"
	"skinforge/internal/domain"
)

// Region is one rectangular input-binding definition: a semi-transparent
// core overlay sized to the item frame, and an extended overlay forming the
// halo described by the resolved per-edge margins. Both primitives resolve
// to the same Region in the controller registry, so hitting either selects
// the whole Region.
type Region struct {
	rep     *Representation
	inputs  *domain.Inputs
	margins domain.ExtendedEdges

	core     canvas.Handle
	extended canvas.Handle
}

// newRegion renders the two overlays for an item and registers them.
// Items missing the required inputs or frame keys fail construction.
func newRegion(rep *Representation, item domain.Item) (*Region, error) {
	if item.Inputs == nil || item.Frame == nil {
		return nil, ErrMissingKey
	}
	edges := item.ExtendedEdges.ResolveAgainst(rep.defaults)
	f := *item.Frame

	r := &Region{rep: rep, inputs: item.Inputs, margins: edges}
	// Extended first so the core overlay draws on top of its halo.
	r.extended = rep.canvas.CreateRect(
		canvas.R(f.X-edges.Left, f.Y-edges.Top, edges.Left+f.Width+edges.Right, edges.Top+f.Height+edges.Bottom),
		canvas.Style{Fill: canvas.ExtendedFill})
	r.core = rep.canvas.CreateRect(
		canvas.R(f.X, f.Y, f.Width, f.Height),
		canvas.Style{Fill: canvas.CoreFill})

	rep.registry[r.extended] = r
	rep.registry[r.core] = r
	return r, nil
}

// Move translates both overlays by the same delta. Positions are not
// clamped; a region may leave the visible canvas.
func (r *Region) Move(dx, dy int) {
	r.rep.canvas.Move(r.extended, dx, dy)
	r.rep.canvas.Move(r.core, dx, dy)
}

// Resize grows or shrinks the extended overlay by (dw, dh), re-deriving its
// geometry from the current rendered bounding box so repeated nudges compose
// additively. When affectCore is set the core overlay receives the identical
// resize. Widths and heights are not clamped.
func (r *Region) Resize(dw, dh int, affectCore bool) {
	r.extended = r.resizePrimitive(r.extended, dw, dh, canvas.ExtendedFill)
	if affectCore {
		r.core = r.resizePrimitive(r.core, dw, dh, canvas.CoreFill)
	}
}

// resizePrimitive replaces one overlay with a resized copy at the same
// origin. The stale handle leaves the registry before the new one enters,
// so the registry never holds dangling entries.
func (r *Region) resizePrimitive(h canvas.Handle, dw, dh int, fill color.RGBA) canvas.Handle {
	c := r.rep.canvas
	b, ok := c.BBox(h)
	if !ok {
		return h
	}
	delete(r.rep.registry, h)
	c.Delete(h)
	nh := c.CreateRect(canvas.R(b.X, b.Y, b.W+dw, b.H+dh), canvas.Style{Fill: fill})
	r.rep.registry[nh] = r
	return nh
}

// Inputs returns the immutable logical binding set.
func (r *Region) Inputs() *domain.Inputs { return r.inputs }

// Margins returns the resolved extended-edge insets.
func (r *Region) Margins() domain.ExtendedEdges { return r.margins }

// CoreHandle returns the current core overlay primitive.
func (r *Region) CoreHandle() canvas.Handle { return r.core }

// ExtendedHandle returns the current extended overlay primitive.
func (r *Region) ExtendedHandle() canvas.Handle { return r.extended }

// CoreBounds returns the rendered bounding box of the core overlay.
func (r *Region) CoreBounds() (canvas.Rect, bool) { return r.rep.canvas.BBox(r.core) }

// ExtendedBounds returns the rendered bounding box of the extended overlay.
func (r *Region) ExtendedBounds() (canvas.Rect, bool) { return r.rep.canvas.BBox(r.extended) }
