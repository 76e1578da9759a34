/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas defines the 2D-canvas capability the editor core draws on,
// decoupled from any GUI toolkit. Rendering front ends implement Canvas;
// the in-memory Scene implementation backs tests and the desktop UI model.
package canvas

import (
	"image"
	"image/color"
)

// Handle identifies a rendered primitive. Handles are opaque and never
// reused within one canvas lifetime.
type Handle int

// NoHandle is the zero Handle; no primitive ever carries it.
const NoHandle Handle = 0

// Tag marks a primitive for hit-test filtering.
type Tag string

// TagNoDrag marks primitives that never take part in selection, such as the
// background image.
const TagNoDrag Tag = "nodrag"

// Rect is an axis-aligned rectangle in integer pixel coordinates.
// Width and height may be zero or negative; the editor accepts degenerate
// geometry rather than rejecting it.
type Rect struct {
	X, Y int
	W, H int
}

// R is shorthand for constructing a Rect.
func R(x, y, w, h int) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// Translate returns the rectangle shifted by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Dist2 returns the squared distance from the point to the rectangle,
// zero when inside.
func (r Rect) Dist2(x, y int) int {
	dx := 0
	if x < r.X {
		dx = r.X - x
	} else if x >= r.X+r.W {
		dx = x - (r.X + r.W - 1)
	}
	dy := 0
	if y < r.Y {
		dy = r.Y - y
	} else if y >= r.Y+r.H {
		dy = y - (r.Y + r.H - 1)
	}
	return dx*dx + dy*dy
}

// Style is the visual appearance of a rectangle primitive.
type Style struct {
	Fill color.RGBA
}

// Overlay fills used for the two region rectangles.
var (
	CoreFill     = color.RGBA{B: 0xff, A: 0x80}
	ExtendedFill = color.RGBA{R: 0xff, A: 0x80}
)

// Canvas is the capability surface the editor core needs from a renderer:
// create rectangle and image primitives, translate and delete them, query
// bounding boxes, and resolve the nearest primitive to a pointer position.
// Implementations are not safe for concurrent use; the editor is driven by
// a single event-dispatch loop.
type Canvas interface {
	CreateRect(r Rect, style Style, tags ...Tag) Handle
	CreateImage(img image.Image, r Rect, tags ...Tag) Handle
	Move(h Handle, dx, dy int)
	Delete(h Handle)
	BBox(h Handle) (Rect, bool)
	NearestAt(x, y int) (Handle, bool)
	HasTag(h Handle, tag Tag) bool
}
