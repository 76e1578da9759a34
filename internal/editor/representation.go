/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor implements the interactive geometry engine of the skin
// editor: the region model, hit-testing and selection state machine, and
// the move/resize interaction protocol. It is toolkit-agnostic; a host
// supplies the canvas, an asset loader, and a status sink, and forwards
// pointer and keyboard events. Everything runs on the host's single
// event-dispatch loop; nothing here is safe for concurrent use.
package editor

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"skinforge/internal/assets"
	"skinforge/internal/canvas"
	"skinforge/internal/domain"
	applog "skinforge/internal/log"
)

// Fatal construction errors. Both terminate the editing session; the asset
// set is fixed at startup and not user-correctable within the tool.
var (
	// ErrMissingKey reports a required key absent from an asset table or
	// item configuration.
	ErrMissingKey = errors.New("Couldn't get the correct key!")
	// ErrAssetRender reports a failed decode or render of the background
	// asset, typically a malformed PDF.
	ErrAssetRender = errors.New("Couldn't get PDF information! Check your renderer version.")
)

// AssetLoader resolves an asset reference into a decoded raster image of
// exactly the target size. Resizable references are vector/paginated
// sources rendered at size; others are rasters opened and scaled.
type AssetLoader interface {
	Load(ref string, size domain.Size, resizable bool) (image.Image, error)
}

// StatusSink receives the current selection summary text. The host owns
// how it is displayed.
type StatusSink interface {
	SetStatus(text string)
}

// StatusFunc adapts a plain function to StatusSink.
type StatusFunc func(text string)

func (f StatusFunc) SetStatus(text string) { f(text) }

// Mode is the keyboard interaction mode, switched on selection depending on
// which overlay was hit.
type Mode int

const (
	// ModeNormal routes plain arrows to move and shift-arrows to resize.
	ModeNormal Mode = iota
	// ModeExtendedResize routes all arrows to extended-only resize.
	ModeExtendedResize
)

// Direction is an arrow-key direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// vector maps a direction to the signed unit delta shared by move and
// resize: up shrinks height, down grows it.
func (d Direction) vector() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	default:
		return 1, 0
	}
}

// Modifier is a bitmask of held modifier keys.
type Modifier uint

// ModShift is the shift-equivalent modifier (bit 0) discriminating resize
// from move on arrow keys.
const ModShift Modifier = 1 << 0

// hitKind records which overlay of the selection was hit.
type hitKind int

const (
	hitCore hitKind = iota
	hitExtended
)

// Representation owns the regions of one background image together with
// the selection state machine. At most one region is selected at a time.
type Representation struct {
	canvas canvas.Canvas
	status StatusSink
	log    *slog.Logger

	mapping    domain.Size
	defaults   domain.ExtendedEdges
	background canvas.Handle

	regions  []*Region
	registry map[canvas.Handle]*Region

	selected         *Region
	hit              hitKind
	mode             Mode
	anchorX, anchorY int
	step             int
}

// New builds a representation: loads the background through the asset
// loader at mapping size, renders it as a non-interactive primitive, and
// instantiates one region per configured item. Construction fails fatally
// on a missing asset key or an undecodable background.
func New(c canvas.Canvas, loader AssetLoader, sink StatusSink, cfg domain.Representation) (*Representation, error) {
	rp := &Representation{
		canvas:   c,
		status:   sink,
		log:      applog.WithComponent("editor"),
		mapping:  cfg.MappingSize,
		defaults: cfg.ExtendedEdges,
		registry: make(map[canvas.Handle]*Region),
		step:     1,
	}

	_, ref, ok := cfg.Assets.Primary()
	if !ok {
		return nil, ErrMissingKey
	}
	img, err := loader.Load(ref, cfg.MappingSize, cfg.Assets.Resizable())
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrMissingKey, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrAssetRender, err)
	}
	rp.background = c.CreateImage(img, canvas.R(0, 0, cfg.MappingSize.Width, cfg.MappingSize.Height), canvas.TagNoDrag)

	for i, item := range cfg.Items {
		reg, err := newRegion(rp, item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		rp.regions = append(rp.regions, reg)
	}
	rp.log.Debug("representation ready",
		slog.Int("regions", len(rp.regions)),
		slog.Int("width", cfg.MappingSize.Width),
		slog.Int("height", cfg.MappingSize.Height))
	return rp, nil
}

// SetNudgeStep overrides the arrow-key step in pixels. Values below one
// are ignored.
func (rp *Representation) SetNudgeStep(step int) {
	if step >= 1 {
		rp.step = step
	}
}

// SelectRegion resolves the primitive nearest to the pointer and selects
// its owning region. Hits on the non-interactive background leave the
// selection untouched. Hitting the extended overlay switches the keyboard
// into extended-only resize mode.
func (rp *Representation) SelectRegion(x, y int) {
	h, ok := rp.canvas.NearestAt(x, y)
	if !ok || rp.canvas.HasTag(h, canvas.TagNoDrag) {
		return
	}
	reg, ok := rp.registry[h]
	if !ok {
		return
	}
	rp.selected = reg
	if h == reg.extended {
		rp.hit = hitExtended
		rp.mode = ModeExtendedResize
	} else {
		rp.hit = hitCore
		rp.mode = ModeNormal
	}
	rp.anchorX, rp.anchorY = x, y
	rp.publishStatus()
}

// DeselectRegion clears the selection and the status line. Idempotent when
// nothing is selected.
func (rp *Representation) DeselectRegion() {
	if rp.selected == nil {
		return
	}
	rp.selected = nil
	rp.hit = hitCore
	rp.mode = ModeNormal
	rp.anchorX, rp.anchorY = 0, 0
	rp.status.SetStatus("")
}

// Drag moves the selection by the delta from the drag anchor to the
// pointer, then re-anchors. Every motion event applies a move; there is no
// throttling. No-op without a selection.
func (rp *Representation) Drag(x, y int) {
	if rp.selected == nil {
		return
	}
	rp.selected.Move(x-rp.anchorX, y-rp.anchorY)
	rp.anchorX, rp.anchorY = x, y
	rp.publishStatus()
}

// DragStop ends a drag gesture, resetting the anchor but keeping the
// selection.
func (rp *Representation) DragStop() {
	rp.anchorX, rp.anchorY = 0, 0
}

// ArrowKey dispatches one arrow event against the current mode: plain
// arrows move, shift-arrows resize, and extended mode resizes the halo
// only. No-op without a selection.
func (rp *Representation) ArrowKey(dir Direction, mods Modifier) {
	if rp.selected == nil {
		return
	}
	dx, dy := dir.vector()
	dx, dy = dx*rp.step, dy*rp.step
	switch {
	case rp.mode == ModeExtendedResize:
		rp.selected.Resize(dx, dy, false)
	case mods&ModShift != 0:
		rp.selected.Resize(dx, dy, true)
	default:
		rp.selected.Move(dx, dy)
	}
	rp.publishStatus()
}

// hitHandle returns the current handle of the overlay recorded at
// selection time. Resize replaces handles, so this is derived on demand.
func (rp *Representation) hitHandle() canvas.Handle {
	if rp.hit == hitExtended {
		return rp.selected.extended
	}
	return rp.selected.core
}

// publishStatus recomputes the selection summary and pushes it to the
// status sink.
func (rp *Representation) publishStatus() {
	if rp.selected == nil {
		return
	}
	b, ok := rp.canvas.BBox(rp.hitHandle())
	if !ok {
		return
	}
	rp.status.SetStatus(fmt.Sprintf("%s | X: %d Y: %d | W: %d H: %d",
		rp.selected.inputs.Label(), b.X, b.Y, b.W, b.H))
}

// Regions returns the regions in configuration order.
func (rp *Representation) Regions() []*Region { return rp.regions }

// Selected returns the current selection, or nil.
func (rp *Representation) Selected() *Region { return rp.selected }

// Mode returns the current keyboard interaction mode.
func (rp *Representation) Mode() Mode { return rp.mode }

// MappingSize returns the background pixel size.
func (rp *Representation) MappingSize() domain.Size { return rp.mapping }

// Background returns the background primitive handle.
func (rp *Representation) Background() canvas.Handle { return rp.background }
