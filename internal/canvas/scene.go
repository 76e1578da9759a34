/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import "image"

// Item is a snapshot of one primitive in display order.
type Item struct {
	Handle Handle
	Rect   Rect
	Style  Style
	Image  image.Image // nil for plain rectangles
	Tags   []Tag
}

// Scene is the reference Canvas implementation: an ordered display list of
// primitives keyed by handle. Later items draw (and hit-test) above earlier
// ones. It carries no rendering of its own; front ends mirror the display
// list into their toolkit and tests inspect it directly.
type Scene struct {
	order []Handle
	items map[Handle]*sceneItem
	next  Handle
}

type sceneItem struct {
	rect  Rect
	style Style
	img   image.Image
	tags  map[Tag]bool
}

// NewScene returns an empty display list.
func NewScene() *Scene {
	return &Scene{items: make(map[Handle]*sceneItem)}
}

func (s *Scene) add(it *sceneItem) Handle {
	s.next++
	h := s.next
	s.items[h] = it
	s.order = append(s.order, h)
	return h
}

func tagSet(tags []Tag) map[Tag]bool {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[Tag]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}

// CreateRect appends a rectangle primitive and returns its handle.
func (s *Scene) CreateRect(r Rect, style Style, tags ...Tag) Handle {
	return s.add(&sceneItem{rect: r, style: style, tags: tagSet(tags)})
}

// CreateImage appends an image primitive and returns its handle.
func (s *Scene) CreateImage(img image.Image, r Rect, tags ...Tag) Handle {
	return s.add(&sceneItem{rect: r, img: img, tags: tagSet(tags)})
}

// Move translates a primitive. Unknown handles are ignored.
func (s *Scene) Move(h Handle, dx, dy int) {
	if it, ok := s.items[h]; ok {
		it.rect = it.rect.Translate(dx, dy)
	}
}

// Delete removes a primitive from the display list.
func (s *Scene) Delete(h Handle) {
	if _, ok := s.items[h]; !ok {
		return
	}
	delete(s.items, h)
	for i, o := range s.order {
		if o == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// BBox returns the current bounding rectangle of a primitive.
func (s *Scene) BBox(h Handle) (Rect, bool) {
	it, ok := s.items[h]
	if !ok {
		return Rect{}, false
	}
	return it.rect, true
}

// NearestAt resolves the primitive closest to the point. A containing
// primitive wins, topmost first; otherwise the nearest by edge distance.
// There is always a result while the scene is non-empty, mirroring a
// find-closest canvas query.
func (s *Scene) NearestAt(x, y int) (Handle, bool) {
	best := NoHandle
	bestDist := -1
	for i := len(s.order) - 1; i >= 0; i-- {
		h := s.order[i]
		d := s.items[h].rect.Dist2(x, y)
		if d == 0 {
			return h, true
		}
		if bestDist < 0 || d < bestDist {
			best = h
			bestDist = d
		}
	}
	if best == NoHandle {
		return NoHandle, false
	}
	return best, true
}

// HasTag reports whether the primitive carries the tag.
func (s *Scene) HasTag(h Handle, tag Tag) bool {
	it, ok := s.items[h]
	return ok && it.tags[tag]
}

// Items returns a snapshot of the display list in draw order.
func (s *Scene) Items() []Item {
	out := make([]Item, 0, len(s.order))
	for _, h := range s.order {
		it := s.items[h]
		var tags []Tag
		for t := range it.tags {
			tags = append(tags, t)
		}
		out = append(out, Item{Handle: h, Rect: it.rect, Style: it.style, Image: it.img, Tags: tags})
	}
	return out
}

// Len reports the number of primitives in the scene.
func (s *Scene) Len() int { return len(s.order) }
