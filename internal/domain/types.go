/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany..
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for controller-skin documents.
// The manifest (info.json) maps a background image to rectangular input
// regions; geometry is integer pixels in the representation's coordinate
// space.

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Skin is the top-level manifest of a controller skin.
type Skin struct {
	Name               string                    `json:"name"`
	Identifier         string                    `json:"identifier"`
	GameTypeIdentifier string                    `json:"gameTypeIdentifier,omitempty"`
	Representations    map[string]Representation `json:"representations"`
}

// Representation configures one background image and its input regions.
type Representation struct {
	MappingSize   Size          `json:"mappingSize"`
	ExtendedEdges ExtendedEdges `json:"extendedEdges"`
	Assets        AssetTable    `json:"assets"`
	Items         []Item        `json:"items"`
}

// Item is one configured input region. Inputs and Frame are required;
// a nil value means the key was absent from the manifest.
type Item struct {
	Inputs        *Inputs        `json:"inputs"`
	Frame         *Frame         `json:"frame"`
	ExtendedEdges *EdgeOverrides `json:"extendedEdges,omitempty"`
}

// Size is a target pixel size.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Frame is the core rectangle of a region.
type Frame struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ExtendedEdges are per-edge pixel insets forming the halo rectangle around
// a region's core rectangle. All four edges are required at the
// representation level.
type ExtendedEdges struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
	Right  int `json:"right"`
}

// EdgeOverrides are optional per-item edge insets. An edge present in the
// override wins; an absent edge inherits the representation default.
type EdgeOverrides struct {
	Top    *int `json:"top,omitempty"`
	Bottom *int `json:"bottom,omitempty"`
	Left   *int `json:"left,omitempty"`
	Right  *int `json:"right,omitempty"`
}

// ResolveAgainst merges the overrides over the given defaults, per edge.
func (e *EdgeOverrides) ResolveAgainst(def ExtendedEdges) ExtendedEdges {
	if e == nil {
		return def
	}
	out := def
	if e.Top != nil {
		out.Top = *e.Top
	}
	if e.Bottom != nil {
		out.Bottom = *e.Bottom
	}
	if e.Left != nil {
		out.Left = *e.Left
	}
	if e.Right != nil {
		out.Right = *e.Right
	}
	return out
}

// ResizableAssetKey marks the primary asset as a vector/paginated source that
// must be rendered at mappingSize instead of opened and scaled.
const ResizableAssetKey = "resizable"

// AssetTable maps logical asset keys to asset references, preserving the
// manifest's key order so the primary asset is well defined.
type AssetTable struct {
	keys []string
	refs map[string]string
}

// NewAssetTable builds a table from ordered key/ref pairs.
func NewAssetTable(pairs ...[2]string) AssetTable {
	t := AssetTable{refs: make(map[string]string, len(pairs))}
	for _, p := range pairs {
		t.keys = append(t.keys, p[0])
		t.refs[p[0]] = p[1]
	}
	return t
}

// Len reports the number of assets.
func (t AssetTable) Len() int { return len(t.keys) }

// Keys returns the asset keys in manifest order.
func (t AssetTable) Keys() []string { return append([]string(nil), t.keys...) }

// Get returns the reference for a key.
func (t AssetTable) Get(key string) (string, bool) {
	ref, ok := t.refs[key]
	return ref, ok
}

// Primary returns the first asset key and its reference.
func (t AssetTable) Primary() (key, ref string, ok bool) {
	if len(t.keys) == 0 {
		return "", "", false
	}
	k := t.keys[0]
	return k, t.refs[k], true
}

// Resizable reports whether the table carries the resizable sentinel key.
func (t AssetTable) Resizable() bool {
	_, ok := t.refs[ResizableAssetKey]
	return ok
}

// UnmarshalJSON decodes the table keeping key order via the token stream.
func (t *AssetTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("assets: expected object, got %v", tok)
	}
	t.keys = nil
	t.refs = make(map[string]string)
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key := kt.(string)
		var ref string
		if err := dec.Decode(&ref); err != nil {
			return fmt.Errorf("assets[%s]: %w", key, err)
		}
		if _, dup := t.refs[key]; !dup {
			t.keys = append(t.keys, key)
		}
		t.refs[key] = ref
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the table in key order.
func (t AssetTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(t.refs[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
