/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany..
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// InputsKind discriminates the three manifest shapes of an item's inputs.
type InputsKind int

const (
	// InputsMap is a direction/axis map, e.g. {"up": "analogStickUp", ...}.
	InputsMap InputsKind = iota
	// InputsList is a list of free-form logical names.
	InputsList
	// InputsScalar is a single free-form logical name.
	InputsScalar
)

// Inputs is the logical binding set of a region. Immutable after decode.
type Inputs struct {
	kind   InputsKind
	m      map[string]string
	list   []string
	scalar string
}

// MapInputs builds a map-shaped binding set.
func MapInputs(m map[string]string) *Inputs {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return &Inputs{kind: InputsMap, m: cp}
}

// ListInputs builds a list-shaped binding set.
func ListInputs(names ...string) *Inputs {
	return &Inputs{kind: InputsList, list: append([]string(nil), names...)}
}

// ScalarInputs builds a single-name binding set.
func ScalarInputs(name string) *Inputs { return &Inputs{kind: InputsScalar, scalar: name} }

// Kind reports the manifest shape.
func (in *Inputs) Kind() InputsKind { return in.kind }

// Names returns all bound logical names.
func (in *Inputs) Names() []string {
	switch in.kind {
	case InputsMap:
		out := make([]string, 0, len(in.m))
		for _, v := range in.m {
			out = append(out, v)
		}
		return out
	case InputsList:
		return append([]string(nil), in.list...)
	default:
		return []string{in.scalar}
	}
}

// UnmarshalJSON accepts an object map, a string list, or a bare string.
func (in *Inputs) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err == nil {
		in.kind = InputsMap
		in.m = m
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		in.kind = InputsList
		in.list = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		in.kind = InputsScalar
		in.scalar = s
		return nil
	}
	return fmt.Errorf("inputs: unsupported shape: %s", string(data))
}

// MarshalJSON emits the original manifest shape.
func (in Inputs) MarshalJSON() ([]byte, error) {
	switch in.kind {
	case InputsMap:
		return json.Marshal(in.m)
	case InputsList:
		return json.Marshal(in.list)
	default:
		return json.Marshal(in.scalar)
	}
}

// InputGroup is a named, fixed direction/axis binding set.
type InputGroup struct {
	Name     string
	Bindings map[string]string
}

// InputGroups is the process-wide table of recognized binding groups.
// Read-only; a region whose map inputs exactly equal one of these displays
// the group name instead of the raw binding names.
var InputGroups = []InputGroup{
	{Name: "Analog Stick", Bindings: map[string]string{
		"up": "analogStickUp", "down": "analogStickDown",
		"left": "analogStickLeft", "right": "analogStickRight",
	}},
	{Name: "D-Pad", Bindings: map[string]string{
		"up": "up", "down": "down", "left": "left", "right": "right",
	}},
	{Name: "Touch Screen", Bindings: map[string]string{
		"x": "touchScreenX", "y": "touchScreenY",
	}},
}

// GroupName returns the display name of the matching named group, if the
// binding map equals one exactly.
func (in *Inputs) GroupName() (string, bool) {
	if in.kind != InputsMap {
		return "", false
	}
	for _, g := range InputGroups {
		if mapsEqual(in.m, g.Bindings) {
			return g.Name, true
		}
	}
	return "", false
}

// Label derives the human-readable name used in the status readout.
// Named group -> group name; list -> capitalized names joined with ", ";
// scalar -> verbatim; unrecognized map -> capitalized binding names joined
// in sorted order so the label is deterministic.
func (in *Inputs) Label() string {
	if name, ok := in.GroupName(); ok {
		return name
	}
	switch in.kind {
	case InputsList:
		if len(in.list) == 1 {
			return capitalize(in.list[0])
		}
		parts := make([]string, len(in.list))
		for i, s := range in.list {
			parts[i] = capitalize(s)
		}
		return strings.Join(parts, ", ")
	case InputsScalar:
		return in.scalar
	default:
		names := in.Names()
		sort.Strings(names)
		for i, n := range names {
			names[i] = capitalize(n)
		}
		return strings.Join(names, ", ")
	}
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// capitalize uppercases the first rune and lowercases the rest, matching
// the status-bar convention for free-form input names.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
