/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package library

import (
	"context"
	"path/filepath"
	"testing"

	"skinforge/internal/domain"
	"skinforge/internal/skin"
)

func testHandle(path, name, identifier string) *skin.Handle {
	return &skin.Handle{
		Path: path,
		Skin: domain.Skin{
			Name:       name,
			Identifier: identifier,
			Representations: map[string]domain.Representation{
				"portrait": {},
			},
		},
	}
}

func openCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRecordAndList(t *testing.T) {
	c := openCatalog(t)
	ctx := context.Background()

	if err := c.Record(ctx, testHandle("/skins/alpha", "Alpha", "com.example.alpha")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := c.Record(ctx, testHandle("/skins/beta", "Beta", "com.example.beta")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: %d", len(entries))
	}
	for _, e := range entries {
		if e.Representations != 1 || e.OpenCount != 1 {
			t.Fatalf("entry: %+v", e)
		}
	}
}

func TestRecordUpsertsAndCounts(t *testing.T) {
	c := openCatalog(t)
	ctx := context.Background()

	h := testHandle("/skins/alpha", "Alpha", "com.example.alpha")
	if err := c.Record(ctx, h); err != nil {
		t.Fatalf("Record: %v", err)
	}
	h.Skin.Name = "Alpha Renamed"
	if err := c.Record(ctx, h); err != nil {
		t.Fatalf("Record again: %v", err)
	}

	entries, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("upsert produced %d rows", len(entries))
	}
	if entries[0].Name != "Alpha Renamed" || entries[0].OpenCount != 2 {
		t.Fatalf("entry: %+v", entries[0])
	}
}

func TestSearch(t *testing.T) {
	c := openCatalog(t)
	ctx := context.Background()

	_ = c.Record(ctx, testHandle("/skins/alpha", "Alpha Pad", "com.example.alpha"))
	_ = c.Record(ctx, testHandle("/skins/beta", "Beta Pad", "org.other.beta"))

	got, err := c.Search(ctx, "ALPHA")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Identifier != "com.example.alpha" {
		t.Fatalf("search by name: %+v", got)
	}

	got, err = c.Search(ctx, "org.other")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Beta Pad" {
		t.Fatalf("search by identifier: %+v", got)
	}

	got, err = c.Search(ctx, "nothing-matches")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("empty search: %+v", got)
	}
}

func TestRemove(t *testing.T) {
	c := openCatalog(t)
	ctx := context.Background()

	_ = c.Record(ctx, testHandle("/skins/alpha", "Alpha", "com.example.alpha"))
	if err := c.Remove(ctx, "/skins/alpha"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := c.Remove(ctx, "/skins/never-there"); err != nil {
		t.Fatalf("Remove unknown: %v", err)
	}
	entries, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries after remove: %+v", entries)
	}
}

func TestOpenReusesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	c1, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	_ = c1.Record(context.Background(), testHandle("/skins/alpha", "Alpha", "com.example.alpha"))
	_ = c1.Close()

	c2, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer c2.Close()
	entries, err := c2.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("persisted entries: %d", len(entries))
	}
}
