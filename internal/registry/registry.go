// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package registry holds the fixed table of predefined categories. This is
// configuration, not user data — it never mutates at runtime. Its sole role
// is to seed and repair the category store via the reconciliation job.
package registry

// UncategorizedID is the well-known id of the fallback category. It can
// never be deleted, renamed, or moved; reports without a category are
// normalized to it on read paths.
const UncategorizedID = "uncategorized"

// Entry is one predefined category seed: a well-known id with its default
// display metadata. Reconciliation never overwrites user edits to these.
type Entry struct {
	ID    string
	Name  string
	Icon  string
	Color string
}

// entries is the versioned predefined set. Order is the materialization
// order, with the fallback category first.
var entries = []Entry{
	{ID: UncategorizedID, Name: "Uncategorized", Icon: "folder", Color: "#9ca3af"},
	{ID: "tech-research", Name: "Tech Research", Icon: "cpu", Color: "#3b82f6"},
	{ID: "market-analysis", Name: "Market Analysis", Icon: "trending-up", Color: "#10b981"},
	{ID: "product-review", Name: "Product Review", Icon: "star", Color: "#f59e0b"},
	{ID: "industry-insights", Name: "Industry Insights", Icon: "lightbulb", Color: "#8b5cf6"},
}

// Entries returns a copy of the predefined category table.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup returns the entry for a well-known id, or false if id is not
// predefined.
func Lookup(id string) (Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// IsPredefined reports whether id is one of the well-known ids.
func IsPredefined(id string) bool {
	_, ok := Lookup(id)
	return ok
}
