// Package types provides shared type definitions used across docfill packages.
// This package exists to break import cycles between session, conversation, progress and remote.
// Types in this package should be foundational data structures with no complex dependencies.
package types

import (
	"maps"
	"time"
)

// =============================================================================
// PLACEHOLDERS
// =============================================================================

// Placeholder is a named slot in the uploaded document awaiting a value.
// The sequence of placeholders is fixed at upload time; only filled values change.
type Placeholder struct {
	ID   string `json:"id,omitempty"` // Stable identifier, not always assigned by the extractor
	Key  string `json:"key"`          // Semantic name, always present
	Name string `json:"name"`         // Human label

	// Extractor metadata, carried through untouched.
	Type         string `json:"type,omitempty"`
	Original     string `json:"original,omitempty"`
	Location     string `json:"location,omitempty"`
	LocationType string `json:"location_type,omitempty"`
}

// Identity resolves the key a placeholder is stored under: id when non-empty, else key.
// Every read or write of filled values goes through this function.
func Identity(p Placeholder) string {
	if p.ID != "" {
		return p.ID
	}
	return p.Key
}

// Identity is a method shorthand for Identity(p).
func (p Placeholder) Identity() string {
	return Identity(p)
}

// Label returns the display name, falling back to the key.
func (p Placeholder) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Key
}

// Matches reports whether ref names this placeholder by id or by key.
func (p Placeholder) Matches(ref string) bool {
	if ref == "" {
		return false
	}
	return (p.ID != "" && p.ID == ref) || p.Key == ref
}

// FilledValues maps placeholder identity to its assigned value.
// A key being present means the placeholder is filled, even if the value is empty.
type FilledValues map[string]string

// Lookup finds the value for p, trying its id first and its key second.
func (f FilledValues) Lookup(p Placeholder) (string, bool) {
	if p.ID != "" {
		if v, ok := f[p.ID]; ok {
			return v, true
		}
	}
	v, ok := f[p.Key]
	return v, ok
}

// IsFilled reports whether p has a value.
func (f FilledValues) IsFilled(p Placeholder) bool {
	_, ok := f.Lookup(p)
	return ok
}

// Clone returns an independent copy; a nil map clones to an empty one.
func (f FilledValues) Clone() FilledValues {
	out := make(FilledValues, len(f))
	maps.Copy(out, f)
	return out
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is the uploaded file with its placeholders and current values.
type Document struct {
	Filename     string
	Placeholders []Placeholder
	FilledValues FilledValues
}

// At returns the placeholder at index i.
func (d *Document) At(i int) (Placeholder, bool) {
	if d == nil || i < 0 || i >= len(d.Placeholders) {
		return Placeholder{}, false
	}
	return d.Placeholders[i], true
}

// Find locates a placeholder by id or key reference.
func (d *Document) Find(ref string) (Placeholder, int, bool) {
	if d == nil {
		return Placeholder{}, -1, false
	}
	for i, p := range d.Placeholders {
		if p.Matches(ref) {
			return p, i, true
		}
	}
	return Placeholder{}, -1, false
}

// Value returns the filled value for the placeholder named by ref.
func (d *Document) Value(ref string) (string, bool) {
	p, _, ok := d.Find(ref)
	if !ok {
		return "", false
	}
	return d.FilledValues.Lookup(p)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one transcript entry. Entries are never mutated after creation.
type ChatMessage struct {
	ID                string
	Role              Role
	Content           string
	Timestamp         time.Time
	PlaceholderFilled string // Identity of the field this turn filled, if any
}
