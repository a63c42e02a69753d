package conversation

import "docfill/internal/types"

// Current is the field under conversational focus and its value, if filled.
type Current struct {
	Identity string
	Name     string
	Value    string
	Filled   bool
}

// CurrentField derives the focused field from the document and index.
func CurrentField(doc *types.Document, index int) (Current, bool) {
	p, ok := doc.At(index)
	if !ok {
		return Current{}, false
	}
	v, filled := doc.FilledValues.Lookup(p)
	return Current{Identity: p.Identity(), Name: p.Label(), Value: v, Filled: filled}, true
}

// Focus tracks which field the answer input was last synced to.
// When the focused identity changes, the input buffer is reset to that field's value,
// or to empty when it is unfilled. Nothing happens while the identity stays the same,
// so typing is never clobbered by unrelated snapshot changes.
type Focus struct {
	identity string
	synced   bool
}

// Sync returns the buffer to install and whether a reset is due.
func (f *Focus) Sync(doc *types.Document, index int) (string, bool) {
	cur, _ := CurrentField(doc, index)
	if f.synced && cur.Identity == f.identity {
		return "", false
	}
	f.identity = cur.Identity
	f.synced = true
	return cur.Value, true
}

// Identity returns the identity the input is currently bound to.
func (f *Focus) Identity() string {
	return f.identity
}

// Reset forgets the bound field; the next Sync always reports a change.
func (f *Focus) Reset() {
	*f = Focus{}
}
