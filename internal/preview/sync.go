package preview

import "docfill/internal/logging"

// EditRequest is raised when the user interacts with a marker.
// The synchronizer never decides the new value.
type EditRequest struct {
	Identity    string
	CurrentText string
	Filled      bool
	Index       int
}

// Synchronizer owns the laid-out form of the current preview markup.
// Attach is the only way content changes; every query reads the last attached layout.
type Synchronizer struct {
	markup   string
	width    int
	attached bool

	parsed   parsed
	layout   layout
	selected int
}

// NewSynchronizer returns a synchronizer with nothing attached.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{selected: -1}
}

// Attach installs markup laid out at width. It is a no-op when neither changed and
// reports whether the layout was rebuilt. On a parse error the previous layout stays.
func (s *Synchronizer) Attach(markup string, width int) (bool, error) {
	if s.attached && markup == s.markup && width == s.width {
		return false, nil
	}

	if !s.attached || markup != s.markup {
		p, err := parse(markup)
		if err != nil {
			logging.PreviewWarn("attach: %v", err)
			return false, err
		}
		prevIdentity := ""
		if m, ok := s.Selected(); ok {
			prevIdentity = m.Identity
		}
		s.parsed = p
		s.selected = -1
		if prevIdentity != "" {
			for i, m := range p.markers {
				if m.Identity == prevIdentity {
					s.selected = i
					break
				}
			}
		}
	}

	s.markup, s.width, s.attached = markup, width, true
	s.layout = wrap(s.parsed, width)
	logging.PreviewDebug("attach: %d lines, %d markers at width %d", len(s.layout.lines), len(s.parsed.markers), width)
	return true, nil
}

// Detach drops the current content.
func (s *Synchronizer) Detach() {
	*s = Synchronizer{selected: -1}
}

// Lines returns the laid-out preview.
func (s *Synchronizer) Lines() []Line {
	return s.layout.lines
}

// Markers returns every marker in reading order.
func (s *Synchronizer) Markers() []Marker {
	return s.parsed.markers
}

// Marker returns the marker at position i of Markers.
func (s *Synchronizer) Marker(i int) (Marker, bool) {
	if i < 0 || i >= len(s.parsed.markers) {
		return Marker{}, false
	}
	return s.parsed.markers[i], true
}

// Spans returns where marker i was laid out.
func (s *Synchronizer) Spans(i int) []Span {
	if i < 0 || i >= len(s.layout.spans) {
		return nil
	}
	return s.layout.spans[i]
}

// FindIndex returns the first marker tagged with the placeholder index.
func (s *Synchronizer) FindIndex(index int) (int, bool) {
	for i, m := range s.parsed.markers {
		if m.Index == index {
			return i, true
		}
	}
	return -1, false
}

// ScrollTarget returns the y-offset that centres the marker tagged with index in a
// viewport of the given height. ok is false when no such marker is laid out.
func (s *Synchronizer) ScrollTarget(index, height int) (int, bool) {
	i, ok := s.FindIndex(index)
	if !ok {
		return 0, false
	}
	spans := s.Spans(i)
	if len(spans) == 0 {
		return 0, false
	}

	offset := spans[0].Line - height/2
	maxOffset := len(s.layout.lines) - height
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset, true
}

// HitTest resolves a content position to a marker.
func (s *Synchronizer) HitTest(line, col int) (int, bool) {
	for i, spans := range s.layout.spans {
		for _, sp := range spans {
			if sp.Line == line && col >= sp.Start && col < sp.End {
				return i, true
			}
		}
	}
	return -1, false
}

// Interact turns a marker into an edit request. Unfilled markers are as editable as filled ones.
func (s *Synchronizer) Interact(i int) (EditRequest, bool) {
	m, ok := s.Marker(i)
	if !ok || m.Identity == "" {
		return EditRequest{}, false
	}
	return EditRequest{Identity: m.Identity, CurrentText: m.Text, Filled: m.Filled, Index: m.Index}, true
}

// Select moves the keyboard selection to marker i.
func (s *Synchronizer) Select(i int) bool {
	if _, ok := s.Marker(i); !ok {
		return false
	}
	s.selected = i
	return true
}

// Selected returns the keyboard-selected marker.
func (s *Synchronizer) Selected() (Marker, bool) {
	return s.Marker(s.selected)
}

// SelectedIndex returns the position of the selected marker, -1 when none.
func (s *Synchronizer) SelectedIndex() int {
	return s.selected
}

// Next advances the selection, wrapping at the end.
func (s *Synchronizer) Next() (int, bool) {
	return s.step(1)
}

// Prev moves the selection back, wrapping at the start.
func (s *Synchronizer) Prev() (int, bool) {
	return s.step(-1)
}

func (s *Synchronizer) step(delta int) (int, bool) {
	n := len(s.parsed.markers)
	if n == 0 {
		return -1, false
	}
	switch {
	case s.selected < 0 && delta > 0:
		s.selected = 0
	case s.selected < 0:
		s.selected = n - 1
	default:
		s.selected = ((s.selected+delta)%n + n) % n
	}
	return s.selected, true
}

// LineOf returns the first line marker i occupies.
func (s *Synchronizer) LineOf(i int) (int, bool) {
	spans := s.Spans(i)
	if len(spans) == 0 {
		return 0, false
	}
	return spans[0].Line, true
}
