package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Span is where part of a marker lands on screen: columns [Start, End) of Line.
type Span struct {
	Line  int
	Start int
	End   int
}

// layout is a parsed preview wrapped to a fixed width.
type layout struct {
	lines []Line
	spans [][]Span // per marker, in reading order
}

type wrapper struct {
	width  int
	out    layout
	cur    Line
	curW   int
	space  *Segment // pending separator, dropped at a wrap
	spaceW int
}

// wrap lays blocks out greedily at width. A non-positive width disables wrapping.
func wrap(p parsed, width int) layout {
	w := &wrapper{width: width}
	w.out.spans = make([][]Span, len(p.markers))

	for _, block := range p.blocks {
		for _, seg := range block {
			w.segment(seg)
		}
		w.flush()
	}
	return w.out
}

func (w *wrapper) segment(seg Segment) {
	words := strings.Split(seg.Text, " ")
	for i, word := range words {
		if i > 0 && w.curW > 0 && w.space == nil {
			sp := Segment{Text: " ", Marker: seg.Marker, Heading: seg.Heading}
			w.space, w.spaceW = &sp, 1
		}
		if word != "" {
			w.word(Segment{Text: word, Marker: seg.Marker, Heading: seg.Heading})
		}
	}
	// A trailing space joins the next segment's first word.
	if strings.HasSuffix(seg.Text, " ") && w.curW > 0 && w.space == nil {
		sp := Segment{Text: " ", Marker: seg.Marker, Heading: seg.Heading}
		w.space, w.spaceW = &sp, 1
	}
}

func (w *wrapper) word(seg Segment) {
	ww := lipgloss.Width(seg.Text)
	if w.width > 0 && w.curW > 0 && w.curW+w.spaceW+ww > w.width {
		w.flush()
	}
	if w.space != nil && w.curW > 0 {
		w.put(*w.space, w.spaceW)
	}
	w.space, w.spaceW = nil, 0

	if w.width <= 0 || ww <= w.width-w.curW {
		w.put(seg, ww)
		return
	}

	// Longer than a whole line: hard-break by display width.
	var chunk strings.Builder
	chunkW := 0
	for _, r := range seg.Text {
		rw := lipgloss.Width(string(r))
		if chunkW > 0 && w.curW+chunkW+rw > w.width {
			w.put(Segment{Text: chunk.String(), Marker: seg.Marker, Heading: seg.Heading}, chunkW)
			w.flush()
			chunk.Reset()
			chunkW = 0
		}
		chunk.WriteRune(r)
		chunkW += rw
	}
	if chunkW > 0 {
		w.put(Segment{Text: chunk.String(), Marker: seg.Marker, Heading: seg.Heading}, chunkW)
	}
}

// put appends text to the current line and records marker coverage.
func (w *wrapper) put(seg Segment, width int) {
	start := w.curW
	segs := w.cur.Segments
	if n := len(segs); n > 0 && segs[n-1].Marker == seg.Marker && segs[n-1].Heading == seg.Heading {
		segs[n-1].Text += seg.Text
	} else {
		w.cur.Segments = append(segs, seg)
	}
	w.curW += width

	if seg.Marker < 0 {
		return
	}
	line := len(w.out.lines)
	spans := w.out.spans[seg.Marker]
	if n := len(spans); n > 0 && spans[n-1].Line == line && spans[n-1].End == start {
		spans[n-1].End = w.curW
		return
	}
	w.out.spans[seg.Marker] = append(spans, Span{Line: line, Start: start, End: w.curW})
}

func (w *wrapper) flush() {
	w.out.lines = append(w.out.lines, w.cur)
	w.cur = Line{}
	w.curW = 0
	w.space, w.spaceW = nil, 0
}
