// Package preview turns server-rendered document markup into terminal lines and
// keeps an index of the placeholder markers inside it.
//
// The package only reads markup. Focus scrolling and pointer hit-testing are answered
// from the marker index; edits are returned as requests for the caller to dispatch.
package preview

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// State is a marker's rendered fill state, taken from its class list.
type State int

const (
	Unfilled State = iota
	Current
	Filled
)

func (s State) String() string {
	switch s {
	case Current:
		return "current"
	case Filled:
		return "filled"
	default:
		return "unfilled"
	}
}

const (
	attrID    = "data-ph"
	attrKey   = "data-key"
	attrIndex = "data-index"

	classFilled  = "placeholder-filled"
	classCurrent = "placeholder-current"

	cellSeparator = " │ "
	bullet        = "• "
	maxDepth      = 64
)

// Marker is one placeholder occurrence in the preview.
type Marker struct {
	Identity string // data-ph when non-empty, else data-key
	Key      string
	Index    int // data-index, -1 when absent or malformed
	State    State
	Filled   bool // carries the filled class, even when also current
	Text     string
}

// Segment is a run of text sharing one marker and emphasis.
type Segment struct {
	Text    string
	Marker  int // index into the marker list, -1 for plain text
	Heading bool
}

// Line is one row of laid-out preview text.
type Line struct {
	Segments []Segment
}

// Text returns the line's plain text.
func (l Line) Text() string {
	var sb strings.Builder
	for _, seg := range l.Segments {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// parsed is the width-independent form of a preview: logical lines before wrapping.
type parsed struct {
	blocks  [][]Segment
	markers []Marker
}

type parser struct {
	out     parsed
	line    []Segment
	marker  int
	heading bool
	cells   []int // cell count per open table row
}

// parse reads preview markup into logical lines and a marker list.
func parse(markup string) (parsed, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return parsed{}, fmt.Errorf("failed to parse preview markup: %w", err)
	}

	p := &parser{marker: -1}
	p.walk(root, 0)
	p.breakLine()
	p.trimBlankTail()
	for i := range p.out.markers {
		p.out.markers[i].Text = strings.TrimSpace(collapseSpace(p.out.markers[i].Text))
	}
	return p.out, nil
}

func (p *parser) walk(n *html.Node, depth int) {
	if depth > maxDepth {
		return
	}

	switch n.Type {
	case html.TextNode:
		p.text(n.Data)
		return
	case html.ElementNode:
		// handled below
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.walk(c, depth+1)
		}
		return
	default:
		return
	}

	switch n.Data {
	case "script", "style", "head", "title", "noscript", "template":
		return
	case "br":
		p.breakLine()
		return
	}

	prevMarker, prevHeading := p.marker, p.heading
	if isMarker(n) {
		p.marker = len(p.out.markers)
		p.out.markers = append(p.out.markers, newMarker(n))
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		p.breakLine()
		p.heading = true
	case "p", "div", "section", "article", "header", "footer", "table", "ul", "ol", "blockquote":
		p.breakLine()
	case "tr":
		p.breakLine()
		p.cells = append(p.cells, 0)
	case "td", "th":
		if k := len(p.cells) - 1; k >= 0 {
			if p.cells[k] > 0 {
				p.trimTrailingSpace()
				p.emit(cellSeparator, -1, false)
			}
			p.cells[k]++
		}
	case "li":
		p.breakLine()
		p.emit(bullet, -1, false)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, depth+1)
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6", "p":
		p.breakLine()
		p.blank()
	case "div", "section", "article", "header", "footer", "table", "ul", "ol", "li", "blockquote":
		p.breakLine()
	case "tr":
		p.breakLine()
		p.cells = p.cells[:len(p.cells)-1]
	}

	p.marker, p.heading = prevMarker, prevHeading
}

func (p *parser) text(data string) {
	s := collapseSpace(data)
	if s == "" {
		return
	}
	if len(p.line) == 0 || endsWithSpace(p.line) {
		s = strings.TrimLeft(s, " ")
	}
	if s == "" {
		return
	}
	if p.marker >= 0 {
		p.out.markers[p.marker].Text += data
	}
	p.emit(s, p.marker, p.heading)
}

// emit appends text, merging with the previous segment when attributes match.
func (p *parser) emit(s string, marker int, heading bool) {
	if n := len(p.line); n > 0 {
		last := &p.line[n-1]
		if last.Marker == marker && last.Heading == heading {
			last.Text += s
			return
		}
	}
	p.line = append(p.line, Segment{Text: s, Marker: marker, Heading: heading})
}

func (p *parser) breakLine() {
	p.trimTrailingSpace()
	if len(p.line) == 0 {
		return
	}
	p.out.blocks = append(p.out.blocks, p.line)
	p.line = nil
}

func (p *parser) trimTrailingSpace() {
	for n := len(p.line); n > 0; n = len(p.line) {
		last := &p.line[n-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			return
		}
		p.line = p.line[:n-1]
	}
}

// blank separates paragraphs with a single empty line.
func (p *parser) blank() {
	if n := len(p.out.blocks); n > 0 && len(p.out.blocks[n-1]) > 0 {
		p.out.blocks = append(p.out.blocks, nil)
	}
}

func (p *parser) trimBlankTail() {
	for n := len(p.out.blocks); n > 0 && len(p.out.blocks[n-1]) == 0; n = len(p.out.blocks) {
		p.out.blocks = p.out.blocks[:n-1]
	}
}

func isMarker(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == attrID || a.Key == attrKey {
			return true
		}
	}
	return false
}

func newMarker(n *html.Node) Marker {
	m := Marker{Key: getAttr(n, attrKey), Index: -1}
	m.Identity = getAttr(n, attrID)
	if m.Identity == "" {
		m.Identity = m.Key
	}
	if v, err := strconv.Atoi(strings.TrimSpace(getAttr(n, attrIndex))); err == nil {
		m.Index = v
	}

	classes := strings.Fields(getAttr(n, "class"))
	m.Filled = slices.Contains(classes, classFilled)
	switch {
	case slices.Contains(classes, classCurrent):
		m.State = Current
	case m.Filled:
		m.State = Filled
	default:
		m.State = Unfilled
	}
	return m
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// collapseSpace folds whitespace runs into single spaces, as a browser would.
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}

func endsWithSpace(line []Segment) bool {
	return strings.HasSuffix(line[len(line)-1].Text, " ")
}
