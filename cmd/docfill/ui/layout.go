// Package ui layout constants for consistent spacing and dimensions
package ui

// Layout constants for pane sizing
const (
	// Split between the conversation column and the preview column
	SplitPaneLeftRatio = 0.45
	SplitPaneDivider   = 1

	// Panel borders and spacing
	PanelBorderWidth = 1
	PanelPaddingH    = 1

	// Fixed-height regions
	HeaderHeight    = 1
	FooterHeight    = 1
	BannerHeight    = 1
	InputHeight     = 3
	ProgressBarRows = 2

	// Responsive breakpoints
	MinimumTerminalWidth  = 60
	MinimumTerminalHeight = 16
	CompactModeWidth      = 100
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
	}
}

// SplitPaneWidths calculates left and right pane widths for a split view.
// Compact terminals stack the panes, so both get the full width.
func (l LayoutConfig) SplitPaneWidths() (leftWidth, rightWidth int) {
	if l.IsCompact {
		return l.TerminalWidth, l.TerminalWidth
	}
	leftWidth = int(float64(l.TerminalWidth) * SplitPaneLeftRatio)
	rightWidth = l.TerminalWidth - leftWidth - SplitPaneDivider
	return
}

// BodyHeight is the height left for panes after header, footer and an optional banner.
func (l LayoutConfig) BodyHeight(banner bool) int {
	h := l.TerminalHeight - HeaderHeight - FooterHeight
	if banner {
		h -= BannerHeight
	}
	return max(h, 0)
}

// PanelContentWidth returns the content width inside a bordered panel
func PanelContentWidth(panelWidth int) int {
	return max(panelWidth-(PanelBorderWidth*2)-(PanelPaddingH*2), 0)
}

// PanelContentHeight returns the content height inside a bordered panel
func PanelContentHeight(panelHeight int) int {
	return max(panelHeight-(PanelBorderWidth*2), 0)
}
