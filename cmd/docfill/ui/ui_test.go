package ui

import (
	"strings"
	"testing"
	"time"
)

func TestComputeKey(t *testing.T) {
	if ComputeKey("a", 1, 0.5, true) != ComputeKey("a", 1, 0.5, true) {
		t.Error("expected same key for same inputs")
	}
	if ComputeKey("prefix", 1.0) == ComputeKey("prefix", 2.0) {
		t.Error("float inputs must contribute to the key")
	}
	// Length prefixing keeps concatenations apart.
	if ComputeKey("ab", "c") == ComputeKey("a", "bc") {
		t.Error("expected different keys for different string splits")
	}
}

func TestRenderCache_GetOrCompute(t *testing.T) {
	rc := NewRenderCache(time.Minute)
	calls := 0
	compute := func() string {
		calls++
		return "rendered"
	}

	key := ComputeKey("msg-1", 80)
	if got := rc.GetOrCompute(key, compute); got != "rendered" {
		t.Fatalf("got %q", got)
	}
	rc.GetOrCompute(key, compute)
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	if rc.Len() != 1 {
		t.Errorf("Len() = %d, want 1", rc.Len())
	}

	rc.Clear()
	if _, ok := rc.Get(key); ok {
		t.Error("expected miss after Clear")
	}
}

func TestRenderCache_Expires(t *testing.T) {
	rc := NewRenderCache(20 * time.Millisecond)
	rc.Set(1, "x")
	time.Sleep(50 * time.Millisecond)
	if _, ok := rc.Get(1); ok {
		t.Error("expected entry to expire")
	}
}

func TestThemeFor(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	if !ThemeFor(true).IsDark {
		t.Error("expected dark theme when configured")
	}
	if ThemeFor(false).IsDark {
		t.Error("expected light theme when configured")
	}

	t.Setenv("COLORFGBG", "0;15")
	if ThemeFor(true).IsDark {
		t.Error("a light terminal background overrides dark mode")
	}
	t.Setenv("COLORFGBG", "15;0")
	if !ThemeFor(false).IsDark {
		t.Error("a dark terminal background overrides light mode")
	}
}

func TestRenderDivider(t *testing.T) {
	s := NewStyles(LightTheme())
	if got := s.RenderDivider(0); got != "" {
		t.Errorf("expected empty divider, got %q", got)
	}
	if !strings.Contains(s.RenderDivider(3), "───") {
		t.Error("divider should contain three rule characters")
	}
}

func TestLayout(t *testing.T) {
	wide := NewLayoutConfig(120, 40)
	left, right := wide.SplitPaneWidths()
	if left+right+SplitPaneDivider != 120 {
		t.Errorf("pane widths %d+%d do not fill 120", left, right)
	}
	if wide.IsCompact {
		t.Error("120 columns is not compact")
	}

	narrow := NewLayoutConfig(80, 24)
	l, r := narrow.SplitPaneWidths()
	if l != 80 || r != 80 {
		t.Errorf("compact panes should span full width, got %d/%d", l, r)
	}

	if got := NewLayoutConfig(80, 24).BodyHeight(true); got != 21 {
		t.Errorf("BodyHeight(true) = %d, want 21", got)
	}
	if got := NewLayoutConfig(80, 1).BodyHeight(false); got != 0 {
		t.Errorf("BodyHeight clamps at zero, got %d", got)
	}
	if got := PanelContentWidth(3); got != 0 {
		t.Errorf("PanelContentWidth clamps at zero, got %d", got)
	}
}
