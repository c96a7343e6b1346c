package themes

import (
	"strings"
	"testing"
)

func TestResolveKnownTheme(t *testing.T) {
	theme := Resolve("bold")
	if theme.ID != "bold" {
		t.Fatalf("expected bold, got %q", theme.ID)
	}
}

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	theme := Resolve("neon-dreams")
	if theme.ID != DefaultID {
		t.Fatalf("expected default theme, got %q", theme.ID)
	}
}

func TestResolveEmptyFallsBackToDefault(t *testing.T) {
	if theme := Resolve(""); theme.ID != DefaultID {
		t.Fatalf("expected default theme, got %q", theme.ID)
	}
}

func TestRenderCSSContainsPalette(t *testing.T) {
	css := RenderCSS("classic")
	for _, want := range []string{
		"--color-primary: #10B981;",
		"--font-heading: Merriweather, serif;",
		"--border-radius: 0.125rem;",
	} {
		if !strings.Contains(css, want) {
			t.Fatalf("css missing %q:\n%s", want, css)
		}
	}
}

func TestRenderCSSAppendsExtraFragment(t *testing.T) {
	css := RenderCSS("bold")
	if !strings.Contains(css, ".portfolio-card:hover") {
		t.Fatalf("extra css fragment not appended:\n%s", css)
	}
}

func TestRenderCSSUnknownUsesDefaultPalette(t *testing.T) {
	if RenderCSS("nope") != RenderCSS(DefaultID) {
		t.Fatalf("unknown theme should render default css")
	}
}
