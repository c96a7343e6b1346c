package utils

import "testing"

func TestSlugifyFromTitle(t *testing.T) {
	got := Slugify("My First Project!")
	if got != "my-first-project" {
		t.Fatalf("expected my-first-project, got %q", got)
	}
}

func TestSlugifyCollapsesWhitespace(t *testing.T) {
	got := Slugify("  Redesign   of \t the   Dashboard  ")
	if got != "redesign-of-the-dashboard" {
		t.Fatalf("unexpected slug: %q", got)
	}
}

func TestSlugifyKeepsExistingHyphens(t *testing.T) {
	got := Slugify("already-a-slug")
	if got != "already-a-slug" {
		t.Fatalf("unexpected slug: %q", got)
	}
}

func TestSlugifyNoLeadingOrTrailingHyphen(t *testing.T) {
	got := Slugify("!!! Launch Day !!!")
	if got != "launch-day" {
		t.Fatalf("unexpected slug: %q", got)
	}
}

func TestSlugifyAllInvalid(t *testing.T) {
	if got := Slugify("???"); got != "" {
		t.Fatalf("expected empty slug, got %q", got)
	}
}
