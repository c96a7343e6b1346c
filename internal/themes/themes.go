// Package themes holds the fixed registry of portfolio themes and renders
// them to CSS variables for the public pages.
package themes

import (
	"fmt"
	"strings"
)

type Palette struct {
	Primary          string `json:"primary"`
	Secondary        string `json:"secondary"`
	Accent           string `json:"accent"`
	Background       string `json:"background"`
	Text             string `json:"text"`
	CardBackground   string `json:"cardBackground"`
	HeaderBackground string `json:"headerBackground"`
}

type Typography struct {
	HeadingFont string `json:"headingFont"`
	BodyFont    string `json:"bodyFont"`
}

type Theme struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	PreviewImage string     `json:"previewImage,omitempty"`
	Colors       Palette    `json:"colors"`
	Typography   Typography `json:"typography"`
	BorderRadius string     `json:"borderRadius"`
	ExtraCSS     string     `json:"css,omitempty"`
}

// DefaultID is used whenever a user has no theme or an unknown one.
const DefaultID = "minimal"

var registry = []Theme{
	{
		ID:           "minimal",
		Name:         "Minimal",
		Description:  "Clean, simple design with focus on your work",
		PreviewImage: "https://res.cloudinary.com/demo/image/upload/minimal-theme-preview.jpg",
		Colors: Palette{
			Primary:          "#4F46E5",
			Secondary:        "#0EA5E9",
			Accent:           "#F97316",
			Background:       "#F8FAFC",
			Text:             "#334155",
			CardBackground:   "#FFFFFF",
			HeaderBackground: "#FFFFFF",
		},
		Typography: Typography{
			HeadingFont: "Inter, sans-serif",
			BodyFont:    "Inter, sans-serif",
		},
		BorderRadius: "0.5rem",
	},
	{
		ID:           "bold",
		Name:         "Bold",
		Description:  "Vibrant colors and modern layout for a strong impression",
		PreviewImage: "https://res.cloudinary.com/demo/image/upload/bold-theme-preview.jpg",
		Colors: Palette{
			Primary:          "#6D28D9",
			Secondary:        "#4F46E5",
			Accent:           "#EC4899",
			Background:       "#0F172A",
			Text:             "#F8FAFC",
			CardBackground:   "#1E293B",
			HeaderBackground: "#0F172A",
		},
		Typography: Typography{
			HeadingFont: "Montserrat, sans-serif",
			BodyFont:    "Inter, sans-serif",
		},
		BorderRadius: "0.25rem",
		ExtraCSS: `.portfolio-card {
  transition: transform 0.3s ease;
}
.portfolio-card:hover {
  transform: translateY(-5px);
}`,
	},
	{
		ID:           "classic",
		Name:         "Classic",
		Description:  "Timeless design with elegant typography",
		PreviewImage: "https://res.cloudinary.com/demo/image/upload/classic-theme-preview.jpg",
		Colors: Palette{
			Primary:          "#10B981",
			Secondary:        "#064E3B",
			Accent:           "#F59E0B",
			Background:       "#FAFAF9",
			Text:             "#1C1917",
			CardBackground:   "#FFFFFF",
			HeaderBackground: "#FFFFFF",
		},
		Typography: Typography{
			HeadingFont: "Merriweather, serif",
			BodyFont:    "Lora, serif",
		},
		BorderRadius: "0.125rem",
		ExtraCSS: `h1, h2, h3, h4, h5, h6 {
  font-weight: 700;
}
.portfolio-card {
  box-shadow: 0 1px 3px rgba(0, 0, 0, 0.1);
}`,
	},
}

func All() []Theme {
	out := make([]Theme, len(registry))
	copy(out, registry)
	return out
}

// Resolve returns the theme for id, falling back to the default. Never fails.
func Resolve(id string) Theme {
	for _, t := range registry {
		if t.ID == id {
			return t
		}
	}
	return registry[0]
}

func IsKnown(id string) bool {
	for _, t := range registry {
		if t.ID == id {
			return true
		}
	}
	return false
}

// RenderCSS produces the CSS-variables block for the theme plus its extra
// CSS fragment verbatim.
func RenderCSS(id string) string {
	t := Resolve(id)

	var b strings.Builder
	b.WriteString(":root {\n")
	fmt.Fprintf(&b, "  --color-primary: %s;\n", t.Colors.Primary)
	fmt.Fprintf(&b, "  --color-secondary: %s;\n", t.Colors.Secondary)
	fmt.Fprintf(&b, "  --color-accent: %s;\n", t.Colors.Accent)
	fmt.Fprintf(&b, "  --color-background: %s;\n", t.Colors.Background)
	fmt.Fprintf(&b, "  --color-text: %s;\n", t.Colors.Text)
	fmt.Fprintf(&b, "  --color-card-background: %s;\n", t.Colors.CardBackground)
	fmt.Fprintf(&b, "  --color-header-background: %s;\n", t.Colors.HeaderBackground)
	fmt.Fprintf(&b, "  --font-heading: %s;\n", t.Typography.HeadingFont)
	fmt.Fprintf(&b, "  --font-body: %s;\n", t.Typography.BodyFont)
	fmt.Fprintf(&b, "  --border-radius: %s;\n", t.BorderRadius)
	b.WriteString("}\n\n")

	b.WriteString(`body {
  background-color: var(--color-background);
  color: var(--color-text);
  font-family: var(--font-body);
}

h1, h2, h3, h4, h5, h6 {
  font-family: var(--font-heading);
}
`)

	if t.ExtraCSS != "" {
		b.WriteString("\n")
		b.WriteString(t.ExtraCSS)
		b.WriteString("\n")
	}
	return b.String()
}
