package types

import (
	"fmt"
	"slices"
)

// Template ids understood by the renderer.
const (
	TemplateModern   = "modern"
	TemplateClassic  = "classic"
	TemplateCreative = "creative"
	TemplateMinimal  = "minimal"

	DefaultTemplate = TemplateModern
)

// Templates lists the template ids in selector order.
var Templates = []string{TemplateModern, TemplateClassic, TemplateCreative, TemplateMinimal}

// Customization holds the visual options chosen for a résumé.
type Customization struct {
	Font        string `json:"font"`
	ColorScheme string `json:"colorScheme"`
	Spacing     string `json:"spacing"`
	FontSize    string `json:"fontSize"`
}

// Allowed values per customization key.
var (
	Fonts        = []string{"inter", "serif", "mono", "playfair"}
	ColorSchemes = []string{"blue", "green", "purple", "red", "orange", "gray"}
	Spacings     = []string{"compact", "normal", "relaxed"}
	FontSizes    = []string{"small", "medium", "large"}
)

// DefaultCustomization returns inter/blue/normal/medium.
func DefaultCustomization() Customization {
	return Customization{
		Font:        "inter",
		ColorScheme: "blue",
		Spacing:     "normal",
		FontSize:    "medium",
	}
}

// WithDefaults fills empty fields from DefaultCustomization.
func (c Customization) WithDefaults() Customization {
	def := DefaultCustomization()
	if c.Font == "" {
		c.Font = def.Font
	}
	if c.ColorScheme == "" {
		c.ColorScheme = def.ColorScheme
	}
	if c.Spacing == "" {
		c.Spacing = def.Spacing
	}
	if c.FontSize == "" {
		c.FontSize = def.FontSize
	}
	return c
}

// Set returns a copy with the named option changed.
// Keys are the JSON names: font, colorScheme, spacing, fontSize.
func (c Customization) Set(key, value string) (Customization, error) {
	var allowed []string
	switch key {
	case "font":
		allowed = Fonts
		c.Font = value
	case "colorScheme":
		allowed = ColorSchemes
		c.ColorScheme = value
	case "spacing":
		allowed = Spacings
		c.Spacing = value
	case "fontSize":
		allowed = FontSizes
		c.FontSize = value
	default:
		return c, fmt.Errorf("unknown customization option: %s", key)
	}
	if !slices.Contains(allowed, value) {
		return c, fmt.Errorf("invalid %s %q (allowed: %v)", key, value, allowed)
	}
	return c, nil
}

// IsTemplate reports whether id names a known template.
func IsTemplate(id string) bool {
	return slices.Contains(Templates, id)
}
