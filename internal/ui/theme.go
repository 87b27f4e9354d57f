package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// showcaseTheme wraps an existing theme with tighter padding and a darker
// overlay behind dialogs.
type showcaseTheme struct {
	fyne.Theme
}

var _ fyne.Theme = (*showcaseTheme)(nil)

func (t *showcaseTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNamePadding {
		return 3.0
	}
	return t.Theme.Size(name)
}

func (t *showcaseTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if name == theme.ColorNameOverlayBackground {
		return color.NRGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xf0}
	}
	return t.Theme.Color(name, variant)
}

// NewShowcaseTheme bases the showcase theme on baseTheme.
func NewShowcaseTheme(baseTheme fyne.Theme) fyne.Theme {
	return &showcaseTheme{Theme: baseTheme}
}
