package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type About struct {
	title     string
	parent    fyne.Window
	container *fyne.Container
	d         dialog.Dialog
}

// NewAbout builds the about box showing the version and the catalog in use.
func NewAbout(parent fyne.Window, title, version, source string) *About {
	a := &About{
		title:  title,
		parent: parent,
	}

	img := canvas.NewImageFromResource(theme.FileImageIcon())
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(96, 96))

	vbox := container.NewVBox(
		img,
		widget.NewLabelWithStyle("Program catalog with screenshot viewer", fyne.TextAlignCenter, fyne.TextStyle{}),
		widget.NewLabelWithStyle("Version "+version, fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		widget.NewLabelWithStyle("Catalog: "+source, fyne.TextAlignCenter, fyne.TextStyle{Monospace: true}),
	)

	ok := container.NewHBox(
		layout.NewSpacer(),
		widget.NewButton("OK", func() { a.Hide() }),
		layout.NewSpacer(),
	)

	a.container = container.NewBorder(nil, ok, nil, nil, vbox)
	return a
}

func (a *About) Hide() {
	if a.d != nil {
		a.d.Hide()
	}
}

func (a *About) Show() {
	a.d = dialog.NewCustomWithoutButtons(a.title, a.container, a.parent)
	a.d.Show()
}
