package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// tappableImage displays a thumbnail and reports taps. Gallery items and
// landing page icons both use it.
type tappableImage struct {
	widget.BaseWidget
	image    *canvas.Image
	onTapped func()
}

// newTappableImage creates a new tappableImage widget.
func newTappableImage(res fyne.Resource, size fyne.Size, onTapped func()) *tappableImage {
	ti := &tappableImage{
		image:    canvas.NewImageFromResource(res),
		onTapped: onTapped,
	}
	ti.image.FillMode = canvas.ImageFillContain
	ti.image.SetMinSize(size)
	ti.ExtendBaseWidget(ti)
	return ti
}

func (t *tappableImage) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.image)
}

func (t *tappableImage) Tapped(_ *fyne.PointEvent) {
	if t.onTapped != nil {
		t.onTapped()
	}
}

// Cursor shows a pointer over clickable images.
func (t *tappableImage) Cursor() desktop.Cursor {
	if t.onTapped == nil {
		return desktop.DefaultCursor
	}
	return desktop.PointerCursor
}

// SetResource updates the image resource and refreshes.
func (t *tappableImage) SetResource(res fyne.Resource) {
	t.image.Resource = res
	t.image.Image = nil
	canvas.Refresh(t.image)
}
