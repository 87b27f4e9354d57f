package ui

import (
	"image"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"showcase/internal/input"
	"showcase/internal/present"
)

// ZoomPanArea draws the lightbox image at the viewer's scale and scroll
// offset. It does not change zoom or pan itself: wheel and pointer input is
// forwarded to the dispatcher and the presenter writes the result back.
type ZoomPanArea struct {
	widget.BaseWidget

	img    image.Image
	raster *canvas.Raster

	scale            float64
	scrollX, scrollY float64
	cursor           present.Cursor

	dispatcher *input.Dispatcher
}

// NewZoomPanArea creates an empty ZoomPanArea.
func NewZoomPanArea() *ZoomPanArea {
	zpa := &ZoomPanArea{scale: 1.0}
	zpa.raster = canvas.NewRaster(zpa.draw)
	zpa.ExtendBaseWidget(zpa)
	return zpa
}

// SetImage updates the image displayed by the widget.
func (zpa *ZoomPanArea) SetImage(img image.Image) {
	zpa.img = img
	zpa.Refresh()
	zpa.reportExtent()
}

// Resize reports the new view size so pans stay inside the image.
func (zpa *ZoomPanArea) Resize(s fyne.Size) {
	if s == zpa.Size() {
		return
	}
	zpa.BaseWidget.Resize(s)
	zpa.reportExtent()
}

// extent is the fitted image size at scale 1.0 and the view size.
func (zpa *ZoomPanArea) extent() input.ExtentEvent {
	size := zpa.Size()
	ev := input.ExtentEvent{ViewW: float64(size.Width), ViewH: float64(size.Height)}
	if zpa.img != nil {
		b := zpa.img.Bounds()
		fit := fitScale(b.Dx(), b.Dy(), int(size.Width), int(size.Height))
		ev.ContentW = float64(b.Dx()) * fit
		ev.ContentH = float64(b.Dy()) * fit
	}
	return ev
}

func (zpa *ZoomPanArea) reportExtent() {
	if zpa.dispatcher != nil {
		zpa.dispatcher.HandleExtent(zpa.extent())
	}
}

func (zpa *ZoomPanArea) SetScale(scale float64) {
	if scale == zpa.scale {
		return
	}
	zpa.scale = scale
	zpa.Refresh()
}

func (zpa *ZoomPanArea) SetScroll(x, y float64) {
	if x == zpa.scrollX && y == zpa.scrollY {
		return
	}
	zpa.scrollX, zpa.scrollY = x, y
	zpa.Refresh()
}

// Scroll is the scroll offset last written by the presenter.
func (zpa *ZoomPanArea) Scroll() (x, y float64) {
	return zpa.scrollX, zpa.scrollY
}

func (zpa *ZoomPanArea) SetCursor(c present.Cursor) {
	zpa.cursor = c
}

// SetTranslucency fades the image; 0 is opaque, 1 invisible.
func (zpa *ZoomPanArea) SetTranslucency(t float64) {
	zpa.raster.Translucency = t
	canvas.Refresh(zpa.raster)
}

// fitScale is the factor that fits an imgW x imgH image inside w x h.
func fitScale(imgW, imgH, w, h int) float64 {
	if imgW <= 0 || imgH <= 0 {
		return 1
	}
	return math.Min(float64(w)/float64(imgW), float64(h)/float64(imgH))
}

// viewOffset is where the scaled image starts along one axis. A scaled image
// smaller than the view is centered; a larger one is shifted by the scroll
// offset, clamped to the image edges.
func viewOffset(scaled, view, scroll float64) float64 {
	if scaled <= view {
		return (view - scaled) / 2
	}
	return -math.Max(0, math.Min(scroll, scaled-view))
}

// draw is the rendering function for the canvas.Raster.
func (zpa *ZoomPanArea) draw(w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if zpa.img == nil || w <= 0 || h <= 0 {
		return dst
	}
	src := zpa.img.Bounds()

	eff := fitScale(src.Dx(), src.Dy(), w, h) * zpa.scale
	if eff <= 0 {
		return dst
	}
	// scroll offsets are in canvas units, the raster in pixels
	px := 1.0
	if size := zpa.Size(); size.Width > 0 {
		px = float64(w) / float64(size.Width)
	}
	ox := viewOffset(float64(src.Dx())*eff, float64(w), zpa.scrollX*px)
	oy := viewOffset(float64(src.Dy())*eff, float64(h), zpa.scrollY*px)
	inv := 1 / eff

	for dy := 0; dy < h; dy++ {
		sy := int((float64(dy)-oy)*inv) + src.Min.Y
		if sy < src.Min.Y || sy >= src.Max.Y {
			continue
		}
		for dx := 0; dx < w; dx++ {
			sx := int((float64(dx)-ox)*inv) + src.Min.X
			if sx >= src.Min.X && sx < src.Max.X {
				dst.Set(dx, dy, zpa.img.At(sx, sy))
			}
		}
	}
	return dst
}

// CreateRenderer is a Fyne lifecycle method.
func (zpa *ZoomPanArea) CreateRenderer() fyne.WidgetRenderer {
	return &zoomPanAreaRenderer{zpa: zpa}
}

func (zpa *ZoomPanArea) pointer(pos fyne.Position) input.PointerEvent {
	return input.PointerEvent{
		X:       float64(pos.X),
		Y:       float64(pos.Y),
		ScrollX: zpa.scrollX,
		ScrollY: zpa.scrollY,
	}
}

// Scrolled forwards wheel steps. Fyne reports wheel-up as positive DY.
func (zpa *ZoomPanArea) Scrolled(ev *fyne.ScrollEvent) {
	if zpa.dispatcher == nil {
		return
	}
	zpa.dispatcher.HandleWheel(input.WheelEvent{
		DeltaY:    -float64(ev.Scrolled.DY),
		Modifiers: currentModifiers(),
	})
}

// MouseDown arms a drag on the primary button.
func (zpa *ZoomPanArea) MouseDown(ev *desktop.MouseEvent) {
	if zpa.dispatcher == nil || ev.Button != desktop.MouseButtonPrimary {
		return
	}
	zpa.dispatcher.PointerDown(zpa.pointer(ev.AbsolutePosition))
}

func (zpa *ZoomPanArea) MouseUp(_ *desktop.MouseEvent) {
	if zpa.dispatcher != nil {
		zpa.dispatcher.PointerUp()
	}
}

// Dragged pans while a drag is armed.
func (zpa *ZoomPanArea) Dragged(ev *fyne.DragEvent) {
	if zpa.dispatcher != nil {
		zpa.dispatcher.PointerMove(zpa.pointer(ev.AbsolutePosition))
	}
}

func (zpa *ZoomPanArea) DragEnd() {
	if zpa.dispatcher != nil {
		zpa.dispatcher.PointerUp()
	}
}

func (zpa *ZoomPanArea) MouseIn(_ *desktop.MouseEvent)    {}
func (zpa *ZoomPanArea) MouseMoved(_ *desktop.MouseEvent) {}

// MouseOut ends any drag when the pointer leaves the image.
func (zpa *ZoomPanArea) MouseOut() {
	if zpa.dispatcher != nil {
		zpa.dispatcher.PointerLeave()
	}
}

// Tapped keeps clicks on the image from reaching the backdrop.
func (zpa *ZoomPanArea) Tapped(_ *fyne.PointEvent) {
	if zpa.dispatcher != nil {
		zpa.dispatcher.HandleClick(input.ClickEvent{Target: input.TargetContent})
	}
}

// Cursor maps the presenter cursor onto the closest desktop cursor.
func (zpa *ZoomPanArea) Cursor() desktop.Cursor {
	switch zpa.cursor {
	case present.CursorGrab:
		return desktop.PointerCursor
	case present.CursorGrabbing:
		return desktop.CrosshairCursor
	}
	return desktop.DefaultCursor
}

type zoomPanAreaRenderer struct{ zpa *ZoomPanArea }

func (r *zoomPanAreaRenderer) Layout(size fyne.Size)        { r.zpa.raster.Resize(size) }
func (r *zoomPanAreaRenderer) MinSize() fyne.Size           { return fyne.NewSize(100, 100) }
func (r *zoomPanAreaRenderer) Refresh()                     { canvas.Refresh(r.zpa.raster) }
func (r *zoomPanAreaRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.zpa.raster} }
func (r *zoomPanAreaRenderer) Destroy()                     {}

var _ fyne.Widget = (*ZoomPanArea)(nil)
var _ fyne.Scrollable = (*ZoomPanArea)(nil)
var _ fyne.Draggable = (*ZoomPanArea)(nil)
var _ fyne.Tappable = (*ZoomPanArea)(nil)
var _ desktop.Mouseable = (*ZoomPanArea)(nil)
var _ desktop.Hoverable = (*ZoomPanArea)(nil)
var _ desktop.Cursorable = (*ZoomPanArea)(nil)
