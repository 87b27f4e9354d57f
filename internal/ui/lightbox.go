package ui

import (
	"context"
	"image"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"showcase/internal/input"
	"showcase/internal/present"
	"showcase/internal/service"
)

const (
	backdropAlpha = 220
	cueDuration   = 300 * time.Millisecond
	// cueDistance is the share of the frame width a slide starts from.
	cueDistance = 0.25
)

// backdrop is the dimmed layer behind the lightbox image. Clicking it closes
// the viewer.
type backdrop struct {
	widget.BaseWidget
	rect     *canvas.Rectangle
	onTapped func()
}

func newBackdrop(onTapped func()) *backdrop {
	b := &backdrop{
		rect:     canvas.NewRectangle(color.NRGBA{A: 0}),
		onTapped: onTapped,
	}
	b.ExtendBaseWidget(b)
	return b
}

func (b *backdrop) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.rect)
}

func (b *backdrop) Tapped(_ *fyne.PointEvent) {
	if b.onTapped != nil {
		b.onTapped()
	}
}

func (b *backdrop) setAlpha(a uint8) {
	b.rect.FillColor = color.NRGBA{A: a}
	b.rect.Refresh()
}

type resizeListener struct {
	id int
	fn func()
}

// Lightbox is the modal screenshot viewer. It is the present.Surface the
// presenter drives; user input on it goes to the dispatcher.
type Lightbox struct {
	widget.BaseWidget

	images     *service.ImageService
	dispatcher *input.Dispatcher
	fade       time.Duration
	logger     func(string)

	backdrop *backdrop
	area     *ZoomPanArea
	counter  *widget.Label
	controls *fyne.Container

	bounds   fyne.Size
	slide    float32
	cueAnim  *fyne.Animation
	fadeAnim *fyne.Animation
	opacity  float32

	src     string
	natural float64
	loadSeq int

	listeners  []resizeListener
	listenerID int

	// OnLockScroll is called when the page behind the lightbox should stop
	// or resume scrolling.
	OnLockScroll func(locked bool)
	// OnImageLoaded is called on the UI goroutine once a new image decoded.
	OnImageLoaded func()
}

// NewLightbox creates a hidden lightbox loading images through images. fade
// is the length of the open and close fade.
func NewLightbox(images *service.ImageService, fade time.Duration, logger func(string)) *Lightbox {
	lb := &Lightbox{
		images:  images,
		fade:    fade,
		logger:  logger,
		area:    NewZoomPanArea(),
		counter: widget.NewLabel(""),
	}
	lb.backdrop = newBackdrop(func() {
		lb.click(input.ClickEvent{Target: input.TargetBackdrop})
	})
	lb.counter.Alignment = fyne.TextAlignCenter
	lb.counter.TextStyle.Bold = true

	control := func(icon fyne.Resource, action string) *widget.Button {
		return widget.NewButtonWithIcon("", icon, func() {
			lb.click(input.ClickEvent{Target: input.TargetControl, Control: action})
		})
	}
	lb.controls = container.NewHBox(
		control(theme.NavigateBackIcon(), input.ActionPrev),
		control(theme.ZoomOutIcon(), input.ActionZoomOut),
		control(theme.ViewRestoreIcon(), input.ActionZoomReset),
		control(theme.ZoomInIcon(), input.ActionZoomIn),
		control(theme.DownloadIcon(), input.ActionDownload),
		control(theme.NavigateNextIcon(), input.ActionNext),
		control(theme.CancelIcon(), input.ActionClose),
	)

	lb.area.SetTranslucency(1)
	lb.ExtendBaseWidget(lb)
	lb.BaseWidget.Hide()
	return lb
}

// SetDispatcher connects user input. The dispatcher is built after the
// lightbox because its sink, the presenter, needs the lightbox first.
func (lb *Lightbox) SetDispatcher(d *input.Dispatcher) {
	lb.dispatcher = d
	lb.area.dispatcher = d
	lb.area.reportExtent()
}

func (lb *Lightbox) click(ev input.ClickEvent) {
	if lb.dispatcher != nil {
		lb.dispatcher.HandleClick(ev)
	}
}

func (lb *Lightbox) log(msg string) {
	if lb.logger != nil {
		lb.logger(msg)
	}
}

// SetImageSource starts loading src. Loads that finish after a newer source
// was set are dropped.
func (lb *Lightbox) SetImageSource(src string) {
	if src == lb.src {
		return
	}
	lb.src = src
	lb.natural = 0
	lb.loadSeq++
	seq := lb.loadSeq
	if src == "" {
		lb.area.SetImage(nil)
		return
	}

	go func() {
		info, img, err := lb.images.Load(context.Background(), src)
		fyne.Do(func() { lb.finishLoad(seq, info, img, err) })
	}()
}

// finishLoad shows a loaded image. A failed source is forgotten so that
// showing it again retries the load.
func (lb *Lightbox) finishLoad(seq int, info *service.ImageInfo, img image.Image, err error) {
	if seq != lb.loadSeq {
		return
	}
	if err != nil {
		lb.log("Viewer: " + err.Error())
		lb.area.SetImage(nil)
		lb.src = ""
		return
	}
	lb.natural = float64(info.Width)
	lb.area.SetImage(img)
	if lb.OnImageLoaded != nil {
		lb.OnImageLoaded()
	}
}

func (lb *Lightbox) SetScale(scale float64) { lb.area.SetScale(scale) }

func (lb *Lightbox) SetScroll(x, y float64) { lb.area.SetScroll(x, y) }

func (lb *Lightbox) SetCounter(text string) { lb.counter.SetText(text) }

func (lb *Lightbox) SetCursor(c present.Cursor) { lb.area.SetCursor(c) }

// RemoveCue stops any running slide and puts the frame back in place.
func (lb *Lightbox) RemoveCue() {
	if lb.cueAnim != nil {
		lb.cueAnim.Stop()
		lb.cueAnim = nil
	}
	lb.slide = 0
}

// Flush re-lays out the frame so the next cue starts from a clean position.
func (lb *Lightbox) Flush() {
	lb.Refresh()
}

// AddCue slides the frame in from the side the new image comes from.
func (lb *Lightbox) AddCue(c present.Cue) {
	dist := lb.frameSize(lb.Size()).Width * cueDistance
	switch c {
	case present.CueSlideFromRight:
	case present.CueSlideFromLeft:
		dist = -dist
	default:
		return
	}
	lb.cueAnim = fyne.NewAnimation(cueDuration, func(p float32) {
		lb.slide = dist * (1 - p)
		lb.moveFrame()
	})
	lb.cueAnim.Curve = fyne.AnimationEaseOut
	lb.cueAnim.Start()
}

func (lb *Lightbox) SetBounds(w, h float64) {
	lb.bounds = fyne.NewSize(float32(w), float32(h))
	lb.Refresh()
}

func (lb *Lightbox) Viewport() (w, h float64) {
	s := lb.Size()
	return float64(s.Width), float64(s.Height)
}

func (lb *Lightbox) NaturalWidth() float64 { return lb.natural }

func (lb *Lightbox) LockScroll(locked bool) {
	if lb.OnLockScroll != nil {
		lb.OnLockScroll(locked)
	}
}

// SetOpaque fades the backdrop and image in or out.
func (lb *Lightbox) SetOpaque(opaque bool) {
	if lb.fadeAnim != nil {
		lb.fadeAnim.Stop()
		lb.fadeAnim = nil
	}
	from, to := lb.opacity, float32(0)
	if opaque {
		to = 1
	}
	if lb.fade <= 0 {
		lb.setOpacity(to)
		return
	}
	lb.fadeAnim = fyne.NewAnimation(lb.fade, func(p float32) {
		lb.setOpacity(from + (to-from)*p)
	})
	lb.fadeAnim.Start()
}

func (lb *Lightbox) setOpacity(o float32) {
	lb.opacity = o
	lb.backdrop.setAlpha(uint8(o * backdropAlpha))
	lb.area.SetTranslucency(float64(1 - o))
}

// OnResize registers fn for viewport size changes.
func (lb *Lightbox) OnResize(fn func()) (detach func()) {
	lb.listenerID++
	id := lb.listenerID
	lb.listeners = append(lb.listeners, resizeListener{id: id, fn: fn})
	return func() {
		for i, l := range lb.listeners {
			if l.id == id {
				lb.listeners = append(lb.listeners[:i], lb.listeners[i+1:]...)
				return
			}
		}
	}
}

// Resize notifies resize listeners after laying out at the new size.
func (lb *Lightbox) Resize(s fyne.Size) {
	changed := s != lb.Size()
	lb.BaseWidget.Resize(s)
	if !changed {
		return
	}
	for _, l := range append([]resizeListener(nil), lb.listeners...) {
		l.fn()
	}
}

// frameSize is the image frame size, falling back to most of the viewport
// before the presenter has set bounds.
func (lb *Lightbox) frameSize(view fyne.Size) fyne.Size {
	if lb.bounds.Width > 0 && lb.bounds.Height > 0 {
		return lb.bounds
	}
	return fyne.NewSize(view.Width*0.9, view.Height*0.9)
}

func (lb *Lightbox) moveFrame() {
	size := lb.Size()
	frame := lb.frameSize(size)
	lb.area.Move(fyne.NewPos((size.Width-frame.Width)/2+lb.slide, (size.Height-frame.Height)/2))
}

// CreateRenderer is a Fyne lifecycle method.
func (lb *Lightbox) CreateRenderer() fyne.WidgetRenderer {
	return &lightboxRenderer{
		lb:      lb,
		objects: []fyne.CanvasObject{lb.backdrop, lb.area, lb.counter, lb.controls},
	}
}

type lightboxRenderer struct {
	lb      *Lightbox
	objects []fyne.CanvasObject
}

func (r *lightboxRenderer) Layout(size fyne.Size) {
	lb := r.lb
	pad := theme.Padding()

	lb.backdrop.Move(fyne.NewPos(0, 0))
	lb.backdrop.Resize(size)

	lb.area.Resize(lb.frameSize(size))
	lb.moveFrame()

	cs := lb.controls.MinSize()
	lb.controls.Resize(cs)
	lb.controls.Move(fyne.NewPos((size.Width-cs.Width)/2, size.Height-cs.Height-pad))

	ls := lb.counter.MinSize()
	lb.counter.Resize(ls)
	lb.counter.Move(fyne.NewPos((size.Width-ls.Width)/2, pad))
}

func (r *lightboxRenderer) MinSize() fyne.Size {
	return r.lb.controls.MinSize()
}

func (r *lightboxRenderer) Refresh() {
	r.Layout(r.lb.Size())
	for _, o := range r.objects {
		o.Refresh()
	}
}

func (r *lightboxRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *lightboxRenderer) Destroy()                     {}

var _ present.Surface = (*Lightbox)(nil)
