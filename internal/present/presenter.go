// Package present keeps a display surface in step with the viewer state and
// runs the deferred fade transitions around opening and closing.
package present

import (
	"math"
	"time"

	"showcase/internal/transition"
	"showcase/internal/viewer"
)

// Cue is the slide animation played when the image changes.
type Cue int

const (
	CueNone Cue = iota
	CueSlideFromRight
	CueSlideFromLeft
)

// Cursor is the pointer shape over the image.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorGrab
	CursorGrabbing
)

// Surface is what the presenter drives. Implementations render the modal
// container, image, counter and controls.
type Surface interface {
	SetImageSource(src string)
	SetScale(scale float64)
	SetScroll(x, y float64)
	SetCounter(text string)
	SetCursor(c Cursor)

	// RemoveCue, Flush then AddCue restarts the slide even if the same cue
	// was applied last time.
	RemoveCue()
	Flush()
	AddCue(c Cue)

	SetBounds(w, h float64)
	Viewport() (w, h float64)
	// NaturalWidth is the intrinsic width of the current image, 0 if unknown.
	NaturalWidth() float64

	LockScroll(locked bool)
	Show()
	Hide()
	SetOpaque(opaque bool)

	// OnResize registers fn for viewport size changes and returns its remover.
	OnResize(fn func()) (detach func())
}

type Settings struct {
	FadeIn      time.Duration
	FadeOut     time.Duration
	WidthRatio  float64
	HeightRatio float64
	// FallbackWidthRatio caps the width when the natural width is unknown.
	FallbackWidthRatio float64
}

func DefaultSettings() Settings {
	return Settings{
		FadeIn:             10 * time.Millisecond,
		FadeOut:            200 * time.Millisecond,
		WidthRatio:         0.95,
		HeightRatio:        0.9,
		FallbackWidthRatio: 0.9,
	}
}

// FitBounds computes the container size for a viewport and image width.
func FitBounds(vw, vh, naturalW float64, s Settings) (w, h float64) {
	limit := naturalW
	if limit <= 0 {
		limit = vw * s.FallbackWidthRatio
	}
	return math.Min(vw*s.WidthRatio, limit), vh * s.HeightRatio
}

// CueFor maps a navigation direction to its slide cue.
func CueFor(d viewer.Direction) Cue {
	switch d {
	case viewer.Forward:
		return CueSlideFromRight
	case viewer.Backward:
		return CueSlideFromLeft
	}
	return CueNone
}

// Presenter implements input.Sink.
type Presenter struct {
	surface  Surface
	sched    transition.Scheduler
	settings Settings

	pendingShow  transition.Handle
	pendingHide  transition.Handle
	detachResize func()
}

// NewPresenter creates a presenter for surface.
func NewPresenter(surface Surface, sched transition.Scheduler, settings Settings) *Presenter {
	return &Presenter{
		surface:  surface,
		sched:    sched,
		settings: settings,
	}
}

func (p *Presenter) sync(snap viewer.Snapshot) {
	s := p.surface
	s.SetImageSource(snap.Image)
	s.SetScale(snap.Scale)
	s.SetScroll(snap.ScrollX, snap.ScrollY)
	s.SetCounter(snap.Counter)
	s.SetCursor(cursorFor(snap))
}

func cursorFor(snap viewer.Snapshot) Cursor {
	switch {
	case snap.Dragging:
		return CursorGrabbing
	case snap.Scale > 1.0:
		return CursorGrab
	}
	return CursorDefault
}

// Fit resizes the container to the current viewport and image.
func (p *Presenter) Fit() {
	vw, vh := p.surface.Viewport()
	p.surface.SetBounds(FitBounds(vw, vh, p.surface.NaturalWidth(), p.settings))
}

func cancel(h *transition.Handle) {
	if *h != nil {
		(*h).Cancel()
		*h = nil
	}
}

// Opened shows the surface and schedules the fade in.
func (p *Presenter) Opened(snap viewer.Snapshot) {
	p.sync(snap)
	p.surface.LockScroll(true)
	p.surface.Show()

	cancel(&p.pendingHide)
	cancel(&p.pendingShow)
	p.pendingShow = p.sched.After(p.settings.FadeIn, func() {
		p.pendingShow = nil
		p.surface.SetOpaque(true)
		p.Fit()
	})

	if p.detachResize == nil {
		p.detachResize = p.surface.OnResize(p.Fit)
	}
}

// Closed fades out now and hides once the fade has run.
func (p *Presenter) Closed(snap viewer.Snapshot) {
	p.surface.SetOpaque(false)
	cancel(&p.pendingShow)

	if p.detachResize != nil {
		p.detachResize()
		p.detachResize = nil
	}

	cancel(&p.pendingHide)
	p.pendingHide = p.sched.After(p.settings.FadeOut, func() {
		p.pendingHide = nil
		p.surface.Hide()
		p.surface.LockScroll(false)
		p.surface.SetScale(1.0)
		p.surface.SetScroll(0, 0)
		p.surface.SetCursor(CursorDefault)
	})
}

// Navigated shows the new image and replays the slide cue for its direction.
func (p *Presenter) Navigated(snap viewer.Snapshot) {
	p.sync(snap)
	p.surface.RemoveCue()
	p.surface.Flush()
	if c := CueFor(snap.Direction); c != CueNone {
		p.surface.AddCue(c)
	}
	p.Fit()
}

func (p *Presenter) Zoomed(snap viewer.Snapshot) {
	p.sync(snap)
}

func (p *Presenter) Panned(snap viewer.Snapshot) {
	p.sync(snap)
}

// ResizeAttached reports whether a resize listener is registered.
func (p *Presenter) ResizeAttached() bool {
	return p.detachResize != nil
}
