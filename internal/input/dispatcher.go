// Package input turns host events (keys, wheel, pointer, clicks) into viewer
// operations and reports each resulting state to a Sink.
package input

import (
	"fmt"
	"log"

	"showcase/internal/catalog"
	"showcase/internal/registry"
	"showcase/internal/viewer"
)

const (
	DefaultButtonZoomStep = 1.2
	DefaultWheelZoomStep  = 1.1
	DefaultWheelPanFactor = 0.5
)

// KeyEvent is a key press. Key uses the names accepted by ParseKeyString.
type KeyEvent struct {
	Key       string
	Modifiers Modifier
}

// WheelEvent is a vertical wheel step. Positive DeltaY scrolls down.
type WheelEvent struct {
	DeltaY    float64
	Modifiers Modifier
}

// PointerEvent carries the pointer position and the surface's scroll offset
// at the time of the event.
type PointerEvent struct {
	X, Y             float64
	ScrollX, ScrollY float64
}

// ExtentEvent is the size of the image at scale 1.0 and of the area showing
// it, reported whenever either changes.
type ExtentEvent struct {
	ContentW, ContentH float64
	ViewW, ViewH       float64
}

// Target says what a click landed on.
type Target int

const (
	TargetContent Target = iota
	TargetBackdrop
	TargetGalleryItem
	TargetControl
)

// ClickEvent is a primary click. Gallery items carry the image reference and
// the owning record's ID; controls carry an action name.
type ClickEvent struct {
	Target      Target
	Control     string
	ImageSource string
	RecordID    string
}

// Sink receives the viewer state after every change.
type Sink interface {
	Opened(viewer.Snapshot)
	Closed(viewer.Snapshot)
	Navigated(viewer.Snapshot)
	Zoomed(viewer.Snapshot)
	Panned(viewer.Snapshot)
}

// Saver stores the image at src under filename.
type Saver interface {
	Save(src, filename string) error
}

// Settings are the numeric knobs of the dispatcher.
type Settings struct {
	ButtonZoomStep float64
	WheelZoomStep  float64
	WheelPanFactor float64
	// ZoomModifiers turns the wheel into zoom when any of them is held.
	ZoomModifiers Modifier
}

func DefaultSettings() Settings {
	return Settings{
		ButtonZoomStep: DefaultButtonZoomStep,
		WheelZoomStep:  DefaultWheelZoomStep,
		WheelPanFactor: DefaultWheelPanFactor,
		ZoomModifiers:  ModCtrl | ModSuper,
	}
}

// Dispatcher routes events to a Viewer.
type Dispatcher struct {
	viewer   *viewer.Viewer
	registry *registry.Registry
	sink     Sink
	keymap   *Keymap
	saver    Saver
	settings Settings
	logger   func(string)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithKeymap(km *Keymap) Option {
	return func(d *Dispatcher) {
		if km != nil {
			d.keymap = km
		}
	}
}

func WithSaver(s Saver) Option {
	return func(d *Dispatcher) { d.saver = s }
}

func WithSettings(s Settings) Option {
	return func(d *Dispatcher) { d.settings = s }
}

func WithLogger(logger func(string)) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// NewDispatcher wires a dispatcher to its viewer, registry and sink.
func NewDispatcher(v *viewer.Viewer, reg *registry.Registry, sink Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		viewer:   v,
		registry: reg,
		sink:     sink,
		keymap:   DefaultKeymap(),
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if d.logger != nil {
		d.logger(msg)
	} else {
		log.Printf("input: %s", msg)
	}
}

// Execute runs a named action against the open viewer. It reports whether
// the action did anything.
func (d *Dispatcher) Execute(action string) bool {
	v := d.viewer
	if !v.IsOpen() {
		return false
	}
	switch action {
	case ActionClose:
		v.Close()
		d.sink.Closed(v.Snapshot())
	case ActionPrev:
		if !v.Prev() {
			return false
		}
		d.sink.Navigated(v.Snapshot())
	case ActionNext:
		if !v.Next() {
			return false
		}
		d.sink.Navigated(v.Snapshot())
	case ActionZoomIn:
		return d.zoom(d.settings.ButtonZoomStep)
	case ActionZoomOut:
		return d.zoom(1 / d.settings.ButtonZoomStep)
	case ActionZoomReset:
		v.ResetZoom()
		d.sink.Zoomed(v.Snapshot())
	case ActionDownload:
		return d.download()
	default:
		d.logf("unknown action %q", action)
		return false
	}
	return true
}

func (d *Dispatcher) zoom(factor float64) bool {
	if !d.viewer.Zoom(factor) {
		return false
	}
	d.sink.Zoomed(d.viewer.Snapshot())
	return true
}

func (d *Dispatcher) download() bool {
	v := d.viewer
	src := v.Current()
	rec := v.Record()
	if src == "" || rec == nil {
		return false
	}
	if d.saver == nil {
		d.logf("download of %s skipped: no saver configured", src)
		return false
	}
	name := catalog.ScreenshotFilename(rec.Title, v.Index())
	if err := d.saver.Save(src, name); err != nil {
		d.logf("download of %s failed: %v", src, err)
		return false
	}
	return true
}

// HandleKey runs the action bound to ev. Keys are ignored while closed.
func (d *Dispatcher) HandleKey(ev KeyEvent) bool {
	if !d.viewer.IsOpen() {
		return false
	}
	action, ok := d.keymap.Lookup(ev)
	if !ok {
		return false
	}
	return d.Execute(action)
}

// HandleWheel applies a wheel step. With a zoom modifier held it zooms; while
// zoomed in it pans horizontally; otherwise it changes image. The return value
// tells the host whether the event was consumed.
func (d *Dispatcher) HandleWheel(ev WheelEvent) bool {
	v := d.viewer
	if !v.IsOpen() {
		return false
	}
	switch {
	case ev.Modifiers&d.settings.ZoomModifiers != 0:
		factor := d.settings.WheelZoomStep
		if ev.DeltaY > 0 {
			factor = 1 / factor
		}
		d.zoom(factor)
		return true
	case v.Scale() > 1.0:
		v.ScrollBy(-ev.DeltaY*d.settings.WheelPanFactor, 0)
		d.sink.Panned(v.Snapshot())
		return true
	case ev.DeltaY > 0:
		return d.Execute(ActionNext)
	case ev.DeltaY < 0:
		return d.Execute(ActionPrev)
	}
	return false
}

// PointerDown arms a drag when the image is zoomed in.
func (d *Dispatcher) PointerDown(ev PointerEvent) bool {
	if !d.viewer.BeginDrag(ev.X, ev.Y, ev.ScrollX, ev.ScrollY) {
		return false
	}
	d.sink.Panned(d.viewer.Snapshot())
	return true
}

// PointerMove pans while a drag is armed.
func (d *Dispatcher) PointerMove(ev PointerEvent) bool {
	if _, _, ok := d.viewer.UpdateDrag(ev.X, ev.Y); !ok {
		return false
	}
	d.sink.Panned(d.viewer.Snapshot())
	return true
}

// PointerUp ends any drag.
func (d *Dispatcher) PointerUp() {
	d.endDrag()
}

// PointerLeave ends any drag when the pointer exits the surface.
func (d *Dispatcher) PointerLeave() {
	d.endDrag()
}

// HandleExtent records new surface geometry. An offset that no longer fits
// is pulled back inside the image and presented again.
func (d *Dispatcher) HandleExtent(ev ExtentEvent) {
	if d.viewer.SetExtent(ev.ContentW, ev.ContentH, ev.ViewW, ev.ViewH) {
		d.sink.Panned(d.viewer.Snapshot())
	}
}

func (d *Dispatcher) endDrag() {
	was := d.viewer.Dragging()
	d.viewer.EndDrag()
	if was {
		d.sink.Panned(d.viewer.Snapshot())
	}
}

// HandleClick dispatches a click by target. Gallery items whose record was
// never registered are skipped.
func (d *Dispatcher) HandleClick(ev ClickEvent) bool {
	switch ev.Target {
	case TargetGalleryItem:
		rec, ok := d.registry.Resolve(ev.RecordID)
		if !ok {
			d.logf("gallery item %s references unknown record %q", ev.ImageSource, ev.RecordID)
			return false
		}
		if !d.viewer.Open(ev.ImageSource, rec) {
			return false
		}
		d.sink.Opened(d.viewer.Snapshot())
		return true
	case TargetBackdrop:
		return d.Execute(ActionClose)
	case TargetControl:
		return d.Execute(ev.Control)
	}
	return false
}
