// Package viewer implements the lightbox state machine: which record and image
// are shown, at what scale, and whether the user is dragging a zoomed image.
//
// A Viewer is either closed or open on a single session. It is not safe for
// concurrent use; all calls are expected on the UI goroutine.
package viewer

import (
	"fmt"
	"math"

	"showcase/internal/catalog"
)

const (
	DefaultMinZoom        = 0.1
	DefaultMaxZoom        = 10.0
	DefaultDragMultiplier = 2.0
)

// Direction is the last navigation direction, used to pick a transition cue.
type Direction int

const (
	None Direction = iota
	Forward
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "none"
	}
}

// DragState is the pointer and scroll position captured when a pan starts.
type DragState struct {
	PointerX, PointerY float64
	ScrollX, ScrollY   float64
}

// Session is the live state of an open viewer.
type Session struct {
	record    *catalog.Record
	images    []string
	index     int
	scale     float64
	direction Direction
	drag      *DragState
	scrollX   float64
	scrollY   float64
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithZoomLimits bounds the scale. Passing 0 for both disables the clamp.
func WithZoomLimits(lo, hi float64) Option {
	return func(v *Viewer) {
		v.minZoom = lo
		v.maxZoom = hi
	}
}

// WithDragMultiplier sets how far the image scrolls per pixel of pointer travel.
func WithDragMultiplier(m float64) Option {
	return func(v *Viewer) {
		if m > 0 {
			v.dragMultiplier = m
		}
	}
}

// Viewer owns at most one Session.
type Viewer struct {
	session *Session

	minZoom        float64
	maxZoom        float64
	dragMultiplier float64

	// size of the image at scale 1.0 and of the visible area, in surface units
	contentW, contentH float64
	viewW, viewH       float64
}

// New returns a closed viewer.
func New(opts ...Option) *Viewer {
	v := &Viewer{
		minZoom:        DefaultMinZoom,
		maxZoom:        DefaultMaxZoom,
		dragMultiplier: DefaultDragMultiplier,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Open starts a session on record, positioned at src. If src is not one of the
// record's screenshots the first image is shown. A nil record leaves the viewer
// untouched and returns false.
func (v *Viewer) Open(src string, record *catalog.Record) bool {
	if record == nil {
		return false
	}
	images := record.Screenshots
	if images == nil {
		images = []string{}
	}
	index := record.IndexOf(src)
	if index < 0 {
		index = 0
	}
	v.session = &Session{
		record:    record,
		images:    images,
		index:     index,
		scale:     1.0,
		direction: None,
	}
	return true
}

// Close ends the session.
func (v *Viewer) Close() {
	v.session = nil
}

// Next advances to the following image, wrapping at the end.
func (v *Viewer) Next() bool {
	return v.step(1, Forward)
}

// Prev moves to the preceding image, wrapping at the start.
func (v *Viewer) Prev() bool {
	return v.step(-1, Backward)
}

func (v *Viewer) step(delta int, dir Direction) bool {
	s := v.session
	if s == nil {
		return false
	}
	n := len(s.images)
	if n <= 1 {
		return false
	}
	s.index = (s.index + delta + n) % n
	s.direction = dir
	return true
}

// Zoom multiplies the scale by factor and clamps it to the configured range.
// It reports whether the scale changed.
func (v *Viewer) Zoom(factor float64) bool {
	s := v.session
	if s == nil || factor <= 0 {
		return false
	}
	next := v.clamp(s.scale * factor)
	if next == s.scale {
		return false
	}
	s.scale = next
	s.scrollX, s.scrollY = v.clampScroll(s.scrollX, s.scrollY)
	return true
}

func (v *Viewer) clamp(scale float64) float64 {
	if v.minZoom == 0 && v.maxZoom == 0 {
		return scale
	}
	if v.minZoom > 0 && scale < v.minZoom {
		return v.minZoom
	}
	if v.maxZoom > 0 && scale > v.maxZoom {
		return v.maxZoom
	}
	return scale
}

// ResetZoom returns the scale to 1.0.
func (v *Viewer) ResetZoom() {
	s := v.session
	if s != nil {
		s.scale = 1.0
		s.scrollX, s.scrollY = v.clampScroll(s.scrollX, s.scrollY)
	}
}

// SetExtent records the size of the image at scale 1.0 and of the area it is
// shown in. Scroll offsets are kept within [0, content*scale-view] on each
// axis; until a view size is known only the lower bound applies. It reports
// whether the current offset had to move.
func (v *Viewer) SetExtent(contentW, contentH, viewW, viewH float64) bool {
	v.contentW, v.contentH = contentW, contentH
	v.viewW, v.viewH = viewW, viewH

	s := v.session
	if s == nil {
		return false
	}
	x, y := v.clampScroll(s.scrollX, s.scrollY)
	if x == s.scrollX && y == s.scrollY {
		return false
	}
	s.scrollX, s.scrollY = x, y
	return true
}

func (v *Viewer) clampScroll(x, y float64) (float64, float64) {
	scale := v.Scale()
	return limitAxis(x, v.contentW*scale, v.viewW), limitAxis(y, v.contentH*scale, v.viewH)
}

func limitAxis(pos, content, view float64) float64 {
	if pos < 0 {
		return 0
	}
	if view <= 0 {
		return pos
	}
	return math.Min(pos, math.Max(0, content-view))
}

// BeginDrag arms a pan. Dragging is only possible while zoomed in.
func (v *Viewer) BeginDrag(px, py, sx, sy float64) bool {
	s := v.session
	if s == nil || s.scale <= 1.0 {
		return false
	}
	sx, sy = v.clampScroll(sx, sy)
	s.drag = &DragState{PointerX: px, PointerY: py, ScrollX: sx, ScrollY: sy}
	return true
}

// UpdateDrag computes the scroll offset for the pointer at (px, py), clamped
// to the extent. ok is false when no drag is in progress.
func (v *Viewer) UpdateDrag(px, py float64) (x, y float64, ok bool) {
	s := v.session
	if s == nil || s.drag == nil {
		return 0, 0, false
	}
	d := s.drag
	x, y = v.clampScroll(
		d.ScrollX-(px-d.PointerX)*v.dragMultiplier,
		d.ScrollY-(py-d.PointerY)*v.dragMultiplier,
	)
	s.scrollX, s.scrollY = x, y
	return x, y, true
}

// EndDrag disarms any drag in progress.
func (v *Viewer) EndDrag() {
	if v.session != nil {
		v.session.drag = nil
	}
}

// ScrollBy shifts the scroll offset, used by wheel panning.
func (v *Viewer) ScrollBy(dx, dy float64) bool {
	s := v.session
	if s == nil {
		return false
	}
	s.scrollX, s.scrollY = v.clampScroll(s.scrollX+dx, s.scrollY+dy)
	return true
}

func (v *Viewer) IsOpen() bool { return v.session != nil }

// Index is the current position, or -1 when closed.
func (v *Viewer) Index() int {
	if v.session == nil {
		return -1
	}
	return v.session.index
}

func (v *Viewer) Images() []string {
	if v.session == nil {
		return nil
	}
	return v.session.images
}

// Current is the image reference on screen, empty when closed or the record has no screenshots.
func (v *Viewer) Current() string {
	s := v.session
	if s == nil || len(s.images) == 0 {
		return ""
	}
	return s.images[s.index]
}

// Scale is 1.0 whenever the viewer is closed.
func (v *Viewer) Scale() float64 {
	if v.session == nil {
		return 1.0
	}
	return v.session.scale
}

func (v *Viewer) Direction() Direction {
	if v.session == nil {
		return None
	}
	return v.session.direction
}

func (v *Viewer) Dragging() bool {
	return v.session != nil && v.session.drag != nil
}

func (v *Viewer) Record() *catalog.Record {
	if v.session == nil {
		return nil
	}
	return v.session.record
}

func (v *Viewer) Scroll() (x, y float64) {
	if v.session == nil {
		return 0, 0
	}
	return v.session.scrollX, v.session.scrollY
}

// Counter renders the position as "i/n", empty when there is nothing to count.
func (v *Viewer) Counter() string {
	s := v.session
	if s == nil || len(s.images) == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", s.index+1, len(s.images))
}

// Snapshot is a read-only copy of the viewer state handed to presentation.
type Snapshot struct {
	Open      bool
	Record    *catalog.Record
	Image     string
	Index     int
	Count     int
	Scale     float64
	Direction Direction
	Dragging  bool
	ScrollX   float64
	ScrollY   float64
	Counter   string
}

// Snapshot captures the current state.
func (v *Viewer) Snapshot() Snapshot {
	sx, sy := v.Scroll()
	return Snapshot{
		Open:      v.IsOpen(),
		Record:    v.Record(),
		Image:     v.Current(),
		Index:     v.Index(),
		Count:     len(v.Images()),
		Scale:     v.Scale(),
		Direction: v.Direction(),
		Dragging:  v.Dragging(),
		ScrollX:   sx,
		ScrollY:   sy,
		Counter:   v.Counter(),
	}
}
