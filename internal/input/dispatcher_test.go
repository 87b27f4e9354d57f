package input

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showcase/internal/catalog"
	"showcase/internal/registry"
	"showcase/internal/viewer"
)

type recordedEvent struct {
	kind string
	snap viewer.Snapshot
}

type recordingSink struct {
	events []recordedEvent
}

func (s *recordingSink) add(kind string, snap viewer.Snapshot) {
	s.events = append(s.events, recordedEvent{kind, snap})
}

func (s *recordingSink) Opened(snap viewer.Snapshot) { s.add("opened", snap) }
func (s *recordingSink) Closed(snap viewer.Snapshot) { s.add("closed", snap) }
func (s *recordingSink) Navigated(snap viewer.Snapshot) { s.add("navigated", snap) }
func (s *recordingSink) Zoomed(snap viewer.Snapshot) { s.add("zoomed", snap) }
func (s *recordingSink) Panned(snap viewer.Snapshot) { s.add("panned", snap) }

func (s *recordingSink) last() recordedEvent {
	return s.events[len(s.events)-1]
}

type fakeSaver struct {
	src, filename string
	err           error
}

func (f *fakeSaver) Save(src, filename string) error {
	f.src, f.filename = src, filename
	return f.err
}

type fixture struct {
	viewer *viewer.Viewer
	reg    *registry.Registry
	sink   *recordingSink
	saver  *fakeSaver
	d      *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		viewer: viewer.New(),
		reg:    registry.New(),
		sink:   &recordingSink{},
		saver:  &fakeSaver{},
	}
	f.reg.Register(&catalog.Record{ID: "p1", Title: "Paint Pro", Screenshots: []string{"a.jpg", "b.jpg", "c.jpg"}})
	f.reg.Register(&catalog.Record{ID: "solo", Title: "Solo", Screenshots: []string{"only.jpg"}})
	f.d = NewDispatcher(f.viewer, f.reg, f.sink, WithSaver(f.saver), WithLogger(func(string) {}))
	return f
}

func (f *fixture) open(t *testing.T, id, src string) {
	t.Helper()
	require.True(t, f.d.HandleClick(ClickEvent{Target: TargetGalleryItem, RecordID: id, ImageSource: src}))
}

func TestGalleryClickOpensAndNavigates(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "b.jpg")
	assert.Equal(t, "opened", f.sink.last().kind)
	assert.Equal(t, "2/3", f.sink.last().snap.Counter)

	require.True(t, f.d.HandleKey(KeyEvent{Key: "ArrowRight"}))
	assert.Equal(t, "3/3", f.sink.last().snap.Counter)
	assert.Equal(t, viewer.Forward, f.sink.last().snap.Direction)

	require.True(t, f.d.HandleKey(KeyEvent{Key: "ArrowRight"}))
	assert.Equal(t, "1/3", f.sink.last().snap.Counter)

	require.True(t, f.d.HandleClick(ClickEvent{Target: TargetControl, Control: ActionPrev}))
	assert.Equal(t, "3/3", f.sink.last().snap.Counter)
	assert.Equal(t, viewer.Backward, f.sink.last().snap.Direction)
}

func TestGalleryClickUnknownRecordIsSkipped(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.d.HandleClick(ClickEvent{Target: TargetGalleryItem, RecordID: "ghost", ImageSource: "x.jpg"}))
	assert.False(t, f.viewer.IsOpen())
	assert.Empty(t, f.sink.events)
}

func TestGalleryClickMissingImageOpensFirst(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "nope.jpg")
	assert.Equal(t, 0, f.sink.last().snap.Index)
	assert.Equal(t, "a.jpg", f.sink.last().snap.Image)
}

func TestKeysIgnoredWhileClosed(t *testing.T) {
	f := newFixture(t)
	for _, key := range []string{"Escape", "ArrowLeft", "ArrowRight", "+", "-", "0"} {
		assert.False(t, f.d.HandleKey(KeyEvent{Key: key}))
	}
	assert.False(t, f.d.HandleWheel(WheelEvent{DeltaY: 1}))
	assert.Empty(t, f.sink.events)
}

func TestKeyboardZoom(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "a.jpg")

	f.d.HandleKey(KeyEvent{Key: "+"})
	assert.InDelta(t, 1.2, f.viewer.Scale(), 1e-9)
	f.d.HandleKey(KeyEvent{Key: "="})
	assert.InDelta(t, 1.44, f.viewer.Scale(), 1e-9)
	f.d.HandleKey(KeyEvent{Key: "-"})
	assert.InDelta(t, 1.2, f.viewer.Scale(), 1e-9)
	f.d.HandleKey(KeyEvent{Key: "_"})
	assert.InDelta(t, 1.0, f.viewer.Scale(), 1e-9)

	f.d.HandleKey(KeyEvent{Key: "+"})
	require.True(t, f.d.HandleKey(KeyEvent{Key: "0"}))
	assert.Equal(t, 1.0, f.viewer.Scale())
	assert.Equal(t, "zoomed", f.sink.last().kind)
}

func TestEscapeAndBackdropClose(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "a.jpg")
	f.viewer.Zoom(4.5)

	require.True(t, f.d.HandleKey(KeyEvent{Key: "Escape"}))
	assert.Equal(t, "closed", f.sink.last().kind)
	assert.False(t, f.viewer.IsOpen())
	assert.Equal(t, 1.0, f.viewer.Scale())

	f.open(t, "p1", "a.jpg")
	assert.False(t, f.d.HandleClick(ClickEvent{Target: TargetContent}))
	assert.True(t, f.viewer.IsOpen())
	require.True(t, f.d.HandleClick(ClickEvent{Target: TargetBackdrop}))
	assert.False(t, f.viewer.IsOpen())
}

func TestWheelNavigatesAtDefaultScale(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "a.jpg")

	require.True(t, f.d.HandleWheel(WheelEvent{DeltaY: 120}))
	assert.Equal(t, 1, f.viewer.Index())
	require.True(t, f.d.HandleWheel(WheelEvent{DeltaY: -120}))
	assert.Equal(t, 0, f.viewer.Index())

	n := len(f.sink.events)
	assert.False(t, f.d.HandleWheel(WheelEvent{DeltaY: 0}))
	assert.Len(t, f.sink.events, n)
}

func TestWheelWithModifierZooms(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "a.jpg")

	require.True(t, f.d.HandleWheel(WheelEvent{DeltaY: -1, Modifiers: ModCtrl}))
	assert.InDelta(t, 1.1, f.viewer.Scale(), 1e-9)
	require.True(t, f.d.HandleWheel(WheelEvent{DeltaY: 1, Modifiers: ModSuper}))
	assert.InDelta(t, 1.0, f.viewer.Scale(), 1e-9)
	assert.Equal(t, 0, f.viewer.Index(), "zoom must not navigate")

	// Shift alone is not a zoom modifier.
	f.viewer.ResetZoom()
	f.d.HandleWheel(WheelEvent{DeltaY: 1, Modifiers: ModShift})
	assert.Equal(t, 1, f.viewer.Index())
}

func TestWheelPansWhenZoomed(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "a.jpg")
	f.viewer.Zoom(2)

	require.True(t, f.d.HandleWheel(WheelEvent{DeltaY: -100}))
	assert.Equal(t, 0, f.viewer.Index())
	assert.Equal(t, "panned", f.sink.last().kind)
	assert.Equal(t, 50.0, f.sink.last().snap.ScrollX)

	require.True(t, f.d.HandleWheel(WheelEvent{DeltaY: 40}))
	assert.Equal(t, 30.0, f.sink.last().snap.ScrollX)
}

func TestPanStaysInsideImage(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "a.jpg")
	// 400x300 image in a 400x300 view: at scale 2 the offset ranges over [0, 400] x [0, 300]
	f.d.HandleExtent(ExtentEvent{ContentW: 400, ContentH: 300, ViewW: 400, ViewH: 300})
	f.viewer.Zoom(2)

	for i := 0; i < 10; i++ {
		f.d.HandleWheel(WheelEvent{DeltaY: 100})
	}
	assert.Equal(t, 0.0, f.sink.last().snap.ScrollX, "overscroll past the left edge is dropped")

	// one notch back moves the image right away
	f.d.HandleWheel(WheelEvent{DeltaY: -100})
	assert.Equal(t, 50.0, f.sink.last().snap.ScrollX)

	for i := 0; i < 20; i++ {
		f.d.HandleWheel(WheelEvent{DeltaY: -100})
	}
	assert.Equal(t, 400.0, f.sink.last().snap.ScrollX, "overscroll past the right edge is dropped")

	// a drag starts from the clamped offset whatever the surface reports
	require.True(t, f.d.PointerDown(PointerEvent{X: 100, Y: 100, ScrollX: 900, ScrollY: -40}))
	require.True(t, f.d.PointerMove(PointerEvent{X: 110, Y: 90}))
	snap := f.sink.last().snap
	assert.Equal(t, 380.0, snap.ScrollX)
	assert.Equal(t, 20.0, snap.ScrollY)

	require.True(t, f.d.PointerMove(PointerEvent{X: 400, Y: -500}))
	snap = f.sink.last().snap
	assert.Equal(t, 0.0, snap.ScrollX)
	assert.Equal(t, 300.0, snap.ScrollY)
	f.d.PointerUp()
}

func TestExtentChangeReclampsScroll(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "a.jpg")
	f.d.HandleExtent(ExtentEvent{ContentW: 400, ContentH: 300, ViewW: 400, ViewH: 300})
	f.viewer.Zoom(2)
	f.viewer.ScrollBy(350, 250)
	events := len(f.sink.events)

	// same geometry: nothing to present
	f.d.HandleExtent(ExtentEvent{ContentW: 400, ContentH: 300, ViewW: 400, ViewH: 300})
	assert.Len(t, f.sink.events, events)

	// a wider view leaves less to scroll
	f.d.HandleExtent(ExtentEvent{ContentW: 400, ContentH: 300, ViewW: 600, ViewH: 400})
	require.Len(t, f.sink.events, events+1)
	last := f.sink.last()
	assert.Equal(t, "panned", last.kind)
	assert.Equal(t, 200.0, last.snap.ScrollX)
	assert.Equal(t, 200.0, last.snap.ScrollY)

	// zooming out pulls the offset back as well
	f.viewer.Zoom(0.5)
	x, y := f.viewer.Scroll()
	assert.Zero(t, x)
	assert.Zero(t, y)
}

func TestShiftedArrowsNavigate(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "a.jpg")

	require.True(t, f.d.HandleKey(KeyEvent{Key: "ArrowLeft", Modifiers: ModShift}))
	assert.Equal(t, "3/3", f.sink.last().snap.Counter)
	require.True(t, f.d.HandleKey(KeyEvent{Key: "Escape", Modifiers: ModShift}))
	assert.False(t, f.viewer.IsOpen())
}

func TestPointerDragOnlyWhenZoomed(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "a.jpg")

	assert.False(t, f.d.PointerDown(PointerEvent{X: 10, Y: 10}))
	assert.False(t, f.d.PointerMove(PointerEvent{X: 20, Y: 20}))
	assert.False(t, f.viewer.Dragging())

	f.viewer.Zoom(2)
	require.True(t, f.d.PointerDown(PointerEvent{X: 10, Y: 10, ScrollX: 100, ScrollY: 100}))
	require.True(t, f.d.PointerMove(PointerEvent{X: 30, Y: 0}))
	snap := f.sink.last().snap
	assert.Equal(t, 60.0, snap.ScrollX)
	assert.Equal(t, 120.0, snap.ScrollY)
	assert.True(t, snap.Dragging)

	f.d.PointerLeave()
	assert.False(t, f.viewer.Dragging())
	assert.False(t, f.sink.last().snap.Dragging)
	assert.False(t, f.d.PointerMove(PointerEvent{X: 50, Y: 50}))

	f.d.PointerDown(PointerEvent{X: 0, Y: 0})
	f.d.PointerUp()
	assert.False(t, f.viewer.Dragging())
}

func TestSingleImageNavigationIsNoop(t *testing.T) {
	f := newFixture(t)
	f.open(t, "solo", "only.jpg")
	n := len(f.sink.events)
	assert.False(t, f.d.HandleKey(KeyEvent{Key: "ArrowRight"}))
	assert.False(t, f.d.HandleWheel(WheelEvent{DeltaY: 1}))
	assert.Len(t, f.sink.events, n)
}

func TestDownloadControl(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "c.jpg")

	require.True(t, f.d.HandleClick(ClickEvent{Target: TargetControl, Control: ActionDownload}))
	assert.Equal(t, "c.jpg", f.saver.src)
	assert.Equal(t, "Paint_Pro_screenshot_3.jpg", f.saver.filename)

	f.saver.err = errors.New("disk full")
	assert.False(t, f.d.HandleKey(KeyEvent{Key: "s", Modifiers: ModCtrl}))
}

func TestUnknownControl(t *testing.T) {
	f := newFixture(t)
	f.open(t, "p1", "a.jpg")
	assert.False(t, f.d.HandleClick(ClickEvent{Target: TargetControl, Control: "fly"}))
}

func TestCustomKeymap(t *testing.T) {
	f := newFixture(t)
	km, err := NewKeymap(MergeKeybindings(map[string][]string{"next": {"Space"}}))
	require.NoError(t, err)
	d := NewDispatcher(f.viewer, f.reg, f.sink, WithKeymap(km))
	d.HandleClick(ClickEvent{Target: TargetGalleryItem, RecordID: "p1", ImageSource: "a.jpg"})

	assert.False(t, d.HandleKey(KeyEvent{Key: "ArrowRight"}))
	require.True(t, d.HandleKey(KeyEvent{Key: "Space"}))
	assert.Equal(t, 1, f.viewer.Index())
}
