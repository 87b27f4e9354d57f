// Package history keeps the back/forward trail of pages visited in the
// catalog browser: the landing page and program detail pages.
package history

// Page identifies a screen. An empty RecordID is the landing page.
type Page struct {
	RecordID string
}

// Landing is the catalog overview page.
var Landing = Page{}

// IsLanding reports whether p is the catalog overview.
func (p Page) IsLanding() bool {
	return p.RecordID == ""
}

// Trail is a bounded browser-style history.
type Trail struct {
	pages    []Page
	cursor   int
	capacity int
}

// NewTrail creates a Trail keeping at most capacity pages. A capacity below 1
// keeps only the current page.
func NewTrail(capacity int) *Trail {
	if capacity < 1 {
		capacity = 1
	}
	return &Trail{cursor: -1, capacity: capacity}
}

// Visit records a new page. Visiting after going back drops the forward part
// of the trail. Revisiting the current page changes nothing.
func (t *Trail) Visit(p Page) {
	if t.cursor >= 0 && t.pages[t.cursor] == p {
		return
	}
	t.pages = append(t.pages[:t.cursor+1], p)
	if over := len(t.pages) - t.capacity; over > 0 {
		t.pages = t.pages[over:]
	}
	t.cursor = len(t.pages) - 1
}

// Current returns the page on screen.
func (t *Trail) Current() (Page, bool) {
	if t.cursor < 0 {
		return Page{}, false
	}
	return t.pages[t.cursor], true
}

// Back steps to the previous page.
func (t *Trail) Back() (Page, bool) {
	if t.cursor <= 0 {
		return Page{}, false
	}
	t.cursor--
	return t.pages[t.cursor], true
}

// Forward steps to the next page after a Back.
func (t *Trail) Forward() (Page, bool) {
	if t.cursor < 0 || t.cursor >= len(t.pages)-1 {
		return Page{}, false
	}
	t.cursor++
	return t.pages[t.cursor], true
}

func (t *Trail) CanBack() bool    { return t.cursor > 0 }
func (t *Trail) CanForward() bool { return t.cursor >= 0 && t.cursor < len(t.pages)-1 }

// Forget removes every visit to a record that no longer exists, keeping the
// cursor on the nearest earlier surviving page.
func (t *Trail) Forget(recordID string) {
	if recordID == "" || len(t.pages) == 0 {
		return
	}
	kept := make([]Page, 0, len(t.pages))
	cursor := -1
	for i, p := range t.pages {
		if p.RecordID != recordID {
			kept = append(kept, p)
		}
		if i == t.cursor {
			cursor = len(kept) - 1
		}
	}
	// Dropping a page can leave two identical neighbours; collapse them.
	collapsed := kept[:0]
	for i, p := range kept {
		if len(collapsed) > 0 && collapsed[len(collapsed)-1] == p {
			if i <= cursor {
				cursor--
			}
			continue
		}
		collapsed = append(collapsed, p)
	}
	t.pages = collapsed
	if len(t.pages) == 0 {
		t.cursor = -1
		return
	}
	if cursor < 0 {
		cursor = 0
	}
	t.cursor = cursor
}

func (t *Trail) Len() int { return len(t.pages) }
