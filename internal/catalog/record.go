// Package catalog holds the program records shown by showcase and the sources
// they are fetched from.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrMissingRecord is returned when a requested identifier is not in the catalog.
	ErrMissingRecord = errors.New("catalog record not found")
	// ErrFetchFailure wraps any failure to reach or decode the data source.
	ErrFetchFailure = errors.New("catalog fetch failed")
)

// Record is one listed program. Records are immutable once loaded.
type Record struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	LongDescription string   `json:"long_description"`
	Icon            string   `json:"icon"`
	Screenshots     []string `json:"screenshots"`
	DownloadLink    string   `json:"download_link"`
}

// Records is an ordered catalog.
type Records []Record

// ByID returns the record with the given identifier.
func (rs Records) ByID(id string) (*Record, bool) {
	for i := range rs {
		if rs[i].ID == id {
			return &rs[i], true
		}
	}
	return nil, false
}

// IndexOf returns the position of src in the record's screenshots, or -1.
func (r *Record) IndexOf(src string) int {
	for i, s := range r.Screenshots {
		if s == src {
			return i
		}
	}
	return -1
}

// Validate reports records that can't be keyed.
func (r *Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record %q has no id", r.Title)
	}
	return nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ScreenshotFilename builds the file name a saved screenshot gets:
// the title with whitespace runs replaced by underscores, then
// "_screenshot_<index+1>.jpg".
func ScreenshotFilename(title string, index int) string {
	return fmt.Sprintf("%s_screenshot_%d.jpg", whitespaceRun.ReplaceAllString(title, "_"), index+1)
}
