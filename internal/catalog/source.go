package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultFetchTimeout = 10 * time.Second

// Source is a read-only catalog data source.
type Source interface {
	Fetch(ctx context.Context) (Records, error)
}

// FileSource reads the catalog from a JSON file on disk.
type FileSource struct {
	Path string
}

// Fetch reads and decodes the file.
func (fs *FileSource) Fetch(ctx context.Context) (Records, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	data, err := os.ReadFile(fs.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFetchFailure, fs.Path, err)
	}
	return Decode(data)
}

// BaseDir is the directory relative screenshot references resolve against.
func (fs *FileSource) BaseDir() string {
	return filepath.Dir(fs.Path)
}

// HTTPSource fetches the catalog with a GET request.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource creates an HTTPSource with a bounded client timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

// Fetch performs the request and decodes the body.
func (hs *HTTPSource) Fetch(ctx context.Context) (Records, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hs.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrFetchFailure, err)
	}
	client := hs.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetchFailure, hs.URL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetchFailure, err)
	}
	return Decode(data)
}

// BaseDir returns the URL prefix relative references resolve against.
func (hs *HTTPSource) BaseDir() string {
	if i := strings.LastIndex(hs.URL, "/"); i >= 0 {
		return hs.URL[:i]
	}
	return hs.URL
}

// Decode parses a JSON array of records. Malformed input counts as a fetch failure.
func Decode(data []byte) (Records, error) {
	var records Records
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: malformed catalog: %v", ErrFetchFailure, err)
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrFetchFailure, i, err)
		}
	}
	return records, nil
}

// IsRemote reports whether a location is an http(s) URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// NewSource picks a file or HTTP source for a location.
func NewSource(location string, timeout time.Duration) Source {
	if IsRemote(location) {
		return NewHTTPSource(location, timeout)
	}
	return &FileSource{Path: location}
}

// Fetch returns the records themselves, so a catalog already in memory can be
// searched like any other Source.
func (rs Records) Fetch(ctx context.Context) (Records, error) {
	return rs, nil
}

// Find fetches the catalog and returns the record with the given id.
// A blank id or an absent record yields ErrMissingRecord.
func Find(ctx context.Context, src Source, id string) (*Record, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrMissingRecord)
	}
	records, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := records.ByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRecord, id)
	}
	return rec, nil
}
