// Package service holds the catalog operations shared by the GUI and the CLI.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"showcase/internal/catalog"
	"showcase/internal/store"
)

// BoltPrefix marks a location as a local catalog database ("bolt:/path/to.db").
const BoltPrefix = "bolt:"

// CatalogStore abstracts the catalog DB for easier testing and decoupling.
type CatalogStore interface {
	Put(rec catalog.Record) error
	PutAll(records catalog.Records) (int, error)
	Get(id string) (*catalog.Record, error)
	List() (catalog.Records, error)
	Delete(id string) error
	Close() error
}

// RecordScanner builds records from a directory of program folders.
type RecordScanner interface {
	Records(root string) (catalog.Records, error)
}

// Service is the main entry point for business logic.
type Service struct {
	Store        CatalogStore
	Scanner      RecordScanner
	Logger       func(string)
	FetchTimeout time.Duration
}

// NewService constructs a new Service.
func NewService(st CatalogStore, scanner RecordScanner, logger func(string)) *Service {
	return &Service{
		Store:        st,
		Scanner:      scanner,
		Logger:       logger,
		FetchTimeout: 10 * time.Second,
	}
}

func (s *Service) log(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger(fmt.Sprintf(format, args...))
	}
}

// Import fetches a catalog from a file or URL and stores every record.
// Relative image references are made absolute against the source location so
// the stored copy works on its own. It returns how many records were new and
// how many were imported in total.
func (s *Service) Import(ctx context.Context, location string) (added, total int, err error) {
	if location == "" {
		return 0, 0, errors.New("import location required")
	}
	if !catalog.IsRemote(location) {
		if location, err = filepath.Abs(location); err != nil {
			return 0, 0, err
		}
	}
	src := catalog.NewSource(location, s.FetchTimeout)
	records, err := src.Fetch(ctx)
	if err != nil {
		return 0, 0, err
	}
	if b, ok := src.(interface{ BaseDir() string }); ok {
		records = AbsolutizeRecords(records, b.BaseDir())
	}
	added, err = s.Store.PutAll(records)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to store imported records: %w", err)
	}
	s.log("Imported %d records from %s (%d new)", len(records), location, added)
	return added, len(records), nil
}

// AbsolutizeRecords returns copies of records with icon and screenshot
// references resolved against base.
func AbsolutizeRecords(records catalog.Records, base string) catalog.Records {
	out := make(catalog.Records, len(records))
	for i, rec := range records {
		rec.Icon = ResolveReference(base, rec.Icon)
		shots := make([]string, len(rec.Screenshots))
		for j, ref := range rec.Screenshots {
			shots[j] = ResolveReference(base, ref)
		}
		rec.Screenshots = shots
		out[i] = rec
	}
	return out
}

// ScanDirectory builds records from program folders under dir and stores them.
func (s *Service) ScanDirectory(dir string) (added, total int, err error) {
	if s.Scanner == nil {
		return 0, 0, errors.New("no scanner configured")
	}
	records, err := s.Scanner.Records(dir)
	if err != nil {
		return 0, 0, err
	}
	added, err = s.Store.PutAll(records)
	if err != nil {
		return 0, 0, err
	}
	s.log("Scanned %s: %d programs (%d new)", dir, len(records), added)
	return added, len(records), nil
}

// Export writes the stored catalog as JSON in the catalog file format.
func (s *Service) Export(path string) (int, error) {
	records, err := s.Store.List()
	if err != nil {
		return 0, err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return len(records), nil
}

// List returns all stored records in order.
func (s *Service) List() (catalog.Records, error) {
	return s.Store.List()
}

// Show returns a single record.
func (s *Service) Show(id string) (*catalog.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", catalog.ErrMissingRecord)
	}
	return s.Store.Get(id)
}

// Remove deletes a record.
func (s *Service) Remove(id string) error {
	if err := s.Store.Delete(id); err != nil {
		return err
	}
	s.log("Removed record %s", id)
	return nil
}

// Download saves screenshot n (1-based) of record id into d's directory.
func (s *Service) Download(ctx context.Context, d *Downloader, id string, n int) (string, error) {
	rec, err := s.Show(id)
	if err != nil {
		return "", err
	}
	if n < 1 || n > len(rec.Screenshots) {
		return "", fmt.Errorf("record %s has %d screenshots, %d is out of range", id, len(rec.Screenshots), n)
	}
	return d.SaveContext(ctx, rec.Screenshots[n-1], catalog.ScreenshotFilename(rec.Title, n-1))
}

// OpenSource returns the catalog source for a location. "bolt:<path>" opens a
// local store, which the caller must close via the returned closer.
func OpenSource(location string, timeout time.Duration, logger func(string)) (catalog.Source, func() error, error) {
	noop := func() error { return nil }
	if strings.HasPrefix(location, BoltPrefix) {
		st, err := store.Open(strings.TrimPrefix(location, BoltPrefix), store.LoggerFunc(logger))
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", catalog.ErrFetchFailure, err)
		}
		return st, st.Close, nil
	}
	if location == "" {
		return nil, noop, fmt.Errorf("%w: no catalog source configured", catalog.ErrFetchFailure)
	}
	return catalog.NewSource(location, timeout), noop, nil
}

// SourceBaseDir is the directory or URL prefix relative references from
// location resolve against. Stores hold absolute references and return "".
func SourceBaseDir(location string) string {
	switch {
	case location == "" || strings.HasPrefix(location, BoltPrefix):
		return ""
	case catalog.IsRemote(location):
		return (&catalog.HTTPSource{URL: location}).BaseDir()
	default:
		return filepath.Dir(location)
	}
}
