// Package scan builds catalog records from a directory tree. Each immediate
// subdirectory of the root is one program; the images beneath it become its
// screenshots.
package scan

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"showcase/internal/catalog"
)

const (
	iconFileName        = "icon.png"
	descriptionFileName = "description.txt"
	downloadFileName    = "download.txt"
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// FileItem is an image file found during a scan.
type FileItem struct {
	Path string
	Info os.FileInfo
}

// NewFileItem creates a new FileItem
func NewFileItem(p string, info os.FileInfo) FileItem {
	return FileItem{
		Path: p,
		Info: info,
	}
}

// FileScannerImpl walks directories for image files.
type FileScannerImpl struct{}

// Run walks dir in the background and streams every non-empty image file.
// The channel is closed when the walk finishes.
func (fs *FileScannerImpl) Run(dir string, logger LoggerFunc) <-chan FileItem {
	out := make(chan FileItem, 64)
	go func() {
		defer close(out)
		err := filepath.Walk(dir, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				if logger != nil {
					logger(fmt.Sprintf("scan: skipping %s: %v", p, err))
				}
				if fi != nil && fi.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if fi.Mode().IsRegular() && fi.Size() > 0 && IsImage(p) {
				out <- NewFileItem(p, fi)
			}
			return nil
		})
		if err != nil && logger != nil {
			logger(fmt.Sprintf("scan: walk of %s failed: %v", dir, err))
		}
	}()
	return out
}

// IsImage checks if a file is an image
func IsImage(n string) bool {
	switch strings.ToLower(filepath.Ext(n)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	default:
		return false
	}
}

// Scanner turns program directories into catalog records.
type Scanner struct {
	Files  interface{ Run(string, LoggerFunc) <-chan FileItem }
	Logger LoggerFunc
}

// NewScanner creates a Scanner backed by the filesystem walker.
func NewScanner(logger LoggerFunc) *Scanner {
	return &Scanner{Files: &FileScannerImpl{}, Logger: logger}
}

func (s *Scanner) log(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger(fmt.Sprintf(format, args...))
	}
}

// Records scans root and returns one record per program directory, ordered by
// directory name. Directories without any screenshot are still listed.
func (s *Scanner) Records(root string) (catalog.Records, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", abs, err)
	}

	records := catalog.Records{}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		rec, err := s.Record(filepath.Join(abs, e.Name()))
		if err != nil {
			s.log("Skipping %s: %v", e.Name(), err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Record builds the record for a single program directory.
func (s *Scanner) Record(dir string) (catalog.Record, error) {
	name := filepath.Base(dir)
	rec := catalog.Record{
		ID:          Slug(name),
		Title:       Title(name),
		Screenshots: []string{},
	}
	if rec.ID == "" {
		return rec, fmt.Errorf("cannot derive an id from %q", name)
	}

	icon := filepath.Join(dir, iconFileName)
	if fi, err := os.Stat(icon); err == nil && fi.Mode().IsRegular() {
		rec.Icon = icon
	}

	if short, long, err := readDescription(filepath.Join(dir, descriptionFileName)); err == nil {
		rec.Description = short
		rec.LongDescription = long
	} else if !os.IsNotExist(err) {
		s.log("Reading description for %s: %v", name, err)
	}

	if link, err := os.ReadFile(filepath.Join(dir, downloadFileName)); err == nil {
		rec.DownloadLink = strings.TrimSpace(string(link))
	}

	for item := range s.Files.Run(dir, s.Logger) {
		if item.Path == rec.Icon {
			continue
		}
		rec.Screenshots = append(rec.Screenshots, item.Path)
	}
	sort.Strings(rec.Screenshots)
	s.log("Scanned %s: %d screenshots", rec.ID, len(rec.Screenshots))
	return rec, nil
}

// readDescription splits a description file into its first line and the rest.
func readDescription(path string) (short, long string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	var rest []string
	sc := bufio.NewScanner(f)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			short = strings.TrimSpace(line)
			first = false
			continue
		}
		rest = append(rest, line)
	}
	if err := sc.Err(); err != nil {
		return "", "", err
	}
	long = strings.TrimSpace(strings.Join(rest, "\n"))
	if long == "" {
		long = short
	}
	return short, long, nil
}

// Slug lowercases name and joins its words with dashes.
func Slug(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}

// Title turns a directory name like "paint_pro" into "Paint Pro".
func Title(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
