package service

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showcase/internal/catalog"
	"showcase/internal/scan"
	"showcase/internal/store"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	data, err := EncodePNG(img)
	require.NoError(t, err)
	return data
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "svc.db"), func(string) {})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(st, scan.NewScanner(nil), func(string) {})
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestResolveReference(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"/data", "shots/a.png", filepath.Join("/data", "shots", "a.png")},
		{"/data", "/abs/a.png", "/abs/a.png"},
		{"/data", "https://cdn/x.png", "https://cdn/x.png"},
		{"https://host/data", "./shots/a.png", "https://host/data/shots/a.png"},
		{"https://host/data/", "a.png", "https://host/data/a.png"},
		{"", "a.png", "a.png"},
		{"/data", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveReference(tt.base, tt.ref), "base=%s ref=%s", tt.base, tt.ref)
	}
}

func TestImportFileMakesReferencesAbsolute(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "programs.json")
	writeJSON(t, path, catalog.Records{
		{ID: "p1", Title: "Paint", Icon: "icons/p1.png", Screenshots: []string{"shots/a.png", "https://cdn/b.png"}},
		{ID: "p2", Title: "Notes"},
	})

	added, total, err := svc.Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, total)

	rec, err := svc.Show("p1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "icons", "p1.png"), rec.Icon)
	assert.Equal(t, []string{filepath.Join(dir, "data", "shots", "a.png"), "https://cdn/b.png"}, rec.Screenshots)

	added, _, err = svc.Import(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, added, "reimport adds nothing new")
}

func TestImportHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(catalog.Records{{ID: "web", Title: "Web App", Screenshots: []string{"img/1.png"}}})
	}))
	defer srv.Close()

	svc := newTestService(t)
	_, total, err := svc.Import(context.Background(), srv.URL+"/data/programs.json")
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	rec, err := svc.Show("web")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/data/img/1.png", rec.Screenshots[0])
}

func TestImportErrors(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.Import(context.Background(), "")
	assert.Error(t, err)

	_, _, err = svc.Import(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, catalog.ErrFetchFailure)
}

func TestExportRoundTrip(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Store.Put(catalog.Record{ID: "b", Title: "Bee"}))
	require.NoError(t, svc.Store.Put(catalog.Record{ID: "a", Title: "Ay"}))

	out := filepath.Join(t.TempDir(), "export.json")
	n, err := svc.Export(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := (&catalog.FileSource{Path: out}).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID)
}

func TestShowAndRemove(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Store.Put(catalog.Record{ID: "p1"}))

	_, err := svc.Show("")
	assert.ErrorIs(t, err, catalog.ErrMissingRecord)

	require.NoError(t, svc.Remove("p1"))
	_, err = svc.Show("p1")
	assert.ErrorIs(t, err, catalog.ErrMissingRecord)
	assert.ErrorIs(t, svc.Remove("p1"), catalog.ErrMissingRecord)
}

func TestScanDirectory(t *testing.T) {
	svc := newTestService(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "my_app"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "my_app", "1.png"), pngBytes(t, 4, 4), 0644))

	added, total, err := svc.ScanDirectory(root)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, total)

	rec, err := svc.Show("my-app")
	require.NoError(t, err)
	assert.Equal(t, "My App", rec.Title)
	assert.Len(t, rec.Screenshots, 1)
}

func TestImageServiceLoadAndThumbnail(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.png"), pngBytes(t, 800, 400), 0644))

	is := NewImageService(dir, 0)
	info, img, err := is.Load(context.Background(), "big.png")
	require.NoError(t, err)
	assert.Equal(t, 800, info.Width)
	assert.Equal(t, 400, info.Height)

	thumb := is.Thumbnail(img, ThumbnailWidth, ThumbnailHeight)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), ThumbnailWidth)
	assert.LessOrEqual(t, thumb.Bounds().Dy(), ThumbnailHeight)

	_, _, err = is.Load(context.Background(), "nope.png")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.png"), []byte("not an image"), 0644))
	_, _, err = is.Load(context.Background(), "junk.png")
	assert.Error(t, err)
}

func TestImageServiceHTTP(t *testing.T) {
	data := pngBytes(t, 10, 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img/shot.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	is := NewImageService(srv.URL+"/img", 0)
	info, _, err := is.Load(context.Background(), "shot.png")
	require.NoError(t, err)
	assert.Equal(t, 10, info.Width)

	_, _, err = is.Load(context.Background(), "missing.png")
	assert.Error(t, err)
}

func TestDownload(t *testing.T) {
	src := t.TempDir()
	data := pngBytes(t, 3, 3)
	shot := filepath.Join(src, "s2.png")
	require.NoError(t, os.WriteFile(shot, data, 0644))

	svc := newTestService(t)
	require.NoError(t, svc.Store.Put(catalog.Record{ID: "p1", Title: "Paint Pro", Screenshots: []string{"unused.png", shot}}))

	out := t.TempDir()
	dl := NewDownloader(NewImageService("", 0), out, nil)

	path, err := svc.Download(context.Background(), dl, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "Paint_Pro_screenshot_2.jpg"), path)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = svc.Download(context.Background(), dl, "p1", 3)
	assert.Error(t, err)
	_, err = svc.Download(context.Background(), dl, "ghost", 1)
	assert.ErrorIs(t, err, catalog.ErrMissingRecord)
}

func TestDownloaderRejectsPathFilenames(t *testing.T) {
	dl := NewDownloader(NewImageService("", 0), t.TempDir(), nil)
	assert.Error(t, dl.Save("x.png", "../escape.jpg"))
	assert.Error(t, dl.Save("x.png", ""))
}

func TestDownloaderMissingSourceLeavesNoFile(t *testing.T) {
	out := t.TempDir()
	dl := NewDownloader(NewImageService("", 0), out, nil)
	assert.Error(t, dl.Save(filepath.Join(out, "absent.png"), "x.jpg"))
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpenSource(t *testing.T) {
	src, closer, err := OpenSource("https://example.com/programs.json", 0, nil)
	require.NoError(t, err)
	assert.IsType(t, &catalog.HTTPSource{}, src)
	assert.NoError(t, closer())

	src, _, err = OpenSource("data/programs.json", 0, nil)
	require.NoError(t, err)
	assert.IsType(t, &catalog.FileSource{}, src)

	dbPath := filepath.Join(t.TempDir(), "cat.db")
	src, closer, err = OpenSource(BoltPrefix+dbPath, 0, func(string) {})
	require.NoError(t, err)
	assert.IsType(t, &store.Store{}, src)
	assert.NoError(t, closer())

	_, _, err = OpenSource("", 0, nil)
	assert.ErrorIs(t, err, catalog.ErrFetchFailure)
}

func TestSourceBaseDir(t *testing.T) {
	assert.Equal(t, "https://h/data", SourceBaseDir("https://h/data/programs.json"))
	assert.Equal(t, filepath.Join("data"), SourceBaseDir(filepath.Join("data", "programs.json")))
	assert.Equal(t, "", SourceBaseDir(BoltPrefix+"/x.db"))
}

func TestViewManagerFilter(t *testing.T) {
	vm := NewViewManager(catalog.Records{
		{ID: "1", Title: "Paint Pro", Description: "Draw pictures"},
		{ID: "2", Title: "Notes", Description: "Write things down"},
		{ID: "3", Title: "Sketch", Description: "Quick drawings"},
	})
	assert.Equal(t, 3, vm.Count())

	vm.ApplyFilter("DRAW")
	assert.Equal(t, 2, vm.Count())
	rec, err := vm.ItemAt(1)
	require.NoError(t, err)
	assert.Equal(t, "3", rec.ID)
	_, err = vm.ItemAt(2)
	assert.Error(t, err)

	vm.SetRecords(append(vm.All(), catalog.Record{ID: "4", Title: "Drawer"}))
	assert.Equal(t, 3, vm.Count(), "filter re-applies to new records")

	vm.ApplyFilter("   ")
	assert.Equal(t, 4, vm.Count())
	assert.Empty(t, vm.Query())
}
