package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showcase/internal/catalog"
)

// testEnv holds the temporary database and config paths for one test.
type testEnv struct {
	dir    string
	dbPath string
	cfg    string
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	return testEnv{
		dir:    dir,
		dbPath: filepath.Join(dir, "test_catalog.db"),
		cfg:    filepath.Join(dir, "showcase.yml"),
	}
}

// run builds a fresh root command and executes it against env's database.
func (e testEnv) run(args ...string) (string, string, error) {
	root := NewRootCmd(openServiceAndStore)
	return executeCommandC(root, append([]string{"--dbpath", e.dbPath, "--config", e.cfg}, args...)...)
}

// executeCommandC executes a cobra command and captures its output.
func executeCommandC(root *cobra.Command, args ...string) (string, string, error) {
	downloadDirFlag = ""

	actualStdout := new(bytes.Buffer)
	actualStderr := new(bytes.Buffer)
	root.SetOut(actualStdout)
	root.SetErr(actualStderr)
	root.SetArgs(args)

	err := root.Execute()

	return actualStdout.String(), actualStderr.String(), err
}

func writeCatalog(t *testing.T, path string, records catalog.Records) {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))))
}

func TestRootHelp(t *testing.T) {
	stdout, stderr, err := executeCommandC(NewRootCmd(openServiceAndStore), "--help")
	require.NoError(t, err, "stdout: %s, stderr: %s", stdout, stderr)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "showcase-cli [command]")
}

func TestImportListShowRemove(t *testing.T) {
	env := setupTestEnv(t)
	catalogPath := filepath.Join(env.dir, "data", "programs.json")
	writeCatalog(t, catalogPath, catalog.Records{
		{ID: "p1", Title: "Paint Pro", Description: "Draw", Screenshots: []string{"shots/1.png"}, DownloadLink: "https://example.com/paint.zip"},
		{ID: "p2", Title: "Notes", Description: "Write"},
	})

	t.Run("empty list", func(t *testing.T) {
		stdout, stderr, err := env.run("list")
		require.NoError(t, err, "stdout: %s, stderr: %s", stdout, stderr)
		assert.Contains(t, stdout, "No programs in the catalog.")
	})

	t.Run("import", func(t *testing.T) {
		stdout, stderr, err := env.run("import", catalogPath)
		require.NoError(t, err, "stdout: %s, stderr: %s", stdout, stderr)
		assert.Contains(t, stdout, "Imported 2 programs")
		assert.Contains(t, stdout, "(2 new)")
	})

	t.Run("list", func(t *testing.T) {
		stdout, _, err := env.run("list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "p1\tPaint Pro\t1 screenshots")
		assert.Contains(t, stdout, "p2\tNotes\t0 screenshots")
	})

	t.Run("show resolves screenshot paths", func(t *testing.T) {
		stdout, _, err := env.run("show", "p1")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Title:       Paint Pro")
		assert.Contains(t, stdout, "Download:    https://example.com/paint.zip")
		assert.Contains(t, stdout, "[1] "+filepath.Join(env.dir, "data", "shots", "1.png"))
	})

	t.Run("remove", func(t *testing.T) {
		stdout, _, err := env.run("remove", "p2")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Removed p2")

		_, _, err = env.run("show", "p2")
		assert.ErrorIs(t, err, catalog.ErrMissingRecord)
	})

	t.Run("remove unknown", func(t *testing.T) {
		_, _, err := env.run("remove", "ghost")
		assert.ErrorIs(t, err, catalog.ErrMissingRecord)
	})
}

func TestImportUsesConfiguredSource(t *testing.T) {
	env := setupTestEnv(t)
	catalogPath := filepath.Join(env.dir, "programs.json")
	writeCatalog(t, catalogPath, catalog.Records{{ID: "only", Title: "Only One"}})
	require.NoError(t, os.WriteFile(env.cfg, []byte("source: "+catalogPath+"\n"), 0644))

	stdout, stderr, err := env.run("import")
	require.NoError(t, err, "stdout: %s, stderr: %s", stdout, stderr)
	assert.Contains(t, stdout, "Imported 1 programs from "+catalogPath)
}

func TestImportMissingFile(t *testing.T) {
	env := setupTestEnv(t)
	_, _, err := env.run("import", filepath.Join(env.dir, "absent.json"))
	assert.ErrorIs(t, err, catalog.ErrFetchFailure)
}

func TestScanAndExport(t *testing.T) {
	env := setupTestEnv(t)
	root := filepath.Join(env.dir, "programs")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "image_tool"), 0755))
	writePNG(t, filepath.Join(root, "image_tool", "a.png"))

	stdout, stderr, err := env.run("scan", root)
	require.NoError(t, err, "stdout: %s, stderr: %s", stdout, stderr)
	assert.Contains(t, stdout, "Scanned 1 programs")

	out := filepath.Join(env.dir, "export.json")
	stdout, _, err = env.run("export", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Exported 1 programs")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	records, err := catalog.Decode(data)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "image-tool", records[0].ID)
	assert.Equal(t, "Image Tool", records[0].Title)
}

func TestDownloadCommand(t *testing.T) {
	env := setupTestEnv(t)
	shot := filepath.Join(env.dir, "shot.png")
	writePNG(t, shot)
	writeCatalog(t, filepath.Join(env.dir, "programs.json"), catalog.Records{
		{ID: "p1", Title: "Paint Pro", Screenshots: []string{shot}},
	})
	_, _, err := env.run("import", filepath.Join(env.dir, "programs.json"))
	require.NoError(t, err)

	outDir := filepath.Join(env.dir, "downloads")
	t.Run("saves screenshot", func(t *testing.T) {
		stdout, stderr, err := env.run("download", "p1", "1", "--dir", outDir)
		require.NoError(t, err, "stdout: %s, stderr: %s", stdout, stderr)
		want := filepath.Join(outDir, "Paint_Pro_screenshot_1.jpg")
		assert.Contains(t, stdout, "Saved "+want)
		assert.FileExists(t, want)
	})

	t.Run("out of range", func(t *testing.T) {
		_, _, err := env.run("download", "p1", "2", "--dir", outDir)
		assert.Error(t, err)
	})

	t.Run("not a number", func(t *testing.T) {
		_, _, err := env.run("download", "p1", "first", "--dir", outDir)
		assert.Error(t, err)
	})
}

func TestConfigCommands(t *testing.T) {
	env := setupTestEnv(t)

	stdout, stderr, err := env.run("config", "init")
	require.NoError(t, err, "stdout: %s, stderr: %s", stdout, stderr)
	assert.Contains(t, stdout, "Wrote "+env.cfg)
	assert.FileExists(t, env.cfg)

	stdout, _, err = env.run("config", "keys")
	require.NoError(t, err)
	assert.Contains(t, stdout, "close")
	assert.Contains(t, stdout, "Escape")
	assert.Contains(t, stdout, "Ctrl+s")
}

func TestInvalidConfigFails(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, os.WriteFile(env.cfg, []byte("keybindings:\n  next: [Escape]\n"), 0644))

	_, _, err := env.run("list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key conflict")
}
