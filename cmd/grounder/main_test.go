package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	grounder "github.com/poiesic/grounder"
	"github.com/poiesic/grounder/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "loud")
	})
}

func TestCollectDocumentFiles(t *testing.T) {
	dir := t.TempDir()

	write := func(relPath string) {
		path := filepath.Join(dir, relPath)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	}

	write("notes.txt")
	write("readme.MD")
	write("image.png")
	write("nested/deep/guide.md")
	write("nested/data.json")

	files, err := collectDocumentFiles(dir)
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	assert.ElementsMatch(t, []string{"notes.txt", "readme.MD", "guide.md"}, names)
}

func TestCollectDocumentFiles_MissingDirectory(t *testing.T) {
	_, err := collectDocumentFiles(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestIngestFiles_ContinuesPastFailures(t *testing.T) {
	engine, err := grounder.NewEngine("", grounder.WithInMemory(), grounder.WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	require.NoError(t, os.WriteFile(first, []byte("The first document has content."), 0o644))
	missing := filepath.Join(dir, "missing.txt")
	last := filepath.Join(dir, "last.txt")
	require.NoError(t, os.WriteFile(last, []byte("The last document also has content."), 0o644))

	results := ingestFiles(context.Background(), engine, []string{first, missing, last})
	require.Len(t, results, 3)

	assert.Equal(t, "first.txt", results[0].Name)
	assert.Empty(t, results[0].Error)
	assert.Greater(t, results[0].ChunksCreated, 0)

	// The unreadable file is reported, not fatal.
	assert.Equal(t, "missing.txt", results[1].Name)
	assert.NotEmpty(t, results[1].Error)
	assert.Zero(t, results[1].ChunksCreated)

	// Ingestion carried on after the failure.
	assert.Equal(t, "last.txt", results[2].Name)
	assert.Empty(t, results[2].Error)
	assert.Greater(t, results[2].ChunksCreated, 0)

	stats, err := engine.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DocumentCount)
}

func TestResponseEnvelope(t *testing.T) {
	t.Run("success omits error", func(t *testing.T) {
		data, err := json.Marshal(response{Success: true, Data: map[string]int{"chunks": 3}})
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"data":{"chunks":3}}`, string(data))
	})

	t.Run("failure omits data", func(t *testing.T) {
		data, err := json.Marshal(response{Success: false, Error: "document not found"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":false,"error":"document not found"}`, string(data))
	})
}
