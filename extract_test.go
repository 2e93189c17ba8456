package asar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		arc := openFixture(t)
		target := t.TempDir()
		require.NoError(t, arc.Extract(target))

		want := map[string][]byte{
			"test1.txt":              fixtureText,
			"folder1/script.py":      fixtureScript,
			"folder1/test_image.jpg": fixtureImage,
		}
		for name, content := range want {
			got, err := os.ReadFile(filepath.Join(target, filepath.FromSlash(name)))
			require.NoError(t, err, "file %s", name)
			assert.Equal(t, content, got, "file %s", name)
		}
	})

	t.Run("creates the target directory", func(t *testing.T) {
		t.Parallel()
		arc := openFixture(t)
		target := filepath.Join(t.TempDir(), "nested", "out")
		require.NoError(t, arc.Extract(target))

		_, err := os.Stat(filepath.Join(target, "test1.txt"))
		assert.NoError(t, err)
	})

	t.Run("overwrites existing files", func(t *testing.T) {
		t.Parallel()
		arc := openFixture(t)
		target := t.TempDir()
		stale := filepath.Join(target, "test1.txt")
		require.NoError(t, os.WriteFile(stale, []byte("something much longer than the archived content"), 0o644))

		require.NoError(t, arc.Extract(target))

		got, err := os.ReadFile(stale)
		require.NoError(t, err)
		assert.Equal(t, fixtureText, got)
	})

	t.Run("zero length file", func(t *testing.T) {
		t.Parallel()
		arc, err := OpenBytes(buildArchive(t, `{"files":{"empty.txt":{"size":0,"offset":"0"}}}`, nil))
		require.NoError(t, err)

		target := t.TempDir()
		require.NoError(t, arc.Extract(target))

		info, err := os.Stat(filepath.Join(target, "empty.txt"))
		require.NoError(t, err)
		assert.Zero(t, info.Size())
	})
}

func TestExtractProgress(t *testing.T) {
	t.Parallel()

	arc := openFixture(t)
	var events []ProgressEvent
	err := arc.Extract(t.TempDir(), ExtractWithProgress(func(ev ProgressEvent) {
		events = append(events, ev)
	}))
	require.NoError(t, err)

	assert.Equal(t, []ProgressEvent{
		{Path: "folder1/script.py", Size: 55, Done: 1, Total: 3},
		{Path: "folder1/test_image.jpg", Size: 29968, Done: 2, Total: 3},
		{Path: "test1.txt", Size: 21, Done: 3, Total: 3},
	}, events)
}
