package asar

import (
	"bytes"
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureJSON is the header the fixture tree serializes to: keys ascending,
// offsets cumulative across the whole walk.
const fixtureJSON = `{"files":{"folder1":{"files":{"script.py":{"size":55,"offset":"0"},"test_image.jpg":{"size":29968,"offset":"55"}}},"test1.txt":{"size":21,"offset":"30023"}}}`

func TestPack(t *testing.T) {
	t.Parallel()

	t.Run("creates the archive", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFixtureDir(t, dir)
		src, err := Open(dir)
		require.NoError(t, err)

		dest := filepath.Join(t.TempDir(), "app.asar")
		require.NoError(t, src.Pack(dest))

		arc, err := Open(dest)
		require.NoError(t, err)
		assert.Equal(t, 3, arc.Len())

		content, err := arc.ReadFile("test1.txt")
		require.NoError(t, err)
		assert.Equal(t, fixtureText, content)
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFixtureDir(t, dir)
		src, err := Open(dir)
		require.NoError(t, err)

		dest := filepath.Join(t.TempDir(), "nested", "deeper", "app.asar")
		require.NoError(t, src.Pack(dest))

		_, err = os.Stat(dest)
		assert.NoError(t, err)
	})

	t.Run("leaves only the archive behind", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFixtureDir(t, dir)
		src, err := Open(dir)
		require.NoError(t, err)

		destDir := t.TempDir()
		require.NoError(t, src.Pack(filepath.Join(destDir, "app.asar")))

		entries, err := os.ReadDir(destDir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "app.asar", entries[0].Name())
	})

	t.Run("failed pack leaves nothing behind", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFixtureDir(t, dir)
		src, err := Open(dir)
		require.NoError(t, err)

		destDir := t.TempDir()
		err = src.Pack(filepath.Join(destDir, "app.asar"), PackWithMaxFiles(1))
		require.ErrorIs(t, err, ErrTooManyFiles)

		entries, err := os.ReadDir(destDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestWriteTo(t *testing.T) {
	t.Parallel()

	t.Run("deterministic output", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFixtureDir(t, dir)
		src, err := Open(dir)
		require.NoError(t, err)

		var first, second bytes.Buffer
		n, err := src.WriteTo(&first)
		require.NoError(t, err)
		assert.Equal(t, int64(first.Len()), n)

		_, err = src.WriteTo(&second)
		require.NoError(t, err)
		assert.Equal(t, first.Bytes(), second.Bytes())
	})

	t.Run("archive layout", func(t *testing.T) {
		t.Parallel()
		data := packFixture(t)
		padded := (len(fixtureJSON) + 7) / 8 * 8

		require.GreaterOrEqual(t, len(data), 16+padded)
		assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(data[0:]))
		assert.Equal(t, uint32(padded+8), binary.LittleEndian.Uint32(data[4:]))
		assert.Equal(t, uint32(padded+4), binary.LittleEndian.Uint32(data[8:]))
		assert.Equal(t, uint32(len(fixtureJSON)), binary.LittleEndian.Uint32(data[12:]))

		assert.Equal(t, fixtureJSON, string(data[16:16+len(fixtureJSON)]))
		assert.Equal(t, make([]byte, padded-len(fixtureJSON)), data[16+len(fixtureJSON):16+padded])

		content := data[16+padded:]
		require.Len(t, content, 55+29968+21)
		assert.Equal(t, fixtureScript, content[:55])
		assert.Equal(t, fixtureImage, content[55:55+29968])
		assert.Equal(t, fixtureText, content[55+29968:])
	})

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()
		src, err := Open(t.TempDir())
		require.NoError(t, err)

		var buf bytes.Buffer
		_, err = src.WriteTo(&buf)
		require.NoError(t, err)

		arc, err := OpenBytes(buf.Bytes())
		require.NoError(t, err)
		assert.Zero(t, arc.Len())
		assert.Zero(t, arc.ContentSize())

		paths, err := arc.List()
		require.NoError(t, err)
		assert.Empty(t, paths)
	})
}

func TestPackMaxFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixtureDir(t, dir)

	tests := []struct {
		name     string
		maxFiles int
		wantErr  error
	}{
		{"below the file count", 2, ErrTooManyFiles},
		{"exactly the file count", 3, nil},
		{"default limit", 0, nil},
		{"negative disables the limit", -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src, err := Open(dir)
			require.NoError(t, err)

			err = src.Pack(filepath.Join(t.TempDir(), "out.asar"), PackWithMaxFiles(tt.maxFiles))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPackProgress(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixtureDir(t, dir)
	src, err := Open(dir)
	require.NoError(t, err)

	var events []ProgressEvent
	err = src.Pack(filepath.Join(t.TempDir(), "out.asar"), PackWithProgress(func(ev ProgressEvent) {
		events = append(events, ev)
	}))
	require.NoError(t, err)

	assert.Equal(t, []ProgressEvent{
		{Path: "folder1/script.py", Size: 55, Done: 1, Total: 3},
		{Path: "folder1/test_image.jpg", Size: 29968, Done: 2, Total: 3},
		{Path: "test1.txt", Size: 21, Done: 3, Total: 3},
	}, events)
}

func TestPackMutatedSource(t *testing.T) {
	t.Parallel()

	// mutateLast runs fn against the source directory while the first file in
	// walk order is reported packed, after all sizes were recorded.
	mutateLast := func(t *testing.T, fn func(dir string)) (string, error) {
		t.Helper()
		dir := t.TempDir()
		writeFixtureDir(t, dir)
		src, err := Open(dir)
		require.NoError(t, err)

		destDir := t.TempDir()
		err = src.Pack(filepath.Join(destDir, "app.asar"), PackWithProgress(func(ev ProgressEvent) {
			if ev.Path == "folder1/script.py" {
				fn(dir)
			}
		}))
		return destDir, err
	}

	t.Run("shrunk file fails the pack", func(t *testing.T) {
		t.Parallel()
		destDir, err := mutateLast(t, func(dir string) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "test1.txt"), []byte("gone"), 0o644))
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file shrank during packing")

		entries, err := os.ReadDir(destDir)
		require.NoError(t, err)
		assert.Empty(t, entries, "a failed pack must not leave files behind")
	})

	t.Run("removed file fails the pack", func(t *testing.T) {
		t.Parallel()
		destDir, err := mutateLast(t, func(dir string) {
			require.NoError(t, os.Remove(filepath.Join(dir, "test1.txt")))
		})
		assert.ErrorIs(t, err, fs.ErrNotExist)

		entries, err := os.ReadDir(destDir)
		require.NoError(t, err)
		assert.Empty(t, entries, "a failed pack must not leave files behind")
	})

	t.Run("grown file is cut at its walked size", func(t *testing.T) {
		t.Parallel()
		destDir, err := mutateLast(t, func(dir string) {
			grown := append([]byte(nil), fixtureText...)
			grown = append(grown, []byte(" and then some")...)
			require.NoError(t, os.WriteFile(filepath.Join(dir, "test1.txt"), grown, 0o644))
		})
		require.NoError(t, err)

		arc, err := Open(filepath.Join(destDir, "app.asar"))
		require.NoError(t, err)
		content, err := arc.ReadFile("test1.txt")
		require.NoError(t, err)
		assert.Equal(t, fixtureText, content)
	})
}

func TestPackSkipsIrregularFiles(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs elevated rights on windows")
	}

	dir := t.TempDir()
	writeFixtureDir(t, dir)
	require.NoError(t, os.Symlink(filepath.Join(dir, "test1.txt"), filepath.Join(dir, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "dangling.txt")))

	src, err := Open(dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = src.WriteTo(&buf)
	require.NoError(t, err)

	arc, err := OpenBytes(buf.Bytes())
	require.NoError(t, err)
	paths, err := arc.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"folder1/script.py", "folder1/test_image.jpg", "test1.txt"}, paths)
}
