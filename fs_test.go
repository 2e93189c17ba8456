package asar

import (
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureFS(tb testing.TB) fs.FS {
	tb.Helper()
	fsys, err := openFixture(tb).FS()
	require.NoError(tb, err)
	return fsys
}

func TestFS(t *testing.T) {
	t.Parallel()

	err := fstest.TestFS(fixtureFS(t), "test1.txt", "folder1/script.py", "folder1/test_image.jpg")
	assert.NoError(t, err)
}

func TestFSReadFile(t *testing.T) {
	t.Parallel()

	fsys := fixtureFS(t)

	t.Run("file content", func(t *testing.T) {
		t.Parallel()
		content, err := fs.ReadFile(fsys, "folder1/script.py")
		require.NoError(t, err)
		assert.Equal(t, fixtureScript, content)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		_, err := fs.ReadFile(fsys, "folder1")
		assert.Error(t, err)
	})

	t.Run("invalid name", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"/test1.txt", "folder1/", "folder1/../test1.txt", ""} {
			_, err := fs.ReadFile(fsys, name)
			assert.ErrorIs(t, err, fs.ErrInvalid, "name %q", name)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()
		_, err := fs.ReadFile(fsys, "folder1/nope.py")
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestFSReadDir(t *testing.T) {
	t.Parallel()

	fsys := fixtureFS(t)

	t.Run("root", func(t *testing.T) {
		t.Parallel()
		entries, err := fs.ReadDir(fsys, ".")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "folder1", entries[0].Name())
		assert.True(t, entries[0].IsDir())
		assert.Equal(t, "test1.txt", entries[1].Name())
		assert.False(t, entries[1].IsDir())
	})

	t.Run("folder", func(t *testing.T) {
		t.Parallel()
		entries, err := fs.ReadDir(fsys, "folder1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "script.py", entries[0].Name())
		assert.Equal(t, "test_image.jpg", entries[1].Name())
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		_, err := fs.ReadDir(fsys, "test1.txt")
		assert.Error(t, err)
	})
}

func TestFSStat(t *testing.T) {
	t.Parallel()

	fsys := fixtureFS(t)

	info, err := fs.Stat(fsys, "folder1/test_image.jpg")
	require.NoError(t, err)
	assert.Equal(t, "test_image.jpg", info.Name())
	assert.Equal(t, int64(29968), info.Size())
	assert.Equal(t, fs.FileMode(0o444), info.Mode())
	assert.True(t, info.ModTime().IsZero())

	info, err = fs.Stat(fsys, "folder1")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, fs.ModeDir|0o555, info.Mode())
}

func TestFSOpenedFile(t *testing.T) {
	t.Parallel()

	fsys := fixtureFS(t)

	f, err := fsys.Open("test1.txt")
	require.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, fixtureText, content)

	ra, ok := f.(io.ReaderAt)
	require.True(t, ok)
	tail := make([]byte, 9)
	_, err = ra.ReadAt(tail, int64(len(fixtureText)-9))
	require.NoError(t, err)
	assert.Equal(t, []byte("test file"), tail)
}

func TestFSDirPaging(t *testing.T) {
	t.Parallel()

	fsys := fixtureFS(t)

	f, err := fsys.Open("folder1")
	require.NoError(t, err)
	defer f.Close()

	dir, ok := f.(fs.ReadDirFile)
	require.True(t, ok)

	first, err := dir.ReadDir(1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "script.py", first[0].Name())

	rest, err := dir.ReadDir(-1)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "test_image.jpg", rest[0].Name())

	_, err = dir.ReadDir(1)
	assert.ErrorIs(t, err, io.EOF)

	buf := make([]byte, 1)
	_, err = f.Read(buf)
	assert.Error(t, err)
}
