package repositories

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	domain "video-uploader/internal/domain/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagingCreateRejectsExistingDir(t *testing.T) {
	repo := NewStagingRepository(t.TempDir(), nil)

	require.NoError(t, repo.Create("v1"))
	assert.True(t, repo.OriginalExists("v1"))
	assert.ErrorIs(t, repo.Create("v1"), domain.ErrStagingExists)
}

func TestStagingWritePreview(t *testing.T) {
	repo := NewStagingRepository(t.TempDir(), nil)
	require.NoError(t, repo.Create("v1"))

	require.NoError(t, repo.WritePreview("v1", bytes.NewReader([]byte("preview-bytes")), 7))

	path, ok := repo.PreviewPath("v1")
	require.True(t, ok)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "preview", string(data))
}

func TestStagingWritePreviewRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	repo := NewStagingRepository(dir, nil)
	require.NoError(t, repo.Create("v1"))

	short := bytes.NewReader([]byte("abc"))
	err := repo.WritePreview("v1", short, 10)
	require.Error(t, err)

	broken := iotest.ErrReader(errors.New("connection reset"))
	require.Error(t, repo.WritePreview("v1", broken, 10))

	_, ok := repo.PreviewPath("v1")
	assert.False(t, ok)
	entries, err := os.ReadDir(filepath.Join(dir, "v1"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "original", entries[0].Name())
}

func TestStagingOpenOriginalTruncatesPastOffset(t *testing.T) {
	repo := NewStagingRepository(t.TempDir(), nil)
	require.NoError(t, repo.Create("v1"))
	require.NoError(t, os.WriteFile(repo.OriginalPath("v1"), []byte("0123456789"), 0644))

	w, err := repo.OpenOriginal("v1", 4)
	require.NoError(t, err)
	_, err = w.Write([]byte("ab"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(repo.OriginalPath("v1"))
	require.NoError(t, err)
	assert.Equal(t, "0123ab", string(data))
}

func TestStagingOpenOriginalMissing(t *testing.T) {
	repo := NewStagingRepository(t.TempDir(), nil)
	_, err := repo.OpenOriginal("nope", 0)
	assert.ErrorIs(t, err, domain.ErrStagingNotFound)
}

func TestStagingRemoveAndList(t *testing.T) {
	repo := NewStagingRepository(t.TempDir(), nil)
	require.NoError(t, repo.Create("a"))
	require.NoError(t, repo.Create("b"))

	entries, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, repo.Remove("a"))
	require.NoError(t, repo.Remove("a"))
	assert.False(t, repo.OriginalExists("a"))

	entries, err = repo.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].VideoID)
}
