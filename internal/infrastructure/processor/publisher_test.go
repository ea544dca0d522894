package processor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "video-uploader/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	}
}

func TestPublisher_Publish(t *testing.T) {
	work := t.TempDir()
	writeTree(t, work, map[string]string{
		"master.m3u8":             "#EXTM3U",
		"1080/playlist.m3u8":      "#EXTM3U",
		"1080/segment_000.ts":     "ts",
		"thumbnails_0.jpg":        "jpg",
		"thumbnails.vtt":          "WEBVTT",
		"preview":                 "p",
		".frames-123/frame_1.jpg": "skip",
	})
	store := newMemStore()

	pub := NewPublisher(store, 3, nil)
	require.NoError(t, pub.Publish(context.Background(), work, "videos/abc"))

	assert.Len(t, store.objects, 6)
	assert.Equal(t, "#EXTM3U", string(store.objects["videos/abc/1080/playlist.m3u8"]))
	assert.Equal(t, "application/vnd.apple.mpegurl", store.types["videos/abc/master.m3u8"])
	assert.Equal(t, "video/mp2t", store.types["videos/abc/1080/segment_000.ts"])
	assert.Equal(t, "text/vtt", store.types["videos/abc/thumbnails.vtt"])
	assert.Equal(t, "application/octet-stream", store.types["videos/abc/preview"])
	assert.NotContains(t, store.objects, "videos/abc/.frames-123/frame_1.jpg")

	require.NoError(t, pub.Verify(context.Background(), "videos/abc", []string{"master.m3u8", "1080/playlist.m3u8"}))
	err := pub.Verify(context.Background(), "videos/abc", []string{"720/playlist.m3u8"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindTransientIO))
}

func TestPublisher_FailureAborts(t *testing.T) {
	work := t.TempDir()
	writeTree(t, work, map[string]string{
		"master.m3u8":        "#EXTM3U",
		"720/playlist.m3u8":  "#EXTM3U",
		"720/segment_000.ts": "ts",
	})
	store := newMemStore()
	store.failKey = "videos/x/720/segment_000.ts"

	err := NewPublisher(store, 1, nil).Publish(context.Background(), work, "videos/x")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindTransientIO))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "videos/id/720/playlist.m3u8", ObjectKey("videos/id", filepath.Join("720", "playlist.m3u8")))
	assert.Equal(t, "videos/id/master.m3u8", ObjectKey("videos/id/", "master.m3u8"))
}

func TestPublisher_Retract(t *testing.T) {
	work := t.TempDir()
	writeTree(t, work, map[string]string{
		"master.m3u8":       "#EXTM3U",
		"720/playlist.m3u8": "#EXTM3U",
	})
	store := newMemStore()
	pub := NewPublisher(store, 2, nil)
	require.NoError(t, pub.Publish(context.Background(), work, "videos/r"))
	require.Len(t, store.objects, 2)

	require.NoError(t, pub.Retract(context.Background(), work, "videos/r"))
	assert.Empty(t, store.objects)
}
