package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilkadam/truesight/internal/config"
)

func TestLocal_PutGetDelete(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	payload := []byte("media bytes")
	require.NoError(t, l.Put(ctx, "tenant-a/clip.mp4", bytes.NewReader(payload), int64(len(payload)), "video/mp4"))

	rc, err := l.Get(ctx, "tenant-a/clip.mp4")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, l.Delete(ctx, "tenant-a/clip.mp4"))
	_, err = l.Get(ctx, "tenant-a/clip.mp4")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocal_PutOverwrites(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Put(ctx, "k", bytes.NewReader([]byte("v1")), 2, ""))
	require.NoError(t, l.Put(ctx, "k", bytes.NewReader([]byte("v2")), 2, ""))

	rc, err := l.Get(ctx, "k")
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, []byte("v2"), got)
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root)
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../../etc/passwd", "/abs/path", "a/../../b"} {
		assert.Error(t, l.Put(ctx, key, bytes.NewReader([]byte("x")), 1, ""), "key %q", key)
		_, err := l.Get(ctx, key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestLocal_DeleteMissingIsNoop(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, l.Delete(context.Background(), "never/existed"))
}

func TestLocal_NoPartialObjectsVisible(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root)
	require.NoError(t, err)

	require.NoError(t, l.Put(context.Background(), "a/b/c.bin", bytes.NewReader([]byte("ok")), 2, ""))

	// No temp files remain next to the published object.
	entries, err := os.ReadDir(filepath.Join(root, "a", "b"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "c.bin", entries[0].Name())
}

func TestLocal_RequiresRoot(t *testing.T) {
	_, err := NewLocal("")
	assert.Error(t, err)
}

func TestNew_SelectsBackend(t *testing.T) {
	b, err := New(config.StorageConfig{
		Backend: "local",
		Local:   config.LocalStorageConfig{Path: t.TempDir()},
	})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, b)

	_, err = New(config.StorageConfig{Backend: "gcs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}
