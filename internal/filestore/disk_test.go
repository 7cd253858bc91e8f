package filestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskRoundTrip(t *testing.T) {
	store, err := NewDisk(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "a.docx", []byte("content")))

	data, err := store.Read(ctx, "a.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)

	exists, err := store.Exists(ctx, "a.docx")
	require.NoError(t, err)
	assert.True(t, exists)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.docx"}, names)

	require.NoError(t, store.Delete(ctx, "a.docx"))

	exists, err = store.Exists(ctx, "a.docx")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDiskMissingFile(t *testing.T) {
	store, err := NewDisk(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Read(ctx, "missing.docx")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, store.Delete(ctx, "missing.docx"), ErrNotFound)
}

func TestDiskFlattensPaths(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDisk(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "../../etc/evil.docx", []byte("x")))

	// the traversal components are stripped, the file lands in the uploads dir
	data, err := store.Read(ctx, "evil.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"evil.docx"}, names)
}
