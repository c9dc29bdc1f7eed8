package ingest

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnscope/adapters/blobstore"
	"churnscope/domain/core"
)

func TestLoadCSV(t *testing.T) {
	files, err := blobstore.NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := files.Store(ctx, bytes.NewReader([]byte("a,b\n1,x\n2,y\n")), "data.csv")
	require.NoError(t, err)

	frame, err := NewLoader(files).Load(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 2, frame.NumRows())
	assert.Equal(t, []string{"a", "b"}, frame.Names())
}

func TestLoadUnsupportedExtension(t *testing.T) {
	files, err := blobstore.NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := files.Store(ctx, bytes.NewReader([]byte("hello")), "data.txt")
	require.NoError(t, err)

	_, err = NewLoader(files).Load(ctx, ref)
	assert.ErrorIs(t, err, core.ErrDataFormat)
}

func TestLoadMissingFile(t *testing.T) {
	files, err := blobstore.NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = NewLoader(files).Load(context.Background(), "nothere.csv")
	assert.ErrorIs(t, err, core.ErrDataFormat)
}
