package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutGetDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	body := "scanned receipt"
	require.NoError(t, store.Put(ctx, "requests/r-1/receipt.pdf", strings.NewReader(body), int64(len(body)), "application/pdf"))

	rc, err := store.Get(ctx, "requests/r-1/receipt.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, body, string(data))

	require.NoError(t, store.Delete(ctx, "requests/r-1/receipt.pdf"))
	_, err = store.Get(ctx, "requests/r-1/receipt.pdf")
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), "../../etc/passwd", strings.NewReader("x"), 1, "text/plain")
	require.Error(t, err)
}
