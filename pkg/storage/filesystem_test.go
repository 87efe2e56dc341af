package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutAndOpenSigned(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	store, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/api/v1/media/", signer)
	require.NoError(t, err)

	obj, err := store.Put(context.Background(), "gallery/2024/a.png", "image/png", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), obj.Size)
	require.True(t, strings.HasPrefix(obj.URL, "http://localhost:8080/api/v1/media/"))

	token := strings.TrimPrefix(obj.URL, "http://localhost:8080/api/v1/media/")
	file, key, err := store.OpenSigned(token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "gallery/2024/a.png", key)
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))

	require.NoError(t, store.Delete(context.Background(), key))
	_, _, err = store.OpenSigned(token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageKeepsKeysInsideBaseDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "", NewSignedURLSigner("secret", time.Hour))
	require.NoError(t, err)

	path, err := store.resolve("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))

	_, err = store.resolve("")
	assert.Error(t, err)
}
