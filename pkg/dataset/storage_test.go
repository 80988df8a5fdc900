package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/PranavZagade/Lumora/pkg/apperrors"
)

func newTestStorage(t *testing.T, ttl time.Duration) *Storage {
	t.Helper()
	storage, err := NewStorage(t.TempDir(), ttl, zaptest.NewLogger(t))
	require.NoError(t, err)
	return storage
}

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "-")
}

func TestStorage_SaveAndReadFile(t *testing.T) {
	storage := newTestStorage(t, time.Hour)

	path, err := storage.SaveFile("abc123", "movies.csv", []byte("title,rating\nInception,8.8\n"))
	require.NoError(t, err)
	assert.FileExists(t, path)

	got, err := storage.FilePath("abc123", "movies.csv")
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestStorage_SaveFileStripsPathTraversal(t *testing.T) {
	storage := newTestStorage(t, time.Hour)

	path, err := storage.SaveFile("abc123", "../../etc/passwd", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "passwd", filepath.Base(path))
	assert.Contains(t, path, filepath.Join("abc123", "passwd"))
}

func TestStorage_JSONRoundTrip(t *testing.T) {
	storage := newTestStorage(t, time.Hour)

	in := map[string]string{"genre": "category"}
	require.NoError(t, storage.SaveJSON("abc123", "mappings", in))

	var out map[string]string
	require.NoError(t, storage.ReadJSON("abc123", "mappings", &out))
	assert.Equal(t, in, out)
}

func TestStorage_MissingSession(t *testing.T) {
	storage := newTestStorage(t, time.Hour)

	_, err := storage.FilePath("nope", "movies.csv")
	assert.ErrorIs(t, err, apperrors.ErrDatasetNotFound)

	var out map[string]string
	err = storage.ReadJSON("nope", "mappings", &out)
	assert.ErrorIs(t, err, apperrors.ErrDatasetNotFound)
}

func TestStorage_MissingDocumentInLiveSession(t *testing.T) {
	storage := newTestStorage(t, time.Hour)
	_, err := storage.SaveFile("abc123", "movies.csv", []byte("x"))
	require.NoError(t, err)

	var out map[string]string
	err = storage.ReadJSON("abc123", "mappings", &out)
	assert.ErrorIs(t, err, apperrors.ErrDatasetNotFound)
}

func TestStorage_ExpiredSession(t *testing.T) {
	storage := newTestStorage(t, time.Hour)
	_, err := storage.SaveFile("abc123", "movies.csv", []byte("x"))
	require.NoError(t, err)

	storage.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = storage.FilePath("abc123", "movies.csv")
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)

	var out map[string]string
	err = storage.ReadJSON("abc123", "profile", &out)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestStorage_DeleteSession(t *testing.T) {
	storage := newTestStorage(t, time.Hour)
	_, err := storage.SaveFile("abc123", "movies.csv", []byte("x"))
	require.NoError(t, err)

	deleted, err := storage.DeleteSession("abc123")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = storage.DeleteSession("abc123")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStorage_CleanupExpired(t *testing.T) {
	storage := newTestStorage(t, time.Hour)
	_, err := storage.SaveFile("live", "a.csv", []byte("x"))
	require.NoError(t, err)
	_, err = storage.SaveFile("stale", "b.csv", []byte("x"))
	require.NoError(t, err)

	// Corrupt metadata counts as unusable and gets swept too.
	require.NoError(t, os.MkdirAll(filepath.Join(storage.baseDir, "corrupt"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(storage.baseDir, "corrupt", "metadata.json"), []byte("{"), 0o644))

	rewriteExpiry(t, storage, "stale", time.Now().Add(-time.Minute))

	removed, err := storage.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = storage.FilePath("live", "a.csv")
	assert.NoError(t, err)
	_, err = storage.FilePath("stale", "b.csv")
	assert.ErrorIs(t, err, apperrors.ErrDatasetNotFound)
}

func rewriteExpiry(t *testing.T, storage *Storage, datasetID string, expiresAt time.Time) {
	t.Helper()
	meta := sessionMetadata{
		CreatedAt: expiresAt.Add(-time.Hour).UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(storage.baseDir, datasetID, metadataFile), data, 0o644))
}
