package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetPreferenceMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetPreference(KeyLanguage)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetPreferenceLastWriterWins(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SetPreference(KeyLanguage, "fr"))
	require.NoError(t, store.SetPreference(KeyLanguage, "es"))

	got, err := store.GetPreference(KeyLanguage)
	require.NoError(t, err)
	assert.Equal(t, "es", got)
}

func TestDeletePreference(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SetPreference(KeyView, "reports"))

	require.NoError(t, store.DeletePreference(KeyView))

	_, err := store.GetPreference(KeyView)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenOnDiskPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.SetPreference(KeyLanguage, "pt-BR"))
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetPreference(KeyLanguage)
	require.NoError(t, err)
	assert.Equal(t, "pt-BR", got)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.migrate())

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count))
	assert.Equal(t, 1, count)
}
