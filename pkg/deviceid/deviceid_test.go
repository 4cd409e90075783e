package deviceid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.GetOrCreate()
	require.NoError(t, err)
	second, err := store.GetOrCreate()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "dvc_"))
}

func TestGetOrCreateSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	first, err := store.GetOrCreate()
	require.NoError(t, err)

	// A new Store over the same path models a process restart.
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	second, err := reopened.GetOrCreate()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDistinctDirsGetDistinctIDs(t *testing.T) {
	a, err := NewStore(t.TempDir())
	require.NoError(t, err)
	b, err := NewStore(t.TempDir())
	require.NoError(t, err)

	idA, err := a.GetOrCreate()
	require.NoError(t, err)
	idB, err := b.GetOrCreate()
	require.NoError(t, err)

	assert.NotEqual(t, idA, idB)
}
