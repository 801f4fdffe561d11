package metadata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gymkeeper/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*Repository, func() error) {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), db.Close
}

func TestLookup_Missing(t *testing.T) {
	r, _ := newRepo(t)

	v, ok, err := r.Lookup(context.Background(), KeySessionToken)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestPut_ReplacesValue(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, KeySessionToken, "eyJhbGciOi.old.sig"))
	require.NoError(t, r.Put(ctx, KeySessionToken, "eyJhbGciOi.new.sig"))

	v, ok, err := r.Lookup(ctx, KeySessionToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "eyJhbGciOi.new.sig", v)
}

func TestRemove_IsIdempotent(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, KeySessionToken, "t"))
	require.NoError(t, r.Remove(ctx, KeySessionToken))
	require.NoError(t, r.Remove(ctx, KeySessionToken))

	_, ok, err := r.Lookup(ctx, KeySessionToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClosedDB_ErrorsNameTheKey(t *testing.T) {
	r, closeDB := newRepo(t)
	ctx := context.Background()
	require.NoError(t, closeDB())

	_, _, err := r.Lookup(ctx, KeySessionToken)
	require.ErrorContains(t, err, "lookup session_token")
	require.ErrorContains(t, r.Put(ctx, KeySessionToken, "v"), "put session_token")
	require.ErrorContains(t, r.Remove(ctx, KeySessionToken), "remove session_token")
}
