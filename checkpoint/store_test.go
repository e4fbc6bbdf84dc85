package checkpoint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/djdv/go-uncompute"
	"github.com/djdv/go-uncompute/meter"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open("checkpoints", InMemory())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

// counting returns a recipe producing value and
// a pointer to the number of times it ran.
func counting[T any](value T) (uncompute.Recipe[T], *int) {
	var runs int
	return func() (T, error) {
		runs++
		return value, nil
	}, &runs
}

func TestRecipeCheckpoints(t *testing.T) {
	t.Parallel()
	var (
		store          = openMemory(t)
		compute, runs  = counting([]byte("expensive"))
		space          = uncompute.NewSpace(uncompute.WithCounter(new(meter.Manual)))
		recipe         = Recipe(store, []byte("value"), Bytes{}, compute)
		handle, errNew = uncompute.NewMaterialized(space, recipe)
	)
	require.NoError(t, errNew)
	require.Equal(t, 1, *runs)

	require.NoError(t, handle.Evict())
	value, err := handle.Get()
	require.NoError(t, err)
	assert.Equal(t, []byte("expensive"), value)
	assert.Equal(t, 1, *runs, "rematerialization should read the checkpoint")

	require.NoError(t, store.Forget([]byte("value")))
	require.NoError(t, handle.Evict())
	_, err = handle.Get()
	require.NoError(t, err)
	assert.Equal(t, 2, *runs, "forgotten checkpoint should be recomputed")
}

func TestPersistsAcrossOpen(t *testing.T) {
	t.Parallel()
	var (
		dir           = t.TempDir()
		key           = []byte("greeting")
		codec         = Proto[*wrapperspb.StringValue]{New: func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }}
		compute, runs = counting(wrapperspb.String("hello"))
	)
	store, err := Open(dir)
	require.NoError(t, err)
	_, err = Recipe(store, key, codec, compute)()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()
	got, err := Recipe(store, key, codec, compute)()
	require.NoError(t, err)
	assert.True(t, proto.Equal(wrapperspb.String("hello"), got))
	assert.Equal(t, 1, *runs)
}

func TestUndecodableCheckpoint(t *testing.T) {
	t.Parallel()
	var (
		store         = openMemory(t)
		key           = []byte("corrupt")
		codec         = Proto[*wrapperspb.StringValue]{New: func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }}
		compute, runs = counting(wrapperspb.String("fresh"))
	)
	require.NoError(t, store.save(key, []byte{0xff, 0xff, 0xff}))
	got, err := Recipe(store, key, codec, compute)()
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.GetValue())
	assert.Equal(t, 1, *runs)
	data, found, err := store.load(key)
	require.NoError(t, err)
	require.True(t, found)
	decoded, err := codec.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "fresh", decoded.GetValue())
}

func TestComputeFailure(t *testing.T) {
	t.Parallel()
	var (
		store = openMemory(t)
		cause = errors.New("upstream unavailable")
		key   = []byte("failing")
	)
	_, err := Recipe(store, key, Bytes{}, func() ([]byte, error) {
		return nil, cause
	})()
	require.ErrorIs(t, err, cause)
	_, found, err := store.load(key)
	require.NoError(t, err)
	assert.False(t, found, "failures must not be checkpointed")
}
