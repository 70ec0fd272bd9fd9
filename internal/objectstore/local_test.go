package objectstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutThenGetRoundTrips(t *testing.T) {
	store, err := newLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "transcripts/meeting-1.json", []byte("payload")))

	data, err := store.Get(ctx, "transcripts/meeting-1.json")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestLocalStorage_RejectsEscapingKey(t *testing.T) {
	store, err := newLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.resolve("../outside")
	assert.Error(t, err)
}

func TestDummyStorage_PutAlwaysSucceedsGetAlwaysFails(t *testing.T) {
	var store dummyStorage
	ctx := context.Background()
	assert.NoError(t, store.Put(ctx, "anything", []byte("x")))
	_, err := store.Get(ctx, "anything")
	assert.Error(t, err)
}
