package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetUnknownReturnsIdle(t *testing.T) {
	store := NewMemoryStore()
	sess, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sess.UserID)
	assert.Equal(t, StateIdle, sess.State)
	assert.Empty(t, sess.Handle)
	assert.Empty(t, sess.Wallet)

	done, err := store.IsCompleted(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestMemoryStorePutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, &Session{UserID: 1, State: "awaiting_wallet", Handle: "milmotif_99"}))

	sess, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, State("awaiting_wallet"), sess.State)
	assert.Equal(t, "milmotif_99", sess.Handle)
	assert.False(t, sess.UpdatedAt.IsZero())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	in := &Session{UserID: 1, State: "awaiting_handle"}
	require.NoError(t, store.Put(ctx, in))
	in.State = "awaiting_wallet"

	out, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, State("awaiting_handle"), out.State)

	out.State = StateCompleted
	again, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, State("awaiting_handle"), again.State)
}

func TestMemoryStoreCompletedIsSticky(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.Put(ctx, &Session{
		UserID: 7, State: StateCompleted, Wallet: "0xABC", ClaimID: "claim-1", CompletedAt: &at,
	}))

	require.NoError(t, store.Put(ctx, &Session{UserID: 7, State: StateIdle}))
	require.NoError(t, store.Put(ctx, &Session{UserID: 7, State: StateCompleted, Wallet: "0xDEF"}))

	sess, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, sess.State)
	assert.Equal(t, "0xABC", sess.Wallet)
	assert.Equal(t, "claim-1", sess.ClaimID)
	require.NotNil(t, sess.CompletedAt)
	assert.True(t, at.Equal(*sess.CompletedAt))

	done, err := store.IsCompleted(ctx, 7)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestMemoryStorePutNil(t *testing.T) {
	assert.ErrorIs(t, NewMemoryStore().Put(context.Background(), nil), ErrNilSession)
}

func TestMemoryStoreStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, &Session{UserID: 1, State: "awaiting_wallet"}))
	require.NoError(t, store.Put(ctx, &Session{UserID: 2, State: StateCompleted}))
	require.NoError(t, store.Put(ctx, &Session{UserID: 3, State: StateCompleted}))

	st, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.Completed)
	assert.Equal(t, 1, st.ByState["awaiting_wallet"])
}

func TestMemoryStoreConcurrentUsers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	var wg sync.WaitGroup
	for i := int64(1); i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = store.Put(ctx, &Session{UserID: id, State: StateCompleted})
			_, _ = store.Get(ctx, id)
		}(i)
	}
	wg.Wait()

	st, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, st.Completed)
}
