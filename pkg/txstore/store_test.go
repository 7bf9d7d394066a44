package txstore

import (
	"testing"
	"time"

	"github.com/fystack/radixium/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_PutGet(t *testing.T) {
	store := openStore(t)

	record := Record{
		TxID:        "tx-1",
		Sender:      "rdx1qsp_alice",
		Status:      types.TxStatusPending,
		SubmittedAt: time.Now().UTC().Truncate(time.Second),
		Message:     "rent",
	}
	require.NoError(t, store.Put(record))

	loaded, err := store.Get("tx-1")
	require.NoError(t, err)
	assert.Equal(t, record, *loaded)
}

func TestStore_GetMissing(t *testing.T) {
	store := openStore(t)

	_, err := store.Get("absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateStatus(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Put(Record{TxID: "tx-2", Status: types.TxStatusPending}))

	require.NoError(t, store.UpdateStatus("tx-2", types.TxStatusConfirmed))

	loaded, err := store.Get("tx-2")
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusConfirmed, loaded.Status)

	assert.ErrorIs(t, store.UpdateStatus("absent", types.TxStatusFailed), ErrNotFound)
}

func TestStore_List(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Put(Record{TxID: "tx-a", Status: types.TxStatusConfirmed}))
	require.NoError(t, store.Put(Record{TxID: "tx-b", Status: types.TxStatusPending}))

	records, err := store.List()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
