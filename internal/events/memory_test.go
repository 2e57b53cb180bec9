package events

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreDeduplicates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	e := Event{
		Kind:               "deposit",
		CurrencyID:         "btc",
		Amount:             decimal.RequireFromString("0.1"),
		Hash:               "0xabc",
		DestinationAddress: "addr456",
		Status:             "processing",
		TransactionID:      "TID1",
	}

	inserted, err := store.Save(ctx, e)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = store.Save(ctx, e)
	require.NoError(t, err)
	require.False(t, inserted, "duplicate delivery should not be recorded twice")

	e.Status = "succeed"
	inserted, err = store.Save(ctx, e)
	require.NoError(t, err)
	require.True(t, inserted, "state change should be recorded")

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "succeed", recent[0].Status, "newest first")
	require.NotEmpty(t, recent[0].ID)
	require.False(t, recent[0].ReceivedAt.IsZero())

	limited, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}
