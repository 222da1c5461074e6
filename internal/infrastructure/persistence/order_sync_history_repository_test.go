package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storebridge/backend/internal/domain/integration"
)

func TestGormOrderSyncHistoryRepository(t *testing.T) {
	db := setupSyncDB(t)
	repo := NewGormOrderSyncHistoryRepository(db)
	ctx := context.Background()

	t.Run("Find on missing order returns sentinel", func(t *testing.T) {
		_, err := repo.Find(ctx, 555)
		assert.ErrorIs(t, err, integration.ErrHistoryNotFound)
	})

	t.Run("Upsert keeps one row per order", func(t *testing.T) {
		first := &integration.OrderSyncHistory{
			OrderID:      150,
			Status:       integration.SyncStatusError,
			SyncType:     "automatic",
			ErrorMessage: "remote unavailable",
			LastSyncAt:   time.Now().UTC().Add(-time.Hour),
		}
		require.NoError(t, repo.Upsert(ctx, first))

		second := &integration.OrderSyncHistory{
			OrderID:       150,
			RemoteOrderID: 9001,
			Status:        integration.SyncStatusSuccess,
			SyncType:      "manual",
			LastSyncAt:    time.Now().UTC(),
		}
		require.NoError(t, repo.Upsert(ctx, second))

		found, err := repo.Find(ctx, 150)
		require.NoError(t, err)
		assert.Equal(t, int64(9001), found.RemoteOrderID)
		assert.Equal(t, integration.SyncStatusSuccess, found.Status)
		assert.Empty(t, found.ErrorMessage)

		histories, total, err := repo.List(ctx, "", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, histories, 1)
	})

	t.Run("List filters by status", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &integration.OrderSyncHistory{
			OrderID:      151,
			Status:       integration.SyncStatusError,
			ErrorMessage: "bad payload",
			LastSyncAt:   time.Now().UTC(),
		}))

		failed, total, err := repo.List(ctx, integration.SyncStatusError, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, failed, 1)
		assert.Equal(t, int64(151), failed[0].OrderID)
	})
}
