package repositories_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"inventory/src/database"
	"inventory/src/models"
	"inventory/src/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a postgres container and applies the migrations. Set
// TEST_INTEGRATION to run these tests.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION is not set")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"docker.io/postgres:16-alpine",
		postgres.WithDatabase("inventory_test"),
		postgres.WithUsername("inventory"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	require.NoError(t, database.Migrate(db))
	return pool
}

func TestPostgresStore(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := repositories.NewStore(pool)
	r := store.Repos()

	category := &models.AssetCategory{Name: "Laptops"}
	require.NoError(t, r.Categories.Create(ctx, category))

	price := decimal.RequireFromString("1299.90")
	asset := &models.Asset{Label: "MacBook", CategoryID: &category.ID, PurchasePrice: &price}
	require.NoError(t, r.Assets.Create(ctx, asset))
	require.NotZero(t, asset.ID)

	t.Run("should round-trip money and defaults", func(t *testing.T) {
		got, err := r.Assets.GetByID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AssetStatusInStock, got.Status)
		require.NotNil(t, got.PurchasePrice)
		assert.Equal(t, "1299.90", got.PurchasePrice.StringFixed(2))
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("should map missing rows and duplicates", func(t *testing.T) {
		_, err := r.Assets.GetByID(ctx, 424242)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		err = r.Categories.Create(ctx, &models.AssetCategory{Name: "Laptops"})
		assert.ErrorIs(t, err, repositories.ErrConflict)
	})

	t.Run("should enforce one active assignment", func(t *testing.T) {
		first := &models.Assignment{AssetID: asset.ID, AssigneeName: "Ama", AssignedAt: time.Now()}
		require.NoError(t, r.Assignments.Create(ctx, first))
		err := r.Assignments.Create(ctx, &models.Assignment{AssetID: asset.ID, AssigneeName: "Kofi", AssignedAt: time.Now()})
		assert.ErrorIs(t, err, repositories.ErrConflict)

		require.NoError(t, r.Assignments.Close(ctx, first.ID, time.Now()))
		_, err = r.Assignments.GetActiveByAssetID(ctx, asset.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("should roll back a failed transaction", func(t *testing.T) {
		err := store.RunInTx(ctx, func(tx repositories.Repositories) error {
			if err := tx.Assets.UpdateStatus(ctx, asset.ID, models.AssetStatusRepair); err != nil {
				return err
			}
			return tx.Categories.Create(ctx, &models.AssetCategory{Name: "Laptops"})
		})
		assert.ErrorIs(t, err, repositories.ErrConflict)

		got, err := r.Assets.GetByID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AssetStatusInStock, got.Status)
	})

	t.Run("should serialize writers on the asset row", func(t *testing.T) {
		var wg sync.WaitGroup
		var mu sync.Mutex
		created := 0
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.RunInTx(ctx, func(tx repositories.Repositories) error {
					locked, err := tx.Assets.GetForUpdate(ctx, asset.ID)
					if err != nil {
						return err
					}
					if locked.Status != models.AssetStatusInStock {
						return nil
					}
					if err := tx.Assignments.Create(ctx, &models.Assignment{AssetID: asset.ID, AssigneeName: "Racer", AssignedAt: time.Now()}); err != nil {
						return err
					}
					mu.Lock()
					created++
					mu.Unlock()
					return tx.Assets.UpdateStatus(ctx, asset.ID, models.AssetStatusAssigned)
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		n, err := r.Assignments.CountActive(ctx, models.AssigneeMatch{Name: "Racer"})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("should null the category and cascade deletes", func(t *testing.T) {
		require.NoError(t, r.Events.Create(ctx, &models.LifecycleEvent{AssetID: asset.ID, EventType: models.EventTypeCreated, EventAt: time.Now()}))
		require.NoError(t, r.Categories.Delete(ctx, category.ID))

		got, err := r.Assets.GetByID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)

		require.NoError(t, r.Assets.Delete(ctx, asset.ID))
		events, err := r.Events.ListByAssetID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Empty(t, events)
		rows, err := r.Assignments.ListByAssetID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestPostgresListAndStats(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	r := repositories.NewStore(pool).Repos()

	for _, label := range []string{"Desk", "Chair", "Lamp"} {
		require.NoError(t, r.Assets.Create(ctx, &models.Asset{Label: label}))
	}
	retired := &models.Asset{Label: "Old desk", Status: models.AssetStatusRetired}
	require.NoError(t, r.Assets.Create(ctx, retired))

	list, total, err := r.Assets.List(ctx, models.AssetFilter{Search: "desk"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Desk", list[0].Label)

	_, total, err = r.Assets.List(ctx, models.AssetFilter{IncludeRetired: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	stats, err := r.Assets.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.ByStatus[models.AssetStatusInStock])
}
