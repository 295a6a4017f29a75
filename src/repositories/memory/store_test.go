package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory/src/models"
	"inventory/src/repositories"
	"inventory/src/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAsset(t *testing.T, r repositories.Repositories, label string) *models.Asset {
	t.Helper()
	asset := &models.Asset{Label: label}
	require.NoError(t, r.Assets.Create(context.Background(), asset))
	return asset
}

func TestRunInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("should commit when the function succeeds", func(t *testing.T) {
		store := memory.NewStore()
		var id int
		err := store.RunInTx(ctx, func(r repositories.Repositories) error {
			id = newAsset(t, r, "Laptop").ID
			return nil
		})
		require.NoError(t, err)

		asset, err := store.Repos().Assets.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.AssetStatusInStock, asset.Status)
	})

	t.Run("should roll back every write when the function fails", func(t *testing.T) {
		store := memory.NewStore()
		existing := newAsset(t, store.Repos(), "Phone")
		boom := errors.New("boom")

		err := store.RunInTx(ctx, func(r repositories.Repositories) error {
			require.NoError(t, r.Assets.UpdateStatus(ctx, existing.ID, models.AssetStatusRepair))
			newAsset(t, r, "Ghost")
			return boom
		})
		assert.ErrorIs(t, err, boom)

		asset, err := store.Repos().Assets.GetByID(ctx, existing.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AssetStatusInStock, asset.Status)
		_, total, err := store.Repos().Assets.List(ctx, models.AssetFilter{IncludeRetired: true})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("should refuse a cancelled context", func(t *testing.T) {
		store := memory.NewStore()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		called := false
		err := store.RunInTx(cancelled, func(repositories.Repositories) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestAssignments(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := memory.NewStore().WithClock(func() time.Time { return now })
	r := store.Repos()
	asset := newAsset(t, r, "Laptop")

	email := "ama@x.org"
	first := &models.Assignment{AssetID: asset.ID, AssigneeName: "Ama", AssigneeEmail: &email, AssignedAt: now}
	require.NoError(t, r.Assignments.Create(ctx, first))

	t.Run("should allow one active assignment per asset", func(t *testing.T) {
		err := r.Assignments.Create(ctx, &models.Assignment{AssetID: asset.ID, AssigneeName: "Kofi", AssignedAt: now})
		assert.ErrorIs(t, err, repositories.ErrConflict)
	})

	t.Run("should find the active and last assignment", func(t *testing.T) {
		active, err := r.Assignments.GetActiveByAssetID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, active.ID)

		require.NoError(t, r.Assignments.Close(ctx, first.ID, now.Add(time.Hour)))
		_, err = r.Assignments.GetActiveByAssetID(ctx, asset.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		last, err := r.Assignments.GetLastByAssetID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, last.ID)
		assert.False(t, last.Active())
	})

	t.Run("should match people by email before name", func(t *testing.T) {
		upper := "AMA@X.ORG"
		n, err := r.Assignments.Rename(ctx, models.AssigneeMatch{Name: "ignored", Email: &upper}, "Ama B", &email)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = r.Assignments.CountActive(ctx, models.AssigneeMatch{Name: "Ama B"})
		require.NoError(t, err)
		assert.Zero(t, n, "rows with an email are not matched by name")
	})

	t.Run("should delete closed rows only", func(t *testing.T) {
		second := &models.Assignment{AssetID: asset.ID, AssigneeName: "Ama B", AssigneeEmail: &email, AssignedAt: now.Add(2 * time.Hour)}
		require.NoError(t, r.Assignments.Create(ctx, second))

		n, err := r.Assignments.DeleteClosed(ctx, models.AssigneeMatch{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		rows, err := r.Assignments.ListByAssetID(ctx, asset.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, second.ID, rows[0].ID)
	})
}

func TestCascades(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := store.Repos()

	category := &models.AssetCategory{Name: "Laptops"}
	require.NoError(t, r.Categories.Create(ctx, category))
	assert.ErrorIs(t, r.Categories.Create(ctx, &models.AssetCategory{Name: "Laptops"}), repositories.ErrConflict)

	asset := &models.Asset{Label: "Laptop", CategoryID: &category.ID}
	require.NoError(t, r.Assets.Create(ctx, asset))
	require.NoError(t, r.Events.Create(ctx, &models.LifecycleEvent{AssetID: asset.ID, EventType: models.EventTypeCreated, EventAt: time.Now()}))
	require.NoError(t, r.Incidents.Create(ctx, &models.Incident{AssetID: asset.ID, IncidentType: models.IncidentLoss, Severity: models.SeverityLow, Description: "gone", ReportedBy: "me"}))

	t.Run("should null the category of its assets", func(t *testing.T) {
		require.NoError(t, r.Categories.Delete(ctx, category.ID))
		got, err := r.Assets.GetByID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)
	})

	t.Run("should drop dependents with the asset", func(t *testing.T) {
		require.NoError(t, r.Assets.Delete(ctx, asset.ID))

		events, err := r.Events.ListByAssetID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Empty(t, events)
		incidents, err := r.Incidents.List(ctx, models.IncidentFilter{AssetID: &asset.ID})
		require.NoError(t, err)
		assert.Empty(t, incidents)
		assert.ErrorIs(t, r.Assets.Delete(ctx, asset.ID), repositories.ErrNotFound)
	})
}

func TestQRSlugUnique(t *testing.T) {
	ctx := context.Background()
	r := memory.NewStore().Repos()
	a := newAsset(t, r, "A")
	b := newAsset(t, r, "B")

	require.NoError(t, r.Assets.SetQRSlug(ctx, a.ID, "asset/1"))
	require.NoError(t, r.Assets.SetQRSlug(ctx, a.ID, "asset/1"))
	assert.ErrorIs(t, r.Assets.SetQRSlug(ctx, b.ID, "asset/1"), repositories.ErrConflict)
}
