package services_test

import (
	"context"
	"sync"
	"testing"

	"inventory/src/models"
	"inventory/src/repositories"
	"inventory/src/repositories/memory"
	"inventory/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// racingStore makes the first category lookup miss and lets a competing
// writer insert the same name just before our own insert.
type racingStore struct {
	*memory.Store
	once sync.Once
}

type racingCategories struct {
	repositories.AssetCategoryRepository
	store *racingStore
}

func (s *racingStore) Repos() repositories.Repositories {
	r := s.Store.Repos()
	r.Categories = racingCategories{r.Categories, s}
	return r
}

func (c racingCategories) GetByName(ctx context.Context, name string) (*models.AssetCategory, error) {
	missed := false
	c.store.once.Do(func() { missed = true })
	if missed {
		return nil, repositories.ErrNotFound
	}
	return c.AssetCategoryRepository.GetByName(ctx, name)
}

func (c racingCategories) Create(ctx context.Context, category *models.AssetCategory) error {
	winner := &models.AssetCategory{Name: category.Name}
	if err := c.AssetCategoryRepository.Create(ctx, winner); err != nil {
		return err
	}
	return c.AssetCategoryRepository.Create(ctx, category)
}

func TestCategoryGetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("should create once and then reuse", func(t *testing.T) {
		env := newTestEnv(t)
		first, err := env.categories.GetOrCreate(ctx, "Monitors")
		require.NoError(t, err)
		second, err := env.categories.GetOrCreate(ctx, "  Monitors ")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("should read back the row after losing an insert race", func(t *testing.T) {
		store := &racingStore{Store: memory.NewStore()}
		categories := services.NewCategoryService(store)

		category, err := categories.GetOrCreate(ctx, "Docks")
		require.NoError(t, err)
		assert.Equal(t, "Docks", category.Name)

		all, err := store.Store.Repos().Categories.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, all[0].ID, category.ID)
	})

	t.Run("should converge under concurrent callers", func(t *testing.T) {
		env := newTestEnv(t)
		var wg sync.WaitGroup
		ids := make([]int, 10)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				category, err := env.categories.GetOrCreate(ctx, "Keyboards")
				if assert.NoError(t, err) {
					ids[i] = category.ID
				}
			}(i)
		}
		wg.Wait()
		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
	})

	t.Run("should reject empty names", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.categories.GetOrCreate(ctx, " ")
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})
}

func TestCategoryCreateAndDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	category, err := env.categories.Create(ctx, admin, "Headsets")
	require.NoError(t, err)

	t.Run("should refuse duplicates", func(t *testing.T) {
		_, err := env.categories.Create(ctx, admin, "Headsets")
		assert.ErrorIs(t, err, services.ErrConflict)
	})

	t.Run("should refuse non-admins", func(t *testing.T) {
		_, err := env.categories.Create(ctx, user, "Cables")
		assert.ErrorIs(t, err, services.ErrForbidden)
		assert.ErrorIs(t, env.categories.Delete(ctx, user, category.ID), services.ErrForbidden)
	})

	t.Run("should leave assets uncategorized on delete", func(t *testing.T) {
		asset, err := env.assets.Create(ctx, admin, services.AssetFields{Label: strPtr("Headset"), Category: strPtr("Headsets")})
		require.NoError(t, err)
		require.Equal(t, category.ID, *asset.CategoryID)

		require.NoError(t, env.categories.Delete(ctx, admin, category.ID))

		detail, err := env.assets.Get(ctx, asset.ID)
		require.NoError(t, err)
		assert.Nil(t, detail.Asset.CategoryID)
		assert.Nil(t, detail.Category)
	})

	t.Run("should report unknown categories", func(t *testing.T) {
		assert.ErrorIs(t, env.categories.Delete(ctx, admin, category.ID), services.ErrNotFound)
	})

	t.Run("should audit both changes", func(t *testing.T) {
		entries, err := env.audit.List(ctx, admin, models.AuditFilter{EntityType: models.EntityCategory})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, models.AuditCategoryDeleted, entries[0].Action)
		assert.Equal(t, models.AuditCategoryCreated, entries[1].Action)
	})
}
