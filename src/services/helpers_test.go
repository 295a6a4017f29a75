package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory/src/cache"
	"inventory/src/models"
	"inventory/src/repositories"
	"inventory/src/repositories/memory"
	"inventory/src/services"

	"github.com/stretchr/testify/require"
)

var (
	admin = models.Actor{ID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}
	user  = models.Actor{ID: "user-1", Email: "user@example.com", Role: models.RoleUser}
)

type testEnv struct {
	store      *memory.Store
	cards      cache.AssetCardCache
	categories *services.CategoryService
	assets     *services.AssetService
	lifecycle  *services.LifecycleService
	assignees  *services.AssigneeService
	incidents  *services.IncidentService
	audit      *services.AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, memory.NewStore())
}

func newTestEnvWithStore(t *testing.T, store *memory.Store) *testEnv {
	t.Helper()
	cards := cache.NewLRUCache(16, time.Minute)
	categories := services.NewCategoryService(store)
	return &testEnv{
		store:      store,
		cards:      cards,
		categories: categories,
		assets:     services.NewAssetService(store, categories, cards, "http://inventory.test/public", nil),
		lifecycle:  services.NewLifecycleService(store, cards, nil),
		assignees:  services.NewAssigneeService(store),
		incidents:  services.NewIncidentService(store, nil),
		audit:      services.NewAuditService(store),
	}
}

func strPtr(s string) *string {
	return &s
}

func (e *testEnv) createAsset(t *testing.T, label string) *models.Asset {
	t.Helper()
	asset, err := e.assets.Create(context.Background(), admin, services.AssetFields{Label: strPtr(label)})
	require.NoError(t, err)
	return asset
}

func (e *testEnv) status(t *testing.T, assetID int) models.AssetStatus {
	t.Helper()
	asset, err := e.store.Repos().Assets.GetByID(context.Background(), assetID)
	require.NoError(t, err)
	return asset.Status
}

func (e *testEnv) events(t *testing.T, assetID int) []models.LifecycleEvent {
	t.Helper()
	events, err := e.store.Repos().Events.ListByAssetID(context.Background(), assetID)
	require.NoError(t, err)
	return events
}

func (e *testEnv) assignments(t *testing.T, assetID int) []models.Assignment {
	t.Helper()
	assignments, err := e.store.Repos().Assignments.ListByAssetID(context.Background(), assetID)
	require.NoError(t, err)
	return assignments
}

func activeCount(assignments []models.Assignment) int {
	n := 0
	for _, a := range assignments {
		if a.Active() {
			n++
		}
	}
	return n
}

var errBoom = errors.New("boom")

// failingStore runs transactions on a memory store but fails every lifecycle
// event insert, to observe rollback.
type failingStore struct {
	*memory.Store
}

type failingEvents struct {
	repositories.LifecycleEventRepository
}

func (failingEvents) Create(context.Context, *models.LifecycleEvent) error {
	return errBoom
}

func (s failingStore) RunInTx(ctx context.Context, fn func(r repositories.Repositories) error) error {
	return s.Store.RunInTx(ctx, func(r repositories.Repositories) error {
		r.Events = failingEvents{r.Events}
		return fn(r)
	})
}
