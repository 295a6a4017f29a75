package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"inventory/src/models"
	"inventory/src/repositories"
)

type assetRepo struct {
	sc scope
}

func (r *assetRepo) Create(ctx context.Context, a *models.Asset) error {
	return r.sc.do(ctx, func(st *state) error {
		if a.Status == "" {
			a.Status = models.AssetStatusInStock
		}
		if a.QRSlug != nil && slugTaken(st, *a.QRSlug, 0) {
			return repositories.ErrConflict
		}
		if a.CategoryID != nil {
			if _, ok := st.categories[*a.CategoryID]; !ok {
				return repositories.ErrNotFound
			}
		}
		a.ID = st.next("assets")
		a.CreatedAt = r.sc.now()
		st.assets[a.ID] = *a
		return nil
	})
}

func (r *assetRepo) GetByID(ctx context.Context, id int) (*models.Asset, error) {
	var out models.Asset
	err := r.sc.do(ctx, func(st *state) error {
		a, ok := st.assets[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate needs no row lock: transactions already hold the store lock.
func (r *assetRepo) GetForUpdate(ctx context.Context, id int) (*models.Asset, error) {
	return r.GetByID(ctx, id)
}

func (r *assetRepo) UpdateStatus(ctx context.Context, id int, status models.AssetStatus) error {
	return r.sc.do(ctx, func(st *state) error {
		a, ok := st.assets[id]
		if !ok {
			return repositories.ErrNotFound
		}
		a.Status = status
		st.assets[id] = a
		return nil
	})
}

func (r *assetRepo) UpdateDetails(ctx context.Context, id int, d models.AssetDetails) error {
	return r.sc.do(ctx, func(st *state) error {
		a, ok := st.assets[id]
		if !ok {
			return repositories.ErrNotFound
		}
		if d.Label != nil {
			a.Label = *d.Label
		}
		if d.SerialNo != nil {
			a.SerialNo = trimmedOrNil(*d.SerialNo)
		}
		if d.ClearCategory {
			a.CategoryID = nil
		} else if d.CategoryID != nil {
			if _, ok := st.categories[*d.CategoryID]; !ok {
				return repositories.ErrNotFound
			}
			id := *d.CategoryID
			a.CategoryID = &id
		}
		if d.PurchasedAt != nil {
			t := *d.PurchasedAt
			a.PurchasedAt = &t
		}
		if d.PurchasePrice != nil {
			p := *d.PurchasePrice
			a.PurchasePrice = &p
		}
		if d.Supplier != nil {
			a.Supplier = trimmedOrNil(*d.Supplier)
		}
		if d.WarrantyEnd != nil {
			t := *d.WarrantyEnd
			a.WarrantyEnd = &t
		}
		if d.Notes != nil {
			a.Notes = trimmedOrNil(*d.Notes)
		}
		st.assets[id] = a
		return nil
	})
}

func (r *assetRepo) SetQRSlug(ctx context.Context, id int, slug string) error {
	return r.sc.do(ctx, func(st *state) error {
		a, ok := st.assets[id]
		if !ok {
			return repositories.ErrNotFound
		}
		if slugTaken(st, slug, id) {
			return repositories.ErrConflict
		}
		a.QRSlug = &slug
		st.assets[id] = a
		return nil
	})
}

// Delete cascades to the asset's assignments, events and incidents.
func (r *assetRepo) Delete(ctx context.Context, id int) error {
	return r.sc.do(ctx, func(st *state) error {
		if _, ok := st.assets[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(st.assets, id)
		for k, v := range st.assignments {
			if v.AssetID == id {
				delete(st.assignments, k)
			}
		}
		for k, v := range st.events {
			if v.AssetID == id {
				delete(st.events, k)
			}
		}
		for k, v := range st.incidents {
			if v.AssetID == id {
				delete(st.incidents, k)
			}
		}
		return nil
	})
}

func (r *assetRepo) GetOverview(ctx context.Context, id int) (*models.AssetOverview, error) {
	var out models.AssetOverview
	err := r.sc.do(ctx, func(st *state) error {
		a, ok := st.assets[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = overview(st, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *assetRepo) List(ctx context.Context, f models.AssetFilter) ([]models.AssetOverview, int, error) {
	var matched []models.AssetOverview
	err := r.sc.do(ctx, func(st *state) error {
		search := strings.ToLower(strings.TrimSpace(f.Search))
		for _, a := range st.assets {
			if f.Status != nil && a.Status != *f.Status {
				continue
			}
			if a.Status == models.AssetStatusRetired && !f.IncludeRetired && f.Status == nil {
				continue
			}
			if f.CategoryID != nil && (a.CategoryID == nil || *a.CategoryID != *f.CategoryID) {
				continue
			}
			o := overview(st, a)
			if search != "" && !overviewMatches(o, search) {
				continue
			}
			matched = append(matched, o)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return page(matched, f.Limit, f.Offset), len(matched), nil
}

func (r *assetRepo) Stats(ctx context.Context) (*models.InventoryStats, error) {
	stats := models.NewInventoryStats()
	err := r.sc.do(ctx, func(st *state) error {
		ids := make([]int, 0, len(st.assets))
		for id := range st.assets {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			a := st.assets[id]
			if a.Status == models.AssetStatusRetired {
				continue
			}
			name := ""
			if a.CategoryID != nil {
				name = st.categories[*a.CategoryID].Name
			}
			stats.Add(a.Status, a.CategoryID, name, 1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	stats.Sort()
	return stats, nil
}

func (r *assetRepo) ListWarrantyExpiring(ctx context.Context, from, to time.Time) ([]models.AssetOverview, error) {
	out := []models.AssetOverview{}
	err := r.sc.do(ctx, func(st *state) error {
		for _, a := range st.assets {
			if a.Status == models.AssetStatusRetired || a.WarrantyEnd == nil {
				continue
			}
			if a.WarrantyEnd.Before(from) || a.WarrantyEnd.After(to) {
				continue
			}
			out = append(out, overview(st, a))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WarrantyEnd.Equal(*out[j].WarrantyEnd) {
			return out[i].WarrantyEnd.Before(*out[j].WarrantyEnd)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func overview(st *state, a models.Asset) models.AssetOverview {
	o := models.AssetOverview{
		ID:          a.ID,
		Label:       a.Label,
		SerialNo:    a.SerialNo,
		Status:      a.Status,
		CategoryID:  a.CategoryID,
		WarrantyEnd: a.WarrantyEnd,
		CreatedAt:   a.CreatedAt,
	}
	if a.CategoryID != nil {
		if c, ok := st.categories[*a.CategoryID]; ok {
			name := c.Name
			o.CategoryName = &name
		}
	}
	if asg, ok := activeAssignment(st, a.ID); ok {
		name := asg.AssigneeName
		o.AssigneeName = &name
		o.AssigneeEmail = asg.AssigneeEmail
	}
	return o
}

func overviewMatches(o models.AssetOverview, search string) bool {
	fields := []*string{&o.Label, o.SerialNo, o.AssigneeName, o.AssigneeEmail}
	for _, f := range fields {
		if f != nil && strings.Contains(strings.ToLower(*f), search) {
			return true
		}
	}
	return false
}

func slugTaken(st *state, slug string, except int) bool {
	for id, a := range st.assets {
		if id != except && a.QRSlug != nil && *a.QRSlug == slug {
			return true
		}
	}
	return false
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
