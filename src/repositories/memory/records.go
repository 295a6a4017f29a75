package memory

import (
	"context"
	"sort"
	"time"

	"inventory/src/models"
	"inventory/src/repositories"
)

type categoryRepo struct {
	sc scope
}

func (r *categoryRepo) GetAll(ctx context.Context) ([]models.AssetCategory, error) {
	out := []models.AssetCategory{}
	err := r.sc.do(ctx, func(st *state) error {
		for _, c := range st.categories {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *categoryRepo) GetByID(ctx context.Context, id int) (*models.AssetCategory, error) {
	var out models.AssetCategory
	err := r.sc.do(ctx, func(st *state) error {
		c, ok := st.categories[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*models.AssetCategory, error) {
	var out models.AssetCategory
	err := r.sc.do(ctx, func(st *state) error {
		c, ok := categoryByName(st, name)
		if !ok {
			return repositories.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *categoryRepo) Create(ctx context.Context, ac *models.AssetCategory) error {
	return r.sc.do(ctx, func(st *state) error {
		if _, ok := categoryByName(st, ac.Name); ok {
			return repositories.ErrConflict
		}
		insertCategory(st, ac, r.sc.now())
		return nil
	})
}

func (r *categoryRepo) Delete(ctx context.Context, id int) error {
	return r.sc.do(ctx, func(st *state) error {
		if _, ok := st.categories[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(st.categories, id)
		for k, a := range st.assets {
			if a.CategoryID != nil && *a.CategoryID == id {
				a.CategoryID = nil
				st.assets[k] = a
			}
		}
		return nil
	})
}

func categoryByName(st *state, name string) (models.AssetCategory, bool) {
	for _, c := range st.categories {
		if c.Name == name {
			return c, true
		}
	}
	return models.AssetCategory{}, false
}

func insertCategory(st *state, ac *models.AssetCategory, now time.Time) {
	ac.ID = st.next("categories")
	ac.CreatedAt = now
	st.categories[ac.ID] = *ac
}

type eventRepo struct {
	sc scope
}

func (r *eventRepo) Create(ctx context.Context, e *models.LifecycleEvent) error {
	return r.sc.do(ctx, func(st *state) error {
		if _, ok := st.assets[e.AssetID]; !ok {
			return repositories.ErrNotFound
		}
		e.ID = st.next("events")
		st.events[e.ID] = *e
		return nil
	})
}

func (r *eventRepo) ListByAssetID(ctx context.Context, assetID int) ([]models.LifecycleEvent, error) {
	out := []models.LifecycleEvent{}
	err := r.sc.do(ctx, func(st *state) error {
		for _, e := range st.events {
			if e.AssetID == assetID {
				out = append(out, e)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EventAt.Equal(out[j].EventAt) {
			return out[i].EventAt.After(out[j].EventAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

type auditRepo struct {
	sc scope
}

func (r *auditRepo) Create(ctx context.Context, e *models.AuditEntry) error {
	return r.sc.do(ctx, func(st *state) error {
		e.ID = st.next("audit")
		e.CreatedAt = r.sc.now()
		st.audit[e.ID] = *e
		return nil
	})
}

func (r *auditRepo) List(ctx context.Context, f models.AuditFilter) ([]models.AuditEntry, error) {
	var out []models.AuditEntry
	err := r.sc.do(ctx, func(st *state) error {
		for _, e := range st.audit {
			if f.EntityType != "" && e.EntityType != f.EntityType {
				continue
			}
			if f.EntityID != "" && (e.EntityID == nil || *e.EntityID != f.EntityID) {
				continue
			}
			if f.Action != "" && e.Action != f.Action {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

type incidentRepo struct {
	sc scope
}

func (r *incidentRepo) Create(ctx context.Context, i *models.Incident) error {
	return r.sc.do(ctx, func(st *state) error {
		if _, ok := st.assets[i.AssetID]; !ok {
			return repositories.ErrNotFound
		}
		if i.Status == "" {
			i.Status = models.IncidentOpen
		}
		i.ID = st.next("incidents")
		i.CreatedAt = r.sc.now()
		i.UpdatedAt = i.CreatedAt
		st.incidents[i.ID] = *i
		return nil
	})
}

func (r *incidentRepo) GetByID(ctx context.Context, id int) (*models.Incident, error) {
	var out models.Incident
	err := r.sc.do(ctx, func(st *state) error {
		i, ok := st.incidents[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = withAsset(st, i)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *incidentRepo) List(ctx context.Context, f models.IncidentFilter) ([]models.Incident, error) {
	var out []models.Incident
	err := r.sc.do(ctx, func(st *state) error {
		for _, i := range st.incidents {
			if f.AssetID != nil && i.AssetID != *f.AssetID {
				continue
			}
			if f.Status != "" && i.Status != f.Status {
				continue
			}
			if f.Severity != "" && i.Severity != f.Severity {
				continue
			}
			out = append(out, withAsset(st, i))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *incidentRepo) UpdateStatus(ctx context.Context, id int, status models.IncidentStatus, resolvedAt *time.Time, at time.Time) error {
	return r.sc.do(ctx, func(st *state) error {
		i, ok := st.incidents[id]
		if !ok {
			return repositories.ErrNotFound
		}
		i.Status = status
		i.ResolvedAt = resolvedAt
		i.UpdatedAt = at
		st.incidents[id] = i
		return nil
	})
}

func (r *incidentRepo) Assign(ctx context.Context, id int, name, email *string, at time.Time) error {
	return r.sc.do(ctx, func(st *state) error {
		i, ok := st.incidents[id]
		if !ok {
			return repositories.ErrNotFound
		}
		i.AssignedTo = name
		i.AssignedToEmail = email
		i.UpdatedAt = at
		st.incidents[id] = i
		return nil
	})
}

func withAsset(st *state, i models.Incident) models.Incident {
	if a, ok := st.assets[i.AssetID]; ok {
		i.AssetLabel = a.Label
		i.AssetSerialNo = a.SerialNo
		if a.CategoryID != nil {
			if c, ok := st.categories[*a.CategoryID]; ok {
				name := c.Name
				i.CategoryName = &name
			}
		}
	}
	return i
}
