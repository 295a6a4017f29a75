package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"inventory/src/models"
	"inventory/src/repositories"
)

type assignmentRepo struct {
	sc scope
}

func activeAssignment(st *state, assetID int) (models.Assignment, bool) {
	for _, a := range st.assignments {
		if a.AssetID == assetID && a.ReturnedAt == nil {
			return a, true
		}
	}
	return models.Assignment{}, false
}

func (r *assignmentRepo) GetActiveByAssetID(ctx context.Context, assetID int) (*models.Assignment, error) {
	var out models.Assignment
	err := r.sc.do(ctx, func(st *state) error {
		a, ok := activeAssignment(st, assetID)
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

func (r *assignmentRepo) GetLastByAssetID(ctx context.Context, assetID int) (*models.Assignment, error) {
	list, err := r.ListByAssetID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, repositories.ErrNotFound
	}
	return &list[0], nil
}

func (r *assignmentRepo) Create(ctx context.Context, a *models.Assignment) error {
	return r.sc.do(ctx, func(st *state) error {
		if _, ok := st.assets[a.AssetID]; !ok {
			return repositories.ErrNotFound
		}
		if _, ok := activeAssignment(st, a.AssetID); ok {
			return repositories.ErrConflict
		}
		a.ID = st.next("assignments")
		a.ReturnedAt = nil
		st.assignments[a.ID] = *a
		return nil
	})
}

func (r *assignmentRepo) Close(ctx context.Context, id int, returnedAt time.Time) error {
	return r.sc.do(ctx, func(st *state) error {
		a, ok := st.assignments[id]
		if !ok || a.ReturnedAt != nil {
			return repositories.ErrNotFound
		}
		a.ReturnedAt = &returnedAt
		st.assignments[id] = a
		return nil
	})
}

func (r *assignmentRepo) ListByAssetID(ctx context.Context, assetID int) ([]models.Assignment, error) {
	out := []models.Assignment{}
	err := r.sc.do(ctx, func(st *state) error {
		for _, a := range st.assignments {
			if a.AssetID == assetID {
				out = append(out, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortAssignmentsNewestFirst(out)
	return out, nil
}

func (r *assignmentRepo) ListAssignees(ctx context.Context, f models.AssigneeFilter) ([]models.Assignee, int, error) {
	var rows []models.Assignment
	err := r.sc.do(ctx, func(st *state) error {
		for _, a := range st.assignments {
			rows = append(rows, a)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortAssignmentsNewestFirst(rows)

	search := strings.ToLower(strings.TrimSpace(f.Search))
	byKey := map[string]*models.Assignee{}
	matched := map[string]bool{}
	var order []string
	for _, a := range rows {
		key := assigneeKey(a)
		g, ok := byKey[key]
		if !ok {
			// rows are newest first, so the first row names the group
			g = &models.Assignee{Key: key, FullName: a.AssigneeName, Email: a.AssigneeEmail, LastAssigned: a.AssignedAt}
			byKey[key] = g
			order = append(order, key)
		}
		g.TotalCount++
		if a.ReturnedAt == nil {
			g.ActiveCount++
		}
		if search == "" || strings.Contains(strings.ToLower(a.AssigneeName), search) ||
			(a.AssigneeEmail != nil && strings.Contains(strings.ToLower(*a.AssigneeEmail), search)) {
			matched[key] = true
		}
	}

	out := []models.Assignee{}
	for _, key := range order {
		if matched[key] {
			out = append(out, *byKey[key])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LastAssigned.Equal(out[j].LastAssigned) {
			return out[i].LastAssigned.After(out[j].LastAssigned)
		}
		return out[i].Key < out[j].Key
	})
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *assignmentRepo) CountActive(ctx context.Context, m models.AssigneeMatch) (int, error) {
	count := 0
	err := r.sc.do(ctx, func(st *state) error {
		for _, a := range st.assignments {
			if a.ReturnedAt == nil && matches(a, m) {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *assignmentRepo) Rename(ctx context.Context, m models.AssigneeMatch, name string, email *string) (int, error) {
	count := 0
	err := r.sc.do(ctx, func(st *state) error {
		for id, a := range st.assignments {
			if matches(a, m) {
				a.AssigneeName = name
				a.AssigneeEmail = email
				st.assignments[id] = a
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *assignmentRepo) DeleteClosed(ctx context.Context, m models.AssigneeMatch) (int, error) {
	count := 0
	err := r.sc.do(ctx, func(st *state) error {
		for id, a := range st.assignments {
			if a.ReturnedAt != nil && matches(a, m) {
				delete(st.assignments, id)
				count++
			}
		}
		return nil
	})
	return count, err
}

func assigneeKey(a models.Assignment) string {
	if a.AssigneeEmail != nil {
		return strings.ToLower(*a.AssigneeEmail)
	}
	return "name:" + strings.ToLower(a.AssigneeName)
}

func matches(a models.Assignment, m models.AssigneeMatch) bool {
	if m.Email != nil {
		return a.AssigneeEmail != nil && strings.EqualFold(*a.AssigneeEmail, *m.Email)
	}
	return a.AssigneeEmail == nil && strings.EqualFold(a.AssigneeName, m.Name)
}

func sortAssignmentsNewestFirst(list []models.Assignment) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].AssignedAt.Equal(list[j].AssignedAt) {
			return list[i].AssignedAt.After(list[j].AssignedAt)
		}
		return list[i].ID > list[j].ID
	})
}
