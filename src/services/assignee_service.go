package services

import (
	"context"
	"fmt"
	"strings"

	"inventory/src/models"
	"inventory/src/repositories"
)

type AssigneeServiceI interface {
	List(ctx context.Context, actor models.Actor, filter models.AssigneeFilter) ([]models.Assignee, int, error)
	Rename(ctx context.Context, actor models.Actor, from models.AssigneeMatch, name string, email string) (int, error)
	Delete(ctx context.Context, actor models.Actor, who models.AssigneeMatch) (int, error)
}

// AssigneeService administers the denormalised assignee identity stored on
// assignment rows. None of its operations touch asset status or the timeline.
type AssigneeService struct {
	store repositories.Store
}

func NewAssigneeService(store repositories.Store) *AssigneeService {
	return &AssigneeService{store: store}
}

func (s *AssigneeService) List(ctx context.Context, actor models.Actor, filter models.AssigneeFilter) ([]models.Assignee, int, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	assignees, total, err := s.store.Repos().Assignments.ListAssignees(ctx, filter)
	if err != nil {
		return nil, 0, storageError(err, "list assignees")
	}
	return assignees, total, nil
}

// Rename rewrites every assignment row of one person. Renaming onto an
// existing identity merges the two.
func (s *AssigneeService) Rename(ctx context.Context, actor models.Actor, from models.AssigneeMatch, name string, email string) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	from, err := normalizeMatch(from)
	if err != nil {
		return 0, err
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if email != "" && !emailPattern.MatchString(email) {
		return 0, fmt.Errorf("%w: %q is not an email address", ErrInvalidAssignee, email)
	}
	if name == "" {
		name = email
	}
	if name == "" {
		return 0, fmt.Errorf("%w: a name or email is required", ErrInvalidAssignee)
	}

	var renamed int
	err = s.store.RunInTx(ctx, func(r repositories.Repositories) error {
		var err error
		if renamed, err = r.Assignments.Rename(ctx, from, name, optional(email)); err != nil {
			return storageError(err, "rename assignee")
		}
		if renamed == 0 {
			return fmt.Errorf("assignee %s: %w", describeMatch(from), ErrNotFound)
		}
		return writeAudit(ctx, r, actor, auditRecord{
			action:      models.AuditAssigneeRenamed,
			entityType:  models.EntityAssignee,
			entityID:    describeMatch(from),
			description: fmt.Sprintf("%d assignment rows renamed", renamed),
			oldValues:   map[string]any{"name": from.Name, "email": from.Email},
			newValues:   map[string]any{"name": name, "email": optional(email)},
		})
	})
	if err != nil {
		return 0, storageError(err, "rename assignee")
	}
	return renamed, nil
}

// Delete removes a person's closed assignment history. It is refused while
// the person still holds an asset.
func (s *AssigneeService) Delete(ctx context.Context, actor models.Actor, who models.AssigneeMatch) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	who, err := normalizeMatch(who)
	if err != nil {
		return 0, err
	}

	var deleted int
	err = s.store.RunInTx(ctx, func(r repositories.Repositories) error {
		active, err := r.Assignments.CountActive(ctx, who)
		if err != nil {
			return storageError(err, "count active assignments")
		}
		if active > 0 {
			return fmt.Errorf("%w: %s still holds %d asset(s)", ErrConflict, describeMatch(who), active)
		}
		if deleted, err = r.Assignments.DeleteClosed(ctx, who); err != nil {
			return storageError(err, "delete assignee")
		}
		if deleted == 0 {
			return fmt.Errorf("assignee %s: %w", describeMatch(who), ErrNotFound)
		}
		return writeAudit(ctx, r, actor, auditRecord{
			action:      models.AuditAssigneeDeleted,
			entityType:  models.EntityAssignee,
			entityID:    describeMatch(who),
			description: fmt.Sprintf("%d assignment rows deleted", deleted),
			oldValues:   map[string]any{"name": who.Name, "email": who.Email},
		})
	})
	if err != nil {
		return 0, storageError(err, "delete assignee")
	}
	return deleted, nil
}

func normalizeMatch(m models.AssigneeMatch) (models.AssigneeMatch, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Email != nil {
		m.Email = optional(strings.TrimSpace(*m.Email))
	}
	if m.Name == "" && m.Email == nil {
		return m, fmt.Errorf("%w: a name or email is required", ErrInvalidAssignee)
	}
	return m, nil
}

func describeMatch(m models.AssigneeMatch) string {
	if m.Email != nil {
		return strings.ToLower(*m.Email)
	}
	return "name:" + strings.ToLower(m.Name)
}
