package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"inventory/src/models"
	"inventory/src/repositories"
)

type AuditServiceI interface {
	List(ctx context.Context, actor models.Actor, filter models.AuditFilter) ([]models.AuditEntry, error)
}

type AuditService struct {
	store repositories.Store
}

func NewAuditService(store repositories.Store) *AuditService {
	return &AuditService{store: store}
}

func (s *AuditService) List(ctx context.Context, actor models.Actor, filter models.AuditFilter) ([]models.AuditEntry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	entries, err := s.store.Repos().Audit.List(ctx, filter)
	return entries, storageError(err, "list audit log")
}

type auditRecord struct {
	action      models.AuditAction
	entityType  string
	entityID    string
	description string
	oldValues   any
	newValues   any
}

// writeAudit appends an entry through r, so it commits or rolls back with the
// change it describes.
func writeAudit(ctx context.Context, r repositories.Repositories, actor models.Actor, rec auditRecord) error {
	entry := &models.AuditEntry{
		Action:      rec.action,
		EntityType:  rec.entityType,
		EntityID:    optional(rec.entityID),
		ActorID:     optional(actor.ID),
		ActorEmail:  optional(actor.Email),
		Description: optional(rec.description),
	}
	var err error
	if entry.OldValues, err = marshalValues(rec.oldValues); err != nil {
		return err
	}
	if entry.NewValues, err = marshalValues(rec.newValues); err != nil {
		return err
	}
	return r.Audit.Create(ctx, entry)
}

func marshalValues(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode audit values: %w", err)
	}
	return raw, nil
}

func requireAdmin(actor models.Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func itoa(id int) string {
	return strconv.Itoa(id)
}
