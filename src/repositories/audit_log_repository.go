package repositories

import (
	"context"
	"fmt"
	"strings"

	"inventory/src/models"
)

type AuditLogRepository interface {
	Create(ctx context.Context, e *models.AuditEntry) error
	// List returns entries newest first.
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, error)
}

type auditLogRepo struct {
	db DBTX
}

func NewAuditLogRepository(db DBTX) AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, e *models.AuditEntry) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO audit_log (action, entity_type, entity_id, actor_id, actor_email, description, old_values, new_values)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		e.Action, e.EntityType, e.EntityID, e.ActorID, e.ActorEmail, e.Description,
		nullJSON(e.OldValues), nullJSON(e.NewValues),
	).Scan(&e.ID, &e.CreatedAt)
	return classify(err)
}

func (r *auditLogRepo) List(ctx context.Context, f models.AuditFilter) ([]models.AuditEntry, error) {
	var where []string
	var args []any
	if f.EntityType != "" {
		args = append(args, f.EntityType)
		where = append(where, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if f.EntityID != "" {
		args = append(args, f.EntityID)
		where = append(where, fmt.Sprintf("entity_id = $%d", len(args)))
	}
	if f.Action != "" {
		args = append(args, f.Action)
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}

	query := `SELECT id, action, entity_type, entity_id, actor_id, actor_email, description,
		old_values, new_values, created_at FROM audit_log`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit, offset := normalizePage(f.Limit, f.Offset)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		var oldValues, newValues []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.ActorID, &e.ActorEmail,
			&e.Description, &oldValues, &newValues, &e.CreatedAt); err != nil {
			return nil, classify(err)
		}
		e.OldValues = oldValues
		e.NewValues = newValues
		entries = append(entries, e)
	}
	return entries, classify(rows.Err())
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
