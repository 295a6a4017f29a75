package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inventory/src/models"

	"github.com/jackc/pgx/v5"
)

type IncidentRepository interface {
	Create(ctx context.Context, i *models.Incident) error
	GetByID(ctx context.Context, id int) (*models.Incident, error)
	List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error)
	UpdateStatus(ctx context.Context, id int, status models.IncidentStatus, resolvedAt *time.Time, at time.Time) error
	Assign(ctx context.Context, id int, name, email *string, at time.Time) error
}

type incidentRepo struct {
	db DBTX
}

func NewIncidentRepository(db DBTX) IncidentRepository {
	return &incidentRepo{db: db}
}

const incidentSelect = `SELECT i.id, i.asset_id, i.incident_type, i.severity, i.status, i.description, i.location,
		i.reported_by, i.reported_by_email, i.assigned_to, i.assigned_to_email, i.resolved_at,
		i.created_at, i.updated_at, a.label, a.serial_no, c.name
	FROM incidents i
	JOIN assets a ON a.id = i.asset_id
	LEFT JOIN asset_categories c ON c.id = a.category_id`

func scanIncident(row pgx.Row) (*models.Incident, error) {
	var i models.Incident
	if err := row.Scan(&i.ID, &i.AssetID, &i.IncidentType, &i.Severity, &i.Status, &i.Description, &i.Location,
		&i.ReportedBy, &i.ReportedByEmail, &i.AssignedTo, &i.AssignedToEmail, &i.ResolvedAt,
		&i.CreatedAt, &i.UpdatedAt, &i.AssetLabel, &i.AssetSerialNo, &i.CategoryName); err != nil {
		return nil, classify(err)
	}
	return &i, nil
}

func (r *incidentRepo) Create(ctx context.Context, i *models.Incident) error {
	if i.Status == "" {
		i.Status = models.IncidentOpen
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO incidents (asset_id, incident_type, severity, status, description, location,
			reported_by, reported_by_email)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		i.AssetID, i.IncidentType, i.Severity, i.Status, i.Description, i.Location, i.ReportedBy, i.ReportedByEmail,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
	return classify(err)
}

func (r *incidentRepo) GetByID(ctx context.Context, id int) (*models.Incident, error) {
	return scanIncident(r.db.QueryRow(ctx, incidentSelect+` WHERE i.id = $1`, id))
}

func (r *incidentRepo) List(ctx context.Context, f models.IncidentFilter) ([]models.Incident, error) {
	var where []string
	var args []any
	if f.AssetID != nil {
		args = append(args, *f.AssetID)
		where = append(where, fmt.Sprintf("i.asset_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("i.status = $%d", len(args)))
	}
	if f.Severity != "" {
		args = append(args, f.Severity)
		where = append(where, fmt.Sprintf("i.severity = $%d", len(args)))
	}

	query := incidentSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit, offset := normalizePage(f.Limit, f.Offset)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY i.created_at DESC, i.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	incidents := []models.Incident{}
	for rows.Next() {
		i, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, *i)
	}
	return incidents, classify(rows.Err())
}

func (r *incidentRepo) UpdateStatus(ctx context.Context, id int, status models.IncidentStatus, resolvedAt *time.Time, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE incidents SET status = $2, resolved_at = $3, updated_at = $4 WHERE id = $1`,
		id, status, resolvedAt, at)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *incidentRepo) Assign(ctx context.Context, id int, name, email *string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE incidents SET assigned_to = $2, assigned_to_email = $3, updated_at = $4 WHERE id = $1`,
		id, name, email, at)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
