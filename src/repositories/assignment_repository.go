package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inventory/src/models"

	"github.com/jackc/pgx/v5"
)

type AssignmentRepository interface {
	// GetActiveByAssetID returns ErrNotFound when the asset is not held by anyone.
	GetActiveByAssetID(ctx context.Context, assetID int) (*models.Assignment, error)
	GetLastByAssetID(ctx context.Context, assetID int) (*models.Assignment, error)
	// Create returns ErrConflict when the asset already has an active assignment.
	Create(ctx context.Context, a *models.Assignment) error
	Close(ctx context.Context, id int, returnedAt time.Time) error
	ListByAssetID(ctx context.Context, assetID int) ([]models.Assignment, error)

	ListAssignees(ctx context.Context, filter models.AssigneeFilter) ([]models.Assignee, int, error)
	CountActive(ctx context.Context, match models.AssigneeMatch) (int, error)
	Rename(ctx context.Context, match models.AssigneeMatch, name string, email *string) (int, error)
	DeleteClosed(ctx context.Context, match models.AssigneeMatch) (int, error)
}

type assignmentRepo struct {
	db DBTX
}

func NewAssignmentRepository(db DBTX) AssignmentRepository {
	return &assignmentRepo{db: db}
}

const assignmentColumns = `id, asset_id, assignee_name, assignee_email, assigned_at, returned_at, notes`

func scanAssignment(row pgx.Row) (*models.Assignment, error) {
	var a models.Assignment
	if err := row.Scan(&a.ID, &a.AssetID, &a.AssigneeName, &a.AssigneeEmail, &a.AssignedAt, &a.ReturnedAt, &a.Notes); err != nil {
		return nil, classify(err)
	}
	return &a, nil
}

func (r *assignmentRepo) GetActiveByAssetID(ctx context.Context, assetID int) (*models.Assignment, error) {
	return scanAssignment(r.db.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE asset_id = $1 AND returned_at IS NULL`, assetID))
}

func (r *assignmentRepo) GetLastByAssetID(ctx context.Context, assetID int) (*models.Assignment, error) {
	return scanAssignment(r.db.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE asset_id = $1
		 ORDER BY assigned_at DESC, id DESC LIMIT 1`, assetID))
}

func (r *assignmentRepo) Create(ctx context.Context, a *models.Assignment) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO assignments (asset_id, assignee_name, assignee_email, assigned_at, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		a.AssetID, a.AssigneeName, a.AssigneeEmail, a.AssignedAt, a.Notes,
	).Scan(&a.ID)
	return classify(err)
}

func (r *assignmentRepo) Close(ctx context.Context, id int, returnedAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE assignments SET returned_at = $2 WHERE id = $1 AND returned_at IS NULL`, id, returnedAt)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assignmentRepo) ListByAssetID(ctx context.Context, assetID int) ([]models.Assignment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE asset_id = $1 ORDER BY assigned_at DESC, id DESC`, assetID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	assignments := []models.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}
	return assignments, classify(rows.Err())
}

func (r *assignmentRepo) ListAssignees(ctx context.Context, f models.AssigneeFilter) ([]models.Assignee, int, error) {
	args := []any{}
	having := ""
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		having = "HAVING bool_or(assignee_name ILIKE $1 OR assignee_email ILIKE $1)"
	}
	limit, offset := normalizePage(f.Limit, f.Offset)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT key,
			(array_agg(assignee_name ORDER BY assigned_at DESC, id DESC))[1],
			(array_agg(assignee_email ORDER BY assigned_at DESC, id DESC))[1],
			COUNT(*) FILTER (WHERE returned_at IS NULL),
			COUNT(*),
			MAX(assigned_at),
			COUNT(*) OVER()
		FROM (
			SELECT *, COALESCE(lower(assignee_email), 'name:' || lower(assignee_name)) AS key
			FROM assignments
		) s
		GROUP BY key
		%s
		ORDER BY MAX(assigned_at) DESC, key
		LIMIT $%d OFFSET $%d`, having, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	total := 0
	assignees := []models.Assignee{}
	for rows.Next() {
		var a models.Assignee
		if err := rows.Scan(&a.Key, &a.FullName, &a.Email, &a.ActiveCount, &a.TotalCount, &a.LastAssigned, &total); err != nil {
			return nil, 0, classify(err)
		}
		assignees = append(assignees, a)
	}
	return assignees, total, classify(rows.Err())
}

// matchClause selects rows by email when known, otherwise by name among rows without email.
func matchClause(m models.AssigneeMatch, first int) (string, []any) {
	if m.Email != nil {
		return fmt.Sprintf("lower(assignee_email) = lower($%d)", first), []any{*m.Email}
	}
	return fmt.Sprintf("assignee_email IS NULL AND lower(assignee_name) = lower($%d)", first), []any{m.Name}
}

func (r *assignmentRepo) CountActive(ctx context.Context, m models.AssigneeMatch) (int, error) {
	clause, args := matchClause(m, 1)
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM assignments WHERE returned_at IS NULL AND `+clause, args...).Scan(&count)
	return count, classify(err)
}

func (r *assignmentRepo) Rename(ctx context.Context, m models.AssigneeMatch, name string, email *string) (int, error) {
	clause, args := matchClause(m, 3)
	tag, err := r.db.Exec(ctx,
		`UPDATE assignments SET assignee_name = $1, assignee_email = $2 WHERE `+clause,
		append([]any{name, email}, args...)...)
	if err != nil {
		return 0, classify(err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *assignmentRepo) DeleteClosed(ctx context.Context, m models.AssigneeMatch) (int, error) {
	clause, args := matchClause(m, 1)
	tag, err := r.db.Exec(ctx,
		`DELETE FROM assignments WHERE returned_at IS NOT NULL AND `+clause, args...)
	if err != nil {
		return 0, classify(err)
	}
	return int(tag.RowsAffected()), nil
}
