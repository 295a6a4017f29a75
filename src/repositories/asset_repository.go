package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inventory/src/models"

	"github.com/jackc/pgx/v5"
)

type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id int) (*models.Asset, error)
	// GetForUpdate reads the asset and locks its row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id int) (*models.Asset, error)
	UpdateStatus(ctx context.Context, id int, status models.AssetStatus) error
	UpdateDetails(ctx context.Context, id int, details models.AssetDetails) error
	SetQRSlug(ctx context.Context, id int, slug string) error
	Delete(ctx context.Context, id int) error
	GetOverview(ctx context.Context, id int) (*models.AssetOverview, error)
	List(ctx context.Context, filter models.AssetFilter) ([]models.AssetOverview, int, error)
	Stats(ctx context.Context) (*models.InventoryStats, error)
	ListWarrantyExpiring(ctx context.Context, from, to time.Time) ([]models.AssetOverview, error)
}

type assetRepo struct {
	db DBTX
}

func NewAssetRepository(db DBTX) AssetRepository {
	return &assetRepo{db: db}
}

const assetColumns = `id, label, serial_no, category_id, status, purchased_at, purchase_price::text,
	supplier, warranty_end, notes, qr_slug, created_at`

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var a models.Asset
	var price *string
	if err := row.Scan(&a.ID, &a.Label, &a.SerialNo, &a.CategoryID, &a.Status, &a.PurchasedAt, &price,
		&a.Supplier, &a.WarrantyEnd, &a.Notes, &a.QRSlug, &a.CreatedAt); err != nil {
		return nil, classify(err)
	}
	p, err := decimalFromText(price)
	if err != nil {
		return nil, err
	}
	a.PurchasePrice = p
	return &a, nil
}

func (r *assetRepo) Create(ctx context.Context, a *models.Asset) error {
	if a.Status == "" {
		a.Status = models.AssetStatusInStock
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO assets (label, serial_no, category_id, status, purchased_at, purchase_price,
			supplier, warranty_end, notes, qr_slug)
		 VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		a.Label, a.SerialNo, a.CategoryID, a.Status, a.PurchasedAt, decimalToText(a.PurchasePrice),
		a.Supplier, a.WarrantyEnd, a.Notes, a.QRSlug,
	).Scan(&a.ID, &a.CreatedAt)
	return classify(err)
}

func (r *assetRepo) GetByID(ctx context.Context, id int) (*models.Asset, error) {
	return scanAsset(r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id))
}

func (r *assetRepo) GetForUpdate(ctx context.Context, id int) (*models.Asset, error) {
	return scanAsset(r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1 FOR UPDATE`, id))
}

func (r *assetRepo) UpdateStatus(ctx context.Context, id int, status models.AssetStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE assets SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assetRepo) UpdateDetails(ctx context.Context, id int, d models.AssetDetails) error {
	var sets []string
	args := []any{id}
	add := func(column string, value any, cast string) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d%s", column, len(args), cast))
	}

	if d.Label != nil {
		add("label", *d.Label, "")
	}
	if d.SerialNo != nil {
		add("serial_no", emptyToNil(*d.SerialNo), "")
	}
	if d.ClearCategory {
		sets = append(sets, "category_id = NULL")
	} else if d.CategoryID != nil {
		add("category_id", *d.CategoryID, "")
	}
	if d.PurchasedAt != nil {
		add("purchased_at", *d.PurchasedAt, "")
	}
	if d.PurchasePrice != nil {
		add("purchase_price", decimalToText(d.PurchasePrice), "::text::numeric")
	}
	if d.Supplier != nil {
		add("supplier", emptyToNil(*d.Supplier), "")
	}
	if d.WarrantyEnd != nil {
		add("warranty_end", *d.WarrantyEnd, "")
	}
	if d.Notes != nil {
		add("notes", emptyToNil(*d.Notes), "")
	}

	if len(sets) == 0 {
		_, err := r.GetByID(ctx, id)
		return err
	}

	tag, err := r.db.Exec(ctx, `UPDATE assets SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assetRepo) SetQRSlug(ctx context.Context, id int, slug string) error {
	tag, err := r.db.Exec(ctx, `UPDATE assets SET qr_slug = $2 WHERE id = $1`, id, slug)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the asset. Assignments, events and incidents go with it
// through ON DELETE CASCADE.
func (r *assetRepo) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const overviewSelect = `SELECT a.id, a.label, a.serial_no, a.status, a.category_id, c.name,
		asg.assignee_name, asg.assignee_email, a.warranty_end, a.created_at, COUNT(*) OVER()
	FROM assets a
	LEFT JOIN asset_categories c ON c.id = a.category_id
	LEFT JOIN assignments asg ON asg.asset_id = a.id AND asg.returned_at IS NULL`

func scanOverviews(rows pgx.Rows) ([]models.AssetOverview, int, error) {
	defer rows.Close()

	total := 0
	overviews := []models.AssetOverview{}
	for rows.Next() {
		var o models.AssetOverview
		if err := rows.Scan(&o.ID, &o.Label, &o.SerialNo, &o.Status, &o.CategoryID, &o.CategoryName,
			&o.AssigneeName, &o.AssigneeEmail, &o.WarrantyEnd, &o.CreatedAt, &total); err != nil {
			return nil, 0, classify(err)
		}
		overviews = append(overviews, o)
	}
	return overviews, total, classify(rows.Err())
}

func (r *assetRepo) GetOverview(ctx context.Context, id int) (*models.AssetOverview, error) {
	rows, err := r.db.Query(ctx, overviewSelect+` WHERE a.id = $1`, id)
	if err != nil {
		return nil, classify(err)
	}
	overviews, _, err := scanOverviews(rows)
	if err != nil {
		return nil, err
	}
	if len(overviews) == 0 {
		return nil, ErrNotFound
	}
	return &overviews[0], nil
}

func (r *assetRepo) List(ctx context.Context, f models.AssetFilter) ([]models.AssetOverview, int, error) {
	var where []string
	var args []any

	if !f.IncludeRetired && (f.Status == nil || *f.Status != models.AssetStatusRetired) {
		where = append(where, "a.status <> 'retired'")
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		where = append(where, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		where = append(where, fmt.Sprintf("a.category_id = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(a.label ILIKE $%[1]d OR a.serial_no ILIKE $%[1]d OR asg.assignee_name ILIKE $%[1]d OR asg.assignee_email ILIKE $%[1]d)", n))
	}

	query := overviewSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit, offset := normalizePage(f.Limit, f.Offset)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY a.created_at DESC, a.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, classify(err)
	}
	return scanOverviews(rows)
}

func (r *assetRepo) Stats(ctx context.Context) (*models.InventoryStats, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.status, a.category_id, COALESCE(c.name, ''), COUNT(*)
		 FROM assets a
		 LEFT JOIN asset_categories c ON c.id = a.category_id
		 WHERE a.status <> 'retired'
		 GROUP BY a.status, a.category_id, c.name`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	stats := models.NewInventoryStats()
	for rows.Next() {
		var status models.AssetStatus
		var categoryID *int
		var categoryName string
		var count int
		if err := rows.Scan(&status, &categoryID, &categoryName, &count); err != nil {
			return nil, classify(err)
		}
		stats.Add(status, categoryID, categoryName, count)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	stats.Sort()
	return stats, nil
}

func (r *assetRepo) ListWarrantyExpiring(ctx context.Context, from, to time.Time) ([]models.AssetOverview, error) {
	rows, err := r.db.Query(ctx,
		overviewSelect+` WHERE a.status <> 'retired' AND a.warranty_end BETWEEN $1 AND $2
		 ORDER BY a.warranty_end, a.id`, from, to)
	if err != nil {
		return nil, classify(err)
	}
	overviews, _, err := scanOverviews(rows)
	return overviews, err
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
