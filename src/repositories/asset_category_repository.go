package repositories

import (
	"context"

	"inventory/src/models"
)

type AssetCategoryRepository interface {
	GetAll(ctx context.Context) ([]models.AssetCategory, error)
	GetByID(ctx context.Context, id int) (*models.AssetCategory, error)
	GetByName(ctx context.Context, name string) (*models.AssetCategory, error)
	// Create returns ErrConflict when a category with the same name exists.
	Create(ctx context.Context, ac *models.AssetCategory) error
	Delete(ctx context.Context, id int) error
}

type assetCategoryRepo struct {
	db DBTX
}

func NewAssetCategoryRepository(db DBTX) AssetCategoryRepository {
	return &assetCategoryRepo{db: db}
}

func (r *assetCategoryRepo) GetAll(ctx context.Context) ([]models.AssetCategory, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM asset_categories ORDER BY name`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	categories := []models.AssetCategory{}
	for rows.Next() {
		var ac models.AssetCategory
		if err := rows.Scan(&ac.ID, &ac.Name, &ac.CreatedAt); err != nil {
			return nil, classify(err)
		}
		categories = append(categories, ac)
	}

	return categories, classify(rows.Err())
}

func (r *assetCategoryRepo) GetByID(ctx context.Context, id int) (*models.AssetCategory, error) {
	var ac models.AssetCategory
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM asset_categories WHERE id = $1`, id,
	).Scan(&ac.ID, &ac.Name, &ac.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return &ac, nil
}

func (r *assetCategoryRepo) GetByName(ctx context.Context, name string) (*models.AssetCategory, error) {
	var ac models.AssetCategory
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM asset_categories WHERE name = $1`, name,
	).Scan(&ac.ID, &ac.Name, &ac.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return &ac, nil
}

func (r *assetCategoryRepo) Create(ctx context.Context, ac *models.AssetCategory) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO asset_categories (name) VALUES ($1) RETURNING id, created_at`, ac.Name,
	).Scan(&ac.ID, &ac.CreatedAt)
	return classify(err)
}

// Delete removes the category; assets referencing it keep existing uncategorized.
func (r *assetCategoryRepo) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM asset_categories WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
