package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventory/src/models"
	"inventory/src/repositories"
)

type CategoryServiceI interface {
	List(ctx context.Context) ([]models.AssetCategory, error)
	Create(ctx context.Context, actor models.Actor, name string) (*models.AssetCategory, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
	GetOrCreate(ctx context.Context, name string) (*models.AssetCategory, error)
}

type CategoryService struct {
	store repositories.Store
}

func NewCategoryService(store repositories.Store) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) List(ctx context.Context) ([]models.AssetCategory, error) {
	categories, err := s.store.Repos().Categories.GetAll(ctx)
	return categories, storageError(err, "list categories")
}

func (s *CategoryService) Create(ctx context.Context, actor models.Actor, name string) (*models.AssetCategory, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}

	category := &models.AssetCategory{Name: name}
	err := s.store.RunInTx(ctx, func(r repositories.Repositories) error {
		if err := r.Categories.Create(ctx, category); err != nil {
			return storageError(err, fmt.Sprintf("category %q", name))
		}
		return writeAudit(ctx, r, actor, auditRecord{
			action:      models.AuditCategoryCreated,
			entityType:  models.EntityCategory,
			entityID:    itoa(category.ID),
			description: name,
			newValues:   category,
		})
	})
	if err != nil {
		return nil, storageError(err, "create category")
	}
	return category, nil
}

// Delete removes the category. Its assets stay, uncategorized.
func (s *CategoryService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	err := s.store.RunInTx(ctx, func(r repositories.Repositories) error {
		category, err := r.Categories.GetByID(ctx, id)
		if err != nil {
			return storageError(err, fmt.Sprintf("category %d", id))
		}
		if err := r.Categories.Delete(ctx, id); err != nil {
			return storageError(err, "delete category")
		}
		return writeAudit(ctx, r, actor, auditRecord{
			action:      models.AuditCategoryDeleted,
			entityType:  models.EntityCategory,
			entityID:    itoa(id),
			description: category.Name,
			oldValues:   category,
		})
	})
	return storageError(err, "delete category")
}

// GetOrCreate resolves a category by name, creating it when missing. When a
// concurrent caller inserts the same name first, the insert fails on the
// unique name and the row is read back once.
func (s *CategoryService) GetOrCreate(ctx context.Context, name string) (*models.AssetCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	repo := s.store.Repos().Categories

	category, err := repo.GetByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, storageError(err, "find category")
	}

	category = &models.AssetCategory{Name: name}
	err = repo.Create(ctx, category)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, repositories.ErrConflict) {
		return nil, storageError(err, "create category")
	}

	category, err = repo.GetByName(ctx, name)
	if err != nil {
		return nil, storageError(err, "find category after conflict")
	}
	return category, nil
}
