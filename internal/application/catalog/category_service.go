package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	if req.ParentID != nil {
		if err := s.checkParent(ctx, uuid.Nil, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category, err := catalog.NewCategory(req.Name, req.Description, req.ParentID)
	if err != nil {
		return nil, err
	}
	category.Image = req.Image

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// List retrieves a page of categories
func (s *CategoryService) List(ctx context.Context, filter ListFilter) ([]CategoryResponse, int64, error) {
	categories, total, err := s.categoryRepo.GetAll(ctx, filter.toDomain("name"))
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses, total, nil
}

// Update updates an existing category
func (s *CategoryService) Update(ctx context.Context, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, shared.NewValidationError("name", "name is required")
		}
		category.Name = name
		category.Slug = catalog.Slugify(name)
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Image != nil {
		category.Image = *req.Image
	}
	if req.ParentID != nil {
		if err := s.checkParent(ctx, category.ID, *req.ParentID); err != nil {
			return nil, err
		}
		category.ParentID = req.ParentID
	}
	category.Touch()

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete deletes a category. Categories with children cannot be deleted.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		return err
	}

	hasChildren, err := s.categoryRepo.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.NewConflictError("cannot delete category with children")
	}

	return s.categoryRepo.Delete(ctx, id)
}

// checkParent verifies the parent exists and is not the category itself
// or one of its descendants.
func (s *CategoryService) checkParent(ctx context.Context, self, parentID uuid.UUID) error {
	if parentID == self {
		return shared.NewValidationError("parent_id", "a category cannot be its own parent")
	}

	seen := map[uuid.UUID]bool{}
	for cur := &parentID; cur != nil; {
		if *cur == self || seen[*cur] {
			return shared.NewValidationError("parent_id", "cannot move a category under its own descendant")
		}
		seen[*cur] = true

		parent, err := s.categoryRepo.GetByID(ctx, *cur)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewValidationError("parent_id", "parent category not found")
			}
			return err
		}
		cur = parent.ParentID
	}
	return nil
}
