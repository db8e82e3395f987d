package catalog

import (
	"context"
	"strings"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TagService handles product tags
type TagService struct {
	tagRepo catalog.TagRepository
}

// NewTagService creates a new TagService
func NewTagService(tagRepo catalog.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// Create creates a new tag
func (s *TagService) Create(ctx context.Context, req CreateTagRequest) (*TagResponse, error) {
	tag, err := catalog.NewTag(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if req.Slug != "" {
		tag.Slug = catalog.Slugify(req.Slug)
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	resp := ToTagResponse(tag)
	return &resp, nil
}

// GetByID retrieves a tag by ID
func (s *TagService) GetByID(ctx context.Context, id uuid.UUID) (*TagResponse, error) {
	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTagResponse(tag)
	return &resp, nil
}

// List retrieves a page of tags
func (s *TagService) List(ctx context.Context, filter ListFilter) ([]TagResponse, int64, error) {
	tags, total, err := s.tagRepo.GetAll(ctx, filter.toDomain("name"))
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TagResponse, len(tags))
	for i := range tags {
		responses[i] = ToTagResponse(&tags[i])
	}
	return responses, total, nil
}

// Update updates an existing tag
func (s *TagService) Update(ctx context.Context, req UpdateTagRequest) (*TagResponse, error) {
	tag, err := s.tagRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, shared.NewValidationError("name", "name is required")
		}
		tag.Name = name
	}
	if req.Slug != nil {
		tag.Slug = catalog.Slugify(*req.Slug)
	}
	if req.Description != nil {
		tag.Description = *req.Description
	}
	tag.Touch()

	if err := s.tagRepo.Save(ctx, tag); err != nil {
		return nil, err
	}

	resp := ToTagResponse(tag)
	return &resp, nil
}

// Delete deletes a tag
func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tagRepo.Delete(ctx, id)
}
