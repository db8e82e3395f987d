package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AttributeService handles product attributes and their terms
type AttributeService struct {
	attributeRepo catalog.AttributeRepository
	termRepo      catalog.TermRepository
}

// NewAttributeService creates a new AttributeService
func NewAttributeService(attributeRepo catalog.AttributeRepository, termRepo catalog.TermRepository) *AttributeService {
	return &AttributeService{attributeRepo: attributeRepo, termRepo: termRepo}
}

// Create creates a new attribute
func (s *AttributeService) Create(ctx context.Context, req CreateAttributeRequest) (*AttributeResponse, error) {
	attribute, err := catalog.NewAttribute(req.Name)
	if err != nil {
		return nil, err
	}
	if req.Slug != "" {
		attribute.Slug = catalog.Slugify(req.Slug)
	}
	if req.OrderBy != "" {
		attribute.OrderBy = req.OrderBy
	}
	attribute.HasArchives = req.HasArchives

	if err := s.attributeRepo.Create(ctx, attribute); err != nil {
		return nil, err
	}

	resp := ToAttributeResponse(attribute)
	return &resp, nil
}

// GetByID retrieves an attribute by ID
func (s *AttributeService) GetByID(ctx context.Context, id uuid.UUID) (*AttributeResponse, error) {
	attribute, err := s.attributeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToAttributeResponse(attribute)
	return &resp, nil
}

// List retrieves a page of attributes
func (s *AttributeService) List(ctx context.Context, filter ListFilter) ([]AttributeResponse, int64, error) {
	attributes, total, err := s.attributeRepo.GetAll(ctx, filter.toDomain("name"))
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AttributeResponse, len(attributes))
	for i := range attributes {
		responses[i] = ToAttributeResponse(&attributes[i])
	}
	return responses, total, nil
}

// Update updates an existing attribute
func (s *AttributeService) Update(ctx context.Context, req UpdateAttributeRequest) (*AttributeResponse, error) {
	attribute, err := s.attributeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, shared.NewValidationError("name", "name is required")
		}
		attribute.Name = name
	}
	if req.Slug != nil {
		attribute.Slug = catalog.Slugify(*req.Slug)
	}
	if req.OrderBy != nil {
		attribute.OrderBy = *req.OrderBy
	}
	if req.HasArchives != nil {
		attribute.HasArchives = *req.HasArchives
	}
	attribute.Touch()

	if err := s.attributeRepo.Save(ctx, attribute); err != nil {
		return nil, err
	}

	resp := ToAttributeResponse(attribute)
	return &resp, nil
}

// Delete deletes an attribute together with its terms
func (s *AttributeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.attributeRepo.Delete(ctx, id)
}

// CreateTerm adds a term to an attribute
func (s *AttributeService) CreateTerm(ctx context.Context, req CreateTermRequest) (*TermResponse, error) {
	if _, err := s.attributeRepo.GetByID(ctx, req.AttributeID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("attribute_id", "attribute not found")
		}
		return nil, err
	}

	term, err := catalog.NewTerm(req.AttributeID, req.Name)
	if err != nil {
		return nil, err
	}
	if req.Slug != "" {
		term.Slug = catalog.Slugify(req.Slug)
	}
	term.Description = req.Description
	term.MenuOrder = req.MenuOrder

	if err := s.termRepo.Create(ctx, term); err != nil {
		return nil, err
	}

	resp := ToTermResponse(term)
	return &resp, nil
}

// ListTerms lists every term of an attribute
func (s *AttributeService) ListTerms(ctx context.Context, attributeID uuid.UUID) ([]TermResponse, error) {
	if _, err := s.attributeRepo.GetByID(ctx, attributeID); err != nil {
		return nil, err
	}

	terms, err := s.termRepo.ListByAttribute(ctx, attributeID)
	if err != nil {
		return nil, err
	}

	responses := make([]TermResponse, len(terms))
	for i := range terms {
		responses[i] = ToTermResponse(&terms[i])
	}
	return responses, nil
}

// UpdateTerm updates an attribute term
func (s *AttributeService) UpdateTerm(ctx context.Context, req UpdateTermRequest) (*TermResponse, error) {
	term, err := s.termRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, shared.NewValidationError("name", "name is required")
		}
		term.Name = name
	}
	if req.Slug != nil {
		term.Slug = catalog.Slugify(*req.Slug)
	}
	if req.Description != nil {
		term.Description = *req.Description
	}
	if req.MenuOrder != nil {
		term.MenuOrder = *req.MenuOrder
	}
	term.Touch()

	if err := s.termRepo.Save(ctx, term); err != nil {
		return nil, err
	}

	resp := ToTermResponse(term)
	return &resp, nil
}

// DeleteTerm deletes an attribute term
func (s *AttributeService) DeleteTerm(ctx context.Context, id uuid.UUID) error {
	return s.termRepo.Delete(ctx, id)
}
