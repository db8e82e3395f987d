// Package settings serves the single business settings row
package settings

import (
	"context"
	"errors"
	"sync"

	"github.com/atelier/backend/internal/domain/settings"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UpdateSettingsRequest changes the non-nil fields
type UpdateSettingsRequest struct {
	TaxRate     *decimal.Decimal   `json:"tax_rate"`
	FiscalValue *valueobject.Money `json:"fiscal_value"`
}

// Service reads and updates business settings. Until a row is saved the
// configured defaults apply.
type Service struct {
	repo     settings.Repository
	defaults settings.Settings
	logger   *zap.Logger

	mu     sync.RWMutex
	cached *settings.Settings
}

// NewService creates a new settings Service
func NewService(repo settings.Repository, defaults *settings.Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, defaults: *defaults, logger: logger}
}

// Current returns the effective settings. Implements sales.SettingsReader.
func (s *Service) Current(ctx context.Context) (*settings.Settings, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		cp := *cached
		return &cp, nil
	}

	stored, err := s.repo.Get(ctx)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotFound):
		d := s.defaults
		stored = &d
	default:
		return nil, err
	}

	s.mu.Lock()
	s.cached = stored
	s.mu.Unlock()
	cp := *stored
	return &cp, nil
}

// Get is Current for the settings:get command
func (s *Service) Get(ctx context.Context) (*settings.Settings, error) {
	return s.Current(ctx)
}

// Update validates and stores new settings
func (s *Service) Update(ctx context.Context, req UpdateSettingsRequest) (*settings.Settings, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if err := current.Apply(req.TaxRate, req.FiscalValue); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, current); err != nil {
		return nil, err
	}

	s.mu.Lock()
	cp := *current
	s.cached = &cp
	s.mu.Unlock()

	s.logger.Info("Settings updated",
		zap.String("tax_rate", current.TaxRate.String()),
		zap.String("fiscal_value", current.FiscalValue.String()))
	return current, nil
}
