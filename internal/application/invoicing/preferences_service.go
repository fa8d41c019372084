package invoicing

import (
	"context"
	"errors"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/domain/shared"
)

// PreferencesService manages per-user display settings
type PreferencesService struct {
	repo invoicing.PreferencesRepository
}

// NewPreferencesService creates a new PreferencesService
func NewPreferencesService(repo invoicing.PreferencesRepository) *PreferencesService {
	return &PreferencesService{repo: repo}
}

// Get returns the stored preferences or the defaults
func (s *PreferencesService) Get(ctx context.Context, userID string) (*PreferencesResponse, error) {
	prefs, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToPreferencesResponse(prefs)
	return &response, nil
}

// Update validates and stores new settings
func (s *PreferencesService) Update(ctx context.Context, userID string, req UpdatePreferencesRequest) (*PreferencesResponse, error) {
	prefs, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := prefs.Update(req.DefaultCurrency, invoicing.DateFormat(req.DateFormat)); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, prefs); err != nil {
		return nil, err
	}
	response := ToPreferencesResponse(prefs)
	return &response, nil
}

func (s *PreferencesService) load(ctx context.Context, userID string) (*invoicing.Preferences, error) {
	prefs, err := s.repo.FindByUser(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		defaults := invoicing.DefaultPreferences(userID)
		return &defaults, nil
	}
	return prefs, err
}
