package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPreferencesRepository stores user_preferences rows
type GormPreferencesRepository struct {
	db *gorm.DB
}

var _ invoicing.PreferencesRepository = (*GormPreferencesRepository)(nil)

// NewGormPreferencesRepository creates a new GormPreferencesRepository
func NewGormPreferencesRepository(db *gorm.DB) *GormPreferencesRepository {
	return &GormPreferencesRepository{db: db}
}

// FindByUser returns shared.ErrNotFound when the user has no stored preferences
func (r *GormPreferencesRepository) FindByUser(ctx context.Context, userID string) (*invoicing.Preferences, error) {
	var model models.UserPreferencesModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		return nil, notFoundOr(err, "preferences")
	}
	return model.ToDomain(), nil
}

// Save upserts the preferences row
func (r *GormPreferencesRepository) Save(ctx context.Context, prefs *invoicing.Preferences) error {
	if prefs.UpdatedAt.IsZero() {
		prefs.UpdatedAt = time.Now()
	}
	model := models.UserPreferencesModelFromDomain(prefs)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"default_currency", "date_format", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
