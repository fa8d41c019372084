package models

import (
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
)

// UserPreferencesModel stores display settings per user
type UserPreferencesModel struct {
	UserID          string    `gorm:"type:varchar(255);primaryKey"`
	DefaultCurrency string    `gorm:"type:varchar(10);not null;default:'USD'"`
	DateFormat      string    `gorm:"type:varchar(20);not null;default:'MM/DD/YYYY'"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserPreferencesModel) TableName() string {
	return "user_preferences"
}

// ToDomain converts the row to domain Preferences
func (m *UserPreferencesModel) ToDomain() *invoicing.Preferences {
	return &invoicing.Preferences{
		UserID:          m.UserID,
		DefaultCurrency: m.DefaultCurrency,
		DateFormat:      invoicing.DateFormat(m.DateFormat),
		UpdatedAt:       m.UpdatedAt,
	}
}

// UserPreferencesModelFromDomain converts domain Preferences to a row
func UserPreferencesModelFromDomain(p *invoicing.Preferences) *UserPreferencesModel {
	return &UserPreferencesModel{
		UserID:          p.UserID,
		DefaultCurrency: p.DefaultCurrency,
		DateFormat:      string(p.DateFormat),
		UpdatedAt:       p.UpdatedAt,
	}
}
