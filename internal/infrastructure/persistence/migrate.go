package persistence

import (
	"github.com/invoiceflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AutoMigrate creates the invoicing tables from the GORM models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.BusinessModel{},
		&models.ClientModel{},
		&models.ProductModel{},
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
		&models.InvoiceTemplateModel{},
		&models.UserPreferencesModel{},
	)
}
