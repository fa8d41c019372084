// Package models contains GORM persistence models that map to database tables.
// Domain types stay free of ORM tags; each model converts with ToDomain/FromDomain.
//
// Structure:
//   - base.go: BaseModel and OwnedModel
//   - invoice.go: invoices and invoice_items
//   - party.go: businesses, clients and products
//   - template.go: invoice_templates
//   - preferences.go: user_preferences
package models
