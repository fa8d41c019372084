package persistence

import (
	"context"
	"testing"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/invoiceflow/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormBusinessRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormBusinessRepository(newSQLiteDB(t))

	biz, err := invoicing.NewBusiness("user-1", invoicing.Contact{
		Name:    "Acme Studio",
		Email:   "billing@acme.test",
		Address: "1 Main St\nSpringfield",
	}, "", "eur")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, biz))
	require.NotZero(t, biz.ID)

	t.Run("finds by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, biz.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Studio", found.Name)
		assert.Equal(t, "EUR", found.DefaultCurrency)
		assert.Equal(t, []string{"1 Main St", "Springfield"}, found.AddressLines())
	})

	t.Run("scopes by owner", func(t *testing.T) {
		_, err := repo.FindByIDForUser(ctx, "user-2", biz.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		found, err := repo.FindByIDForUser(ctx, "user-1", biz.ID)
		require.NoError(t, err)
		assert.Equal(t, biz.ID, found.ID)
	})

	t.Run("updates in place", func(t *testing.T) {
		biz.Phone = "555-0100"
		require.NoError(t, repo.Save(ctx, biz))

		list, err := repo.FindAllForUser(ctx, "user-1", shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "555-0100", list[0].Phone)
	})
}

func TestGormClientRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormClientRepository(newSQLiteDB(t))

	for _, name := range []string{"Zeta Corp", "Alpha LLC", "Beta Inc"} {
		c, err := invoicing.NewClient("user-1", invoicing.Contact{Name: name})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, c))
	}

	t.Run("lists ordered by name", func(t *testing.T) {
		list, err := repo.FindAllForUser(ctx, "user-1", shared.Filter{Page: 1, PageSize: 20})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Alpha LLC", list[0].Name)
		assert.Equal(t, "Zeta Corp", list[2].Name)
	})

	t.Run("searches case-insensitively", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "BETA"
		list, err := repo.FindAllForUser(ctx, "user-1", filter)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Beta Inc", list[0].Name)
	})

	t.Run("missing client", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_FindByIDForUser(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormProductRepository(db)

	row := &models.ProductModel{
		OwnedModel: models.OwnedModel{UserID: "user-1"},
		Name:       "Consulting hour",
		Price:      decimal.RequireFromString("120.00"),
		IsActive:   true,
	}
	require.NoError(t, db.Create(row).Error)

	product, err := repo.FindByIDForUser(ctx, "user-1", row.ID)
	require.NoError(t, err)
	assert.Equal(t, "Consulting hour", product.Name)
	assert.True(t, product.Price.Equal(decimal.NewFromInt(120)))

	_, err = repo.FindByIDForUser(ctx, "user-2", row.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_SaveAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newSQLiteDB(t))

	var retired *invoicing.Product
	for _, p := range []struct{ name, desc, price string }{
		{"Support plan", "Monthly retainer", "500"},
		{"Consulting hour", "", "120"},
		{"Legacy audit", "Retired offering", "900"},
	} {
		product, err := invoicing.NewProduct("user-1", p.name, p.desc, decimal.RequireFromString(p.price))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, product))
		require.NotZero(t, product.ID)
		retired = product
	}
	retired.IsActive = false
	require.NoError(t, repo.Save(ctx, retired))

	t.Run("lists ordered by name", func(t *testing.T) {
		list, err := repo.FindAllForUser(ctx, "user-1", shared.DefaultFilter(), false)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Consulting hour", list[0].Name)
		assert.Equal(t, "Support plan", list[2].Name)
	})

	t.Run("active only", func(t *testing.T) {
		list, err := repo.FindAllForUser(ctx, "user-1", shared.DefaultFilter(), true)
		require.NoError(t, err)
		require.Len(t, list, 2)
		for _, p := range list {
			assert.True(t, p.IsActive)
		}
	})

	t.Run("searches description", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "retainer"
		list, err := repo.FindAllForUser(ctx, "user-1", filter, false)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Support plan", list[0].Name)
	})

	t.Run("scoped by owner", func(t *testing.T) {
		list, err := repo.FindAllForUser(ctx, "user-2", shared.DefaultFilter(), false)
		require.NoError(t, err)
		assert.Empty(t, list)

		found, err := repo.FindByID(ctx, retired.ID)
		require.NoError(t, err)
		assert.False(t, found.IsActive)
	})
}

func TestGormTemplateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormTemplateRepository(newSQLiteDB(t))

	empty, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.SeedBuiltins(ctx))
	require.NoError(t, repo.SeedBuiltins(ctx))

	list, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, invoicing.TemplateClassic, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.Equal(t, invoicing.TemplateProfessional, list[2].ID)
}

func TestGormPreferencesRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPreferencesRepository(newSQLiteDB(t))

	_, err := repo.FindByUser(ctx, "user-1")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	prefs := invoicing.DefaultPreferences("user-1")
	require.NoError(t, repo.Save(ctx, &prefs))

	require.NoError(t, prefs.Update("gbp", invoicing.DateFormatEU))
	require.NoError(t, repo.Save(ctx, &prefs))

	found, err := repo.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "GBP", found.DefaultCurrency)
	assert.Equal(t, invoicing.DateFormatEU, found.DateFormat)
}
