package handler

import (
	"fmt"
	"net/http"
	"testing"

	invoicingapp "github.com/invoiceflow/backend/internal/application/invoicing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessHandler(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/businesses", ownerID, map[string]string{
		"name":             "Acme Studio",
		"email":            "billing@acme.test",
		"default_currency": "gbp",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[invoicingapp.BusinessResponse](t, rec).Data
	assert.Equal(t, "GBP", created.DefaultCurrency)

	path := fmt.Sprintf("/api/v1/businesses/%d", created.ID)
	rec = env.do(t, http.MethodGet, path, ownerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Studio", decode[invoicingapp.BusinessResponse](t, rec).Data.Name)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path, strangerID, nil).Code)

	rec = env.do(t, http.MethodGet, "/api/v1/businesses", strangerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]invoicingapp.BusinessResponse](t, rec).Data)

	rec = env.do(t, http.MethodPost, "/api/v1/businesses", ownerID, map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", decode[any](t, rec).Error.Code)
}

func TestBusinessHandler_LogoMustBeInline(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/businesses", ownerID, map[string]string{
		"name": "Acme Studio",
		"logo": "/etc/hostname",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	body := decode[any](t, rec)
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	require.NotEmpty(t, body.Error.Details)
	assert.Equal(t, "logo", body.Error.Details[0].Field)

	rec = env.do(t, http.MethodPost, "/api/v1/businesses", ownerID, map[string]string{
		"name": "Acme Studio",
		"logo": "data:image/png;base64,AAAA",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, decode[invoicingapp.BusinessResponse](t, rec).Data.HasLogo)
}

func TestClientHandler(t *testing.T) {
	env := newAPIEnv(t)

	for _, name := range []string{"Globex Corp", "Initech"} {
		rec := env.do(t, http.MethodPost, "/api/v1/clients", ownerID, map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.do(t, http.MethodGet, "/api/v1/clients?search=init", ownerID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	clients := decode[[]invoicingapp.ClientResponse](t, rec).Data
	require.Len(t, clients, 1)
	assert.Equal(t, "Initech", clients[0].Name)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/clients/9999", ownerID, nil).Code)
}

func TestProductHandler(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/products", ownerID, map[string]any{
		"name":        "Consulting hour",
		"description": "Senior engineer time",
		"price":       "120.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[invoicingapp.ProductResponse](t, rec).Data
	assert.True(t, created.IsActive)
	assert.Equal(t, "120.5", created.Price.String())

	path := fmt.Sprintf("/api/v1/products/%d", created.ID)
	rec = env.do(t, http.MethodGet, path, ownerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Consulting hour", decode[invoicingapp.ProductResponse](t, rec).Data.Name)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path, strangerID, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/products/9999", ownerID, nil).Code)

	rec = env.do(t, http.MethodPost, "/api/v1/products", ownerID, map[string]any{"name": "Retainer", "price": "500"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/products?search=engineer&active=true", ownerID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	products := decode[[]invoicingapp.ProductResponse](t, rec).Data
	require.Len(t, products, 1)
	assert.Equal(t, created.ID, products[0].ID)

	rec = env.do(t, http.MethodGet, "/api/v1/products", strangerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]invoicingapp.ProductResponse](t, rec).Data)

	businessID, clientID := env.seedParties(t, ownerID)
	body := invoiceBody(businessID, clientID)
	body["items"].([]map[string]any)[0]["product_id"] = created.ID
	rec = env.do(t, http.MethodPost, "/api/v1/invoices", ownerID, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	items := decode[invoicingapp.InvoiceDetailResponse](t, rec).Data.Items
	require.NotNil(t, items[0].ProductID)
	assert.Equal(t, created.ID, *items[0].ProductID)
}

func TestProductHandler_Rejections(t *testing.T) {
	env := newAPIEnv(t)

	for name, body := range map[string]map[string]any{
		"missing name":     {"price": "10"},
		"negative price":   {"name": "Refund", "price": "-1"},
		"fraction of cent": {"name": "Widget", "price": "1.005"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/products", ownerID, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}
