package router

import (
	"github.com/gin-gonic/gin"
	"github.com/invoiceflow/backend/internal/interfaces/http/handler"
)

// Handlers bundles the HTTP handlers served under /api/v1
type Handlers struct {
	Invoice     *handler.InvoiceHandler
	Document    *handler.DocumentHandler
	Template    *handler.TemplateHandler
	Preferences *handler.PreferencesHandler
	Business    *handler.BusinessHandler
	Client      *handler.ClientHandler
	Product     *handler.ProductHandler
	Health      *handler.HealthHandler
}

// Options tunes route registration
type Options struct {
	// Auth guards every versioned route except health; nil leaves routes open
	Auth gin.HandlerFunc
	// AfterAuth runs once the caller is known, e.g. to tag trace spans
	AfterAuth []gin.HandlerFunc
	// DocumentLimit throttles PDF rendering; nil disables it
	DocumentLimit gin.HandlerFunc
}

// RegisterInvoicing wires every InvoiceFlow route onto the engine
func RegisterInvoicing(engine *gin.Engine, h Handlers, opts Options, routerOpts ...RouterOption) *Router {
	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}

	r := NewRouter(engine, routerOpts...)
	if h.Health != nil {
		r.Register(NewDomainGroup("health", "/health").GET("", h.Health.Health))
	}

	guard := func(dg *DomainGroup) *DomainGroup {
		if opts.Auth != nil {
			dg.Use(opts.Auth)
		}
		return dg.Use(opts.AfterAuth...)
	}

	invoices := guard(NewDomainGroup("invoices", "/invoices")).
		POST("", h.Invoice.Create).
		GET("", h.Invoice.List).
		GET("/stats/summary", h.Invoice.Summary).
		GET("/:id", h.Invoice.GetByID).
		PUT("/:id", h.Invoice.Update).
		PUT("/:id/items", h.Invoice.ReplaceItems).
		PUT("/:id/status", h.Invoice.UpdateStatus).
		DELETE("/:id", h.Invoice.Delete)
	if opts.DocumentLimit != nil {
		invoices.GET("/:id/document", opts.DocumentLimit, h.Document.Download)
	} else {
		invoices.GET("/:id/document", h.Document.Download)
	}
	r.Register(invoices)

	r.Register(guard(NewDomainGroup("templates", "/invoice-templates")).
		GET("", h.Template.List).
		GET("/:id/preview", h.Template.Preview))

	r.Register(guard(NewDomainGroup("preferences", "/preferences")).
		GET("", h.Preferences.Get).
		PUT("", h.Preferences.Update))

	r.Register(guard(NewDomainGroup("businesses", "/businesses")).
		POST("", h.Business.Create).
		GET("", h.Business.List).
		GET("/:id", h.Business.GetByID))

	r.Register(guard(NewDomainGroup("clients", "/clients")).
		POST("", h.Client.Create).
		GET("", h.Client.List).
		GET("/:id", h.Client.GetByID))

	r.Register(guard(NewDomainGroup("products", "/products")).
		POST("", h.Product.Create).
		GET("", h.Product.List).
		GET("/:id", h.Product.GetByID))

	r.Setup()
	return r
}
