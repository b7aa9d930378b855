package router

import (
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	System      *handler.SystemHandler
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Account     *handler.AccountHandler
	Contact     *handler.ContactHandler
	Lead        *handler.LeadHandler
	Opportunity *handler.OpportunityHandler
	Activity    *handler.ActivityHandler
	Product     *handler.ProductHandler
	Order       *handler.OrderHandler
	Contract    *handler.ContractHandler
	Invoice     *handler.InvoiceHandler
	Payment     *handler.PaymentHandler
	Report      *handler.ReportHandler
}

// Config holds router dependencies
type Config struct {
	Logger         *zap.Logger
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist
	CORS           middleware.CORSConfig
	Tracing        middleware.TracingConfig
	Handlers       Handlers
}

// Setup builds the gin engine with all middleware and routes mounted
func Setup(cfg Config) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(cfg.Logger),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.CORSWithConfig(cfg.CORS),
	)

	h := cfg.Handlers

	engine.GET("/health", h.System.Health)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService:     cfg.JWTService,
		TokenBlacklist: cfg.TokenBlacklist,
		SkipPaths:      []string{"/api/v1/auth/login", "/api/v1/system/info"},
		Logger:         cfg.Logger,
	}))
	if cfg.Tracing.Enabled {
		api.Use(middleware.TracingAttributeInjector())
	}

	system := api.Group("/system")
	{
		system.GET("/info", h.System.Info)
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.GET("/me", h.Auth.Me)
	}

	users := api.Group("/users")
	{
		users.POST("", middleware.RequireAdmin(), h.User.Create)
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id", h.User.Update)
		users.DELETE("/:id", middleware.RequireAdmin(), h.User.Delete)
	}

	crm := api.Group("/crm")
	{
		accounts := crm.Group("/accounts")
		{
			accounts.POST("", h.Account.Create)
			accounts.GET("", h.Account.List)
			accounts.GET("/:id", h.Account.Get)
			accounts.PUT("/:id", h.Account.Update)
			accounts.DELETE("/:id", h.Account.Delete)
		}

		contacts := crm.Group("/contacts")
		{
			contacts.POST("", h.Contact.Create)
			contacts.GET("", h.Contact.List)
			contacts.GET("/:id", h.Contact.Get)
			contacts.PUT("/:id", h.Contact.Update)
			contacts.DELETE("/:id", h.Contact.Delete)
		}

		leads := crm.Group("/leads")
		{
			leads.POST("", h.Lead.Create)
			leads.GET("", h.Lead.List)
			leads.GET("/:id", h.Lead.Get)
			leads.PUT("/:id", h.Lead.Update)
			leads.POST("/:id/convert", h.Lead.Convert)
			leads.DELETE("/:id", h.Lead.Delete)
		}

		opportunities := crm.Group("/opportunities")
		{
			opportunities.POST("", h.Opportunity.Create)
			opportunities.GET("", h.Opportunity.List)
			opportunities.GET("/:id", h.Opportunity.Get)
			opportunities.PUT("/:id", h.Opportunity.Update)
			opportunities.DELETE("/:id", h.Opportunity.Delete)
			opportunities.POST("/:id/line-items", h.Opportunity.AddLineItem)
			opportunities.PUT("/:id/line-items/:itemId", h.Opportunity.UpdateLineItem)
			opportunities.DELETE("/:id/line-items/:itemId", h.Opportunity.DeleteLineItem)
			opportunities.POST("/:id/generate-order", h.Order.Generate)
			opportunities.POST("/:id/generate-contract", h.Contract.Generate)
		}

		activities := crm.Group("/activities")
		{
			activities.POST("", h.Activity.Create)
			activities.GET("", h.Activity.List)
			activities.GET("/:id", h.Activity.Get)
			activities.PUT("/:id", h.Activity.Update)
			activities.DELETE("/:id", h.Activity.Delete)
		}
	}

	catalog := api.Group("/catalog")
	{
		products := catalog.Group("/products")
		{
			products.POST("", h.Product.Create)
			products.GET("", h.Product.List)
			products.GET("/:id", h.Product.Get)
			products.PUT("/:id", h.Product.Update)
			products.DELETE("/:id", h.Product.Delete)
		}
	}

	billing := api.Group("/billing")
	{
		orders := billing.Group("/orders")
		{
			orders.GET("", h.Order.List)
			orders.GET("/:id", h.Order.Get)
			orders.PUT("/:id", h.Order.Update)
			orders.DELETE("/:id", h.Order.Delete)
			orders.POST("/:id/generate-invoice", h.Invoice.GenerateFromOrder)
		}

		contracts := billing.Group("/contracts")
		{
			contracts.GET("", h.Contract.List)
			contracts.GET("/:id", h.Contract.Get)
			contracts.PUT("/:id", h.Contract.Update)
			contracts.DELETE("/:id", h.Contract.Delete)
			contracts.POST("/:id/generate-invoice", h.Invoice.GenerateFromContract)
		}

		invoices := billing.Group("/invoices")
		{
			invoices.GET("", h.Invoice.List)
			invoices.GET("/:id", h.Invoice.Get)
			invoices.PUT("/:id", h.Invoice.Update)
			invoices.DELETE("/:id", h.Invoice.Delete)
			invoices.POST("/:id/payments", h.Invoice.LogPayment)
			invoices.GET("/:id/payments", h.Invoice.ListPayments)
		}

		payments := billing.Group("/payments")
		{
			payments.GET("", h.Payment.List)
			payments.GET("/:id", h.Payment.Get)
			payments.PUT("/:id", h.Payment.Update)
			payments.DELETE("/:id", h.Payment.Delete)
		}
	}

	reports := api.Group("/reports")
	{
		reports.GET("/payment-matrix", h.Report.PaymentMatrix)
	}

	return engine
}
