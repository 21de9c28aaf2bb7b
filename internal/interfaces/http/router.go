package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mvinueza/contaec/internal/application/auth"
	"github.com/mvinueza/contaec/internal/application/billing"
	"github.com/mvinueza/contaec/internal/application/usecase"
	"github.com/mvinueza/contaec/internal/domain/entity"
	"github.com/mvinueza/contaec/pkg/security"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC   *usecase.CompanyUseCase
	Modules     *usecase.ModuleService
	AuthUC      *auth.AuthUseCase
	ClientUC    *billing.ClientUseCase
	InvoiceUC   *billing.InvoiceUseCase
	RetentionUC *billing.RetentionUseCase
	Tokens      *security.TokenService
	Guard       *security.Guard
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público, con límite de tasa por IP)
	authGroup := api.Group("/auth", RateLimit(deps.Guard, 30, time.Minute))
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)

	// Companies (alta pública para el onboarding; gestión de módulos protegida)
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Post("/", companyHandler.Create)

	// Rutas protegidas (requieren Bearer access token)
	protected := api.Group("/", AuthMiddleware(deps.Tokens))

	protected.Get("/companies", RequireRole(entity.RoleAdmin), companyHandler.List)
	protected.Get("/companies/:id", companyHandler.GetByID)
	protected.Get("/companies/:id/modules", companyHandler.GetModules)
	protected.Put("/companies/:id/modules/:module", RequireRole(entity.RoleAdmin), companyHandler.SetModule)

	// Clients (protegido, módulo billing)
	clients := protected.Group("/clients", RequireModule(entity.ModuleBilling, deps.Modules))
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)

	// Consulta de contribuyentes al catastro SRI (protegido)
	protected.Get("/contribuyentes/:ruc", clientHandler.LookupContribuyente)

	// Invoices (protegido, módulo billing)
	invoices := protected.Group("/invoices", RequireModule(entity.ModuleBilling, deps.Modules))
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/status", invoiceHandler.GetSRIStatus)

	// Retentions (protegido, módulo retentions)
	retentions := protected.Group("/retentions", RequireModule(entity.ModuleRetentions, deps.Modules))
	retentionHandler := NewRetentionHandler(deps.RetentionUC)
	retentions.Post("/calculate", retentionHandler.Calculate)
	retentions.Post("/", retentionHandler.Register)
	retentions.Get("/", retentionHandler.List)
}
