package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cms-backend/internal/config"
	"cms-backend/internal/handler"
	"cms-backend/internal/middleware"
	"cms-backend/internal/service"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	Company     *handler.CompanyHandler
	Inventory   *handler.InventoryHandler
	Analytics   *handler.AnalyticsHandler
	Country     *handler.CountryHandler
	EmailConfig *handler.EmailConfigHandler
	User        *handler.UserHandler
	Audit       *handler.AuditHandler
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	audit func(http.Handler) http.Handler,
	h Handlers,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	r.Route("/api/v2", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.With(audit).Post("/register", h.Auth.Register)
			auth.With(audit).Post("/login", h.Auth.Login)
			auth.With(audit).Post("/refresh_token", h.Auth.Refresh)
			auth.With(authMiddleware.RequireAuth, audit).Post("/switch_company", h.Auth.SwitchCompany)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
		})

		api.Group(func(protected chi.Router) {
			protected.Use(authMiddleware.RequireAuth)
			protected.Use(audit)

			protected.Route("/categories", func(categories chi.Router) {
				categories.With(authMiddleware.RequirePermission(service.OpInventoryRead)).Get("/", h.Inventory.ListCategories)
				categories.With(authMiddleware.RequirePermission(service.OpInventoryRead)).Get("/{categoryID}", h.Inventory.GetCategory)
				categories.With(authMiddleware.RequirePermission(service.OpInventoryWrite)).Post("/", h.Inventory.CreateCategory)
				categories.With(authMiddleware.RequirePermission(service.OpInventoryWrite)).Put("/{categoryID}", h.Inventory.UpdateCategory)
				categories.With(authMiddleware.RequirePermission(service.OpInventoryWrite)).Delete("/{categoryID}", h.Inventory.DeleteCategory)
			})

			protected.Route("/items", func(items chi.Router) {
				items.With(authMiddleware.RequirePermission(service.OpInventoryRead)).Get("/", h.Inventory.ListItems)
				items.With(authMiddleware.RequirePermission(service.OpInventoryRead)).Get("/{itemID}", h.Inventory.GetItem)
				items.With(authMiddleware.RequirePermission(service.OpInventoryWrite)).Post("/", h.Inventory.CreateItem)
				items.With(authMiddleware.RequirePermission(service.OpInventoryWrite)).Put("/{itemID}", h.Inventory.UpdateItem)
				items.With(authMiddleware.RequirePermission(service.OpInventoryWrite)).Delete("/{itemID}", h.Inventory.DeleteItem)
			})

			protected.With(authMiddleware.RequirePermission(service.OpInventoryRead)).Get("/analytics/overview", h.Analytics.Overview)

			protected.Route("/companies", func(companies chi.Router) {
				companies.With(authMiddleware.RequirePermission(service.OpCompanyRead)).Get("/", h.Company.List)
				companies.With(authMiddleware.RequirePermission(service.OpCompanyRead)).Get("/{companyID}", h.Company.Get)
				companies.With(authMiddleware.RequirePermission(service.OpCompanyAdmin)).Post("/", h.Company.Create)
				companies.With(authMiddleware.RequirePermission(service.OpCompanyAdmin)).Put("/{companyID}", h.Company.Update)
				companies.With(authMiddleware.RequirePermission(service.OpCompanyAdmin)).Delete("/{companyID}", h.Company.Delete)
			})

			protected.Route("/countries", func(countries chi.Router) {
				countries.With(authMiddleware.RequirePermission(service.OpCountryRead)).Get("/", h.Country.List)
				countries.With(authMiddleware.RequirePermission(service.OpCountryRead)).Get("/{countryID}", h.Country.Get)
				countries.With(authMiddleware.RequirePermission(service.OpCountryWrite)).Post("/", h.Country.Create)
				countries.With(authMiddleware.RequirePermission(service.OpCountryWrite)).Put("/{countryID}", h.Country.Update)
				countries.With(authMiddleware.RequirePermission(service.OpCountryWrite)).Delete("/{countryID}", h.Country.Delete)
			})

			protected.Route("/settings/email", func(email chi.Router) {
				email.With(authMiddleware.RequirePermission(service.OpSettingsRead)).Get("/", h.EmailConfig.Get)
				email.With(authMiddleware.RequirePermission(service.OpSettingsWrite)).Put("/", h.EmailConfig.Save)
				email.With(authMiddleware.RequirePermission(service.OpSettingsWrite)).Delete("/", h.EmailConfig.Delete)
			})

			protected.Route("/users", func(users chi.Router) {
				users.With(authMiddleware.RequirePermission(service.OpUserAdmin)).Get("/", h.User.List)
				users.With(authMiddleware.RequirePermission(service.OpUserAdmin)).Get("/{userID}", h.User.Get)
				users.With(authMiddleware.RequirePermission(service.OpUserAdmin)).Put("/{userID}/roles", h.User.UpdateRoles)
				users.With(authMiddleware.RequirePermission(service.OpUserAdmin)).Post("/{userID}/companies", h.User.AddMembership)
				users.With(authMiddleware.RequirePermission(service.OpUserAdmin)).Delete("/{userID}/companies/{companyID}", h.User.RemoveMembership)
			})

			protected.With(authMiddleware.RequirePermission(service.OpAuditRead)).Get("/audit", h.Audit.Query)
		})
	})

	return r
}
