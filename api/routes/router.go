package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oakmart/storefront-backend/api/controllers"
	"github.com/oakmart/storefront-backend/api/middleware"
	"github.com/oakmart/storefront-backend/pkg/auth/session"
	"github.com/oakmart/storefront-backend/pkg/config"
	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/logger"
	"github.com/oakmart/storefront-backend/pkg/metrics"
	"github.com/oakmart/storefront-backend/pkg/redis"
)

// Controllers bundles every handler group the router mounts.
type Controllers struct {
	Health        *controllers.HealthController
	Auth          *controllers.AuthController
	Profile       *controllers.ProfileController
	Catalog       *controllers.CatalogController
	Cart          *controllers.CartController
	GuestCart     *controllers.GuestCartController
	Orders        *controllers.OrdersController
	AdminProducts *controllers.AdminProductsController
	AdminOrders   *controllers.AdminOrdersController
	AdminUsers    *controllers.AdminUsersController
	AdminReports  *controllers.AdminReportsController
}

// Dependencies carries everything the middleware chain needs.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry
}

// New assembles the full HTTP surface.
func New(deps Dependencies, ctrl Controllers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.RequestID(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.CORSOrigins))
	r.Use(middleware.Metrics(deps.HTTPMetrics))
	r.Use(middleware.Logging(deps.Logger))

	r.Get("/health/live", ctrl.Health.Live)
	r.Get("/health/ready", ctrl.Health.Ready)

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	loginLimit := middleware.AuthRateLimit(deps.Redis, middleware.LoginPolicy(deps.Config.AuthRateLimit), deps.Logger)
	registerLimit := middleware.AuthRateLimit(deps.Redis, middleware.RegisterPolicy(deps.Config.AuthRateLimit), deps.Logger)

	authn := middleware.Auth(deps.Config.JWT, deps.Sessions, deps.Logger)
	idem := middleware.Idempotency(deps.Redis, []middleware.IdempotencyRule{
		{Method: http.MethodPost, Pattern: "/api/orders", TTL: 24 * time.Hour},
	}, deps.Logger)

	r.Route("/api", func(api chi.Router) {
		// public catalog reads
		api.Get("/products", ctrl.Catalog.ListProducts)
		api.Get("/products/{id}", ctrl.Catalog.GetProduct)
		api.Get("/categories", ctrl.Catalog.ListCategories)
		api.Get("/brands", ctrl.Catalog.ListBrands)

		api.Route("/auth", func(auth chi.Router) {
			auth.With(registerLimit).Post("/register", ctrl.Auth.Register)
			auth.With(loginLimit).Post("/login", ctrl.Auth.Login)
			auth.Post("/refresh", ctrl.Auth.Refresh)
			auth.With(loginLimit).Post("/forgot-password", ctrl.Auth.ForgotPassword)
			auth.Post("/reset-password", ctrl.Auth.ResetPassword)
			auth.With(authn).Post("/logout", ctrl.Auth.Logout)
		})

		api.Route("/guest-cart", func(guest chi.Router) {
			guest.Post("/", ctrl.GuestCart.Create)
			guest.Get("/{token}", ctrl.GuestCart.Get)
			guest.Post("/{token}/items", ctrl.GuestCart.AddItem)
			guest.Patch("/{token}/items", ctrl.GuestCart.UpdateItem)
			guest.Delete("/{token}", ctrl.GuestCart.Delete)
		})

		api.Group(func(private chi.Router) {
			private.Use(authn)

			private.Get("/profile", ctrl.Profile.Get)
			private.Put("/profile", ctrl.Profile.Update)

			private.Route("/cart", func(cart chi.Router) {
				cart.Get("/", ctrl.Cart.Get)
				cart.Delete("/", ctrl.Cart.Clear)
				cart.Post("/items", ctrl.Cart.AddItem)
				cart.Patch("/items/{id}", ctrl.Cart.UpdateItem)
				cart.Delete("/items/{id}", ctrl.Cart.RemoveItem)
			})

			private.Route("/orders", func(orders chi.Router) {
				orders.With(idem).Post("/", ctrl.Orders.Create)
				orders.Get("/", ctrl.Orders.List)
				orders.Get("/{id}", ctrl.Orders.Get)
				orders.Patch("/{id}", ctrl.Orders.Patch)
			})

			private.Route("/admin", func(admin chi.Router) {
				admin.Use(middleware.RequireRole(enums.UserRoleAdmin, deps.Logger))

				admin.Route("/products", func(products chi.Router) {
					products.Get("/", ctrl.AdminProducts.List)
					products.Post("/", ctrl.AdminProducts.Create)
					products.Get("/{id}", ctrl.AdminProducts.Get)
					products.Patch("/{id}", ctrl.AdminProducts.Update)
					products.Delete("/{id}", ctrl.AdminProducts.Delete)
				})

				admin.Route("/orders", func(orders chi.Router) {
					orders.Get("/", ctrl.AdminOrders.List)
					orders.Get("/{id}", ctrl.AdminOrders.Get)
					orders.Patch("/{id}/status", ctrl.AdminOrders.UpdateStatus)
				})

				admin.Route("/users", func(users chi.Router) {
					users.Get("/", ctrl.AdminUsers.List)
					users.Patch("/{id}", ctrl.AdminUsers.Update)
				})

				admin.Get("/reports/revenue", ctrl.AdminReports.Revenue)
			})
		})
	})

	return r
}
