package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/lebarbier/lebarbier-api/internal/auth"
	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/config"
	"github.com/lebarbier/lebarbier-api/internal/handlers"
	"github.com/lebarbier/lebarbier-api/internal/metrics"
	"github.com/lebarbier/lebarbier-api/internal/middleware"
)

type Params struct {
	fx.In

	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Tokens   *auth.Tokens

	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Appointments *handlers.AppointmentHandler
	Services     *handlers.ServiceHandler
	Employees    *handlers.EmployeeHandler
	Products     *handlers.ProductHandler
	Orders       *handlers.OrderHandler
	Loyalty      *handlers.LoyaltyHandler
	Reviews      *handlers.ReviewHandler
	Users        *handlers.UserHandler
	AuditLogs    *handlers.AuditLogsHandler
}

var (
	public = middleware.Require(authz.Public)
	signed = middleware.Require(authz.Authenticated)
	staff  = middleware.Require(authz.Roles(authz.RoleEmployee, authz.RoleAdmin))
	admin  = middleware.Require(authz.Roles(authz.RoleAdmin))
)

func NewEngine(p Params) *gin.Engine {
	r := gin.New()

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.RequestLogger(p.Logger),
		middleware.Recover(p.Logger),
		middleware.Metrics(p.Metrics),
		middleware.CORS(p.Config.HTTP.AllowedOrigins),
		middleware.Authenticate(p.Tokens),
	)

	// ======================================================
	// OPS
	// ======================================================
	r.GET("/health", p.Health.Health)
	if p.Config.Metrics.Enabled {
		r.GET(p.Config.Metrics.Path, gin.WrapH(promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")

	// ======================================================
	// AUTH
	// ======================================================
	api.POST("/auth/register", public, p.Auth.Register)
	api.POST("/auth/login", public, p.Auth.Login)
	api.GET("/me", signed, p.Auth.Me)
	api.GET("/user/profile", signed, p.Users.Profile)
	api.PUT("/user/profile", signed, p.Users.UpdateProfile)

	// ======================================================
	// APPOINTMENTS
	// ======================================================
	api.GET("/appointments/availability", public, p.Appointments.Availability)
	api.GET("/appointments", signed, p.Appointments.List)
	api.POST("/appointments", signed, p.Appointments.Create)
	api.GET("/appointments/:id", signed, p.Appointments.Get)
	api.PATCH("/appointments/:id/cancel", signed, p.Appointments.Cancel)

	employee := api.Group("/employee", staff)
	employee.GET("/appointments", p.Appointments.StaffList)
	employee.PATCH("/appointments/:id/status", p.Appointments.UpdateStatus)

	// ======================================================
	// CATALOG
	// ======================================================
	api.GET("/services", public, p.Services.List)
	api.POST("/services", admin, p.Services.Create)
	api.GET("/services/:id", public, p.Services.Get)
	api.PATCH("/services/:id", admin, p.Services.Update)
	api.DELETE("/services/:id", admin, p.Services.Delete)

	api.GET("/employees", public, p.Employees.List)
	api.POST("/employees", admin, p.Employees.Create)
	api.GET("/employees/:id", public, p.Employees.Get)
	api.DELETE("/employees/:id", admin, p.Employees.Delete)

	api.GET("/products", public, p.Products.List)
	api.GET("/products/:id", public, p.Products.Get)
	api.POST("/products", admin, p.Products.Create)
	api.PATCH("/products/:id", admin, p.Products.Update)
	api.DELETE("/products/:id", admin, p.Products.Delete)
	api.POST("/products/:id/image", admin, p.Products.UploadImage)

	// ======================================================
	// ORDERS
	// ======================================================
	api.GET("/orders", signed, p.Orders.List)
	api.POST("/orders", signed, p.Orders.Create)
	api.GET("/orders/:id", signed, p.Orders.Get)
	api.PATCH("/orders/:id", signed, p.Orders.Update)
	api.DELETE("/orders/:id", admin, p.Orders.Delete)
	api.GET("/orders/:id/receipt.png", signed, p.Orders.Receipt)

	// ======================================================
	// LOYALTY
	// ======================================================
	api.GET("/loyalty/points", signed, p.Loyalty.Get)
	api.POST("/loyalty/points", admin, p.Loyalty.Award)
	api.PUT("/loyalty/points", signed, p.Loyalty.Redeem)

	api.GET("/loyalty/rewards", public, p.Loyalty.ListRewards)
	api.POST("/loyalty/rewards", admin, p.Loyalty.CreateReward)
	api.PATCH("/loyalty/rewards/:id", admin, p.Loyalty.UpdateReward)
	api.DELETE("/loyalty/rewards/:id", admin, p.Loyalty.DeleteReward)
	api.POST("/loyalty/rewards/:id/redeem", signed, p.Loyalty.ClaimReward)

	// ======================================================
	// REVIEWS
	// ======================================================
	api.GET("/reviews", public, p.Reviews.List)
	api.POST("/reviews", signed, p.Reviews.Create)
	api.GET("/reviews/:id", public, p.Reviews.Get)
	api.PATCH("/reviews/:id", signed, p.Reviews.Update)
	api.DELETE("/reviews/:id", signed, p.Reviews.Delete)
	api.PATCH("/reviews/:id/approval", admin, p.Reviews.Moderate)
	api.PATCH("/reviews/:id/response", admin, p.Reviews.Respond)

	// ======================================================
	// ADMIN
	// ======================================================
	api.GET("/admin/audit-logs", admin, p.AuditLogs.List)
	api.GET("/admin/users", admin, p.Users.List)
	api.POST("/admin/users", admin, p.Users.Create)

	return r
}
