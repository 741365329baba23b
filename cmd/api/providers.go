package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/auth"
	"github.com/lebarbier/lebarbier-api/internal/config"
	"github.com/lebarbier/lebarbier-api/internal/domain/catalog"
	ordering "github.com/lebarbier/lebarbier-api/internal/domain/order"
	"github.com/lebarbier/lebarbier-api/internal/handlers"
	"github.com/lebarbier/lebarbier-api/internal/infra/cache"
	"github.com/lebarbier/lebarbier-api/internal/infra/repository"
	"github.com/lebarbier/lebarbier-api/internal/infra/storage"
	"github.com/lebarbier/lebarbier-api/internal/metrics"
	appointmentuc "github.com/lebarbier/lebarbier-api/internal/usecase/appointment"
	authuc "github.com/lebarbier/lebarbier-api/internal/usecase/auth"
	cataloguc "github.com/lebarbier/lebarbier-api/internal/usecase/catalog"
	loyaltyuc "github.com/lebarbier/lebarbier-api/internal/usecase/loyalty"
	orderuc "github.com/lebarbier/lebarbier-api/internal/usecase/order"
	reviewuc "github.com/lebarbier/lebarbier-api/internal/usecase/review"
)

// --------------------------------------------------
// infra
// --------------------------------------------------

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newMetrics(reg *prometheus.Registry) (*metrics.Metrics, error) {
	return metrics.New(reg)
}

func newPinger(db *gorm.DB) (handlers.Pinger, error) {
	return db.DB()
}

func newTokenIssuer(t *auth.Tokens) authuc.TokenIssuer {
	return t
}

type auditParams struct {
	fx.In
	fx.Lifecycle

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	DB      *gorm.DB
}

// newAuditPublisher starts the event workers. Stop drains whatever is
// still queued before the database closes.
func newAuditPublisher(p auditParams) audit.Publisher {
	d := audit.NewDispatcher(
		p.Logger,
		p.Metrics,
		p.Config.Audit.QueueSize,
		p.Config.Audit.Workers,
		audit.NewStore(p.DB),
		audit.NewNotifier(p.Logger),
	)

	p.Append(fx.Hook{
		OnStop: d.Close,
	})

	return d
}

// newProductCatalog fronts the product table with Redis when a client is
// configured. Without one, stock moves have nothing to invalidate.
func newProductCatalog(
	repo *repository.ProductGormRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log *slog.Logger,
) (catalog.ProductRepository, catalog.ProductInvalidator) {
	if rdb == nil {
		return repo, catalog.NopInvalidator{}
	}
	cached := cache.NewCachedProductRepository(repo, rdb, cfg.Redis.ProductTTL, log)
	return cached, cached
}

// --------------------------------------------------
// use cases
// --------------------------------------------------

type appointmentUsecases struct {
	fx.Out

	Create       *appointmentuc.CreateAppointment
	List         *appointmentuc.ListAppointments
	Get          *appointmentuc.GetAppointment
	Cancel       *appointmentuc.CancelAppointment
	UpdateStatus *appointmentuc.UpdateStatus
	Availability *appointmentuc.GetAvailability
}

func newAppointmentUsecases(
	repo *repository.AppointmentGormRepository,
	pub audit.Publisher,
	settings appointmentuc.Settings,
) appointmentUsecases {
	return appointmentUsecases{
		Create:       appointmentuc.NewCreateAppointment(repo, pub, settings),
		List:         appointmentuc.NewListAppointments(repo, settings),
		Get:          appointmentuc.NewGetAppointment(repo),
		Cancel:       appointmentuc.NewCancelAppointment(repo, pub, settings),
		UpdateStatus: appointmentuc.NewUpdateStatus(repo, pub, settings),
		Availability: appointmentuc.NewGetAvailability(repo, settings),
	}
}

type orderUsecases struct {
	fx.Out

	Create *orderuc.CreateOrder
	List   *orderuc.ListOrders
	Get    *orderuc.GetOrder
	Update *orderuc.UpdateOrder
	Delete *orderuc.DeleteOrder
}

func newOrderUsecases(
	repo *repository.OrderGormRepository,
	inv catalog.ProductInvalidator,
	pub audit.Publisher,
	shipping ordering.ShippingPolicy,
) orderUsecases {
	return orderUsecases{
		Create: orderuc.NewCreateOrder(repo, inv, pub, shipping),
		List:   orderuc.NewListOrders(repo),
		Get:    orderuc.NewGetOrder(repo),
		Update: orderuc.NewUpdateOrder(repo, inv, pub),
		Delete: orderuc.NewDeleteOrder(repo, inv, pub),
	}
}

type loyaltyUsecases struct {
	fx.Out

	Get     *loyaltyuc.GetPoints
	Award   *loyaltyuc.AwardPoints
	Redeem  *loyaltyuc.RedeemPoints
	Rewards *loyaltyuc.Rewards
}

func newLoyaltyUsecases(
	repo *repository.LoyaltyGormRepository,
	rewards *repository.LoyaltyRewardGormRepository,
	pub audit.Publisher,
) loyaltyUsecases {
	return loyaltyUsecases{
		Get:     loyaltyuc.NewGetPoints(repo),
		Award:   loyaltyuc.NewAwardPoints(repo, pub),
		Redeem:  loyaltyuc.NewRedeemPoints(repo, pub),
		Rewards: loyaltyuc.NewRewards(rewards, repo, pub),
	}
}

type authUsecases struct {
	fx.Out

	Register      *authuc.Register
	Login         *authuc.Login
	Me            *authuc.Me
	UpdateProfile *authuc.UpdateProfile
	ListUsers     *authuc.ListUsers
	CreateUser    *authuc.CreateUser
}

func newAuthUsecases(users *repository.UserGormRepository, tokens authuc.TokenIssuer, pub audit.Publisher) authUsecases {
	return authUsecases{
		Register:      authuc.NewRegister(users, tokens, pub),
		Login:         authuc.NewLogin(users, tokens),
		Me:            authuc.NewMe(users),
		UpdateProfile: authuc.NewUpdateProfile(users, pub),
		ListUsers:     authuc.NewListUsers(users),
		CreateUser:    authuc.NewCreateUser(users, pub),
	}
}

type catalogUsecases struct {
	fx.Out

	Products  *cataloguc.Products
	Services  *cataloguc.Services
	Employees *cataloguc.Employees
}

func newCatalogUsecases(
	products catalog.ProductRepository,
	services *repository.ServiceGormRepository,
	employees *repository.EmployeeGormRepository,
	users *repository.UserGormRepository,
	store storage.ObjectStore,
	pub audit.Publisher,
	cfg *config.Config,
) catalogUsecases {
	return catalogUsecases{
		Products:  cataloguc.NewProducts(products, store, pub, cfg.S3.MaxWidth, cfg.S3.Quality),
		Services:  cataloguc.NewServices(services),
		Employees: cataloguc.NewEmployees(employees, users),
	}
}

func newReviewUsecases(repo *repository.ReviewGormRepository, pub audit.Publisher) *reviewuc.Reviews {
	return reviewuc.NewReviews(repo, pub)
}

// --------------------------------------------------
// http
// --------------------------------------------------

type serverParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
	Engine *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	srv := &http.Server{
		Addr:         p.Config.Addr(),
		Handler:      p.Engine,
		ReadTimeout:  p.Config.HTTP.ReadTimeout,
		WriteTimeout: p.Config.HTTP.WriteTimeout,
		IdleTimeout:  p.Config.HTTP.IdleTimeout,
	}

	p.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return pkgerrors.Wrapf(err, "listen %s", srv.Addr)
			}

			p.Logger.Info("starting HTTP server", slog.String("addr", srv.Addr))

			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("HTTP server stopped", slog.Any("error", err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, p.Config.HTTP.ShutdownTimeout)
			defer cancel()

			p.Logger.Info("shutting down HTTP server")
			return pkgerrors.WithStack(srv.Shutdown(ctx))
		},
	})

	return srv
}

func startServer(*http.Server) {}
