package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/lebarbier/lebarbier-api/internal/auth"
	"github.com/lebarbier/lebarbier-api/internal/config"
	"github.com/lebarbier/lebarbier-api/internal/db"
	"github.com/lebarbier/lebarbier-api/internal/handlers"
	"github.com/lebarbier/lebarbier-api/internal/infra/cache"
	"github.com/lebarbier/lebarbier-api/internal/infra/receipt"
	"github.com/lebarbier/lebarbier-api/internal/infra/repository"
	"github.com/lebarbier/lebarbier-api/internal/infra/storage"
	"github.com/lebarbier/lebarbier-api/internal/logger"
	"github.com/lebarbier/lebarbier-api/internal/routes"
	appointmentuc "github.com/lebarbier/lebarbier-api/internal/usecase/appointment"
	orderuc "github.com/lebarbier/lebarbier-api/internal/usecase/order"
	"github.com/lebarbier/lebarbier-api/internal/validators"
)

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectUsecase(),
		injectHandler(),
		fx.Provide(
			routes.NewEngine,
			newHTTPServer,
		),
		fx.Invoke(
			setupGin,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.Load,
		logger.New,
		newRegistry,
		newMetrics,
		db.New,
		newPinger,
		cache.NewClient,
		storage.NewObjectStore,
		receipt.NewGenerator,
		auth.NewTokens,
		newTokenIssuer,
		newAuditPublisher,
	)
}

func injectRepo() fx.Option {
	return fx.Provide(
		repository.NewUserGormRepository,
		repository.NewAppointmentGormRepository,
		repository.NewOrderGormRepository,
		repository.NewLoyaltyGormRepository,
		repository.NewProductGormRepository,
		repository.NewServiceGormRepository,
		repository.NewEmployeeGormRepository,
		repository.NewAuditLogGormRepository,
		repository.NewReviewGormRepository,
		repository.NewLoyaltyRewardGormRepository,
		newProductCatalog,
	)
}

func injectUsecase() fx.Option {
	return fx.Provide(
		appointmentuc.NewSettings,
		newAppointmentUsecases,
		orderuc.ShippingFromConfig,
		newOrderUsecases,
		newLoyaltyUsecases,
		newAuthUsecases,
		newCatalogUsecases,
		newReviewUsecases,
	)
}

func injectHandler() fx.Option {
	return fx.Provide(
		handlers.NewHealthHandler,
		handlers.NewAuthHandler,
		handlers.NewAppointmentHandler,
		handlers.NewServiceHandler,
		handlers.NewEmployeeHandler,
		handlers.NewProductHandler,
		handlers.NewOrderHandler,
		handlers.NewLoyaltyHandler,
		handlers.NewReviewHandler,
		handlers.NewUserHandler,
		handlers.NewAuditLogsHandler,
	)
}

func setupGin(cfg *config.Config) {
	if !cfg.Env.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	validators.RegisterGin()
}
