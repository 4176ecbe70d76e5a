package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/pasteops-api/internal/application/fieldservice"
	"github.com/jhoicas/pasteops-api/internal/application/inventory"
	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/application/production"
	"github.com/jhoicas/pasteops-api/internal/application/usecase"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/cache"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/pasteops-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/queue"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/pasteops-api/internal/interfaces/http"
	"github.com/jhoicas/pasteops-api/pkg/config"
	"github.com/jhoicas/pasteops-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	m := metrics.New()
	observers := []ledger.Observer{ledger.NewLogObserver(log.Component("ledger")), m}

	// Redis opcional: caché del resumen y cola de revisiones de stock bajo.
	var (
		summaryCache inventory.SummaryCache
		redisClient  *redis.Client
	)
	if cfg.Redis.Enabled() {
		redisClient, err = cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		sc := cache.NewSummaryCache(redisClient, cfg.Redis.SummaryTTL, log.Component("cache"))
		summaryCache = sc

		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()
		observers = append(observers, sc, queue.NewLowStockPublisher(asynqClient, cfg.Worker.Queue, log.Component("queue")))
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: sin caché de resumen ni alertas de stock bajo")
	}

	repos := backend.Repos
	l := ledger.New(repos, backend.TxRunner, observers...)
	batchUC := production.NewBatchUseCase(repos, backend.TxRunner, l, infrapdf.NewBatchRecordGenerator(cfg.App.Name))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(m.Middleware())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PasteOps API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Materials: usecase.NewMaterialUseCase(repos.Materials),
		Recipes:   usecase.NewRecipeUseCase(repos, backend.TxRunner),
		Stock:     inventory.NewStockUseCase(l, repos, backend.TxRunner, summaryCache),
		Checks:    inventory.NewReconciliationUseCase(repos, backend.TxRunner, l),
		Orders:    production.NewOrderUseCase(repos.Orders, repos.Recipes),
		Batches:   batchUC,
		Service:   fieldservice.NewServiceOrderUseCase(repos, backend.TxRunner),
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
		Metrics:   m.Handler(),
		Health: func(ctx context.Context) error {
			if err := backend.Ping(ctx); err != nil {
				return err
			}
			if redisClient != nil {
				return redisClient.Ping(ctx).Err()
			}
			return nil
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
