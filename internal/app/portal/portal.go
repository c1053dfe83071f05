// Package portal собирает приложение портала госуслуг: хранилище,
// миграции, кеш, шину событий, хранилище документов и HTTP-сервер.
package portal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	amqp "github.com/streadway/amqp"

	"github.com/devrathore/csc-portal/internal/cache"
	"github.com/devrathore/csc-portal/internal/config"
	"github.com/devrathore/csc-portal/internal/filestore"
	"github.com/devrathore/csc-portal/internal/lib/jwt"
	"github.com/devrathore/csc-portal/internal/migrations"
	"github.com/devrathore/csc-portal/internal/rabbitmq"
	"github.com/devrathore/csc-portal/internal/realtime"
	authservice "github.com/devrathore/csc-portal/internal/services/auth"
	catalogservice "github.com/devrathore/csc-portal/internal/services/catalog"
	orderservice "github.com/devrathore/csc-portal/internal/services/order"
	"github.com/devrathore/csc-portal/internal/storage/repository"
)

// App хранит запущенные компоненты портала.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
	hub      *realtime.Hub
}

// New собирает приложение из конфигурации: подключает PostgreSQL,
// прогоняет миграции, поднимает Redis, RabbitMQ и хранилище документов,
// создает сервисы и маршрутизатор.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.RabbitMQ.ConnectionString,
		cfg.RabbitMQ.ConnectRetries, cfg.RabbitMQ.ConnectDelay)
	if err != nil {
		return nil, err
	}
	amqpCh, err := rabbitmq.SetupChannel(amqpConn)
	if err != nil {
		return nil, err
	}

	files, err := filestore.New(cfg.FileStore)
	if err != nil {
		return nil, err
	}
	if err = files.EnsureBuckets(ctx); err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	publisher := rabbitmq.NewPublisher(amqpCh)
	hub := realtime.NewHub(logger)

	authService := authservice.New(db, jwtMaker)
	catalogService := catalogservice.New(db, cacheRedis, logger)
	orderService := orderservice.New(db, files, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, db,
		authService, catalogService, orderService, hub)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
		amqpCh:   amqpCh,
		hub:      hub,
	}, nil
}

// Run запускает потребитель событий и HTTP-сервер и блокируется до
// отмены контекста или ошибки сервера. При остановке сервер гасится
// корректно, соединения с базой и брокером закрываются.
func (a *App) Run(ctx context.Context) error {
	go func() {
		err := rabbitmq.ConsumeMessages(ctx, a.amqpCh,
			rabbitmq.OrderUpdatedQueue, a.hub.HandleMessage)
		if err != nil {
			a.logger.Error("event consumer stopped", slog.Any("err", err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.amqpCh.Close()
		a.amqpConn.Close()
		a.db.DB.Close()
		return err
	}
}
