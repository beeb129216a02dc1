package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/todo/api/handler"
	"github.com/fastygo/todo/internal/config"
	"github.com/fastygo/todo/internal/infrastructure/buffer"
	"github.com/fastygo/todo/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/todo/internal/infrastructure/redis"
	"github.com/fastygo/todo/internal/middleware"
	"github.com/fastygo/todo/internal/router"
	"github.com/fastygo/todo/internal/services"
	"github.com/fastygo/todo/internal/services/lifecycle"
	"github.com/fastygo/todo/internal/view"
	"github.com/fastygo/todo/pkg/httpcontext"
	"github.com/fastygo/todo/pkg/logger"
	"github.com/fastygo/todo/pkg/password"
	redisRepo "github.com/fastygo/todo/repository/redis"
	"github.com/fastygo/todo/usecase"
	accountUC "github.com/fastygo/todo/usecase/account"
	authUC "github.com/fastygo/todo/usecase/auth"
	taskUC "github.com/fastygo/todo/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	store, err := openStorage(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage initialisation failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Closer("redis", redisClient.Close)
	redisPinger := monitor.PingFunc(func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	var (
		bufferSizer monitor.BufferSizer
		bufferStore *buffer.Store
	)
	if cfg.Buffer.Enabled {
		bufferStore, err = buffer.Open(cfg.Buffer.Path, "buffer")
		if err != nil {
			zapLogger.Fatal("failed to open buffer store", zap.Error(err))
		}
		manager.Closer("buffer", bufferStore.Close)
		bufferSizer = bufferStore
	}

	mon := monitor.New(store.pinger, redisPinger, bufferSizer, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(context.Context) error {
		mon.Stop()
		return nil
	})

	var taskBuffer usecase.OperationBuffer
	if bufferStore != nil {
		bufferProcessor := services.NewBufferProcessor(
			bufferStore,
			mon,
			store.tasks,
			zapLogger,
			services.ProcessorConfig{
				Interval:   cfg.Buffer.SyncInterval,
				BatchSize:  cfg.Buffer.BatchSize,
				MaxRetries: cfg.Buffer.MaxRetry,
				Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
			},
		)
		bufferProcessor.Start()
		manager.Register("buffer_processor", func(ctx context.Context) error {
			bufferProcessor.Stop(ctx)
			return nil
		})
		taskBuffer = services.NewBufferBridge(bufferProcessor)
	}

	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Session.KeyPrefix, cfg.Session.TTL)

	accountUseCase := accountUC.New(store.accounts, password.NewBcrypt(cfg.Password.BcryptCost), zapLogger)
	authUseCase := authUC.New(store.accounts, sessionRepo, authUC.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL,
	}, zapLogger)
	taskUseCase := taskUC.New(store.tasks, store.accounts, taskBuffer, zapLogger, taskUC.Config{
		EnforceOwnership: cfg.Tasks.EnforceOwnership,
	})
	if !cfg.Tasks.EnforceOwnership {
		zapLogger.Warn("task ownership checks disabled: any logged-in account may toggle or delete any task")
	}

	views, err := view.New()
	if err != nil {
		zapLogger.Fatal("failed to parse templates", zap.Error(err))
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	cookie := middleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.Secure,
	}
	sessions := middleware.NewSessions(authUseCase, ctxAdapter, cookie, zapLogger)

	handlers := router.Handlers{
		Pages:     apiHandler.NewPageHandler(views, authUseCase, ctxAdapter, zapLogger),
		WebAuth:   apiHandler.NewWebAuthHandler(views, accountUseCase, authUseCase, cookie, ctxAdapter, zapLogger),
		Dashboard: apiHandler.NewDashboardHandler(views, taskUseCase, ctxAdapter, zapLogger),
		Auth:      apiHandler.NewAuthHandler(accountUseCase, authUseCase, ctxAdapter, zapLogger),
		Profile:   apiHandler.NewProfileHandler(accountUseCase, ctxAdapter, zapLogger),
		Task:      apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers, router.Guards{
		Session:         sessions.Require,
		OptionalSession: sessions.Optional,
		Token:           middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger),
	})

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		MaxRequestBodySize: 1 << 20,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.Bool("buffer", cfg.Buffer.Enabled),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
