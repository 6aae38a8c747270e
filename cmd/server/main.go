package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/ruslanbektulqinov01/todo-api/api/handler"
	"github.com/ruslanbektulqinov01/todo-api/internal/config"
	"github.com/ruslanbektulqinov01/todo-api/internal/infrastructure/monitor"
	pgInfra "github.com/ruslanbektulqinov01/todo-api/internal/infrastructure/postgres"
	redisInfra "github.com/ruslanbektulqinov01/todo-api/internal/infrastructure/redis"
	"github.com/ruslanbektulqinov01/todo-api/internal/middleware"
	"github.com/ruslanbektulqinov01/todo-api/internal/router"
	"github.com/ruslanbektulqinov01/todo-api/internal/services"
	"github.com/ruslanbektulqinov01/todo-api/internal/services/lifecycle"
	"github.com/ruslanbektulqinov01/todo-api/pkg/httpcontext"
	"github.com/ruslanbektulqinov01/todo-api/pkg/logger"
	"github.com/ruslanbektulqinov01/todo-api/repository"
	boltRepo "github.com/ruslanbektulqinov01/todo-api/repository/bolt"
	pgRepo "github.com/ruslanbektulqinov01/todo-api/repository/postgres"
	redisRepo "github.com/ruslanbektulqinov01/todo-api/repository/redis"
	authUC "github.com/ruslanbektulqinov01/todo-api/usecase/auth"
	taskUC "github.com/ruslanbektulqinov01/todo-api/usecase/task"
)

type stores struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	sessions repository.SessionRepository
	checks   map[string]monitor.CheckFunc
}

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

	var st stores
	switch cfg.Store.Backend {
	case config.BackendBolt:
		st = openBoltStores(cfg, manager, zapLogger)
	default:
		st = openPostgresStores(appCtx, cfg, manager, zapLogger)
	}

	mon := monitor.New(st.checks, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	authUseCase := authUC.New(st.users, st.sessions, cfg.Session.TTL, zapLogger)
	taskUseCase := taskUC.New(st.tasks, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.SessionAuth(authUseCase, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store_backend", cfg.Store.Backend))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openPostgresStores wires the networked variant: PostgreSQL records
// with Redis-held sessions.
func openPostgresStores(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) stores {
	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	return stores{
		users:    pgRepo.NewUserRepository(pool),
		tasks:    pgRepo.NewTaskRepository(pool),
		sessions: redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL),
		checks: map[string]monitor.CheckFunc{
			"postgresql": pool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	}
}

// openBoltStores wires the file-backed variant: users, tasks and
// sessions all live in one BoltDB file, with a cron sweep standing in
// for key expiry.
func openBoltStores(cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) stores {
	store, err := boltRepo.Open(cfg.Store.BoltPath)
	if err != nil {
		zapLogger.Fatal("failed to open bolt store", zap.Error(err))
	}
	manager.Register("bolt", func(ctx context.Context) error {
		return store.Close()
	})

	sessions := boltRepo.NewSessionRepository(store, cfg.Session.TTL)

	janitor := services.NewSessionJanitor(sessions, zapLogger, services.JanitorConfig{
		Interval:  cfg.Session.SweepInterval,
		BatchSize: cfg.Session.SweepBatch,
	})
	janitor.Start()
	manager.Register("session_janitor", func(ctx context.Context) error {
		janitor.Stop(ctx)
		return nil
	})

	return stores{
		users:    boltRepo.NewUserRepository(store),
		tasks:    boltRepo.NewTaskRepository(store),
		sessions: sessions,
		checks: map[string]monitor.CheckFunc{
			"boltdb": func(ctx context.Context) error {
				return store.Ping()
			},
		},
	}
}
