package main // Entry point package

import (
    "context"
    "database/sql"
    "errors"
    "log"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/redis/go-redis/v9"
    "golang.org/x/sync/errgroup"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/clock"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/config"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/database"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/handler"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/mail"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/middleware"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/payment"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/queue"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/ratelimit"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/repository"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/router"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
    cfg := config.Load()
    setupLogging(cfg.Env)

    db, dialect := openDatabase(cfg)
    defer db.Close()

    migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    if err := database.Migrate(migrateCtx, db, dialect); err != nil {
        log.Fatalf("apply migrations: %v", err)
    }
    cancel()

    rdb := config.NewRedisClient()
    if rdb != nil {
        defer rdb.Close()
    }

    eventRepo := repository.NewEventRepo(db, dialect)
    regRepo := repository.NewRegistrationRepo(db, dialect)
    userRepo := repository.NewUserRepo(db)

    gwCfg := config.LoadGatewayConfig()
    gateway := payment.NewGateway(gwCfg, nil)
    verifier := payment.NewVerifier(gwCfg.KeySecret)
    publisher := queue.NewPublisher(cfg.RabbitURL, cfg.NotifyQueue)

    reservations := service.NewReservationService(eventRepo, regRepo, userRepo, publisher, clock.NewSystem(), cfg.ReserveTxTimeout)
    orders := service.NewOrderService(gateway, eventRepo)
    payments := service.NewPaymentService(verifier)

    rlCfg := config.LoadRateLimitConfig()
    deps := router.Deps{
        JWTSecret:     cfg.JWTSecret,
        DB:            db,
        Events:        handler.NewEventHandler(eventRepo),
        Orders:        handler.NewOrderHandler(orders),
        Registrations: handler.NewRegistrationHandler(payments, reservations, regRepo),
        RateLimit:     middleware.RateLimit(rlCfg, newLimiter(rlCfg, rdb)),
        Cache:         middleware.ResponseCache(config.LoadCacheConfig(), rdb),
    }

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(middleware.RequestID())
    e.Use(middleware.RequestLogger())
    e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
    router.Register(e, deps)

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    g, gctx := errgroup.WithContext(ctx)
    g.Go(func() error {
        addr := ":" + cfg.Port
        slog.Info("listening", "addr", addr, "env", cfg.Env, "db", dialect.Name)
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            return err
        }
        return nil
    })
    g.Go(func() error {
        <-gctx.Done()
        shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
        defer cancel()
        if err := e.Shutdown(shutdownCtx); err != nil {
            slog.Error("server shutdown error", "error", err)
        }
        reservations.Wait()
        return nil
    })
    if mailCfg := config.LoadMailConfig(); mailCfg.Enabled() {
        consumer := queue.NewConsumer(cfg.RabbitURL, cfg.NotifyQueue, mail.NewSMTPMailer(mailCfg, nil))
        g.Go(func() error { return consumer.Run(gctx) })
    } else {
        slog.Warn("MAIL_HOST not set, confirmation emails will queue without a consumer")
    }

    if err := g.Wait(); err != nil {
        slog.Error("server stopped with error", "error", err)
        os.Exit(1)
    }
    slog.Info("server stopped")
}

func setupLogging(env string) {
    opts := &slog.HandlerOptions{Level: slog.LevelInfo}
    var h slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
    if env == "dev" {
        opts.Level = slog.LevelDebug
        h = slog.NewTextHandler(os.Stdout, opts)
    }
    slog.SetDefault(slog.New(h))
}

func openDatabase(cfg config.Config) (*sql.DB, database.Dialect) {
    dialect, ok := database.DialectFor(cfg.DBDriver)
    if !ok {
        log.Fatalf("unsupported DB_DRIVER: %q", cfg.DBDriver)
    }
    var (
        db  *sql.DB
        err error
    )
    if dialect == database.SQLite {
        db, err = database.OpenSQLite(cfg.SQLitePath)
    } else {
        db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    }
    if err != nil {
        log.Fatalf("connect to %s: %v", dialect.Name, err)
    }
    return db, dialect
}

func newLimiter(cfg config.RateLimitConfig, rdb *redis.Client) ratelimit.Limiter {
    b := ratelimit.BucketFrom(cfg)
    if cfg.Store == "redis" && rdb != nil {
        return ratelimit.NewRedisLimiter(rdb, b)
    }
    if cfg.Store == "redis" {
        slog.Warn("redis unavailable, rate limiting per instance in memory")
    }
    return ratelimit.NewMemoryLimiter(b, cfg.MaxKeys, clock.NewSystem())
}
