package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"funkoshop/internal/cache"
	"funkoshop/internal/config"
	"funkoshop/internal/http/handlers"
	applog "funkoshop/internal/log"
	"funkoshop/internal/metrics"
	"funkoshop/internal/repos"
)

func main() {
	cfg := config.Load()

	if err := applog.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
	}
	defer func() { _ = applog.L().Sync() }()

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		applog.L().Fatal("database open failed", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer db.Close()

	deps := handlers.NewDeps(db, cfg, openCache(cfg))

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    cfg.MaxUploadMB << 20,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(string(c.Request().URI().Path()), "/media/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "rate limit exceeded, retry soon"})
		},
	}))

	// ---------- Media & ops ----------
	applog.L().Info("serving media", zap.String("dir", cfg.MediaDir))
	app.Get("/media/*", handlers.Media(cfg.MediaDir))
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	handlers.Register(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found"})
	})

	applog.L().Info("listening", zap.String("port", cfg.Port), zap.String("db_driver", cfg.DBDriver))
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.L().Fatal("server stopped", zap.Error(err))
	}
}

// openCache returns Redis when configured and reachable; listings are served
// uncached otherwise.
func openCache(cfg config.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.Noop{}
	}
	rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		applog.L().Warn("redis unreachable, caching disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = rc.Close()
		return cache.Noop{}
	}
	return rc
}
