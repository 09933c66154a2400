package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nika.id/configs"
	"nika.id/configs/configscache"
	"nika.id/configs/configsdatabase"
	"nika.id/configs/configslog"
	"nika.id/pkg/cache"
	"nika.id/pkg/events"
	"nika.id/pkg/payment"
	"nika.id/pkg/plans"
	"nika.id/pkg/renderer"
	"nika.id/pkg/storage"
	"nika.id/pkg/themes"
	"nika.id/repositories"
	"nika.id/routes"
	"nika.id/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
)

func main() {
	configslog.InitLogger()
	defer configslog.SyncLogger()

	cfg, err := configs.Load()
	if err != nil {
		configslog.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()
	configscache.InitRedis()
	defer configscache.CloseRedis()

	db := configsdatabase.GetDB()

	registry := plans.NewStaticRegistry()
	if cfg.PlansFile != "" {
		registry, err = plans.LoadRegistryYAML(cfg.PlansFile)
		if err != nil {
			configslog.Log.Fatal("Failed to load plans file", zap.String("path", cfg.PlansFile), zap.Error(err))
		}
	}

	themeRenderer, err := themes.NewRenderer()
	if err != nil {
		configslog.Log.Fatal("Failed to load invitation templates", zap.Error(err))
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	uploader := storage.New(startCtx, storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
		PublicURL: cfg.MinioPublicURL,
	}, cfg.UploadDir)
	cancelStart()

	publisher := events.New(cfg.KafkaBrokers)
	defer publisher.Close()

	opts := services.Options{
		DB:          db,
		Plans:       registry,
		Themes:      themes.DefaultRegistry(),
		Renderer:    themeRenderer,
		PageCache:   cache.NewPageCache(configscache.GetRedis(), 0),
		Events:      publisher,
		Storage:     uploader,
		JWTSecret:   []byte(cfg.JWTSecret),
		BaseURL:     cfg.AppURL,
		Development: cfg.IsDevelopment(),
	}
	if cfg.MidtransServerKey != "" {
		opts.Gateway = payment.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransClientKey, cfg.MidtransIsProduction)
	} else {
		configslog.SLog.Warn("MIDTRANS_SERVER_KEY not set, payments disabled")
	}
	if cfg.GoogleEnabled() {
		opts.Google = services.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}
	svc := services.New(opts)

	engine := html.New("./views", ".html")
	engine.Reload(cfg.IsDevelopment())
	for name, fn := range renderer.FuncMap() {
		engine.AddFunc(name, fn)
	}

	app := fiber.New(fiber.Config{
		AppName:      "nika.id",
		Views:        engine,
		ErrorHandler: routes.ErrorHandler,
		BodyLimit:    12 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Static("/static", "./public", fiber.Static{MaxAge: 3600})
	app.Static("/uploads", cfg.UploadDir, fiber.Static{MaxAge: 86400})

	secure := !cfg.IsDevelopment()
	routes.SetupRoutes(app, routes.Dependencies{
		Services:      svc,
		Users:         repositories.NewUserRepository(db),
		Sessions:      configs.SetupSession(secure),
		SecureCookies: secure,
	})

	go func() {
		addr := ":" + cfg.AppPort
		configslog.SLog.Infof("nika.id listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			configslog.Log.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	configslog.SLog.Info("Shutting down...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		configslog.Log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
