package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"freight/cmd"
	"freight/internal/adapters/out/postgres/migrations"
	"freight/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	zl, err := logger.New(configs.LogLevel)
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err = migrations.Up(configs.DSN()); err != nil {
		zl.Fatal("migrations failed", zap.Error(err))
	}

	gormDB, err := gorm.Open(postgresdriver.Open(configs.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, zl)
	if err != nil {
		zl.Fatal("composition failed", zap.Error(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			zl.Warn("closing broadcast resources", zap.Error(err))
		}
	}()

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		zl.Fatal("failed to start jobs", zap.Error(err))
	}
	defer jobManager.StopAll()

	e, err := app.CreateRouter()
	if err != nil {
		zl.Fatal("failed to build router", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startWebServer(ctx, e, configs, zl)
}

func startWebServer(ctx context.Context, e *echo.Echo, configs cmd.Config, zl *zap.Logger) {
	go func() {
		zl.Info("http server listening", zap.String("port", configs.HTTPPort))
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("http server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Warn("graceful shutdown error", zap.Error(err))
	}
}
