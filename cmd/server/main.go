package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evacgrid/backend/internal/controller"
	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/notify"
	"github.com/evacgrid/backend/internal/repository"
	"github.com/evacgrid/backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	internalclient "github.com/evacgrid/backend/internal/client"
)

func main() {
	cfg, err := dto.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	logrus.Info("Successfully connected to PostgreSQL")

	repositories := repository.NewRepositories(db)
	clients := internalclient.NewClients(cfg)
	defer clients.Close()

	emailPublisher := notify.NewRedisPublisher(clients.Redis())
	emailWorker := notify.NewWorker(clients.Redis(), clients.Mailer(), cfg)
	emailWorker.Start(ctx)

	services := service.NewServices(repositories, cfg, clients, emailPublisher)
	controllers := controller.NewControllers(services)

	e := echo.New()
	e.HideBanner = true
	controllers.Route(e)

	go func() {
		if err := e.Start(fmt.Sprintf(":%s", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	logrus.Infof("Server started on port %s", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Received shutdown signal, shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server gracefully stopped")
}
