package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/umalmyha/contacts-api/internal/config"
	"github.com/umalmyha/contacts-api/internal/events"
	"github.com/umalmyha/contacts-api/internal/infra"
	"github.com/umalmyha/contacts-api/internal/repository"
	"github.com/umalmyha/contacts-api/internal/service"
)

// @title       Contacts API
// @version     1.0.0
// @description Minimal contact management REST API backed by MongoDB
// @BasePath    /
func main() {
	cfg, err := config.Build()
	if err != nil {
		logrus.Fatalf("failed to build configuration - %v", err)
	}

	logger, err := infra.Logger(cfg.LogCfg)
	if err != nil {
		logrus.Fatal(err)
	}

	mongoClient, err := infra.Mongodb(context.Background(), cfg.MongoCfg)
	if err != nil {
		logger.Fatal(err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Errorf("failed to disconnect from mongodb - %v", err)
		}
	}()

	if err := infra.PingMongodb(context.Background(), mongoClient, cfg.MongoCfg); err != nil {
		logger.Errorf("mongodb is unreachable, serving anyway - %v", err)
	} else {
		logger.Info("connected to mongodb")
	}

	publisher := events.NewNoopPublisher()
	if cfg.RedisCfg.Enabled() {
		redisClient := infra.Redis(cfg.RedisCfg)
		defer redisClient.Close()

		publisher = events.NewRedisStreamPublisher(redisClient, cfg.RedisCfg.Stream, cfg.RedisCfg.StreamMaxLen)
		logger.Infof("contact events are published to redis stream %s", cfg.RedisCfg.Stream)
	}

	coll := mongoClient.Database(cfg.MongoCfg.Database).Collection(cfg.MongoCfg.Collection)
	contactRps := repository.NewMongoContactRepository(coll)
	contactSvc := service.NewContactService(contactRps, publisher)

	app, err := infra.Router(cfg.HTTPCfg, logger, contactSvc, mongoClient)
	if err != nil {
		logger.Fatal(err)
	}

	start(app, cfg.HTTPCfg, logger)
}

type server interface {
	Start(string) error
	Shutdown(context.Context) error
}

func start(app server, cfg config.HTTPCfg, logger logrus.FieldLogger) {
	shutdownCh := make(chan os.Signal, 1)
	errorCh := make(chan error, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Infof("server is listening on port %d", cfg.Port)
		errorCh <- app.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case <-shutdownCh:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Infof("shutdown signal has been sent, stopping the server...")
		if err := app.Shutdown(ctx); err != nil {
			logger.Errorf("failed to stop server gracefully - %v", err)
		}
	case err := <-errorCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("shutting down the server, unexpected error occurred - %v", err)
		}
	}
}
