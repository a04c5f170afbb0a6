package main

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/newsdesk/planning-coordinator/internal/bridge"
	"github.com/newsdesk/planning-coordinator/internal/config"
	"github.com/newsdesk/planning-coordinator/internal/coordinator"
	"github.com/newsdesk/planning-coordinator/internal/gateway"
	"github.com/newsdesk/planning-coordinator/internal/resource"
	"github.com/newsdesk/planning-coordinator/internal/session"
	"github.com/newsdesk/planning-coordinator/internal/store"
	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(cancel)

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("unable to initialize logger: %v", err)
	}

	localSession := uuid.NewString()

	sessions := session.NewParser(config.Secret())

	client := resource.NewClient(
		&http.Client{Timeout: config.RequestTimeout()},
		config.ServerURL(),
		config.ServerAuthToken(),
		config.QueryChunkSize(),
		logger,
	)

	items := store.NewStore()
	coord := coordinator.NewService(logger, client, items, config.MaxRecurrentEvents())

	gw := gateway.NewGateway(logger, sessions, coord)

	redisPool := bridge.NewRedisPool(config.RedisURL(), logger)
	feed := bridge.NewBridge(logger, client, items, coord, gw, bridge.Settings{
		LocalSession:       localSession,
		MaxRecurrentEvents: config.MaxRecurrentEvents(),
		RetryAttempts:      config.RetryAttempts(),
		RetryInterval:      config.RetryInterval(),
		RefetchDelay:       config.RefetchDelay(),
	})
	go feed.Run(ctx, redisPool, config.FeedChannel())

	errLogger, err := zap.NewStdLogAt(logger.Desugar(), zap.ErrorLevel)
	if err != nil {
		logger.Fatalw("error initiating server logger", "err", err)
	}

	server := &http.Server{
		Addr:     ":" + config.Port(),
		Handler:  gw,
		ErrorLog: errLogger,
	}

	logger.Infow("started server", "port", config.Port(), "session", localSession)
	logger.Fatalw("server error", "err", server.ListenAndServe())
}

func initLogger() (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if config.Production() {
		logger, err = zap.NewProduction()
	} else {
		conf := zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = conf.Build()
	}

	if err != nil {
		return nil, err
	}

	closer.Bind(func() {
		_ = logger.Sync()
	})

	return logger.Sugar(), nil
}
