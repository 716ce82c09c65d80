package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-studio/domain/model"
	"content-studio/domain/repository"
	"content-studio/infrastructure/cache"
	"content-studio/infrastructure/clients/facebook"
	"content-studio/infrastructure/clients/threads"
	"content-studio/infrastructure/configuration"
	"content-studio/infrastructure/logger"
	"content-studio/infrastructure/persistence"
	"content-studio/infrastructure/pubsub"
	"content-studio/infrastructure/realtime"
	"content-studio/infrastructure/servicebus"
	httpHandler "content-studio/interfaces/http"
	"content-studio/server"
	"content-studio/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App
	publishCfg := configuration.C.Publish

	primaryDb, err := InitiateDatabase()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Database initialization failed")
	}

	mongoDb, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
		configuration.C.Database.Mongo.Name,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing without audit log")
		mongoDb = nil
	} else if err := persistence.PingMongo(ctx, mongoDb); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - continuing without audit log")
		mongoDb = nil
	} else {
		logger.GetLogger().Info("MongoDB connected successfully")
	}

	var publishEvents pubsub.IPublishEvents
	if configuration.C.Pubsub.ProjectID != "" {
		pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID, configuration.C.Pubsub.Topic)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available - continuing without event emission")
		} else {
			publishEvents = pubSubClient
		}
	}
	if publishEvents == nil && configuration.C.ServiceBus.Namespace != "" {
		sb, err := servicebus.NewServiceBus(configuration.C.ServiceBus.Namespace, configuration.C.ServiceBus.Queue)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without event emission")
		} else {
			publishEvents = sb
		}
	}

	redisClient, _ := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	var pageCache cache.IPageCache
	if redisClient != nil {
		pageCache = cache.NewPageCache(redisClient)
		logger.GetLogger().Info("Redis client initialized successfully.")
	}

	// Platform drivers
	threadsClient := threads.NewClient(publishCfg.RequestTimeout())
	threadsPoller := threads.NewPoller(threads.Budgets{
		Text: threads.PollBudget{
			InitialDelay: time.Duration(publishCfg.InitialDelayTextMs) * time.Millisecond,
			Interval:     time.Duration(publishCfg.PollIntervalMs) * time.Millisecond,
			MaxAttempts:  publishCfg.MaxAttemptsText,
		},
		Image: threads.PollBudget{
			InitialDelay: time.Duration(publishCfg.InitialDelayMediaMs) * time.Millisecond,
			Interval:     time.Duration(publishCfg.PollIntervalMs) * time.Millisecond,
			MaxAttempts:  publishCfg.MaxAttemptsImage,
		},
		Video: threads.PollBudget{
			InitialDelay: time.Duration(publishCfg.InitialDelayMediaMs) * time.Millisecond,
			Interval:     time.Duration(publishCfg.PollIntervalMs) * time.Millisecond,
			MaxAttempts:  publishCfg.MaxAttemptsVideo,
		},
	})
	facebookClient := facebook.NewClient(configuration.C.OAuth.Facebook.ClientSecret, publishCfg.RequestTimeout())

	drivers := map[model.Platform]repository.IPublishDriver{
		model.PlatformThreads:  threads.NewDriver(threadsClient, threadsPoller, publishCfg.TokenValidity()),
		model.PlatformFacebook: facebook.NewDriver(facebookClient, configuration.C.OAuth.Facebook.ClientID, publishCfg.TokenValidity()),
	}

	// Repository wiring: MSSQL in production, otherwise PostgreSQL.
	var userRepository repository.IUser
	var credRepository repository.ICredential
	var recordRepository repository.IPublishRecord
	if primaryDb != nil {
		if usingMSSQL() {
			credRepository = persistence.NewCredentialRepositoryMSSQL(primaryDb)
			if err := persistence.EnsureCredentialSchemaMSSQL(primaryDb); err != nil {
				logger.GetLogger().WithField("error", err).Error("failed ensuring credential schema")
			}
			if err := persistence.EnsurePublishSchemaMSSQL(primaryDb); err != nil {
				logger.GetLogger().WithField("error", err).Error("failed ensuring publish schema")
			}
			recordRepository = persistence.NewPublishRecordRepositoryMSSQL(primaryDb)
		} else {
			credRepository = persistence.NewCredentialRepository(primaryDb)
			if err := persistence.EnsureCredentialSchema(primaryDb); err != nil {
				logger.GetLogger().WithField("error", err).Error("failed ensuring credential schema")
			}
			if err := persistence.EnsurePublishSchema(primaryDb); err != nil {
				logger.GetLogger().WithField("error", err).Error("failed ensuring publish schema")
			}
			recordRepository = persistence.NewPublishRecordRepository(primaryDb)
		}
		userRepository = persistence.NewUserRepository(primaryDb)
	} else if mysqlDb, err := persistence.NewMySQLDB(); err == nil {
		// MySQL fallback covers the user store only; publishing needs Postgres or MSSQL.
		userRepository = persistence.NewUserRepositoryMySQL(mysqlDb)
		logger.GetLogger().Warn("Running with MySQL user store only; publishing disabled")
	}

	var auditRepository repository.IPublishAudit
	if mongoDb != nil {
		auditRepository = persistence.NewPublishAuditMongo(mongoDb, configuration.C.Database.Mongo.Name)
	}

	userUsecase := usecase.NewUserUsecase(userRepository)
	userHandler := httpHandler.NewUserHandler(userUsecase)

	publishHub := realtime.NewPublishHub()

	var publishHandler httpHandler.IPublishHandler
	var connectionHandler httpHandler.IConnectionHandler
	var threadsOAuthHandler httpHandler.IThreadsOAuthHandler
	var facebookOAuthHandler httpHandler.IFacebookOAuthHandler
	if credRepository != nil {
		tokenManager := usecase.NewTokenManager(credRepository, drivers, publishCfg.TokenRefreshBuffer())
		publishUC := usecase.NewPublishUsecase(
			tokenManager,
			drivers,
			recordRepository,
			auditRepository,
			publishEvents,
			pageCache,
			publishHub,
			publishCfg.OverallTimeout(),
		)
		publishHandler = httpHandler.NewPublishHandler(publishUC)
		connectionHandler = httpHandler.NewConnectionHandler(credRepository, pageCache)
		threadsOAuthHandler = httpHandler.NewThreadsOAuthHandler(credRepository)
		facebookOAuthHandler = httpHandler.NewFacebookOAuthHandler(credRepository, facebookClient, pageCache)
	} else {
		logger.GetLogger().Info("No credential store available; publishing and OAuth connect disabled")
	}

	router := server.InitiateRouter(
		userHandler,
		publishHandler,
		connectionHandler,
		threadsOAuthHandler,
		facebookOAuthHandler,
		publishHub,
		userRepository,
	)

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateDatabase returns the relational store: MSSQL in production (or when
// DB_VENDOR=mssql), PostgreSQL otherwise.
func InitiateDatabase() (*sql.DB, error) {
	if usingMSSQL() {
		mssql, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL")
			return nil, err
		}
		return mssql, nil
	}
	postgres, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		return nil, err
	}
	return postgres, nil
}

func usingMSSQL() bool {
	if os.Getenv("DB_VENDOR") == "mssql" {
		return true
	}
	env := os.Getenv("ENV")
	return env == "production" || env == "prod"
}
