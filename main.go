// File: taxly/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taxly/config"
	"taxly/cron"
	"taxly/database"
	planRepoPkg "taxly/database/repository/plan"
	userRepoPkg "taxly/database/repository/user"
	"taxly/handlers"
	"taxly/middleware"
	"taxly/routes"
	"taxly/services/account"
	"taxly/services/flow"
	"taxly/services/notification"
	"taxly/services/payment"
	"taxly/services/plans"
	"taxly/services/verification"
	"taxly/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	planRepo := planRepoPkg.NewMongoPlanRepo()

	// services.
	accountService := account.NewDefaultService(userRepo, utils.GetVerifyCacheClient(), logger)

	planCatalog, err := plans.NewDefaultCatalog(planRepo)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize plan catalog: %v", err)
	}

	mailClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisMailQueueDB,
	})
	defer mailClient.Close()
	notificationService := notification.NewAsynqNotificationService(mailClient, logger)

	snapshotStore := flow.NewRedisSnapshotStore(utils.GetFlowCacheClient())
	verificationService := verification.NewDefaultService(
		utils.GetVerifyCacheClient(),
		accountService,
		notificationService,
		snapshotStore,
		logger,
	)
	paymentService := payment.NewStripeService(logger)

	flowController := flow.NewFlowController(
		snapshotStore,
		accountService,
		verificationService,
		planCatalog,
		paymentService,
		notificationService,
		logger,
	)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		UserRepo: userRepo,
		Flow:     handlers.NewFlowHandler(flowController, paymentService),
		Verify:   handlers.NewVerifyHandler(verificationService),
		Plans:    handlers.NewPlanHandler(planCatalog),
		Account:  handlers.NewAccountHandler(userRepo),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background workers and health monitoring.
	cron.InitMailWorker()
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetFlowCacheClient(), utils.GetVerifyCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
