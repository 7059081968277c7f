package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Samaresh-Maiti-2001/stylemaven/config"
	"github.com/Samaresh-Maiti-2001/stylemaven/controllers"
	"github.com/Samaresh-Maiti-2001/stylemaven/database"
	"github.com/Samaresh-Maiti-2001/stylemaven/logger"
	"github.com/Samaresh-Maiti-2001/stylemaven/middleware"
	"github.com/Samaresh-Maiti-2001/stylemaven/repository"
	"github.com/Samaresh-Maiti-2001/stylemaven/routes"
	"github.com/Samaresh-Maiti-2001/stylemaven/services"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.Initialize(cfg.Env)
	defer log.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Datastores
	mongoClient, db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.Close(mongoClient); err != nil {
			log.Error("Mongo disconnect failed", zap.Error(err))
		}
	}()

	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatal("Failed to create indexes", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// Repositories
	cartRepo := repository.NewMongoCartRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	reservationRepo := repository.NewMongoReservationRepository(db)
	idemStore := repository.NewRedisIdempotencyStore(redisClient)

	// Services
	cartService := services.NewCartService(cartRepo, productRepo, log)
	stockService := services.NewStockService(productRepo, reservationRepo, cfg.ReservationTTL, log)
	orderService := services.NewOrderService(orderRepo, productRepo, idemStore, cartService, stockService, cfg.IdempotencyTTL, log)
	paymentService := services.NewPaymentService(orderRepo, stockService, log)
	sweeper := services.NewSweeper(reservationRepo, orderRepo, stockService, cfg.SweepInterval, log)

	// Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.NewRateLimiter(rate.Limit(20), 40, 5*time.Minute).Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Register(r, cfg.JWTSecret,
		controllers.NewCartController(cartService),
		controllers.NewOrderController(orderService, paymentService),
		controllers.NewProductController(productRepo),
	)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API Working")
	})

	// Background expiry sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweeper.Run(sweepCtx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("Server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down gracefully...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}
	log.Info("Server shutdown complete")
}
