package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakery-service/config"
	"bakery-service/internal/api"
	"bakery-service/internal/broker"
	"bakery-service/internal/mailer"
	"bakery-service/internal/mercadopago"
	"bakery-service/internal/receipt"
	"bakery-service/internal/redisclient"
	"bakery-service/internal/service"
	"bakery-service/internal/store"
	"bakery-service/internal/util"
	"bakery-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting bakery service")

	tp, err := util.InitTracer("bakery-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	if cfg.Payment.AccessToken == "" {
		log.Fatal("MP_ACCESS_TOKEN is required")
	}
	mpClient, err := mercadopago.NewClient(cfg.Payment.AccessToken, cfg.Payment.SiteURL, cfg.Payment.Currency)
	if err != nil {
		log.Fatalf("Failed to initialize Mercado Pago client: %v", err)
	}

	var mail service.Mailer
	if cfg.Email.ResendAPIKey != "" {
		mail = mailer.NewClient(cfg.Email.ResendAPIKey, cfg.Email.FromAddress)
	} else {
		log.Println("RESEND_API_KEY not set, receipt emails disabled")
	}

	var generator receipt.Generator
	if cfg.Receipt.OpenAIAPIKey != "" {
		generator = receipt.NewOpenAIGenerator(cfg.Receipt.OpenAIAPIKey, cfg.Receipt.Model)
	} else {
		log.Println("OPENAI_API_KEY not set, receipts use the fallback template")
	}

	checkoutService := service.NewCheckoutService(db, mpClient, eventPublisher, cfg.Payment.SiteURL)
	reconciler := service.NewReconciler(db, mpClient, eventPublisher)
	catalogService := service.NewCatalogService(db, redisClient,
		time.Duration(cfg.Redis.CatalogTTLSecs)*time.Second)
	notifier := service.NewReceiptNotifier(generator, mail)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	receiptConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
	receiptWorker := worker.NewReceiptWorker(receiptConsumer, db, notifier)
	go func() {
		if err := receiptWorker.Start(workerCtx); err != nil {
			log.Printf("Receipt worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(checkoutService, reconciler, catalogService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	receiptWorker.Stop()

	log.Println("Server exited")
}
