package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopstream/user-service/config"
	"github.com/shopstream/user-service/messaging"
	"github.com/shopstream/user-service/metrics"
	"github.com/shopstream/user-service/repository"
	"github.com/shopstream/user-service/routes"
	"github.com/shopstream/user-service/services"
	"github.com/shopstream/user-service/utils"
)

func main() {
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	if err := config.InitDB(cfg); err != nil {
		utils.LogError("Failed to initialize database: %v", err)
		log.Fatal("Failed to initialize database:", err)
	}

	userRepo := repository.NewUserRepository(config.DB)
	addressRepo := repository.NewAddressRepository(config.DB)
	svc := services.NewUserService(userRepo, addressRepo)

	if err := svc.EnsureBootstrapAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		utils.LogError("Failed to create bootstrap admin: %v", err)
		log.Fatal("Failed to create bootstrap admin:", err)
	}

	collector := metrics.NewCollector()

	// Peer message surface. The broker is only reachable from the
	// internal network; peers are trusted without per-call checks.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := messaging.NewClient(cfg.AMQPURL)
	if err != nil {
		utils.LogError("Failed to connect to RabbitMQ: %v", err)
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}

	consumer := messaging.NewConsumer(client, svc, collector)
	if err := consumer.Start(ctx); err != nil {
		utils.LogError("Failed to start message consumer: %v", err)
		log.Fatal("Failed to start message consumer:", err)
	}

	router := routes.SetupRouter(svc, collector)

	go func() {
		utils.LogInfo("Server starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			utils.LogError("Error starting server: %v", err)
			log.Fatal("Error starting server:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	utils.LogInfo("Received signal %v, shutting down", sig)

	cancel()
	consumer.Wait()
	if err := client.Close(); err != nil {
		utils.LogError("Failed to close RabbitMQ connection: %v", err)
	}
}
