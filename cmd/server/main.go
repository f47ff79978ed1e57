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
	"travelgram/internal/api"
	"travelgram/internal/app/service"
	"travelgram/internal/common/security"
	"travelgram/internal/domain/repository"
	"travelgram/internal/platform/cache"
	"travelgram/internal/platform/config"
	"travelgram/internal/platform/database"
	"travelgram/internal/platform/upload"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis (post feed cache)
	cache.ConnectRedis()
	defer cache.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize the upload store
	uploads, err := upload.NewStore(config.AppConfig.UploadDir)
	if err != nil {
		log.Fatalf("Could not initialize upload store: %v", err)
	}

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	postRepo := repository.NewPgPostRepository(database.DB)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo)
	recoveryService := service.NewRecoveryService(userRepo)
	userService := service.NewUserService(userRepo, postRepo, database.DB, cache.RDB, config.AppConfig.BaseURL)
	postService := service.NewPostService(postRepo, userRepo, database.DB, cache.RDB,
		config.AppConfig.PostsCacheTTL, config.AppConfig.BaseURL)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, recoveryService, userService, postService, uploads)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
