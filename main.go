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

	"github.com/realworld-go/conduit-be/internal/api"
	"github.com/realworld-go/conduit-be/internal/auth"
	"github.com/realworld-go/conduit-be/internal/config"
	"github.com/realworld-go/conduit-be/internal/database"
	"github.com/realworld-go/conduit-be/internal/logger"
	"github.com/realworld-go/conduit-be/internal/monitoring"
	"github.com/realworld-go/conduit-be/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.Production())

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up services
	authService := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(db)
	articleService := services.NewArticleService(db)
	commentService := services.NewCommentService(db)

	// Set up and run the background favorites reconciler
	reconciler, err := monitoring.NewReconciler(articleService, cfg.ReconcileCron)
	if err != nil {
		log.Fatalf("Failed to set up reconciler: %v", err)
	}
	go reconciler.Run()

	// Set up router
	router := api.NewRouter(cfg, authService, userService, articleService, commentService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	reconciler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
