package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barangaylink/config"
	"barangaylink/handler"
	"barangaylink/middleware"
	"barangaylink/notification"
	"barangaylink/repository"
	"barangaylink/routes"
	"barangaylink/schema"
	"barangaylink/service"
	"barangaylink/worker"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := config.LoadConfig()

	// UTC for consistent timestamps
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
	)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Database connection established")

	schema.InitializeDatabase(db)
	schema.SeedCategories(db)

	// Repositories
	complaintRepo := repository.NewComplaintRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	notificationService := service.NewNotificationService(notificationRepo, notification.NewEmailSender(), nil)
	complaintService := service.NewComplaintService(complaintRepo, commentRepo, categoryRepo, accountRepo, notificationService)

	// Handlers and middleware
	complaintHandler := handler.NewComplaintHandler(&handler.ServiceSet{
		Complaints: complaintService,
		Categories: categoryRepo,
	})
	authHandler := handler.NewAuthHandler(accountRepo, cfg.Auth.JWTSecret, cfg.Auth.ExpiresInHours)
	authMiddleware := middleware.NewAuthMiddleware(accountRepo, cfg.Auth.JWTSecret)

	router := routes.SetupRoutes(complaintHandler, authHandler, authMiddleware)

	// Background workers
	notificationWorker := worker.NewNotificationWorker(notificationService,
		time.Duration(cfg.Worker.NotificationIntervalSeconds)*time.Second)
	notificationWorker.Start()
	defer notificationWorker.Stop()

	overdueWorker := worker.NewOverdueWorker(complaintService,
		time.Duration(cfg.Worker.OverdueIntervalSeconds)*time.Second)
	overdueWorker.Start()
	defer overdueWorker.Stop()

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      corsMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")
}

// corsMiddleware adds permissive CORS headers for the web frontend.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
