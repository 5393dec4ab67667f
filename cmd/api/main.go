package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/saisanthosh2218/expense-tracker/internal/config"
	"github.com/saisanthosh2218/expense-tracker/internal/handler"
	"github.com/saisanthosh2218/expense-tracker/internal/integrations/cbr"
	"github.com/saisanthosh2218/expense-tracker/internal/middleware"
	"github.com/saisanthosh2218/expense-tracker/internal/report"
	"github.com/saisanthosh2218/expense-tracker/internal/repository"
	"github.com/saisanthosh2218/expense-tracker/internal/service"
	"github.com/saisanthosh2218/expense-tracker/internal/utils/email"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration (.env first, then environment)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Failed to load .env: %v", err)
	}
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.RunMigrations(cfg.DBConn); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, logger, cfg)
	h := handler.NewHandler(svc, logger)
	ratesClient := cbr.NewClient(cfg, logger)

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	// Exchange rate endpoint
	r.HandleFunc("/rates", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			code = cfg.RateCurrency
		}
		rate, err := ratesClient.GetRate(code)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get exchange rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(rate)
	}).Methods("GET")

	// Protected routes. Fixed paths go before the {id} route so that
	// /transactions/summary is never captured as an id.
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/auth/user", h.CurrentUser).Methods("GET")
	authRouter.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	authRouter.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	authRouter.HandleFunc("/transactions/summary", h.Summary).Methods("GET")
	authRouter.HandleFunc("/transactions/category-summary", h.CategorySummary).Methods("GET")
	authRouter.HandleFunc("/transactions/monthly", h.MonthlySeries).Methods("GET")
	authRouter.HandleFunc("/transactions/{id}", h.GetTransaction).Methods("GET")
	authRouter.HandleFunc("/transactions/{id}", h.UpdateTransaction).Methods("PUT")
	authRouter.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")

	// Monthly report job
	if cfg.SMTPEnabled() {
		sender := email.NewSender(cfg, logger)
		reporter := report.NewReporter(repo, sender, logger)
		c := cron.New()
		if _, err := c.AddFunc(cfg.ReportCron, reporter.Run); err != nil {
			logger.Fatalf("Failed to schedule monthly report: %v", err)
		}
		c.Start()
		defer c.Stop()
		logger.Infof("Monthly report scheduled: %s", cfg.ReportCron)
	} else {
		logger.Info("SMTP not configured, monthly report disabled")
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
