package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/fleetworks/fleetledger/internal/api"
	"github.com/fleetworks/fleetledger/internal/auth"
	"github.com/fleetworks/fleetledger/internal/metrics"
	"github.com/fleetworks/fleetledger/internal/scheduler"
	"github.com/fleetworks/fleetledger/internal/service"
	"github.com/fleetworks/fleetledger/internal/storage/sqlite"
	"github.com/fleetworks/fleetledger/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Setup()
	logger := slog.Default()

	dbPath := getEnv("DB_PATH", "./data/fleetledger.db")
	addr := getEnv("LISTEN_ADDR", ":8080")
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	tokenHours := getEnvInt("TOKEN_DURATION_HOURS", 24)
	leadDays := getEnvInt("EMI_LEAD_DAYS", 0) // 0 selects the default

	store, err := sqlite.New(dbPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", dbPath)

	metrics.Init()

	jwtManager := auth.NewJWTManager(jwtSecret, time.Duration(tokenHours)*time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	schedCfg := scheduler.Config{EMILeadDays: leadDays}

	fleet := service.NewFleetService(store, logger)
	settlements := service.NewSettlementService(store, schedCfg, logger)
	summaries := service.NewSummaryService(store, schedCfg)

	handler := api.NewHandler(authenticator, jwtManager, fleet, settlements, summaries, logger)
	router := handler.Router()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{getEnv("CORS_ORIGIN", "*")},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler(router)

	// h2c allows HTTP/2 without TLS behind a terminating proxy.
	h2cHandler := h2c.NewHandler(corsHandler, &http2.Server{})

	logger.Info("Settlement server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
