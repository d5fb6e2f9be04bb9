package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"reportai/internal/repository"
	"reportai/internal/service"
	"reportai/internal/transport/rest/handler"
	"reportai/internal/transport/rest/middleware"
	"reportai/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	ReportService    *service.ReportService
	KnowledgeService *service.KnowledgeService
	OrderService     *service.OrderService
	CompanyRepo      repository.CompanyRepo
	WSHub            *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	reportHandler := handler.NewReportHandler(c.ReportService)
	knowledgeHandler := handler.NewKnowledgeHandler(c.KnowledgeService)
	orderHandler := handler.NewOrderHandler(c.OrderService)
	companyHandler := handler.NewCompanyHandler(c.CompanyRepo)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.ReportService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/reports/{reportId}", wsHandler.ReportWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/reports", reportHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/reports/assess", reportHandler.AssessComplexity).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/reports/{reportId}", reportHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/companies/{companyId}", companyHandler.Upsert).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/companies/{companyId}", companyHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/companies/{companyId}/reports", reportHandler.ListByCompany).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/orders/{orderId}", orderHandler.Get).Methods("GET", "OPTIONS")

	// Knowledge sync routes (admin only)
	adminRoutes.HandleFunc("/knowledge/platforms/{code}", knowledgeHandler.UpsertPlatform).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/knowledge/platforms/{code}", knowledgeHandler.GetPlatform).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/knowledge/industries/{code}", knowledgeHandler.UpsertIndustry).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/knowledge/industries/{code}", knowledgeHandler.GetIndustry).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/knowledge/prompts/{slug}", knowledgeHandler.PublishPrompt).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/knowledge/prompts/{slug}", knowledgeHandler.GetPrompt).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
