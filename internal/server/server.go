// file: internal/server/server.go
// version: 2.0.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rxscribe/rxscribe/internal/catalog"
	"github.com/rxscribe/rxscribe/internal/config"
	"github.com/rxscribe/rxscribe/internal/metrics"
	"github.com/rxscribe/rxscribe/internal/recognizer"
	"github.com/rxscribe/rxscribe/internal/search"
	"github.com/rxscribe/rxscribe/internal/server/middleware"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine

	store      catalog.Store
	retriever  *search.Retriever
	reconciler *search.Reconciler
	recognizer recognizer.Recognizer
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a new server instance wired to the given store and
// matching pipeline.
func NewServer(store catalog.Store, retriever *search.Retriever, reconciler *search.Reconciler, recog recognizer.Recognizer) *Server {
	router := gin.New()

	// Set up middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.BasicAuth())
	router.Use(middleware.MaxRequestBodySize(int64(config.AppConfig.JSONBodyLimitMB) << 20))

	if config.AppConfig.APIRateLimitPerMinute > 0 {
		limiter := middleware.NewIPRateLimiter(config.AppConfig.APIRateLimitPerMinute, config.AppConfig.APIRateLimitPerMinute/4)
		router.Use(limiter.Middleware())
	}

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		router:     router,
		store:      store,
		retriever:  retriever,
		reconciler: reconciler,
		recognizer: recog,
	}

	server.setupRoutes()

	return server
}

// GetDefaultServerConfig returns the default HTTP server configuration.
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Host:         "0.0.0.0",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Heartbeat: refresh the gauge metrics every 5s while running
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(5 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				var mem runtime.MemStats
				runtime.ReadMemStats(&mem)
				if count, err := s.store.CountMedicines(); err == nil {
					metrics.SetMedicines(count)
				} else {
					log.Printf("[DEBUG] Heartbeat: failed to count medicines: %v", err)
				}
				metrics.SetMemoryAlloc(mem.Alloc)
				metrics.SetGoroutines(runtime.NumGoroutine())
			case <-quit:
				return
			}
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-quit

	log.Println("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint (standard path)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint (both paths for compatibility)
	s.router.GET("/api/health", s.healthCheck)
	s.router.GET("/api/v1/health", s.healthCheck)

	// API routes
	api := s.router.Group("/api/v1")
	{
		api.POST("/recognize", s.recognize)

		api.GET("/medicines", s.listMedicines)
		api.GET("/medicines/search", s.searchMedicines)
		api.GET("/medicines/:id", s.getMedicine)

		api.GET("/statistics", s.getStatistics)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	// Gather basic metrics; tolerate errors (don't fail health entirely)
	var medicineCount int
	var dbErr error
	if s.store != nil {
		if mc, err := s.store.CountMedicines(); err == nil {
			medicineCount = mc
		} else {
			dbErr = err
		}
	}
	resp := gin.H{
		"status":        "ok",
		"timestamp":     time.Now().Unix(),
		"version":       "1.0.0",
		"database_type": config.AppConfig.DatabaseType,
		"metrics": gin.H{
			"medicines": medicineCount,
		},
	}
	if dbErr != nil {
		resp["partial_error"] = dbErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}
