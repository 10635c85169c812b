package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/auditlens/seo-audit/internal/analyzer"
	"github.com/auditlens/seo-audit/internal/api"
	"github.com/auditlens/seo-audit/internal/artifact"
	"github.com/auditlens/seo-audit/internal/capture"
	"github.com/auditlens/seo-audit/internal/db"
	"github.com/auditlens/seo-audit/internal/keywords"
	"github.com/auditlens/seo-audit/internal/logging"
	"github.com/auditlens/seo-audit/internal/middleware"
	"github.com/auditlens/seo-audit/internal/notify"
	"github.com/auditlens/seo-audit/internal/service"
	"github.com/auditlens/seo-audit/internal/sitemap"
	"github.com/auditlens/seo-audit/internal/store"
	"github.com/auditlens/seo-audit/internal/workflow"
)

// Config holds application configuration
type Config struct {
	Port            string
	ArtifactDir     string
	ArtifactBaseURL string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewConfig creates a new configuration from environment variables
func NewConfig() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dir := os.Getenv("ARTIFACT_DIR")
	if dir == "" {
		dir = "./data/files"
	}
	baseURL := os.Getenv("ARTIFACT_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port + "/files"
	}

	return &Config{
		Port:            port,
		ArtifactDir:     dir,
		ArtifactBaseURL: baseURL,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

func main() {
	_ = godotenv.Load()

	log := logging.NewLogger(logging.DefaultConfig())
	logging.SetDefault(log)

	config := NewConfig()

	log.Info("initializing database")
	dbConn, err := db.InitDB()
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	artifacts, err := artifact.NewLocalStore(config.ArtifactDir, config.ArtifactBaseURL)
	if err != nil {
		log.Error("failed to initialize artifact store", "error", err)
		os.Exit(1)
	}

	auditStore := store.NewGormAuditStore(dbConn)
	reportStore := store.NewGormReportStore(dbConn)

	pageCapture := capture.NewChromeCapture(capture.DefaultChromeConfig())
	claude := analyzer.NewClaudeClient(analyzer.NewClaudeConfig())
	semrush := keywords.NewSemrushSource(keywords.NewSemrushConfig())
	sitemaps := sitemap.NewHTTPSource()
	email := notify.NewSMTPSender(notify.NewSMTPConfig())
	chat := notify.NewSlackSender(notify.NewSlackConfig())

	auditWF := workflow.NewAuditWorkflow(pageCapture, claude, artifacts, auditStore)
	sitemapWF := workflow.NewSitemapWorkflow(sitemaps, claude, auditStore)
	signedWF := workflow.NewSignedWorkflow(auditStore, semrush, claude, artifacts, email, chat, nil)

	runner := workflow.NewRunner(dbConn, auditWF, sitemapWF, signedWF, nil)
	if err := runner.Start(); err != nil {
		log.Error("failed to start workflow runner", "error", err)
		os.Exit(1)
	}

	auditService := service.NewAuditService(auditStore, runner)
	reportService := service.NewReportService(reportStore, auditStore, artifacts)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"service":   "seo-audit",
		})
	})

	// Stored artifacts: screenshots, spreadsheets, PDFs.
	r.Static("/files", config.ArtifactDir)

	r.POST("/auth/login", api.LoginHandler(dbConn))

	// Public share link, no authentication.
	r.GET("/share/:token", api.SharedReportHandler(reportService))

	authorized := r.Group("/")
	authorized.Use(middleware.JWTRequired())
	{
		authorized.POST("/audits", api.CreateAuditHandler(auditService))
		authorized.GET("/audits", api.ListAuditsHandler(auditService))
		authorized.GET("/audits/:id", api.GetAuditHandler(auditService))
		authorized.PUT("/audits/:id", api.UpdateAuditHandler(auditService))
		authorized.DELETE("/audits/:id", api.DeleteAuditHandler(auditService))
		authorized.GET("/audits/:id/history", api.AuditStatusHistoryHandler(auditService))

		authorized.POST("/reports", api.CreateReportHandler(reportService))
		authorized.GET("/reports", api.ListReportsHandler(reportService))
		authorized.GET("/reports/:id", api.GetReportHandler(reportService))
		authorized.PUT("/reports/:id", api.RenameReportHandler(reportService))
		authorized.PUT("/reports/:id/reorder", api.ReorderReportHandler(reportService))
		authorized.POST("/reports/:id/share", api.GenerateShareLinkHandler(reportService))
		authorized.DELETE("/reports/:id/share", api.RevokeShareLinkHandler(reportService))
		authorized.POST("/reports/:id/pdf", api.GenerateReportPDFHandler(reportService))
		authorized.DELETE("/reports/:id", api.DeleteReportHandler(reportService))
	}

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      r,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	go func() {
		log.Info("starting server", "port", config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if err := runner.Stop(); err != nil {
		log.Error("failed to stop workflow runner", "error", err)
	}

	log.Info("server exited")
}
