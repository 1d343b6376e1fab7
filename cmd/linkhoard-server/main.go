package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"linkhoard/pkg/linkhoard/capture"
	"linkhoard/pkg/linkhoard/config"
	"linkhoard/pkg/linkhoard/database"
	"linkhoard/pkg/linkhoard/enrich"
	"linkhoard/pkg/linkhoard/models"
	"linkhoard/pkg/linkhoard/repo"
	"linkhoard/pkg/linkhoard/scrape"
	"linkhoard/pkg/linkhoard/web"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations completed")

	repository := repo.New(db)
	scraper := scrape.New(scrape.DefaultConfig())
	enricher := enrich.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel, log)
	if cfg.AIAPIKey == "" {
		log.Warn("No AI API key configured, summaries will be unavailable")
	}
	svc := capture.NewService(repository, scraper, enricher, log)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Mini-app static frontend, when a build is present
	if _, err := os.Stat("./public"); err == nil {
		r.Static("/app", "./public")
		log.Info("Serving mini-app from ./public")
	}

	api := r.Group("/api")
	{
		webHandler := web.NewHandler(repository, svc)
		webHandler.RegisterRoutes(api)
	}

	log.Infof("Starting linkhoard server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
