package main

import (
	"fmt"
	"log"

	"github.com/Angel-Soto43/AzalMechanicalSupport/config"
	"github.com/Angel-Soto43/AzalMechanicalSupport/database"
	"github.com/Angel-Soto43/AzalMechanicalSupport/handlers"
	"github.com/Angel-Soto43/AzalMechanicalSupport/logger"
	"github.com/Angel-Soto43/AzalMechanicalSupport/middleware"
	"github.com/Angel-Soto43/AzalMechanicalSupport/repositories"
	"github.com/Angel-Soto43/AzalMechanicalSupport/services"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("starting contract vault service")

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	logger.SetLevel(cfg.Logging.Level)

	if err := database.InitPostgres(&cfg.Database); err != nil {
		log.Fatalf("init postgres failed: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	log.Println("database migration completed")

	if err := database.InitRedis(&cfg.Redis); err != nil {
		log.Fatalf("init redis failed: %v", err)
	}

	repoContainer := repositories.NewGormRepositories(database.DB, database.RedisClient).BuildContainer()
	serviceContainer := services.NewContainer(repoContainer)
	handlers.SetServices(serviceContainer)

	services.StartCleanupWorkers()
	log.Println("cleanup workers started")

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestLogger())
	setupRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("server listening on http://%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}

func setupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", handlers.HealthCheck)
	api.GET("/share/:token", handlers.ResolveShare)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/folders", handlers.ListFolders)
		protected.GET("/folders/:id/path", handlers.GetFolderPath)
		protected.POST("/folders/:id/share", handlers.ShareFolder)

		protected.GET("/files", handlers.ListFiles)
		protected.POST("/files", handlers.UploadFile)
		protected.GET("/files/:id/download", handlers.DownloadFile)
		protected.GET("/files/:id/preview", handlers.PreviewFile)
		protected.GET("/files/:id/versions", handlers.ListFileVersions)
		protected.PUT("/files/:id/replace", handlers.ReplaceFile)
		protected.PUT("/files/:id/move", handlers.MoveFile)
		protected.DELETE("/files/:id", handlers.DeleteFile)
		protected.POST("/files/:id/share", handlers.ShareFile)

		protected.GET("/backup", handlers.ExportBackup)

		admin := protected.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("/folders", handlers.CreateFolder)
			admin.PUT("/folders/:id", handlers.RenameFolder)
			admin.DELETE("/folders/:id", handlers.DeleteFolder)

			admin.GET("/audit-logs", handlers.ListAuditLogs)
		}
	}
}
