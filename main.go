package main

import (
	"context"

	"StaffBox/config"
	"StaffBox/controllers"
	"StaffBox/jobs"
	"StaffBox/middlewares"
	"StaffBox/migrations"
	"StaffBox/models"
	"StaffBox/repositories"
	"StaffBox/routes"
	"StaffBox/services"
	"StaffBox/storage"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using process environment")
	}

	cfg := config.LoadConfig()
	if cfg == nil {
		logrus.Fatal("Failed to load configurations")
	}

	if err := models.ValidateManifest(); err != nil {
		logrus.Fatal("Invalid table manifest: ", err)
	}

	// Initialize database connection
	repositories.InitDB()
	dbConn := repositories.DBConnection
	if err := migrations.RunMigrations(dbConn); err != nil {
		logrus.Fatal("Migrations failed: ", err)
	}

	userRepo := repositories.NewUserRepository(dbConn)
	tenantRepo := repositories.NewTenantRepository(dbConn)
	backupRepo := repositories.NewBackupRepository(dbConn)
	tableStore := repositories.NewTableStore(dbConn)

	// Initialize artifact storage
	var artifactStore storage.Storage
	switch cfg.StorageType {
	case "r2":
		r2Storage, err := storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKey,
			SecretAccessKey: cfg.R2SecretKey,
			Bucket:          cfg.R2Bucket,
		})
		if err != nil {
			logrus.Fatal("Failed to configure R2 storage: ", err)
		}
		artifactStore = r2Storage
	default:
		artifactStore = storage.NewLocalStorage(cfg.LocalPath)
	}

	// Initialize services
	guard := services.NewOperationGuard()
	backupService := services.NewBackupService(backupRepo, tenantRepo, tableStore, guard, int64(cfg.MaxCaptureWorkers))
	restoreService := services.NewRestoreService(backupRepo, tenantRepo, tableStore, guard)
	scheduleService := services.NewScheduleService(backupRepo)
	deliveryService := services.NewDeliveryService(backupRepo, services.LogDispatcher{})
	exportService := services.NewExportService(artifactStore)

	backupController := controllers.NewBackupController(
		backupService, restoreService, scheduleService, deliveryService, exportService, backupRepo)
	authMiddleware := middlewares.NewAuthMiddleware(nil, userRepo)

	// Start the automatic backup scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler := jobs.NewBackupScheduler(scheduleService, backupService, deliveryService, cfg.BackupCron)
	scheduler.Start(ctx)

	// Set up the HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(middlewares.Recovery())
	e.Use(middlewares.ErrorHandler())
	routes.Register(e, backupController, authMiddleware)

	if err := e.Start(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
