package routes

import (
	"net/http"

	"StaffBox/controllers"
	"StaffBox/middlewares"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register wires the backup engine endpoints. Everything under
// /api/backups requires an authenticated actor; the authorization gate
// inside the services decides the rest.
func Register(e *echo.Echo, backupController *controllers.BackupController, auth *middlewares.AuthMiddleware) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api", auth.RequireAuth())

	backups := api.Group("/backups")
	backups.POST("", backupController.Create)
	backups.GET("", backupController.List)
	backups.GET("/settings", backupController.GetSettings)
	backups.PUT("/settings", backupController.UpdateSettings)
	backups.GET("/recipients", backupController.ListRecipients)
	backups.POST("/recipients", backupController.CreateRecipient)
	backups.DELETE("/recipients/:id", backupController.DeleteRecipient)
	backups.GET("/:id", backupController.Get)
	backups.DELETE("/:id", backupController.Delete)
	backups.POST("/:id/restore", backupController.Restore)
	backups.POST("/:id/export", backupController.Export)

	api.POST("/restore", backupController.RestoreInline)
}
