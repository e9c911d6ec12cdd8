package controllers

import (
	"net/http"
	"strconv"

	"StaffBox/middlewares"
	"StaffBox/models"
	"StaffBox/repositories"
	"StaffBox/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// BackupController exposes the backup engine over HTTP. Every handler
// re-checks authorization through the gate; decisions are never
// cached.
type BackupController struct {
	backups  *services.BackupService
	restores *services.RestoreService
	schedule *services.ScheduleService
	delivery *services.DeliveryService
	export   *services.ExportService
	registry repositories.BackupRepository
}

func NewBackupController(backups *services.BackupService, restores *services.RestoreService,
	schedule *services.ScheduleService, delivery *services.DeliveryService,
	export *services.ExportService, registry repositories.BackupRepository) *BackupController {
	return &BackupController{
		backups:  backups,
		restores: restores,
		schedule: schedule,
		delivery: delivery,
		export:   export,
		registry: registry,
	}
}

type captureRequest struct {
	TenantID   string `json:"tenant_id"`
	SystemWide bool   `json:"system_wide"`
	SendEmail  bool   `json:"send_email"`
}

// Create runs a manual capture for one tenant or the whole system.
func (ctl *BackupController) Create(c echo.Context) error {
	actor := middlewares.ActorFromContext(c)

	var req captureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	scope := models.ScopeTenant
	if req.SystemWide {
		scope = models.ScopeSystem
	}
	if err := services.Authorize(actor, services.OperationCapture, scope, req.TenantID); err != nil {
		return err
	}

	var (
		record *models.BackupRecord
		report *services.CaptureReport
		err    error
	)
	if req.SystemWide {
		record, report, err = ctl.backups.CaptureSystem(c.Request().Context(), actor.ID, models.BackupTypeManual)
	} else {
		if req.TenantID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
		}
		record, report, err = ctl.backups.CaptureTenant(c.Request().Context(), req.TenantID, actor.ID, models.BackupTypeManual)
	}
	if err != nil {
		return err
	}

	if req.SendEmail {
		if err := ctl.delivery.Notify(c.Request().Context(), record); err != nil {
			logrus.Error("Backup delivery failed: ", err)
		}
	}
	return c.JSON(http.StatusCreated, report)
}

// List returns catalog entries without their documents.
func (ctl *BackupController) List(c echo.Context) error {
	actor := middlewares.ActorFromContext(c)
	tenantID := c.QueryParam("tenant_id")

	scope := models.ScopeTenant
	if tenantID == "" {
		scope = models.ScopeSystem
	}
	if err := services.Authorize(actor, services.OperationManage, scope, tenantID); err != nil {
		return err
	}

	records, err := ctl.registry.ListRecords(tenantID, 100)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

// Get returns one catalog entry.
func (ctl *BackupController) Get(c echo.Context) error {
	actor := middlewares.ActorFromContext(c)

	record, err := ctl.registry.FindRecord(c.Param("id"))
	if err != nil {
		return services.ErrNotFound
	}
	if err := services.Authorize(actor, services.OperationManage, record.Scope, record.TenantID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}

// Delete removes a record from the catalog. Records are never deleted
// automatically; this is the explicit operator path.
func (ctl *BackupController) Delete(c echo.Context) error {
	actor := middlewares.ActorFromContext(c)

	record, err := ctl.registry.FindRecord(c.Param("id"))
	if err != nil {
		return services.ErrNotFound
	}
	if err := services.Authorize(actor, services.OperationManage, record.Scope, record.TenantID); err != nil {
		return err
	}
	if err := ctl.registry.DeleteRecord(record.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type restoreRequest struct {
	TargetTenantID string   `json:"target_tenant_id"`
	Tables         []string `json:"tables,omitempty"`
	SystemWide     bool     `json:"system_wide"`
}

// Restore applies a cataloged snapshot onto a tenant (or, for super
// admins, onto the whole system).
func (ctl *BackupController) Restore(c echo.Context) error {
	actor := middlewares.ActorFromContext(c)

	var req restoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.SystemWide {
		if err := services.Authorize(actor, services.OperationRestore, models.ScopeSystem, ""); err != nil {
			return err
		}
		report, err := ctl.restores.RestoreSystemFromRecord(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, report)
	}

	if err := services.Authorize(actor, services.OperationRestore, models.ScopeTenant, req.TargetTenantID); err != nil {
		return err
	}
	report, err := ctl.restores.RestoreFromRecord(c.Request().Context(), c.Param("id"), req.TargetTenantID, req.Tables)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

type inlineRestoreRequest struct {
	Document       *models.BackupDocument `json:"document"`
	TargetTenantID string                 `json:"target_tenant_id"`
	Tables         []string               `json:"tables,omitempty"`
}

// RestoreInline applies a snapshot document supplied in the request
// body instead of the catalog.
func (ctl *BackupController) RestoreInline(c echo.Context) error {
	actor := middlewares.ActorFromContext(c)

	var req inlineRestoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := services.Authorize(actor, services.OperationRestore, models.ScopeTenant, req.TargetTenantID); err != nil {
		return err
	}

	report, err := ctl.restores.RestoreTenant(c.Request().Context(), req.Document, req.TargetTenantID, req.Tables)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// Export writes the snapshot artifact to the configured storage
// backend and returns its path.
func (ctl *BackupController) Export(c echo.Context) error {
	actor := middlewares.ActorFromContext(c)

	record, err := ctl.registry.FindRecord(c.Param("id"))
	if err != nil {
		return services.ErrNotFound
	}
	if err := services.Authorize(actor, services.OperationManage, record.Scope, record.TenantID); err != nil {
		return err
	}

	path, err := ctl.export.Export(record)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"backup_id": record.ID, "artifact": path})
}

// GetSettings returns the global scheduling settings.
func (ctl *BackupController) GetSettings(c echo.Context) error {
	actor := middlewares.ActorFromContext(c)
	if err := services.Authorize(actor, services.OperationManage, models.ScopeSystem, ""); err != nil {
		return err
	}
	settings, err := ctl.schedule.GetSettings()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings stores new scheduling settings.
func (ctl *BackupController) UpdateSettings(c echo.Context) error {
	actor := middlewares.ActorFromContext(c)
	if err := services.Authorize(actor, services.OperationManage, models.ScopeSystem, ""); err != nil {
		return err
	}

	var settings models.GlobalBackupSettings
	if err := c.Bind(&settings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctl.schedule.UpdateSettings(&settings); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

// ListRecipients returns all configured delivery recipients.
func (ctl *BackupController) ListRecipients(c echo.Context) error {
	actor := middlewares.ActorFromContext(c)
	if err := services.Authorize(actor, services.OperationManage, models.ScopeSystem, ""); err != nil {
		return err
	}
	recipients, err := ctl.registry.ListRecipients(false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recipients)
}

// CreateRecipient adds or reactivates a delivery recipient.
func (ctl *BackupController) CreateRecipient(c echo.Context) error {
	actor := middlewares.ActorFromContext(c)
	if err := services.Authorize(actor, services.OperationManage, models.ScopeSystem, ""); err != nil {
		return err
	}

	var recipient models.EmailRecipient
	if err := c.Bind(&recipient); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if recipient.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}
	recipient.Active = true
	if err := ctl.registry.CreateRecipient(&recipient); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, recipient)
}

// DeleteRecipient removes a delivery recipient.
func (ctl *BackupController) DeleteRecipient(c echo.Context) error {
	actor := middlewares.ActorFromContext(c)
	if err := services.Authorize(actor, services.OperationManage, models.ScopeSystem, ""); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recipient id")
	}
	if err := ctl.registry.DeleteRecipient(uint(id)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
