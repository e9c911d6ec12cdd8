package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"StaffBox/models"
	"StaffBox/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

// TenantCaptureSummary reports one tenant's part of a capture.
type TenantCaptureSummary struct {
	TenantID     string              `json:"tenant_id"`
	TotalRecords int                 `json:"total_records"`
	SizeBytes    int64               `json:"size_bytes"`
	TableCounts  map[string]int      `json:"table_counts"`
	Errors       []string            `json:"errors,omitempty"`
	Status       models.BackupStatus `json:"status"`
}

// CaptureReport is returned to the caller alongside the persisted
// record. Table-level errors are surfaced here, never swallowed.
type CaptureReport struct {
	BackupID  string                 `json:"backup_id"`
	Scope     models.BackupScope     `json:"scope"`
	PerTenant []TenantCaptureSummary `json:"per_tenant"`
}

// BackupService assembles versioned snapshots of tenant data and files
// them in the backup registry.
type BackupService struct {
	registry   repositories.BackupRepository
	tenants    repositories.TenantRepository
	tables     repositories.TableStore
	guard      *OperationGuard
	maxWorkers int64
}

func NewBackupService(registry repositories.BackupRepository, tenants repositories.TenantRepository,
	tables repositories.TableStore, guard *OperationGuard, maxWorkers int64) *BackupService {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &BackupService{
		registry:   registry,
		tenants:    tenants,
		tables:     tables,
		guard:      guard,
		maxWorkers: maxWorkers,
	}
}

// CaptureTenant reads every manifest table for one tenant and persists
// a completed BackupRecord. A single table's read failure does not
// abort the capture: the table is recorded empty and the error is kept
// on the record and in the report.
func (s *BackupService) CaptureTenant(ctx context.Context, tenantID, actorID string,
	backupType models.BackupType) (*models.BackupRecord, *CaptureReport, error) {

	tenant, err := s.tenants.FindByID(tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: tenant %s", ErrNotFound, tenantID)
		}
		return nil, nil, err
	}

	if err := s.guard.Acquire(tenantID, "capture"); err != nil {
		return nil, nil, err
	}
	defer s.guard.Release(tenantID)

	record := &models.BackupRecord{
		ID:        uuid.NewString(),
		Scope:     models.ScopeTenant,
		Type:      backupType,
		Status:    models.StatusInProgress,
		TenantID:  tenantID,
		CreatedBy: actorID,
	}
	if err := s.registry.CreateRecord(record); err != nil {
		return nil, nil, fmt.Errorf("create backup record: %w", err)
	}

	data, counts, tableErrs := s.captureTenantData(ctx, tenant)
	doc := &models.BackupDocument{
		Info: models.BackupInfo{
			Version:     models.DocumentVersion,
			Scope:       models.ScopeTenant,
			CreatedAt:   time.Now().UTC(),
			TenantCount: 1,
			TableCounts: counts,
		},
		Data: map[string]models.TableData{tenantID: data},
	}
	for _, n := range counts {
		doc.Info.TotalRecords += n
	}

	summary := summarize(tenantID, doc.Data[tenantID], counts, tableErrs)
	if err := s.finalizeRecord(record, doc, tableErrs); err != nil {
		return nil, nil, err
	}

	capturesCounter.WithLabelValues(string(models.ScopeTenant)).Inc()
	report := &CaptureReport{
		BackupID:  record.ID,
		Scope:     models.ScopeTenant,
		PerTenant: []TenantCaptureSummary{summary},
	}
	return record, report, nil
}

// CaptureSystem snapshots every active tenant plus the global tables.
// Tenants are data-disjoint, so they are captured concurrently under a
// bounded worker pool.
func (s *BackupService) CaptureSystem(ctx context.Context, actorID string,
	backupType models.BackupType) (*models.BackupRecord, *CaptureReport, error) {

	tenantList, err := s.tenants.ListActive()
	if err != nil {
		return nil, nil, fmt.Errorf("list tenants: %w", err)
	}

	record := &models.BackupRecord{
		ID:        uuid.NewString(),
		Scope:     models.ScopeSystem,
		Type:      backupType,
		Status:    models.StatusInProgress,
		CreatedBy: actorID,
	}
	if err := s.registry.CreateRecord(record); err != nil {
		return nil, nil, fmt.Errorf("create backup record: %w", err)
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		sem       = semaphore.NewWeighted(s.maxWorkers)
		data      = make(map[string]models.TableData, len(tenantList))
		counts    = make(map[string]int)
		summaries = make([]TenantCaptureSummary, 0, len(tenantList))
		allErrs   []*TableOperationError
	)

	for i := range tenantList {
		tenant := tenantList[i]
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, nil, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			tenantData, tenantCounts, tenantErrs := s.captureTenantData(ctx, &tenant)

			mu.Lock()
			defer mu.Unlock()
			data[tenant.ID] = tenantData
			for table, n := range tenantCounts {
				counts[table] += n
			}
			allErrs = append(allErrs, tenantErrs...)
			summaries = append(summaries, summarize(tenant.ID, tenantData, tenantCounts, tenantErrs))
		}()
	}
	wg.Wait()

	globalData := make(models.TableData)
	for _, entry := range models.GlobalTables() {
		rows, err := s.tables.ReadAllRows(ctx, entry.Name)
		if err != nil {
			opErr := &TableOperationError{Table: entry.Name, Op: "read", Err: err}
			logrus.WithFields(logrus.Fields{"table": entry.Name}).
				Warn("Global table capture failed: ", err)
			tableErrorsCounter.Inc()
			allErrs = append(allErrs, opErr)
			globalData[entry.Name] = []models.Row{}
			continue
		}
		globalData[entry.Name] = rows
		counts[entry.Name] += len(rows)
	}

	doc := &models.BackupDocument{
		Info: models.BackupInfo{
			Version:     models.DocumentVersion,
			Scope:       models.ScopeSystem,
			CreatedAt:   time.Now().UTC(),
			TenantCount: len(tenantList),
			TableCounts: counts,
		},
		Data:       data,
		GlobalData: globalData,
	}
	for _, n := range counts {
		doc.Info.TotalRecords += n
	}

	if err := s.finalizeRecord(record, doc, allErrs); err != nil {
		return nil, nil, err
	}

	capturesCounter.WithLabelValues(string(models.ScopeSystem)).Inc()
	report := &CaptureReport{
		BackupID:  record.ID,
		Scope:     models.ScopeSystem,
		PerTenant: summaries,
	}
	return record, report, nil
}

// captureTenantData reads all tenant-scoped manifest tables in
// ascending dependency rank. A failed table ends up as an empty slice
// plus a retained error; the loop never aborts.
func (s *BackupService) captureTenantData(ctx context.Context,
	tenant *models.Tenant) (models.TableData, map[string]int, []*TableOperationError) {

	data := make(models.TableData)
	counts := make(map[string]int)
	var tableErrs []*TableOperationError

	for _, entry := range models.CaptureOrder() {
		rows, err := s.tables.ReadRows(ctx, entry.Name, tenant.ID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"tenant": tenant.ID,
				"table":  entry.Name,
			}).Warn("Table capture failed: ", err)
			tableErrorsCounter.Inc()
			tableErrs = append(tableErrs, &TableOperationError{Table: entry.Name, Op: "read", Err: err})
			data[entry.Name] = []models.Row{}
			counts[entry.Name] = 0
			continue
		}
		data[entry.Name] = rows
		counts[entry.Name] = len(rows)
	}

	// The tenant's own row rides along under a reserved key so a
	// system restore can recreate the account.
	if row, err := structToRow(tenant); err == nil {
		data[models.TenantConfigKey] = []models.Row{row}
		counts[models.TenantConfigKey] = 1
	} else {
		tableErrs = append(tableErrs, &TableOperationError{Table: models.TenantConfigKey, Op: "read", Err: err})
		data[models.TenantConfigKey] = []models.Row{}
	}

	return data, counts, tableErrs
}

// finalizeRecord serializes the document onto the record and marks it
// completed. Table errors are persisted on the record so a partial
// capture is visible in the registry, not silently "complete".
func (s *BackupService) finalizeRecord(record *models.BackupRecord,
	doc *models.BackupDocument, tableErrs []*TableOperationError) error {

	payload, err := json.Marshal(doc)
	if err != nil {
		_ = s.registry.SetRecordStatus(record.ID, models.StatusFailed)
		return fmt.Errorf("serialize snapshot: %w", err)
	}

	record.Document = payload
	record.SizeBytes = int64(len(payload))
	record.TotalRecords = doc.Info.TotalRecords
	record.TenantCount = doc.Info.TenantCount
	record.Status = models.StatusCompleted

	tables := append(models.TenantTableNames(), models.TenantConfigKey)
	record.TablesIncluded, _ = json.Marshal(tables)
	if len(tableErrs) > 0 {
		msgs := make([]string, len(tableErrs))
		for i, e := range tableErrs {
			msgs[i] = e.Error()
		}
		record.TableErrors, _ = json.Marshal(msgs)
	}

	if err := s.registry.SaveRecord(record); err != nil {
		_ = s.registry.SetRecordStatus(record.ID, models.StatusFailed)
		return fmt.Errorf("persist backup record: %w", err)
	}
	return nil
}

func summarize(tenantID string, data models.TableData, counts map[string]int,
	tableErrs []*TableOperationError) TenantCaptureSummary {

	summary := TenantCaptureSummary{
		TenantID:    tenantID,
		TableCounts: counts,
		Status:      models.StatusCompleted,
	}
	for _, n := range counts {
		summary.TotalRecords += n
	}
	if payload, err := json.Marshal(data); err == nil {
		summary.SizeBytes = int64(len(payload))
	}
	for _, e := range tableErrs {
		summary.Errors = append(summary.Errors, e.Error())
	}
	return summary
}

// structToRow converts a gorm entity into a generic snapshot row via
// its JSON form.
func structToRow(v interface{}) (models.Row, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var row models.Row
	if err := json.Unmarshal(payload, &row); err != nil {
		return nil, err
	}
	return row, nil
}
