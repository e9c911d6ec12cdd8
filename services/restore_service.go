package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"StaffBox/models"
	"StaffBox/repositories"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TableOutcome is the per-table result of a restore. A table with a
// delete error and no insert may have been left empty; the caller sees
// that here instead of a blanket success.
type TableOutcome struct {
	Table    string `json:"table"`
	Deleted  int64  `json:"deleted"`
	Inserted int64  `json:"inserted"`
	Error    string `json:"error,omitempty"`
}

// TenantRestoreReport is the full per-table report for one tenant.
// Partial is true when any table failed; such a result must be
// reviewed, not trusted.
type TenantRestoreReport struct {
	TenantID string         `json:"tenant_id"`
	PerTable []TableOutcome `json:"per_table"`
	Partial  bool           `json:"partial"`
}

// SystemRestoreReport accumulates per-tenant reports plus the global
// table outcomes of a system-wide restore.
type SystemRestoreReport struct {
	Tenants      []TenantRestoreReport `json:"tenants"`
	GlobalTables []TableOutcome        `json:"global_tables"`
}

// RestoreService reconstructs tenant data from a snapshot document:
// delete in descending dependency rank, insert in ascending rank,
// best-effort per table.
type RestoreService struct {
	registry repositories.BackupRepository
	tenants  repositories.TenantRepository
	tables   repositories.TableStore
	guard    *OperationGuard
}

func NewRestoreService(registry repositories.BackupRepository, tenants repositories.TenantRepository,
	tables repositories.TableStore, guard *OperationGuard) *RestoreService {
	return &RestoreService{
		registry: registry,
		tenants:  tenants,
		tables:   tables,
		guard:    guard,
	}
}

// RestoreFromRecord restores a tenant from a registry record. The
// record is flipped to restoring while in use and back to completed
// when the call returns; the snapshot document itself is never
// mutated.
func (s *RestoreService) RestoreFromRecord(ctx context.Context, backupID, targetTenantID string,
	tablesSubset []string) (*TenantRestoreReport, error) {

	record, doc, err := s.openRecord(backupID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.registry.SetRecordStatus(record.ID, models.StatusCompleted); err != nil {
			logrus.Error("Failed to release restoring state: ", err)
		}
	}()

	return s.RestoreTenant(ctx, doc, targetTenantID, tablesSubset)
}

// RestoreSystemFromRecord restores every tenant in a system-scope
// record plus the global tables.
func (s *RestoreService) RestoreSystemFromRecord(ctx context.Context, backupID string) (*SystemRestoreReport, error) {
	record, doc, err := s.openRecord(backupID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.registry.SetRecordStatus(record.ID, models.StatusCompleted); err != nil {
			logrus.Error("Failed to release restoring state: ", err)
		}
	}()

	return s.RestoreSystem(ctx, doc)
}

// RestoreTenant applies one tenant's snapshot data onto the target
// tenant. Semantics are best-effort, not atomic: a failed table is
// reported and processing continues with the next one.
func (s *RestoreService) RestoreTenant(ctx context.Context, doc *models.BackupDocument,
	targetTenantID string, tablesSubset []string) (*TenantRestoreReport, error) {

	if targetTenantID == "" {
		return nil, fmt.Errorf("%w: missing target tenant id", ErrMalformedDocument)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	sourceTenantID, err := resolveSourceTenant(doc, targetTenantID)
	if err != nil {
		return nil, err
	}
	selected, err := selectTables(tablesSubset)
	if err != nil {
		return nil, err
	}

	if err := s.guard.Acquire(targetTenantID, "restore"); err != nil {
		return nil, err
	}
	defer s.guard.Release(targetTenantID)

	if err := s.ensureTenant(doc, sourceTenantID, targetTenantID); err != nil {
		return nil, err
	}

	report := s.restoreTables(ctx, doc.Data[sourceTenantID], targetTenantID, selected)
	restoresCounter.Inc()
	return report, nil
}

// RestoreSystem walks every tenant entry in a system snapshot: the
// tenant account is created or updated from its embedded config row,
// its tables are restored, and the global tables are applied once at
// the end.
func (s *RestoreService) RestoreSystem(ctx context.Context, doc *models.BackupDocument) (*SystemRestoreReport, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	tenantIDs := make([]string, 0, len(doc.Data))
	for id := range doc.Data {
		tenantIDs = append(tenantIDs, id)
	}
	sort.Strings(tenantIDs)

	report := &SystemRestoreReport{}
	for _, tenantID := range tenantIDs {
		tenantReport, err := s.RestoreTenant(ctx, doc, tenantID, nil)
		if err != nil {
			// A per-tenant fatal error (busy lock, bad config row) is
			// reported as a fully failed tenant, not a dropped one.
			report.Tenants = append(report.Tenants, TenantRestoreReport{
				TenantID: tenantID,
				Partial:  true,
				PerTable: []TableOutcome{{Table: models.TenantConfigKey, Error: err.Error()}},
			})
			continue
		}
		report.Tenants = append(report.Tenants, *tenantReport)
	}

	// Global tables carry no tenant id: they are upserted by primary
	// key only, never bulk-deleted.
	for _, entry := range models.GlobalTables() {
		outcome := TableOutcome{Table: entry.Name}
		n, err := s.tables.UpsertRows(ctx, entry.Name, doc.GlobalData[entry.Name])
		if err != nil {
			tableErrorsCounter.Inc()
			outcome.Error = (&TableOperationError{Table: entry.Name, Op: "insert", Err: err}).Error()
		}
		outcome.Inserted = n
		report.GlobalTables = append(report.GlobalTables, outcome)
	}

	return report, nil
}

// restoreTables runs the two-phase table walk. Phase one deletes the
// target tenant's rows in descending rank, children before parents.
// Phase two inserts the snapshot rows in ascending rank with every
// tenant id rewritten to the target. Each table's outcome is recorded
// independently.
func (s *RestoreService) restoreTables(ctx context.Context, data models.TableData,
	targetTenantID string, selected map[string]bool) *TenantRestoreReport {

	outcomes := make(map[string]*TableOutcome)

	for _, entry := range models.DeleteOrder() {
		if !selected[entry.Name] {
			continue
		}
		outcome := &TableOutcome{Table: entry.Name}
		outcomes[entry.Name] = outcome

		n, err := s.tables.DeleteRows(ctx, entry.Name, targetTenantID)
		if err != nil {
			tableErrorsCounter.Inc()
			logrus.WithFields(logrus.Fields{
				"tenant": targetTenantID,
				"table":  entry.Name,
			}).Warn("Restore delete failed: ", err)
			outcome.Error = (&TableOperationError{Table: entry.Name, Op: "delete", Err: err}).Error()
			continue
		}
		outcome.Deleted = n
	}

	for _, entry := range models.CaptureOrder() {
		if !selected[entry.Name] {
			continue
		}
		outcome := outcomes[entry.Name]

		rows := rewriteTenantID(data[entry.Name], targetTenantID)
		n, err := s.tables.UpsertRows(ctx, entry.Name, rows)
		if err != nil {
			tableErrorsCounter.Inc()
			logrus.WithFields(logrus.Fields{
				"tenant": targetTenantID,
				"table":  entry.Name,
			}).Warn("Restore insert failed: ", err)
			if outcome.Error == "" {
				outcome.Error = (&TableOperationError{Table: entry.Name, Op: "insert", Err: err}).Error()
			}
			continue
		}
		outcome.Inserted = n
	}

	report := &TenantRestoreReport{TenantID: targetTenantID}
	for _, entry := range models.CaptureOrder() {
		if outcome, ok := outcomes[entry.Name]; ok {
			report.PerTable = append(report.PerTable, *outcome)
			if outcome.Error != "" {
				report.Partial = true
			}
		}
	}
	return report
}

// ensureTenant makes the target tenant account exist before its tables
// are touched, sourcing it from the snapshot's reserved config row. An
// existing tenant restoring its own snapshot is overwritten with the
// snapshot row; an existing clone target keeps its live account. When
// cloning onto a different tenant id, the id and unique code are
// rewritten to the target.
func (s *RestoreService) ensureTenant(doc *models.BackupDocument, sourceTenantID, targetTenantID string) error {
	exists := true
	if _, err := s.tenants.FindByID(targetTenantID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("look up tenant %s: %w", targetTenantID, err)
		}
		exists = false
	}
	if exists && sourceTenantID != targetTenantID {
		return nil
	}

	rows := doc.Data[sourceTenantID][models.TenantConfigKey]
	if len(rows) == 0 {
		if exists {
			return nil
		}
		return fmt.Errorf("%w: tenant %s does not exist and the snapshot has no tenant row",
			ErrNotFound, targetTenantID)
	}

	payload, err := json.Marshal(rows[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	var tenant models.Tenant
	if err := json.Unmarshal(payload, &tenant); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	tenant.ID = targetTenantID
	if sourceTenantID != targetTenantID {
		tenant.Code = targetTenantID
	}
	return s.tenants.Upsert(&tenant)
}

// openRecord loads a completed record, flips it to restoring and
// decodes its document. The caller is responsible for flipping it
// back.
func (s *RestoreService) openRecord(backupID string) (*models.BackupRecord, *models.BackupDocument, error) {
	record, err := s.registry.FindRecord(backupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: backup %s", ErrNotFound, backupID)
		}
		return nil, nil, err
	}
	if record.Status != models.StatusCompleted {
		return nil, nil, fmt.Errorf("%w: status is %s", ErrRecordNotRestorable, record.Status)
	}

	var doc models.BackupDocument
	if err := json.Unmarshal(record.Document, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if err := validateDocument(&doc); err != nil {
		return nil, nil, err
	}

	if err := s.registry.SetRecordStatus(record.ID, models.StatusRestoring); err != nil {
		return nil, nil, fmt.Errorf("mark record restoring: %w", err)
	}
	return record, &doc, nil
}

func validateDocument(doc *models.BackupDocument) error {
	if doc == nil || doc.Data == nil {
		return ErrMalformedDocument
	}
	if doc.Info.Version != models.DocumentVersion {
		return fmt.Errorf("%w: %q", ErrUnknownVersion, doc.Info.Version)
	}
	return nil
}

// resolveSourceTenant picks which tenant entry of the document feeds
// the restore: the target's own entry if present, otherwise the single
// entry of a one-tenant snapshot.
func resolveSourceTenant(doc *models.BackupDocument, targetTenantID string) (string, error) {
	if _, ok := doc.Data[targetTenantID]; ok {
		return targetTenantID, nil
	}
	if len(doc.Data) == 1 {
		for id := range doc.Data {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: snapshot holds %d tenants and none matches %s",
		ErrMalformedDocument, len(doc.Data), targetTenantID)
}

// selectTables resolves the optional subset against the manifest. An
// empty subset selects every tenant-scoped table.
func selectTables(subset []string) (map[string]bool, error) {
	selected := make(map[string]bool)
	if len(subset) == 0 {
		for _, entry := range models.CaptureOrder() {
			selected[entry.Name] = true
		}
		return selected, nil
	}
	for _, name := range subset {
		entry, ok := models.LookupTable(name)
		if !ok || !entry.TenantScoped {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
		}
		selected[name] = true
	}
	return selected, nil
}

// rewriteTenantID copies each row with its tenant_id forced to the
// target. The snapshot rows are never mutated in place.
func rewriteTenantID(rows []models.Row, targetTenantID string) []models.Row {
	out := make([]models.Row, len(rows))
	for i, row := range rows {
		clone := make(models.Row, len(row))
		for k, v := range row {
			clone[k] = v
		}
		clone["tenant_id"] = targetTenantID
		out[i] = clone
	}
	return out
}
