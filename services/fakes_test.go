package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StaffBox/models"

	"gorm.io/gorm"
)

// fakeTableStore keeps rows in memory and records every operation so
// tests can assert dependency ordering.
type fakeTableStore struct {
	mu        sync.Mutex
	tables    map[string][]models.Row
	readErr   map[string]error
	deleteErr map[string]error
	insertErr map[string]error
	opLog     []string
}

func newFakeTableStore() *fakeTableStore {
	return &fakeTableStore{
		tables:    make(map[string][]models.Row),
		readErr:   make(map[string]error),
		deleteErr: make(map[string]error),
		insertErr: make(map[string]error),
	}
}

func (f *fakeTableStore) seed(table string, rows ...models.Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[table] = append(f.tables[table], rows...)
}

func (f *fakeTableStore) rowsFor(table, tenantID string) []models.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Row
	for _, row := range f.tables[table] {
		if row["tenant_id"] == tenantID {
			out = append(out, cloneRow(row))
		}
	}
	return out
}

func (f *fakeTableStore) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opLog...)
}

func (f *fakeTableStore) ReadRows(ctx context.Context, table, tenantID string) ([]models.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opLog = append(f.opLog, "read "+table)
	if err := f.readErr[table]; err != nil {
		return nil, err
	}
	var out []models.Row
	for _, row := range f.tables[table] {
		if row["tenant_id"] == tenantID {
			out = append(out, cloneRow(row))
		}
	}
	return out, nil
}

func (f *fakeTableStore) ReadAllRows(ctx context.Context, table string) ([]models.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opLog = append(f.opLog, "readall "+table)
	if err := f.readErr[table]; err != nil {
		return nil, err
	}
	out := make([]models.Row, 0, len(f.tables[table]))
	for _, row := range f.tables[table] {
		out = append(out, cloneRow(row))
	}
	return out, nil
}

func (f *fakeTableStore) DeleteRows(ctx context.Context, table, tenantID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opLog = append(f.opLog, "delete "+table)
	if err := f.deleteErr[table]; err != nil {
		return 0, err
	}
	var kept []models.Row
	var deleted int64
	for _, row := range f.tables[table] {
		if row["tenant_id"] == tenantID {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	f.tables[table] = kept
	return deleted, nil
}

func (f *fakeTableStore) UpsertRows(ctx context.Context, table string, rows []models.Row) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opLog = append(f.opLog, "insert "+table)
	if err := f.insertErr[table]; err != nil {
		return 0, err
	}
	for _, row := range rows {
		replaced := false
		for i, existing := range f.tables[table] {
			if existing["id"] == row["id"] {
				f.tables[table][i] = cloneRow(row)
				replaced = true
				break
			}
		}
		if !replaced {
			f.tables[table] = append(f.tables[table], cloneRow(row))
		}
	}
	return int64(len(rows)), nil
}

func cloneRow(row models.Row) models.Row {
	out := make(models.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// fakeTenantRepo is an in-memory TenantRepository.
type fakeTenantRepo struct {
	mu      sync.Mutex
	tenants map[string]models.Tenant
}

func newFakeTenantRepo(tenants ...models.Tenant) *fakeTenantRepo {
	repo := &fakeTenantRepo{tenants: make(map[string]models.Tenant)}
	for _, t := range tenants {
		repo.tenants[t.ID] = t
	}
	return repo
}

func (f *fakeTenantRepo) FindByID(id string) (*models.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tenant, ok := f.tenants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := tenant
	return &out, nil
}

func (f *fakeTenantRepo) ListActive() ([]models.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Tenant
	for _, t := range f.tenants {
		if t.Status != models.TenantStatusInactive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTenantRepo) Upsert(tenant *models.Tenant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tenants[tenant.ID] = *tenant
	return nil
}

// fakeRegistry is an in-memory BackupRepository that also records
// every status a record passes through.
type fakeRegistry struct {
	mu         sync.Mutex
	records    map[string]*models.BackupRecord
	statusLog  map[string][]models.BackupStatus
	settings   *models.GlobalBackupSettings
	recipients []models.EmailRecipient
	nextRecpID uint
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		records:   make(map[string]*models.BackupRecord),
		statusLog: make(map[string][]models.BackupStatus),
	}
}

func (f *fakeRegistry) CreateRecord(record *models.BackupRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *record
	f.records[record.ID] = &clone
	f.statusLog[record.ID] = append(f.statusLog[record.ID], record.Status)
	return nil
}

func (f *fakeRegistry) SaveRecord(record *models.BackupRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *record
	f.records[record.ID] = &clone
	f.statusLog[record.ID] = append(f.statusLog[record.ID], record.Status)
	return nil
}

func (f *fakeRegistry) SetRecordStatus(id string, status models.BackupStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.Status = status
	f.statusLog[id] = append(f.statusLog[id], status)
	return nil
}

func (f *fakeRegistry) FindRecord(id string) (*models.BackupRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (f *fakeRegistry) ListRecords(tenantID string, limit int) ([]models.BackupRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BackupRecord
	for _, record := range f.records {
		if tenantID != "" && record.TenantID != tenantID {
			continue
		}
		out = append(out, *record)
	}
	return out, nil
}

func (f *fakeRegistry) DeleteRecord(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

func (f *fakeRegistry) MarkEmailSent(id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.EmailSent = true
	record.EmailSentAt = &at
	return nil
}

func (f *fakeRegistry) GetSettings() (*models.GlobalBackupSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		f.settings = &models.GlobalBackupSettings{ID: 1, Hour: 3, Minute: 0, FrequencyHours: 24}
	}
	clone := *f.settings
	return &clone, nil
}

func (f *fakeRegistry) SaveSettings(settings *models.GlobalBackupSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *settings
	f.settings = &clone
	return nil
}

func (f *fakeRegistry) ListRecipients(activeOnly bool) ([]models.EmailRecipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EmailRecipient
	for _, r := range f.recipients {
		if activeOnly && !r.Active {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRegistry) CreateRecipient(recipient *models.EmailRecipient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextRecpID++
	recipient.ID = f.nextRecpID
	f.recipients = append(f.recipients, *recipient)
	return nil
}

func (f *fakeRegistry) DeleteRecipient(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.recipients {
		if r.ID == id {
			f.recipients = append(f.recipients[:i], f.recipients[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("recipient %d not found", id)
}
