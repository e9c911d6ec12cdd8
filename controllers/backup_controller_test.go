package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StaffBox/middlewares"
	"StaffBox/models"
	"StaffBox/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryRegistry is a minimal in-memory BackupRepository for handler
// tests.
type memoryRegistry struct {
	records    map[string]*models.BackupRecord
	settings   *models.GlobalBackupSettings
	recipients []models.EmailRecipient
	nextID     uint
}

func newMemoryRegistry() *memoryRegistry {
	return &memoryRegistry{records: make(map[string]*models.BackupRecord)}
}

func (m *memoryRegistry) CreateRecord(r *models.BackupRecord) error { m.records[r.ID] = r; return nil }
func (m *memoryRegistry) SaveRecord(r *models.BackupRecord) error   { m.records[r.ID] = r; return nil }
func (m *memoryRegistry) SetRecordStatus(id string, status models.BackupStatus) error {
	if r, ok := m.records[id]; ok {
		r.Status = status
		return nil
	}
	return gorm.ErrRecordNotFound
}
func (m *memoryRegistry) FindRecord(id string) (*models.BackupRecord, error) {
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *memoryRegistry) ListRecords(tenantID string, limit int) ([]models.BackupRecord, error) {
	var out []models.BackupRecord
	for _, r := range m.records {
		if tenantID == "" || r.TenantID == tenantID {
			out = append(out, *r)
		}
	}
	return out, nil
}
func (m *memoryRegistry) DeleteRecord(id string) error { delete(m.records, id); return nil }
func (m *memoryRegistry) MarkEmailSent(id string, at time.Time) error {
	if r, ok := m.records[id]; ok {
		r.EmailSent = true
		r.EmailSentAt = &at
	}
	return nil
}
func (m *memoryRegistry) GetSettings() (*models.GlobalBackupSettings, error) {
	if m.settings == nil {
		m.settings = &models.GlobalBackupSettings{ID: 1, Hour: 3, FrequencyHours: 24}
	}
	return m.settings, nil
}
func (m *memoryRegistry) SaveSettings(s *models.GlobalBackupSettings) error {
	m.settings = s
	return nil
}
func (m *memoryRegistry) ListRecipients(activeOnly bool) ([]models.EmailRecipient, error) {
	var out []models.EmailRecipient
	for _, r := range m.recipients {
		if !activeOnly || r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}
func (m *memoryRegistry) CreateRecipient(r *models.EmailRecipient) error {
	m.nextID++
	r.ID = m.nextID
	m.recipients = append(m.recipients, *r)
	return nil
}
func (m *memoryRegistry) DeleteRecipient(id uint) error {
	for i, r := range m.recipients {
		if r.ID == id {
			m.recipients = append(m.recipients[:i], m.recipients[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func newTestController(registry *memoryRegistry) *BackupController {
	schedule := services.NewScheduleService(registry)
	delivery := services.NewDeliveryService(registry, services.LogDispatcher{})
	return NewBackupController(nil, nil, schedule, delivery, nil, registry)
}

// invoke runs a handler with an authenticated actor and the error
// mapping middleware, mirroring the wiring in routes.Register.
func invoke(t *testing.T, actor *models.User, handler echo.HandlerFunc,
	method, target, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	c.Set("user", actor)

	wrapped := middlewares.ErrorHandler()(handler)
	if err := wrapped(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCreateSystemBackupRequiresSuperAdmin(t *testing.T) {
	ctl := newTestController(newMemoryRegistry())
	member := &models.User{ID: "u1", TenantID: "acme", Role: models.RoleMember}

	rec := invoke(t, member, ctl.Create, http.MethodPost, "/api/backups",
		`{"system_wide":true}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateTenantBackupRejectsForeignTenant(t *testing.T) {
	ctl := newTestController(newMemoryRegistry())
	admin := &models.User{ID: "u1", TenantID: "acme", Role: models.RoleAdmin}

	rec := invoke(t, admin, ctl.Create, http.MethodPost, "/api/backups",
		`{"tenant_id":"globex"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetBackupNotFound(t *testing.T) {
	ctl := newTestController(newMemoryRegistry())
	superAdmin := &models.User{ID: "u1", Role: models.RoleSuperAdmin}

	rec := invoke(t, superAdmin, ctl.Get, http.MethodGet, "/api/backups/ghost", "", "id", "ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBackupHidesOtherTenants(t *testing.T) {
	registry := newMemoryRegistry()
	registry.records["r1"] = &models.BackupRecord{
		ID: "r1", Scope: models.ScopeTenant, TenantID: "globex", Status: models.StatusCompleted,
	}
	ctl := newTestController(registry)
	admin := &models.User{ID: "u1", TenantID: "acme", Role: models.RoleAdmin}

	rec := invoke(t, admin, ctl.Get, http.MethodGet, "/api/backups/r1", "", "id", "r1")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	ctl := newTestController(newMemoryRegistry())
	superAdmin := &models.User{ID: "u1", Role: models.RoleSuperAdmin}

	rec := invoke(t, superAdmin, ctl.GetSettings, http.MethodGet, "/api/backups/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var settings models.GlobalBackupSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, 3, settings.Hour)
	assert.Equal(t, 24, settings.FrequencyHours)

	rec = invoke(t, superAdmin, ctl.UpdateSettings, http.MethodPut, "/api/backups/settings",
		`{"auto_backup_enabled":true,"hour":2,"minute":30,"frequency_hours":12}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = invoke(t, superAdmin, ctl.GetSettings, http.MethodGet, "/api/backups/settings", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.True(t, settings.AutoBackupEnabled)
	assert.Equal(t, 2, settings.Hour)
}

func TestUpdateSettingsRejectsBadHour(t *testing.T) {
	ctl := newTestController(newMemoryRegistry())
	superAdmin := &models.User{ID: "u1", Role: models.RoleSuperAdmin}

	rec := invoke(t, superAdmin, ctl.UpdateSettings, http.MethodPut, "/api/backups/settings",
		`{"hour":24,"frequency_hours":24}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsForbiddenForTenantAdmin(t *testing.T) {
	ctl := newTestController(newMemoryRegistry())
	admin := &models.User{ID: "u1", TenantID: "acme", Role: models.RoleAdmin}

	rec := invoke(t, admin, ctl.GetSettings, http.MethodGet, "/api/backups/settings", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRecipientLifecycle(t *testing.T) {
	ctl := newTestController(newMemoryRegistry())
	superAdmin := &models.User{ID: "u1", Role: models.RoleSuperAdmin}

	rec := invoke(t, superAdmin, ctl.CreateRecipient, http.MethodPost, "/api/backups/recipients",
		`{"email":"ops@staffbox.io","name":"Ops"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = invoke(t, superAdmin, ctl.ListRecipients, http.MethodGet, "/api/backups/recipients", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var recipients []models.EmailRecipient
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recipients))
	require.Len(t, recipients, 1)
	assert.Equal(t, "ops@staffbox.io", recipients[0].Email)
	assert.True(t, recipients[0].Active)

	rec = invoke(t, superAdmin, ctl.DeleteRecipient, http.MethodDelete,
		"/api/backups/recipients/1", "", "id", "1")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateRecipientRequiresEmail(t *testing.T) {
	ctl := newTestController(newMemoryRegistry())
	superAdmin := &models.User{ID: "u1", Role: models.RoleSuperAdmin}

	rec := invoke(t, superAdmin, ctl.CreateRecipient, http.MethodPost, "/api/backups/recipients", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
