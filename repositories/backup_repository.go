package repositories

import (
	"time"

	"StaffBox/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BackupRepository is the backup registry: the catalog of backup
// records plus the global scheduling settings and the email recipient
// list.
type BackupRepository interface {
	CreateRecord(record *models.BackupRecord) error
	SaveRecord(record *models.BackupRecord) error
	SetRecordStatus(id string, status models.BackupStatus) error
	FindRecord(id string) (*models.BackupRecord, error)
	ListRecords(tenantID string, limit int) ([]models.BackupRecord, error)
	DeleteRecord(id string) error
	MarkEmailSent(id string, at time.Time) error

	GetSettings() (*models.GlobalBackupSettings, error)
	SaveSettings(settings *models.GlobalBackupSettings) error

	ListRecipients(activeOnly bool) ([]models.EmailRecipient, error)
	CreateRecipient(recipient *models.EmailRecipient) error
	DeleteRecipient(id uint) error
}

type backupRepositoryImpl struct {
	db *gorm.DB
}

func NewBackupRepository(db *gorm.DB) BackupRepository {
	return &backupRepositoryImpl{db: db}
}

func (r *backupRepositoryImpl) CreateRecord(record *models.BackupRecord) error {
	return r.db.Create(record).Error
}

func (r *backupRepositoryImpl) SaveRecord(record *models.BackupRecord) error {
	return r.db.Save(record).Error
}

func (r *backupRepositoryImpl) SetRecordStatus(id string, status models.BackupStatus) error {
	return r.db.Model(&models.BackupRecord{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *backupRepositoryImpl) FindRecord(id string) (*models.BackupRecord, error) {
	var record models.BackupRecord
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *backupRepositoryImpl) ListRecords(tenantID string, limit int) ([]models.BackupRecord, error) {
	q := r.db.Model(&models.BackupRecord{}).
		Omit("document").
		Order("created_at DESC")
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var records []models.BackupRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *backupRepositoryImpl) DeleteRecord(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.BackupRecord{}).Error
}

func (r *backupRepositoryImpl) MarkEmailSent(id string, at time.Time) error {
	return r.db.Model(&models.BackupRecord{}).Where("id = ?", id).
		Updates(map[string]interface{}{"email_sent": true, "email_sent_at": at}).Error
}

// GetSettings returns the singleton settings row, creating it with
// defaults on first access.
func (r *backupRepositoryImpl) GetSettings() (*models.GlobalBackupSettings, error) {
	var settings models.GlobalBackupSettings
	err := r.db.Where(models.GlobalBackupSettings{ID: 1}).
		Attrs(models.GlobalBackupSettings{Hour: 3, Minute: 0, FrequencyHours: 24}).
		FirstOrCreate(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *backupRepositoryImpl) SaveSettings(settings *models.GlobalBackupSettings) error {
	settings.ID = 1
	return r.db.Save(settings).Error
}

func (r *backupRepositoryImpl) ListRecipients(activeOnly bool) ([]models.EmailRecipient, error) {
	q := r.db.Model(&models.EmailRecipient{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var recipients []models.EmailRecipient
	if err := q.Order("id").Find(&recipients).Error; err != nil {
		return nil, err
	}
	return recipients, nil
}

func (r *backupRepositoryImpl) CreateRecipient(recipient *models.EmailRecipient) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		UpdateAll: true,
	}).Create(recipient).Error
}

func (r *backupRepositoryImpl) DeleteRecipient(id uint) error {
	return r.db.Where("id = ?", id).Delete(&models.EmailRecipient{}).Error
}
