package models

import (
	"time"

	"gorm.io/datatypes"
)

// BackupScope says whether a backup covers one tenant or the entire
// system.
type BackupScope string

const (
	ScopeTenant BackupScope = "tenant"
	ScopeSystem BackupScope = "system"
)

// BackupType indicates what triggered the backup.
type BackupType string

const (
	BackupTypeManual    BackupType = "manual"
	BackupTypeAutomatic BackupType = "automatic"
)

// BackupStatus is the lifecycle state of a backup record. Transitions
// are one-directional except completed -> restoring -> completed while
// the record is used as a restore source.
type BackupStatus string

const (
	StatusInProgress BackupStatus = "in_progress"
	StatusCompleted  BackupStatus = "completed"
	StatusFailed     BackupStatus = "failed"
	StatusRestoring  BackupStatus = "restoring"
)

// BackupRecord is a catalog entry for one captured snapshot. Once
// completed, the document is never mutated in place.
type BackupRecord struct {
	ID             string         `json:"id" gorm:"primaryKey;size:36"`
	Scope          BackupScope    `json:"scope" gorm:"size:16;not null"`
	Type           BackupType     `json:"type" gorm:"size:16;not null"`
	Status         BackupStatus   `json:"status" gorm:"size:16;not null;index"`
	TenantID       string         `json:"tenant_id" gorm:"size:36;index"` // empty for system scope
	Document       datatypes.JSON `json:"-" gorm:"type:jsonb"`
	TablesIncluded datatypes.JSON `json:"tables_included" gorm:"type:jsonb"`
	TableErrors    datatypes.JSON `json:"table_errors,omitempty" gorm:"type:jsonb"`
	SizeBytes      int64          `json:"size_bytes"`
	TotalRecords   int            `json:"total_records"`
	TenantCount    int            `json:"tenant_count"`
	CreatedBy      string         `json:"created_by" gorm:"size:36"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	EmailSent      bool           `json:"email_sent"`
	EmailSentAt    *time.Time     `json:"email_sent_at"`
}

func (BackupRecord) TableName() string {
	return "backup_records"
}
