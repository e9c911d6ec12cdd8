package models

import "time"

// GlobalBackupSettings is the singleton row steering automatic backups.
// NextRunAt is always LastRunAt + FrequencyHours, anchored to
// Hour:Minute of day.
type GlobalBackupSettings struct {
	ID                uint       `json:"-" gorm:"primaryKey"`
	AutoBackupEnabled bool       `json:"auto_backup_enabled" gorm:"default:false"`
	Hour              int        `json:"hour" gorm:"default:3"`
	Minute            int        `json:"minute" gorm:"default:0"`
	FrequencyHours    int        `json:"frequency_hours" gorm:"default:24"`
	AutoEmailEnabled  bool       `json:"auto_email_enabled" gorm:"default:false"`
	LastRunAt         *time.Time `json:"last_run_at"`
	NextRunAt         *time.Time `json:"next_run_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (GlobalBackupSettings) TableName() string {
	return "global_backup_settings"
}

// EmailRecipient receives backup artifacts from the delivery
// dispatcher.
type EmailRecipient struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"unique;not null"`
	Name      string    `json:"name"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
}

func (EmailRecipient) TableName() string {
	return "backup_email_recipients"
}
