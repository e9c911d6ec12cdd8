package models

import "time"

// Tenant status values
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

// Tenant is an isolated customer account. Every tenant-scoped table
// carries its ID as a foreign key.
type Tenant struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"not null;size:100"`
	Code      string    `json:"code" gorm:"unique;not null;size:50"`
	Status    string    `json:"status" gorm:"default:'active';size:20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// TenantSetting is the tenant's own configuration row (working hours,
// timezone, attendance rules). Exactly one row per tenant.
type TenantSetting struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	TenantID       string    `json:"tenant_id" gorm:"size:36;uniqueIndex;not null"`
	Timezone       string    `json:"timezone" gorm:"size:64;default:'UTC'"`
	WorkdayStart   string    `json:"workday_start" gorm:"size:5;default:'09:00'"`
	WorkdayEnd     string    `json:"workday_end" gorm:"size:5;default:'18:00'"`
	BreakMinutes   int       `json:"break_minutes" gorm:"default:60"`
	GeofenceRadius int       `json:"geofence_radius" gorm:"default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (TenantSetting) TableName() string {
	return "tenant_settings"
}
