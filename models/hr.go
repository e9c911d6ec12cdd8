package models

import "time"

// Position is a job role inside a tenant (e.g. "Store Manager").
type Position struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	TenantID  string    `json:"tenant_id" gorm:"size:36;index;not null"`
	Title     string    `json:"title" gorm:"size:100;not null"`
	Grade     int       `json:"grade" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Position) TableName() string { return "positions" }

// Policy defines leave/attendance rules employees are subject to.
type Policy struct {
	ID              string    `json:"id" gorm:"primaryKey;size:36"`
	TenantID        string    `json:"tenant_id" gorm:"size:36;index;not null"`
	Name            string    `json:"name" gorm:"size:100;not null"`
	AnnualLeaveDays int       `json:"annual_leave_days" gorm:"default:20"`
	SickLeaveDays   int       `json:"sick_leave_days" gorm:"default:10"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Policy) TableName() string { return "policies" }

// Employee belongs to a tenant and optionally to a position.
type Employee struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	TenantID   string     `json:"tenant_id" gorm:"size:36;index;not null"`
	PositionID string     `json:"position_id" gorm:"size:36;index"`
	Name       string     `json:"name" gorm:"size:100;not null"`
	Email      string     `json:"email" gorm:"size:255"`
	Phone      string     `json:"phone" gorm:"size:32"`
	HiredAt    *time.Time `json:"hired_at"`
	Active     bool       `json:"active" gorm:"default:true"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Employee) TableName() string { return "employees" }

// Attendance is one work session of one employee.
type Attendance struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	TenantID   string     `json:"tenant_id" gorm:"size:36;index;not null"`
	EmployeeID string     `json:"employee_id" gorm:"size:36;index;not null"`
	ClockIn    time.Time  `json:"clock_in"`
	ClockOut   *time.Time `json:"clock_out"`
	Status     string     `json:"status" gorm:"size:20;default:'open'"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Attendance) TableName() string { return "attendances" }

// AttendanceBreak is a pause taken during an attendance session.
type AttendanceBreak struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	TenantID     string     `json:"tenant_id" gorm:"size:36;index;not null"`
	AttendanceID string     `json:"attendance_id" gorm:"size:36;index;not null"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (AttendanceBreak) TableName() string { return "attendance_breaks" }

// Leave is a leave request of one employee under one policy.
type Leave struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	TenantID   string    `json:"tenant_id" gorm:"size:36;index;not null"`
	EmployeeID string    `json:"employee_id" gorm:"size:36;index;not null"`
	PolicyID   string    `json:"policy_id" gorm:"size:36;index"`
	Kind       string    `json:"kind" gorm:"size:20;default:'annual'"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Status     string    `json:"status" gorm:"size:20;default:'pending'"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Leave) TableName() string { return "leaves" }

// Salary is a monthly payroll entry for one employee.
type Salary struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	TenantID   string    `json:"tenant_id" gorm:"size:36;index;not null"`
	EmployeeID string    `json:"employee_id" gorm:"size:36;index;not null"`
	Period     string    `json:"period" gorm:"size:7;not null"` // YYYY-MM
	BaseAmount int64     `json:"base_amount"`
	Bonus      int64     `json:"bonus"`
	Currency   string    `json:"currency" gorm:"size:3;default:'USD'"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Salary) TableName() string { return "salaries" }

// EmployeePermission grants an employee a capability, optionally scoped
// to a position.
type EmployeePermission struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	TenantID   string    `json:"tenant_id" gorm:"size:36;index;not null"`
	EmployeeID string    `json:"employee_id" gorm:"size:36;index;not null"`
	PositionID string    `json:"position_id" gorm:"size:36;index"`
	Permission string    `json:"permission" gorm:"size:50;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (EmployeePermission) TableName() string { return "employee_permissions" }

// JoinRequest is a pending request of a person to join a tenant.
type JoinRequest struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	TenantID  string    `json:"tenant_id" gorm:"size:36;index;not null"`
	Email     string    `json:"email" gorm:"size:255;not null"`
	Status    string    `json:"status" gorm:"size:20;default:'pending'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (JoinRequest) TableName() string { return "join_requests" }

// LocationHistory stores geolocation points recorded during an
// attendance session.
type LocationHistory struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	TenantID     string    `json:"tenant_id" gorm:"size:36;index;not null"`
	AttendanceID string    `json:"attendance_id" gorm:"size:36;index;not null"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RecordedAt   time.Time `json:"recorded_at"`
}

func (LocationHistory) TableName() string { return "location_histories" }

// AuditLog records a tenant-visible action trail entry.
type AuditLog struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	TenantID  string    `json:"tenant_id" gorm:"size:36;index;not null"`
	ActorID   string    `json:"actor_id" gorm:"size:36"`
	Action    string    `json:"action" gorm:"size:100;not null"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
