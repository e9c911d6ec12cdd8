package models

import "time"

// DocumentVersion is the snapshot format produced by this release.
// The restore engine rejects any other version.
const DocumentVersion = "1"

// TenantConfigKey is the reserved table key under which a tenant's own
// row is stored inside a snapshot.
const TenantConfigKey = "_tenant"

// Row is one table row, keyed by column name. Every tenant-scoped row
// carries "tenant_id"; every row carries its primary key under "id".
type Row map[string]interface{}

// TableData maps a table name to its captured rows.
type TableData map[string][]Row

// BackupInfo is the snapshot header.
type BackupInfo struct {
	Version      string         `json:"version"`
	Scope        BackupScope    `json:"scope"`
	CreatedAt    time.Time      `json:"created_at"`
	TenantCount  int            `json:"tenant_count"`
	TotalRecords int            `json:"total_records"`
	TableCounts  map[string]int `json:"table_counts"`
}

// BackupDocument is the versioned snapshot payload. Data maps tenant id
// to that tenant's table rows; GlobalData holds tenant-independent
// tables for system-scope snapshots.
type BackupDocument struct {
	Info       BackupInfo           `json:"backup_info"`
	Data       map[string]TableData `json:"data"`
	GlobalData TableData            `json:"global_data,omitempty"`
}
