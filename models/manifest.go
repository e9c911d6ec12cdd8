package models

import (
	"fmt"
	"sort"
)

// TableManifestEntry describes one table known to the backup engine.
// DependencyRank is a topological position in the foreign-key graph: a
// table never references a table with a higher rank. Capture and insert
// walk ascending rank; delete walks descending rank.
type TableManifestEntry struct {
	Name           string
	DependencyRank int
	TenantScoped   bool
	DependsOn      []string
	Model          interface{}
}

// tableManifest is the single source of truth for which tables a
// snapshot covers and in which order they are processed. Keep new
// tables here, nowhere else.
var tableManifest = []TableManifestEntry{
	{Name: "positions", DependencyRank: 0, TenantScoped: true, Model: &Position{}},
	{Name: "policies", DependencyRank: 0, TenantScoped: true, Model: &Policy{}},
	{Name: "tenant_settings", DependencyRank: 1, TenantScoped: true, Model: &TenantSetting{}},
	{Name: "employees", DependencyRank: 1, TenantScoped: true, DependsOn: []string{"positions"}, Model: &Employee{}},
	{Name: "attendances", DependencyRank: 2, TenantScoped: true, DependsOn: []string{"employees"}, Model: &Attendance{}},
	{Name: "leaves", DependencyRank: 2, TenantScoped: true, DependsOn: []string{"employees", "policies"}, Model: &Leave{}},
	{Name: "salaries", DependencyRank: 2, TenantScoped: true, DependsOn: []string{"employees"}, Model: &Salary{}},
	{Name: "employee_permissions", DependencyRank: 2, TenantScoped: true, DependsOn: []string{"employees", "positions"}, Model: &EmployeePermission{}},
	{Name: "join_requests", DependencyRank: 2, TenantScoped: true, Model: &JoinRequest{}},
	{Name: "attendance_breaks", DependencyRank: 3, TenantScoped: true, DependsOn: []string{"attendances"}, Model: &AttendanceBreak{}},
	{Name: "location_histories", DependencyRank: 3, TenantScoped: true, DependsOn: []string{"attendances"}, Model: &LocationHistory{}},
	{Name: "audit_logs", DependencyRank: 3, TenantScoped: true, Model: &AuditLog{}},
	{Name: "users", DependencyRank: 0, TenantScoped: false, Model: &User{}},
	{Name: "global_backup_settings", DependencyRank: 0, TenantScoped: false, Model: &GlobalBackupSettings{}},
	{Name: "backup_email_recipients", DependencyRank: 0, TenantScoped: false, Model: &EmailRecipient{}},
}

// Manifest returns a copy of the full manifest.
func Manifest() []TableManifestEntry {
	out := make([]TableManifestEntry, len(tableManifest))
	copy(out, tableManifest)
	return out
}

// CaptureOrder returns the tenant-scoped entries in ascending
// dependency rank. This is the read order and the insert order.
func CaptureOrder() []TableManifestEntry {
	var out []TableManifestEntry
	for _, e := range tableManifest {
		if e.TenantScoped {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DependencyRank < out[j].DependencyRank
	})
	return out
}

// DeleteOrder returns the tenant-scoped entries in descending
// dependency rank, children before parents.
func DeleteOrder() []TableManifestEntry {
	asc := CaptureOrder()
	out := make([]TableManifestEntry, len(asc))
	for i, e := range asc {
		out[len(asc)-1-i] = e
	}
	return out
}

// GlobalTables returns tenant-independent entries captured once per
// system snapshot.
func GlobalTables() []TableManifestEntry {
	var out []TableManifestEntry
	for _, e := range tableManifest {
		if !e.TenantScoped {
			out = append(out, e)
		}
	}
	return out
}

// TenantTableNames returns the names of all tenant-scoped tables in
// capture order.
func TenantTableNames() []string {
	entries := CaptureOrder()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

// LookupTable finds a manifest entry by table name.
func LookupTable(name string) (TableManifestEntry, bool) {
	for _, e := range tableManifest {
		if e.Name == name {
			return e, true
		}
	}
	return TableManifestEntry{}, false
}

// ValidateManifest checks that every declared dependency exists and
// that the rank assignment is a valid topological order: a table's
// dependencies must all carry a strictly lower rank.
func ValidateManifest() error {
	byName := make(map[string]TableManifestEntry, len(tableManifest))
	for _, e := range tableManifest {
		if _, dup := byName[e.Name]; dup {
			return fmt.Errorf("manifest: duplicate table %q", e.Name)
		}
		byName[e.Name] = e
	}
	for _, e := range tableManifest {
		for _, dep := range e.DependsOn {
			parent, ok := byName[dep]
			if !ok {
				return fmt.Errorf("manifest: table %q depends on unknown table %q", e.Name, dep)
			}
			if parent.DependencyRank >= e.DependencyRank {
				return fmt.Errorf("manifest: table %q (rank %d) depends on %q (rank %d)",
					e.Name, e.DependencyRank, dep, parent.DependencyRank)
			}
		}
	}
	return nil
}
