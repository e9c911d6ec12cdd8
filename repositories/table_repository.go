package repositories

import (
	"context"
	"fmt"

	"StaffBox/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableStore is the raw per-table access used by the capture and
// restore services. Table names always come from the manifest, never
// from request input.
type TableStore interface {
	ReadRows(ctx context.Context, table, tenantID string) ([]models.Row, error)
	ReadAllRows(ctx context.Context, table string) ([]models.Row, error)
	DeleteRows(ctx context.Context, table, tenantID string) (int64, error)
	UpsertRows(ctx context.Context, table string, rows []models.Row) (int64, error)
}

type gormTableStore struct {
	db *gorm.DB
}

// NewTableStore creates a gorm-backed TableStore.
func NewTableStore(db *gorm.DB) TableStore {
	return &gormTableStore{db: db}
}

func (s *gormTableStore) ReadRows(ctx context.Context, table, tenantID string) ([]models.Row, error) {
	var raw []map[string]interface{}
	err := s.db.WithContext(ctx).Table(table).Where("tenant_id = ?", tenantID).Find(&raw).Error
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return toRows(raw), nil
}

func (s *gormTableStore) ReadAllRows(ctx context.Context, table string) ([]models.Row, error) {
	var raw []map[string]interface{}
	err := s.db.WithContext(ctx).Table(table).Find(&raw).Error
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return toRows(raw), nil
}

func (s *gormTableStore) DeleteRows(ctx context.Context, table, tenantID string) (int64, error) {
	res := s.db.WithContext(ctx).Exec(
		fmt.Sprintf("DELETE FROM %s WHERE tenant_id = ?", table), tenantID)
	if res.Error != nil {
		return 0, fmt.Errorf("delete %s: %w", table, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *gormTableStore) UpsertRows(ctx context.Context, table string, rows []models.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	raw := make([]map[string]interface{}, len(rows))
	for i, r := range rows {
		raw[i] = map[string]interface{}(r)
	}
	res := s.db.WithContext(ctx).Table(table).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&raw)
	if res.Error != nil {
		return 0, fmt.Errorf("upsert %s: %w", table, res.Error)
	}
	return res.RowsAffected, nil
}

func toRows(raw []map[string]interface{}) []models.Row {
	rows := make([]models.Row, len(raw))
	for i, m := range raw {
		rows[i] = models.Row(m)
	}
	return rows
}
