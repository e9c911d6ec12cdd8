package repositories

import (
	"StaffBox/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantRepository handles tenant account rows.
type TenantRepository interface {
	FindByID(id string) (*models.Tenant, error)
	ListActive() ([]models.Tenant, error)
	Upsert(tenant *models.Tenant) error
}

type tenantRepositoryImpl struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepositoryImpl{db: db}
}

func (r *tenantRepositoryImpl) FindByID(id string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepositoryImpl) ListActive() ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.db.Where("status = ?", models.TenantStatusActive).
		Order("created_at").Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *tenantRepositoryImpl) Upsert(tenant *models.Tenant) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(tenant).Error
}
