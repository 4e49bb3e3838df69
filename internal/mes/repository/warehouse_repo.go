package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type WarehouseRepository struct {
	db *gorm.DB
}

func NewWarehouseRepository(db *gorm.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

func (r *WarehouseRepository) Create(w *entity.Warehouse) error {
	return r.db.Create(w).Error
}

func (r *WarehouseRepository) GetByID(id string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&w).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &w, nil
}

func (r *WarehouseRepository) Update(w *entity.Warehouse) error {
	return r.db.Save(w).Error
}

func (r *WarehouseRepository) List() ([]entity.Warehouse, error) {
	var warehouses []entity.Warehouse
	err := r.db.Where("deleted_at IS NULL").Order("code ASC").Find(&warehouses).Error
	return warehouses, err
}
