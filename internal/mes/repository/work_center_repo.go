package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type WorkCenterRepository struct {
	db *gorm.DB
}

func NewWorkCenterRepository(db *gorm.DB) *WorkCenterRepository {
	return &WorkCenterRepository{db: db}
}

func (r *WorkCenterRepository) Create(wc *entity.WorkCenter) error {
	return r.db.Create(wc).Error
}

func (r *WorkCenterRepository) GetByID(id string) (*entity.WorkCenter, error) {
	var wc entity.WorkCenter
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&wc).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &wc, nil
}

func (r *WorkCenterRepository) Update(wc *entity.WorkCenter) error {
	return r.db.Save(wc).Error
}

func (r *WorkCenterRepository) Delete(id string) error {
	return r.db.Exec("UPDATE mes_work_centers SET deleted_at = NOW() WHERE id = ?", id).Error
}

func (r *WorkCenterRepository) List(page, size int) ([]entity.WorkCenter, int64, error) {
	query := r.db.Model(&entity.WorkCenter{}).Where("deleted_at IS NULL")
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var centers []entity.WorkCenter
	err := query.Order("name ASC").Offset((page - 1) * size).Limit(size).Find(&centers).Error
	return centers, total, err
}
