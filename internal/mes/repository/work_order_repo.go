package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) Create(wo *entity.WorkOrder) error {
	return r.db.Create(wo).Error
}

func (r *WorkOrderRepository) BatchCreate(wos []entity.WorkOrder) error {
	return r.db.Create(&wos).Error
}

func (r *WorkOrderRepository) GetByID(id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.Where("id = ?", id).First(&wo).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &wo, nil
}

type WOListParams struct {
	MOID         string
	Status       string
	WorkCenterID string
	OperatorID   string
	Page         int
	Size         int
}

func (r *WorkOrderRepository) List(params WOListParams) ([]entity.WorkOrder, int64, error) {
	query := r.db.Model(&entity.WorkOrder{})
	if params.MOID != "" {
		query = query.Where("mo_id = ?", params.MOID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.WorkCenterID != "" {
		query = query.Where("work_center_id = ?", params.WorkCenterID)
	}
	if params.OperatorID != "" {
		query = query.Where("operator_id = ?", params.OperatorID)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var wos []entity.WorkOrder
	err := query.Order("mo_id, sequence ASC").Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&wos).Error
	return wos, total, err
}

// UpdateStatusIf 条件状态更新：仅当当前状态在 fromStatuses 内时生效。
// 返回受影响行数，0 表示状态已被并发请求改走。
func (r *WorkOrderRepository) UpdateStatusIf(id string, fromStatuses []string, updates map[string]interface{}) (int64, error) {
	res := r.db.Model(&entity.WorkOrder{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// CountActiveByMO 统计制造订单下未进入终态的工单数
func (r *WorkOrderRepository) CountActiveByMO(moID string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.WorkOrder{}).
		Where("mo_id = ? AND status NOT IN ?", moID, []string{entity.WOStatusCompleted, entity.WOStatusCanceled}).
		Count(&count).Error
	return count, err
}

// CountByMOAndStatusNot 统计制造订单下状态不等于 status 的工单数
func (r *WorkOrderRepository) CountByMOAndStatusNot(moID, status string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.WorkOrder{}).
		Where("mo_id = ? AND status <> ?", moID, status).
		Count(&count).Error
	return count, err
}

// CountActiveByWorkCenter 统计工作中心上未终结的工单数，用于删除守卫
func (r *WorkOrderRepository) CountActiveByWorkCenter(workCenterID string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.WorkOrder{}).
		Where("work_center_id = ? AND status NOT IN ?", workCenterID, []string{entity.WOStatusCompleted, entity.WOStatusCanceled}).
		Count(&count).Error
	return count, err
}

func (r *WorkOrderRepository) Delete(id string) error {
	return r.db.Delete(&entity.WorkOrder{}, "id = ?", id).Error
}

// DB 返回底层db用于事务
func (r *WorkOrderRepository) DB() *gorm.DB {
	return r.db
}
