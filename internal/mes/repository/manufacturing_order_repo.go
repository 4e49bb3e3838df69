package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type ManufacturingOrderRepository struct {
	db *gorm.DB
}

func NewManufacturingOrderRepository(db *gorm.DB) *ManufacturingOrderRepository {
	return &ManufacturingOrderRepository{db: db}
}

func (r *ManufacturingOrderRepository) Create(mo *entity.ManufacturingOrder) error {
	return r.db.Create(mo).Error
}

func (r *ManufacturingOrderRepository) GetByID(id string) (*entity.ManufacturingOrder, error) {
	var mo entity.ManufacturingOrder
	err := r.db.Preload("WorkOrders", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence ASC")
	}).Where("id = ?", id).First(&mo).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &mo, nil
}

func (r *ManufacturingOrderRepository) Update(mo *entity.ManufacturingOrder) error {
	return r.db.Save(mo).Error
}

type MOListParams struct {
	Status    string
	ProductID string
	Priority  string
	Keyword   string
	Page      int
	Size      int
}

func (r *ManufacturingOrderRepository) List(params MOListParams) ([]entity.ManufacturingOrder, int64, error) {
	query := r.db.Model(&entity.ManufacturingOrder{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.Priority != "" {
		query = query.Where("priority = ?", params.Priority)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("code ILIKE ?", kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var mos []entity.ManufacturingOrder
	err := query.Preload("Product").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&mos).Error
	return mos, total, err
}

// UpdateStatusIf 条件状态更新，返回受影响行数
func (r *ManufacturingOrderRepository) UpdateStatusIf(id string, fromStatuses []string, updates map[string]interface{}) (int64, error) {
	res := r.db.Model(&entity.ManufacturingOrder{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// CompleteIfFinished 级联完成检查：当且仅当订单仍在生产中且不存在未终结工单时
// 置为 DONE。检查与更新是同一条语句，并发完成只会有一次生效。
func (r *ManufacturingOrderRepository) CompleteIfFinished(moID string) (bool, error) {
	res := r.db.Exec(`
		UPDATE mes_manufacturing_orders
		SET status = ?, schedule_end = NOW(), updated_at = NOW()
		WHERE id = ? AND status = ?
		AND NOT EXISTS (
			SELECT 1 FROM mes_work_orders
			WHERE mo_id = ? AND status NOT IN (?, ?)
		)
	`, entity.MOStatusDone, moID, entity.MOStatusInProgress,
		moID, entity.WOStatusCompleted, entity.WOStatusCanceled)
	return res.RowsAffected > 0, res.Error
}

// DeleteWithWorkOrders 删除订单并无条件级联删除其全部工单
func (r *ManufacturingOrderRepository) DeleteWithWorkOrders(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mo_id = ?", id).Delete(&entity.WorkOrder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.ManufacturingOrder{}, "id = ?", id).Error
	})
}

// DB 返回底层db用于事务
func (r *ManufacturingOrderRepository) DB() *gorm.DB {
	return r.db
}
