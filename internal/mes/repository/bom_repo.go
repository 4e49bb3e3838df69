package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type BOMRepository struct {
	db *gorm.DB
}

func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

func (r *BOMRepository) Create(bom *entity.BOM) error {
	return r.db.Create(bom).Error
}

// GetByID 获取BOM，预加载组件（含产品成本）与按顺序排列的工序
func (r *BOMRepository) GetByID(id string) (*entity.BOM, error) {
	var bom entity.BOM
	err := r.db.Preload("Items.Component").
		Preload("Operations", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("id = ? AND deleted_at IS NULL", id).First(&bom).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &bom, nil
}

func (r *BOMRepository) Update(bom *entity.BOM) error {
	return r.db.Save(bom).Error
}

func (r *BOMRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bom_id = ?", id).Delete(&entity.BOMItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bom_id = ?", id).Delete(&entity.BOMOperation{}).Error; err != nil {
			return err
		}
		return tx.Exec("UPDATE mes_boms SET deleted_at = NOW() WHERE id = ?", id).Error
	})
}

type BOMListParams struct {
	ProductID  string
	ActiveOnly bool
	Page       int
	Size       int
}

func (r *BOMRepository) List(params BOMListParams) ([]entity.BOM, int64, error) {
	query := r.db.Model(&entity.BOM{}).Where("deleted_at IS NULL")
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.ActiveOnly {
		query = query.Where("is_active = true")
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var boms []entity.BOM
	err := query.Preload("Product").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&boms).Error
	return boms, total, err
}

// SetActive 激活BOM并在同一事务内取消同产品其他BOM的激活
func (r *BOMRepository) SetActive(id, productID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.BOM{}).
			Where("product_id = ? AND id <> ?", productID, id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&entity.BOM{}).Where("id = ?", id).Update("is_active", true).Error
	})
}

func (r *BOMRepository) SetInactive(id string) error {
	return r.db.Model(&entity.BOM{}).Where("id = ?", id).Update("is_active", false).Error
}

// GetUsage 查询引用了指定组件的所有BOM行项
func (r *BOMRepository) GetUsage(componentID string) ([]entity.BOMItem, error) {
	var items []entity.BOMItem
	err := r.db.Preload("BOM").Preload("Component").
		Joins("JOIN mes_boms ON mes_boms.id = mes_bom_items.bom_id AND mes_boms.deleted_at IS NULL").
		Where("mes_bom_items.component_id = ?", componentID).
		Find(&items).Error
	return items, err
}

// CountUsage 统计组件被多少BOM引用，用于产品删除守卫
func (r *BOMRepository) CountUsage(componentID string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.BOMItem{}).
		Joins("JOIN mes_boms ON mes_boms.id = mes_bom_items.bom_id AND mes_boms.deleted_at IS NULL").
		Where("mes_bom_items.component_id = ?", componentID).
		Count(&count).Error
	return count, err
}
