package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetByProductAndWarehouse 获取指定产品在指定仓库的库存
func (r *InventoryRepository) GetByProductAndWarehouse(productID, warehouseID string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := r.db.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).First(&item).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &item, nil
}

// GetForUpdate 在事务内加行锁读取库存记录
func (r *InventoryRepository) GetForUpdate(tx *gorm.DB, productID, warehouseID string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).First(&item).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &item, nil
}

func (r *InventoryRepository) Update(item *entity.InventoryItem) error {
	return r.db.Save(item).Error
}

func (r *InventoryRepository) Create(item *entity.InventoryItem) error {
	return r.db.Create(item).Error
}

func (r *InventoryRepository) CreateTransaction(tx *entity.StockTransaction) error {
	return r.db.Create(tx).Error
}

type StockListParams struct {
	ProductID   string
	WarehouseID string
	Keyword     string
	MinQty      *float64
	MaxQty      *float64
	Page        int
	Size        int
}

// List 分页查询库存，联表带出产品与仓库信息
func (r *InventoryRepository) List(params StockListParams) ([]entity.InventoryItem, int64, error) {
	query := r.db.Model(&entity.InventoryItem{})
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.WarehouseID != "" {
		query = query.Where("warehouse_id = ?", params.WarehouseID)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Joins("JOIN mes_products ON mes_products.id = mes_inventory_items.product_id").
			Where("mes_products.sku ILIKE ? OR mes_products.name ILIKE ?", kw, kw)
	}
	if params.MinQty != nil {
		query = query.Where("qty_on_hand >= ?", *params.MinQty)
	}
	if params.MaxQty != nil {
		query = query.Where("qty_on_hand <= ?", *params.MaxQty)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var items []entity.InventoryItem
	err := query.Preload("Product").Preload("Warehouse").Order("updated_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&items).Error
	return items, total, err
}

func (r *InventoryRepository) ListTransactions(productID, warehouseID string, page, size int) ([]entity.StockTransaction, int64, error) {
	query := r.db.Model(&entity.StockTransaction{})
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	if warehouseID != "" {
		query = query.Where("warehouse_id = ?", warehouseID)
	}
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var txs []entity.StockTransaction
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&txs).Error
	return txs, total, err
}

// DB 返回底层db用于事务
func (r *InventoryRepository) DB() *gorm.DB {
	return r.db
}
