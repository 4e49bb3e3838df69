package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Repositories MES 仓库集合
type Repositories struct {
	Product       *ProductRepository
	BOM           *BOMRepository
	Manufacturing *ManufacturingOrderRepository
	WorkOrder     *WorkOrderRepository
	WorkCenter    *WorkCenterRepository
	Warehouse     *WarehouseRepository
	Inventory     *InventoryRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:       NewProductRepository(db),
		BOM:           NewBOMRepository(db),
		Manufacturing: NewManufacturingOrderRepository(db),
		WorkOrder:     NewWorkOrderRepository(db),
		WorkCenter:    NewWorkCenterRepository(db),
		Warehouse:     NewWarehouseRepository(db),
		Inventory:     NewInventoryRepository(db),
	}
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
