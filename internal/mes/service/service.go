package service

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services MES 服务集合
type Services struct {
	Product       *ProductService
	BOM           *BOMService
	Manufacturing *ManufacturingService
	WorkOrder     *WorkOrderService
	WorkCenter    *WorkCenterService
	Inventory     *InventoryService
}

func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client) *Services {
	return &Services{
		Product:       NewProductService(repos.Product, repos.BOM),
		BOM:           NewBOMService(repos.BOM, repos.Product, rdb),
		Manufacturing: NewManufacturingService(repos.Manufacturing, repos.WorkOrder, repos.BOM, repos.Product, db),
		WorkOrder:     NewWorkOrderService(repos.WorkOrder, repos.Manufacturing),
		WorkCenter:    NewWorkCenterService(repos.WorkCenter, repos.WorkOrder),
		Inventory:     NewInventoryService(repos.Inventory, repos.Warehouse, repos.Product, db),
	}
}
