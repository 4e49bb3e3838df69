package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有MES表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 主数据
		&Product{},
		&WorkCenter{},
		&Warehouse{},

		// BOM
		&BOM{},
		&BOMItem{},
		&BOMOperation{},

		// 生产
		&ManufacturingOrder{},
		&WorkOrder{},

		// 库存
		&InventoryItem{},
		&StockTransaction{},
	)
}
