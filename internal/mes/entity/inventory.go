package entity

import (
	"time"
)

// StockTransactionType 库存流水类型
const (
	TxTypeIn       = "IN"
	TxTypeOut      = "OUT"
	TxTypeReserve  = "RESERVE"
	TxTypeRelease  = "RELEASE"
	TxTypeIncrease = "increase" // 手工调整入
	TxTypeDecrease = "decrease" // 手工调整出
)

// StockRefType 流水关联单据类型
const (
	RefTypeAdjust   = "ADJUST"
	RefTypeTransfer = "TRANSFER"
	RefTypeMO       = "MO"
)

// InventoryItem 库存记录，按 (product_id, warehouse_id) 唯一
type InventoryItem struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProductID   string     `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_mes_inventory_product_warehouse"`
	WarehouseID string     `json:"warehouse_id" gorm:"type:uuid;not null;uniqueIndex:idx_mes_inventory_product_warehouse"`
	QtyOnHand   float64    `json:"qty_on_hand" gorm:"type:decimal(12,4);not null;default:0"`
	QtyReserved float64    `json:"qty_reserved" gorm:"type:decimal(12,4);not null;default:0"`
	LastMovedAt *time.Time `json:"last_moved_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Product   *Product   `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Warehouse *Warehouse `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
}

func (InventoryItem) TableName() string {
	return "mes_inventory_items"
}

// Available 可用数量 = 在库 - 预留
func (i *InventoryItem) Available() float64 {
	return i.QtyOnHand - i.QtyReserved
}

// StockTransaction 库存流水，只追加不修改
type StockTransaction struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProductID    string    `json:"product_id" gorm:"type:uuid;not null;index"`
	WarehouseID  string    `json:"warehouse_id" gorm:"type:uuid;not null;index"`
	Type         string    `json:"type" gorm:"size:20;not null"`
	Quantity     float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	BalanceAfter float64   `json:"balance_after" gorm:"type:decimal(12,4);not null"`
	RefType      string    `json:"ref_type" gorm:"size:50;not null"`
	RefID        string    `json:"ref_id" gorm:"size:64;not null"`
	Reason       string    `json:"reason" gorm:"type:text"`
	CreatedBy    string    `json:"created_by" gorm:"size:64"`
	CreatedAt    time.Time `json:"created_at"`
}

func (StockTransaction) TableName() string {
	return "mes_stock_transactions"
}
