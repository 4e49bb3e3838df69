package entity

import (
	"time"
)

// ProductType 产品类型
const (
	ProductTypeRaw      = "RAW"      // 原材料
	ProductTypeFinished = "FINISHED" // 成品
)

// Product 产品主数据
type Product struct {
	ID                 string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SKU                string     `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	Name               string     `json:"name" gorm:"size:128;not null"`
	Unit               string     `json:"unit" gorm:"size:20;not null;default:pcs"`
	Type               string     `json:"type" gorm:"size:20;not null;default:RAW"`
	Category           string     `json:"category" gorm:"size:64"`
	Cost               *float64   `json:"cost" gorm:"type:decimal(12,4)"`
	DefaultWarehouseID string     `json:"default_warehouse_id" gorm:"type:uuid"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at" gorm:"index"`
}

func (Product) TableName() string {
	return "mes_products"
}
