package entity

import (
	"time"
)

// BOM 物料清单（含组件明细与工序）
type BOM struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProductID string     `json:"product_id" gorm:"type:uuid;not null;index"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	Version   string     `json:"version" gorm:"size:16;not null;default:v1"`
	IsActive  bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedBy string     `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`

	Product    *Product       `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Items      []BOMItem      `json:"items,omitempty" gorm:"foreignKey:BOMID"`
	Operations []BOMOperation `json:"operations,omitempty" gorm:"foreignKey:BOMID"`
}

func (BOM) TableName() string {
	return "mes_boms"
}

// BOMItem BOM组件行项
type BOMItem struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BOMID       string    `json:"bom_id" gorm:"type:uuid;not null;index"`
	ComponentID string    `json:"component_id" gorm:"type:uuid;not null;index"`
	QtyPerUnit  float64   `json:"qty_per_unit" gorm:"type:decimal(12,4);not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	BOM       *BOM     `json:"bom,omitempty" gorm:"foreignKey:BOMID"`
	Component *Product `json:"component,omitempty" gorm:"foreignKey:ComponentID"`
}

func (BOMItem) TableName() string {
	return "mes_bom_items"
}

// BOMOperation BOM工序，Sequence 即执行顺序
type BOMOperation struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BOMID           string    `json:"bom_id" gorm:"type:uuid;not null;index"`
	Sequence        int       `json:"sequence" gorm:"not null;default:0"`
	Name            string    `json:"name" gorm:"size:128;not null"`
	WorkCenterID    string    `json:"work_center_id" gorm:"type:uuid;not null"`
	DurationMinutes int       `json:"duration_minutes" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (BOMOperation) TableName() string {
	return "mes_bom_operations"
}
