package entity

import (
	"time"
)

// ManufacturingOrderStatus 制造订单状态
const (
	MOStatusPlanned    = "PLANNED"
	MOStatusInProgress = "IN_PROGRESS"
	MOStatusDone       = "DONE"
	MOStatusCanceled   = "CANCELED"
)

// Priority 优先级
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// ManufacturingOrder 制造订单
type ManufacturingOrder struct {
	ID            string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Code          string     `json:"code" gorm:"size:50;not null;uniqueIndex"`
	ProductID     string     `json:"product_id" gorm:"type:uuid;not null;index"`
	BOMID         string     `json:"bom_id" gorm:"type:uuid;not null"`
	QtyPlanned    float64    `json:"qty_planned" gorm:"type:decimal(12,4);not null"`
	QtyProduced   float64    `json:"qty_produced" gorm:"type:decimal(12,4);default:0"`
	Status        string     `json:"status" gorm:"size:20;not null;default:PLANNED"`
	Priority      string     `json:"priority" gorm:"size:20;not null;default:MEDIUM"`
	DueDate       *time.Time `json:"due_date"`
	ScheduleStart *time.Time `json:"schedule_start"`
	ScheduleEnd   *time.Time `json:"schedule_end"`
	AssigneeID    string     `json:"assignee_id" gorm:"size:64"`
	Notes         string     `json:"notes" gorm:"type:text"`
	CreatedBy     string     `json:"created_by" gorm:"size:64"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Product    *Product    `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	WorkOrders []WorkOrder `json:"work_orders,omitempty" gorm:"foreignKey:MOID"`
}

func (ManufacturingOrder) TableName() string {
	return "mes_manufacturing_orders"
}
