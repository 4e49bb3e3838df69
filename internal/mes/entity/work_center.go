package entity

import (
	"time"
)

// WorkCenter 工作中心（产线/工位）
type WorkCenter struct {
	ID              string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name            string     `json:"name" gorm:"size:128;not null"`
	Location        string     `json:"location" gorm:"size:128"`
	CostPerHour     float64    `json:"cost_per_hour" gorm:"type:decimal(12,4);default:0"`
	CapacityHours   float64    `json:"capacity_hours" gorm:"type:decimal(12,4);default:0"`
	DowntimeMinutes float64    `json:"downtime_minutes" gorm:"type:decimal(12,4);default:0"`
	IsActive        bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at" gorm:"index"`
}

func (WorkCenter) TableName() string {
	return "mes_work_centers"
}
