package entity

import (
	"time"
)

// WorkOrderStatus 工单状态
const (
	WOStatusQueued    = "QUEUED"
	WOStatusStarted   = "STARTED"
	WOStatusPaused    = "PAUSED"
	WOStatusCompleted = "COMPLETED"
	WOStatusCanceled  = "CANCELED"
)

// workOrderTransitions 工单状态流转表。终态 COMPLETED / CANCELED 没有出边。
var workOrderTransitions = map[string][]string{
	WOStatusQueued:  {WOStatusStarted, WOStatusCanceled},
	WOStatusStarted: {WOStatusPaused, WOStatusCompleted, WOStatusCanceled},
	WOStatusPaused:  {WOStatusStarted, WOStatusCanceled},
}

// CanTransitionWorkOrder 判断工单状态流转是否合法
func CanTransitionWorkOrder(from, to string) bool {
	for _, allowed := range workOrderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// WorkOrderSources 返回允许流转到目标状态的来源状态集合，用于条件更新
func WorkOrderSources(to string) []string {
	var sources []string
	for from, targets := range workOrderTransitions {
		for _, t := range targets {
			if t == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// WorkOrderTerminal 判断是否终态
func WorkOrderTerminal(status string) bool {
	return status == WOStatusCompleted || status == WOStatusCanceled
}

// WorkOrder 生产工单，归属且仅归属于一个制造订单
type WorkOrder struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MOID           string     `json:"mo_id" gorm:"type:uuid;not null;index"`
	Sequence       int        `json:"sequence" gorm:"not null;default:0"`
	Name           string     `json:"name" gorm:"size:128;not null"`
	WorkCenterID   string     `json:"work_center_id" gorm:"type:uuid;not null;index"`
	OperatorID     string     `json:"operator_id" gorm:"size:64"`
	Status         string     `json:"status" gorm:"size:20;not null;default:QUEUED"`
	PlannedMinutes int        `json:"planned_minutes" gorm:"not null;default:0"`
	ActualMinutes  int        `json:"actual_minutes" gorm:"not null;default:0"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	Comments       string     `json:"comments" gorm:"type:text"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (WorkOrder) TableName() string {
	return "mes_work_orders"
}
