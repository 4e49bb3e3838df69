package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// WorkOrderService 工单生命周期。所有状态流转都是单条条件更新，
// 并发请求最多只有一个能赢得同一条流转。
type WorkOrderService struct {
	woRepo *repository.WorkOrderRepository
	moRepo *repository.ManufacturingOrderRepository
}

func NewWorkOrderService(woRepo *repository.WorkOrderRepository, moRepo *repository.ManufacturingOrderRepository) *WorkOrderService {
	return &WorkOrderService{woRepo: woRepo, moRepo: moRepo}
}

func (s *WorkOrderService) GetByID(id string) (*entity.WorkOrder, error) {
	wo, err := s.woRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("工单不存在: %s", id)
		}
		return nil, fmt.Errorf("查询工单失败: %w", err)
	}
	return wo, nil
}

func (s *WorkOrderService) List(params repository.WOListParams) ([]entity.WorkOrder, int64, error) {
	return s.woRepo.List(params)
}

// Start 开工。StartedAt 只在首次从 QUEUED 开工时写入，
// 从 PAUSED 恢复保留最初的开工时间。
func (s *WorkOrderService) Start(id, operatorID string) (*entity.WorkOrder, error) {
	wo, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransitionWorkOrder(wo.Status, entity.WOStatusStarted) {
		return nil, invalidTransition("工单状态 %s 不能开工", wo.Status)
	}

	updates := map[string]interface{}{
		"status":      entity.WOStatusStarted,
		"operator_id": operatorID,
	}
	if wo.Status == entity.WOStatusQueued {
		updates["started_at"] = time.Now()
	}
	return s.transition(id, wo.Status, entity.WOStatusStarted, updates)
}

// Pause 暂停。不结算 ActualMinutes。
func (s *WorkOrderService) Pause(id, comments string) (*entity.WorkOrder, error) {
	wo, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransitionWorkOrder(wo.Status, entity.WOStatusPaused) {
		return nil, invalidTransition("工单状态 %s 不能暂停", wo.Status)
	}

	updates := map[string]interface{}{"status": entity.WOStatusPaused}
	if comments != "" {
		updates["comments"] = appendComment(wo.Comments, comments)
	}
	return s.transition(id, wo.Status, entity.WOStatusPaused, updates)
}

type CompleteWorkOrderRequest struct {
	ActualMinutes int    `json:"actual_minutes" binding:"required,gt=0"`
	Comments      string `json:"comments"`
}

// Complete 完工。ActualMinutes 由调用方上报，不按耗时计算。
// 完工后触发父订单的级联完成检查。
func (s *WorkOrderService) Complete(id string, req CompleteWorkOrderRequest) (*entity.WorkOrder, error) {
	wo, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransitionWorkOrder(wo.Status, entity.WOStatusCompleted) {
		return nil, invalidTransition("工单状态 %s 不能完工", wo.Status)
	}

	updates := map[string]interface{}{
		"status":         entity.WOStatusCompleted,
		"completed_at":   time.Now(),
		"actual_minutes": req.ActualMinutes,
	}
	if req.Comments != "" {
		updates["comments"] = appendComment(wo.Comments, req.Comments)
	}
	completed, err := s.transition(id, wo.Status, entity.WOStatusCompleted, updates)
	if err != nil {
		return nil, err
	}

	// 级联完成检查：检查与更新是同一条语句，两个并发完工只会有一个触发 DONE
	if _, err := s.moRepo.CompleteIfFinished(wo.MOID); err != nil {
		return nil, fmt.Errorf("级联完成检查失败: %w", err)
	}
	return completed, nil
}

// Cancel 取消，原因追加到备注
func (s *WorkOrderService) Cancel(id, reason string) (*entity.WorkOrder, error) {
	wo, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransitionWorkOrder(wo.Status, entity.WOStatusCanceled) {
		return nil, invalidTransition("工单状态 %s 不能取消", wo.Status)
	}

	updates := map[string]interface{}{"status": entity.WOStatusCanceled}
	if reason != "" {
		updates["comments"] = appendComment(wo.Comments, reason)
	}
	return s.transition(id, wo.Status, entity.WOStatusCanceled, updates)
}

// Delete 仅允许删除 QUEUED / CANCELED 的工单
func (s *WorkOrderService) Delete(id string) error {
	wo, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if wo.Status != entity.WOStatusQueued && wo.Status != entity.WOStatusCanceled {
		return invalidState("状态为 %s 的工单不能删除", wo.Status)
	}
	return s.woRepo.Delete(id)
}

// transition 执行条件更新。受影响行数为0说明状态已被并发请求改走，
// 重新读取后按当前状态报错。
func (s *WorkOrderService) transition(id, from, to string, updates map[string]interface{}) (*entity.WorkOrder, error) {
	n, err := s.woRepo.UpdateStatusIf(id, []string{from}, updates)
	if err != nil {
		return nil, fmt.Errorf("更新工单状态失败: %w", err)
	}
	if n == 0 {
		cur, curErr := s.GetByID(id)
		if curErr != nil {
			return nil, curErr
		}
		return nil, invalidTransition("工单状态 %s 不能流转到 %s", cur.Status, to)
	}
	return s.GetByID(id)
}

func appendComment(existing, comment string) string {
	if existing == "" {
		return comment
	}
	return existing + "\n" + comment
}
