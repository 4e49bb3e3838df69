package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ManufacturingService 制造订单生命周期：开工时把激活BOM的工序展开成工单批次，
// 工单全部终结后级联完成订单。
type ManufacturingService struct {
	moRepo      *repository.ManufacturingOrderRepository
	woRepo      *repository.WorkOrderRepository
	bomRepo     *repository.BOMRepository
	productRepo *repository.ProductRepository
	db          *gorm.DB
}

func NewManufacturingService(
	moRepo *repository.ManufacturingOrderRepository,
	woRepo *repository.WorkOrderRepository,
	bomRepo *repository.BOMRepository,
	productRepo *repository.ProductRepository,
	db *gorm.DB,
) *ManufacturingService {
	return &ManufacturingService{moRepo: moRepo, woRepo: woRepo, bomRepo: bomRepo, productRepo: productRepo, db: db}
}

type CreateMORequest struct {
	ProductID  string  `json:"product_id" binding:"required"`
	BOMID      string  `json:"bom_id" binding:"required"`
	QtyPlanned float64 `json:"qty_planned" binding:"required,gt=0"`
	Priority   string  `json:"priority"`
	DueDate    string  `json:"due_date"` // YYYY-MM-DD
	AssigneeID string  `json:"assignee_id"`
	Notes      string  `json:"notes"`
}

func (s *ManufacturingService) Create(req CreateMORequest, userID string) (*entity.ManufacturingOrder, error) {
	if _, err := s.productRepo.GetByID(req.ProductID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("产品不存在: %s", req.ProductID)
		}
		return nil, fmt.Errorf("查询产品失败: %w", err)
	}
	if _, err := s.bomRepo.GetByID(req.BOMID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("BOM不存在: %s", req.BOMID)
		}
		return nil, fmt.Errorf("查询BOM失败: %w", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}

	now := time.Now()
	mo := &entity.ManufacturingOrder{
		ID:         uuid.New().String(),
		Code:       fmt.Sprintf("MO-%s%04d", now.Format("20060102"), now.UnixNano()%10000),
		ProductID:  req.ProductID,
		BOMID:      req.BOMID,
		QtyPlanned: req.QtyPlanned,
		Status:     entity.MOStatusPlanned,
		Priority:   priority,
		AssigneeID: req.AssigneeID,
		Notes:      req.Notes,
		CreatedBy:  userID,
	}
	if req.DueDate != "" {
		if t, err := time.Parse("2006-01-02", req.DueDate); err == nil {
			mo.DueDate = &t
		}
	}

	if err := s.moRepo.Create(mo); err != nil {
		return nil, fmt.Errorf("创建制造订单失败: %w", err)
	}
	return mo, nil
}

func (s *ManufacturingService) GetByID(id string) (*entity.ManufacturingOrder, error) {
	mo, err := s.moRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("制造订单不存在: %s", id)
		}
		return nil, fmt.Errorf("查询制造订单失败: %w", err)
	}
	return mo, nil
}

func (s *ManufacturingService) List(params repository.MOListParams) ([]entity.ManufacturingOrder, int64, error) {
	return s.moRepo.List(params)
}

type UpdateMORequest struct {
	QtyPlanned *float64 `json:"qty_planned"`
	Priority   string   `json:"priority"`
	DueDate    string   `json:"due_date"`
	AssigneeID string   `json:"assignee_id"`
	Notes      string   `json:"notes"`
}

// Update 数量只在 PLANNED 状态下可改，其余字段在订单未终结时可改
func (s *ManufacturingService) Update(id string, req UpdateMORequest) (*entity.ManufacturingOrder, error) {
	mo, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if mo.Status == entity.MOStatusDone || mo.Status == entity.MOStatusCanceled {
		return nil, validation("订单已终结，不能修改")
	}
	if req.QtyPlanned != nil {
		if mo.Status != entity.MOStatusPlanned {
			return nil, validation("生产已开始，不能修改计划数量")
		}
		if *req.QtyPlanned <= 0 {
			return nil, validation("计划数量必须大于0")
		}
		mo.QtyPlanned = *req.QtyPlanned
	}
	if req.Priority != "" {
		mo.Priority = req.Priority
	}
	if req.DueDate != "" {
		if t, parseErr := time.Parse("2006-01-02", req.DueDate); parseErr == nil {
			mo.DueDate = &t
		}
	}
	if req.AssigneeID != "" {
		mo.AssigneeID = req.AssigneeID
	}
	if req.Notes != "" {
		mo.Notes = req.Notes
	}
	if err := s.moRepo.Update(mo); err != nil {
		return nil, fmt.Errorf("更新制造订单失败: %w", err)
	}
	return s.GetByID(id)
}

// StartProduction 开始生产：按BOM工序顺序展开工单批次，每道工序一张工单。
// 订单状态条件更新与工单批量创建在同一事务内，并发开工只会成功一次。
func (s *ManufacturingService) StartProduction(id string) (*entity.ManufacturingOrder, error) {
	mo, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if mo.Status != entity.MOStatusPlanned {
		return nil, invalidTransition("订单状态 %s 不能开始生产", mo.Status)
	}

	bom, err := s.bomRepo.GetByID(mo.BOMID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("BOM不存在: %s", mo.BOMID)
		}
		return nil, fmt.Errorf("查询BOM失败: %w", err)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.ManufacturingOrder{}).
			Where("id = ? AND status = ?", id, entity.MOStatusPlanned).
			Updates(map[string]interface{}{
				"status":         entity.MOStatusInProgress,
				"schedule_start": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalidTransition("订单已不在 PLANNED 状态，不能开始生产")
		}

		wos := make([]entity.WorkOrder, 0, len(bom.Operations))
		for i, op := range bom.Operations {
			wos = append(wos, entity.WorkOrder{
				ID:             uuid.New().String(),
				MOID:           id,
				Sequence:       i,
				Name:           op.Name,
				WorkCenterID:   op.WorkCenterID,
				Status:         entity.WOStatusQueued,
				PlannedMinutes: op.DurationMinutes,
			})
		}
		if len(wos) == 0 {
			return nil
		}
		return tx.Create(&wos).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// CompleteProduction 手动完工。与级联路径不同，这里要求所有工单都严格 COMPLETED，
// 有被取消的工单时拒绝。两条路径的规则不一致是刻意保留的现状。
func (s *ManufacturingService) CompleteProduction(id string) (*entity.ManufacturingOrder, error) {
	mo, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if mo.Status != entity.MOStatusInProgress {
		return nil, invalidTransition("订单状态 %s 不能完工", mo.Status)
	}

	notCompleted, err := s.woRepo.CountByMOAndStatusNot(id, entity.WOStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("统计工单失败: %w", err)
	}
	if notCompleted > 0 {
		return nil, validation("所有工单必须先完工")
	}

	n, err := s.moRepo.UpdateStatusIf(id, []string{entity.MOStatusInProgress}, map[string]interface{}{
		"status":       entity.MOStatusDone,
		"schedule_end": time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("更新订单状态失败: %w", err)
	}
	if n == 0 {
		return nil, invalidTransition("订单已不在生产中")
	}
	return s.GetByID(id)
}

// CancelOrder 取消订单并强制取消未完工的工单。对工单的强制取消是管理覆盖，
// 不走正常流转表。
func (s *ManufacturingService) CancelOrder(id, reason string) (*entity.ManufacturingOrder, error) {
	mo, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if mo.Status == entity.MOStatusDone {
		return nil, validation("已完成的订单不能取消")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.ManufacturingOrder{}).
			Where("id = ? AND status <> ?", id, entity.MOStatusDone).
			Update("status", entity.MOStatusCanceled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return validation("已完成的订单不能取消")
		}
		return tx.Model(&entity.WorkOrder{}).
			Where("mo_id = ? AND status <> ?", id, entity.WOStatusCompleted).
			Update("status", entity.WOStatusCanceled).Error
	})
	if err != nil {
		return nil, err
	}
	if reason != "" {
		if cur, getErr := s.GetByID(id); getErr == nil {
			cur.Notes = appendComment(cur.Notes, reason)
			s.moRepo.Update(cur)
		}
	}
	return s.GetByID(id)
}

// Delete 仅 PLANNED / CANCELED 可删，无条件级联删除全部工单
func (s *ManufacturingService) Delete(id string) error {
	mo, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if mo.Status != entity.MOStatusPlanned && mo.Status != entity.MOStatusCanceled {
		return validation("生产中的订单不能删除")
	}
	return s.moRepo.DeleteWithWorkOrders(id)
}
