package service

import (
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
)

type WorkCenterService struct {
	repo   *repository.WorkCenterRepository
	woRepo *repository.WorkOrderRepository
}

func NewWorkCenterService(repo *repository.WorkCenterRepository, woRepo *repository.WorkOrderRepository) *WorkCenterService {
	return &WorkCenterService{repo: repo, woRepo: woRepo}
}

type CreateWorkCenterRequest struct {
	Name          string  `json:"name" binding:"required"`
	Location      string  `json:"location"`
	CostPerHour   float64 `json:"cost_per_hour"`
	CapacityHours float64 `json:"capacity_hours"`
}

func (s *WorkCenterService) Create(req CreateWorkCenterRequest) (*entity.WorkCenter, error) {
	wc := &entity.WorkCenter{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Location:      req.Location,
		CostPerHour:   req.CostPerHour,
		CapacityHours: req.CapacityHours,
		IsActive:      true,
	}
	if err := s.repo.Create(wc); err != nil {
		return nil, fmt.Errorf("创建工作中心失败: %w", err)
	}
	return wc, nil
}

func (s *WorkCenterService) GetByID(id string) (*entity.WorkCenter, error) {
	wc, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("工作中心不存在: %s", id)
		}
		return nil, fmt.Errorf("查询工作中心失败: %w", err)
	}
	return wc, nil
}

func (s *WorkCenterService) List(page, size int) ([]entity.WorkCenter, int64, error) {
	return s.repo.List(page, size)
}

type UpdateWorkCenterRequest struct {
	Name            string   `json:"name"`
	Location        string   `json:"location"`
	CostPerHour     *float64 `json:"cost_per_hour"`
	CapacityHours   *float64 `json:"capacity_hours"`
	DowntimeMinutes *float64 `json:"downtime_minutes"`
	IsActive        *bool    `json:"is_active"`
}

func (s *WorkCenterService) Update(id string, req UpdateWorkCenterRequest) (*entity.WorkCenter, error) {
	wc, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		wc.Name = req.Name
	}
	if req.Location != "" {
		wc.Location = req.Location
	}
	if req.CostPerHour != nil {
		wc.CostPerHour = *req.CostPerHour
	}
	if req.CapacityHours != nil {
		wc.CapacityHours = *req.CapacityHours
	}
	if req.DowntimeMinutes != nil {
		wc.DowntimeMinutes = *req.DowntimeMinutes
	}
	if req.IsActive != nil {
		wc.IsActive = *req.IsActive
	}
	if err := s.repo.Update(wc); err != nil {
		return nil, fmt.Errorf("更新工作中心失败: %w", err)
	}
	return wc, nil
}

// Delete 有未终结工单引用的工作中心不能删除
func (s *WorkCenterService) Delete(id string) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	count, err := s.woRepo.CountActiveByWorkCenter(id)
	if err != nil {
		return fmt.Errorf("查询工单引用失败: %w", err)
	}
	if count > 0 {
		return validation("工作中心还有 %d 个未终结工单，不能删除", count)
	}
	return s.repo.Delete(id)
}
