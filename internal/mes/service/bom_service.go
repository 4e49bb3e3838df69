package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const bomCostCacheTTL = 10 * time.Minute

// BOMService BOM注册表：版本管理、单一激活约束、成本核算、用途查询
type BOMService struct {
	repo        *repository.BOMRepository
	productRepo *repository.ProductRepository
	rdb         *redis.Client // 可为 nil，测试环境不走缓存
}

func NewBOMService(repo *repository.BOMRepository, productRepo *repository.ProductRepository, rdb *redis.Client) *BOMService {
	return &BOMService{repo: repo, productRepo: productRepo, rdb: rdb}
}

type BOMItemRequest struct {
	ComponentID string  `json:"component_id" binding:"required"`
	QtyPerUnit  float64 `json:"qty_per_unit" binding:"required,gt=0"`
}

type BOMOperationRequest struct {
	Name            string `json:"name" binding:"required"`
	WorkCenterID    string `json:"work_center_id" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
}

type CreateBOMRequest struct {
	ProductID  string                `json:"product_id" binding:"required"`
	Name       string                `json:"name" binding:"required"`
	Version    string                `json:"version"`
	Items      []BOMItemRequest      `json:"items" binding:"required,dive"`
	Operations []BOMOperationRequest `json:"operations" binding:"dive"`
}

func (s *BOMService) Create(req CreateBOMRequest, userID string) (*entity.BOM, error) {
	if _, err := s.productRepo.GetByID(req.ProductID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("产品不存在: %s", req.ProductID)
		}
		return nil, fmt.Errorf("查询产品失败: %w", err)
	}
	for _, item := range req.Items {
		if item.ComponentID == req.ProductID {
			return nil, validation("BOM不能引用自身产品作为组件")
		}
		if _, err := s.productRepo.GetByID(item.ComponentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notFound("组件不存在: %s", item.ComponentID)
			}
			return nil, fmt.Errorf("查询组件失败: %w", err)
		}
	}

	version := req.Version
	if version == "" {
		version = "v1"
	}

	bom := &entity.BOM{
		ID:        uuid.New().String(),
		ProductID: req.ProductID,
		Name:      req.Name,
		Version:   version,
		IsActive:  true,
		CreatedBy: userID,
	}
	for _, item := range req.Items {
		bom.Items = append(bom.Items, entity.BOMItem{
			ID:          uuid.New().String(),
			BOMID:       bom.ID,
			ComponentID: item.ComponentID,
			QtyPerUnit:  item.QtyPerUnit,
		})
	}
	for i, op := range req.Operations {
		bom.Operations = append(bom.Operations, entity.BOMOperation{
			ID:              uuid.New().String(),
			BOMID:           bom.ID,
			Sequence:        i,
			Name:            op.Name,
			WorkCenterID:    op.WorkCenterID,
			DurationMinutes: op.DurationMinutes,
		})
	}

	if err := s.repo.Create(bom); err != nil {
		return nil, fmt.Errorf("创建BOM失败: %w", err)
	}
	return s.GetByID(bom.ID)
}

func (s *BOMService) GetByID(id string) (*entity.BOM, error) {
	bom, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("BOM不存在: %s", id)
		}
		return nil, fmt.Errorf("查询BOM失败: %w", err)
	}
	return bom, nil
}

func (s *BOMService) List(params repository.BOMListParams) ([]entity.BOM, int64, error) {
	return s.repo.List(params)
}

type UpdateBOMRequest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (s *BOMService) Update(id string, req UpdateBOMRequest) (*entity.BOM, error) {
	bom, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		bom.Name = req.Name
	}
	if req.Version != "" {
		bom.Version = req.Version
	}
	if err := s.repo.Update(bom); err != nil {
		return nil, fmt.Errorf("更新BOM失败: %w", err)
	}
	s.invalidateCostCache(id)
	return s.GetByID(id)
}

func (s *BOMService) Delete(id string) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	s.invalidateCostCache(id)
	return s.repo.Delete(id)
}

// ToggleActive 翻转激活状态。激活时同产品其余BOM会在同一事务内全部取消激活，
// 保证每个产品最多一个激活BOM；取消激活没有附带副作用。
func (s *BOMService) ToggleActive(id string) (*entity.BOM, error) {
	bom, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if bom.IsActive {
		if err := s.repo.SetInactive(id); err != nil {
			return nil, fmt.Errorf("取消激活失败: %w", err)
		}
	} else {
		if err := s.repo.SetActive(id, bom.ProductID); err != nil {
			return nil, fmt.Errorf("激活BOM失败: %w", err)
		}
	}
	s.invalidateCostCache(id)
	return s.GetByID(id)
}

type BOMItemCost struct {
	ComponentID   string  `json:"component_id"`
	ComponentName string  `json:"component_name"`
	QtyPerUnit    float64 `json:"qty_per_unit"`
	UnitCost      float64 `json:"unit_cost"`
	LineCost      float64 `json:"line_cost"`
}

type BOMCostResult struct {
	BOMID     string        `json:"bom_id"`
	ProductID string        `json:"product_id"`
	Version   string        `json:"version"`
	TotalCost float64       `json:"total_cost"`
	Items     []BOMItemCost `json:"items"`
}

// CalculateCost 单位成本 = Σ 组件成本 × 单位用量。组件未设置成本按 0 计。
// 结果按BOM缓存，BOM变更时失效。
func (s *BOMService) CalculateCost(ctx context.Context, id string) (*BOMCostResult, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, bomCostCacheKey(id)).Result(); err == nil {
			var result BOMCostResult
			if json.Unmarshal([]byte(cached), &result) == nil {
				return &result, nil
			}
		}
	}

	bom, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	result := &BOMCostResult{
		BOMID:     bom.ID,
		ProductID: bom.ProductID,
		Version:   bom.Version,
		Items:     make([]BOMItemCost, 0, len(bom.Items)),
	}
	for _, item := range bom.Items {
		var unitCost float64
		var name string
		if item.Component != nil {
			name = item.Component.Name
			if item.Component.Cost != nil {
				unitCost = *item.Component.Cost
			}
		}
		lineCost := unitCost * item.QtyPerUnit
		result.TotalCost += lineCost
		result.Items = append(result.Items, BOMItemCost{
			ComponentID:   item.ComponentID,
			ComponentName: name,
			QtyPerUnit:    item.QtyPerUnit,
			UnitCost:      unitCost,
			LineCost:      lineCost,
		})
	}

	if s.rdb != nil {
		if data, marshalErr := json.Marshal(result); marshalErr == nil {
			s.rdb.Set(ctx, bomCostCacheKey(id), data, bomCostCacheTTL)
		}
	}
	return result, nil
}

type BOMUsage struct {
	BOMID      string  `json:"bom_id"`
	BOMName    string  `json:"bom_name"`
	Version    string  `json:"version"`
	ProductID  string  `json:"product_id"`
	QtyPerUnit float64 `json:"qty_per_unit"`
}

// GetUsage 返回引用了该组件的所有BOM，用于产品删除前的引用检查
func (s *BOMService) GetUsage(componentID string) ([]BOMUsage, error) {
	items, err := s.repo.GetUsage(componentID)
	if err != nil {
		return nil, fmt.Errorf("查询BOM用途失败: %w", err)
	}
	usages := make([]BOMUsage, 0, len(items))
	for _, item := range items {
		usage := BOMUsage{
			BOMID:      item.BOMID,
			QtyPerUnit: item.QtyPerUnit,
		}
		if item.BOM != nil {
			usage.BOMName = item.BOM.Name
			usage.Version = item.BOM.Version
			usage.ProductID = item.BOM.ProductID
		}
		usages = append(usages, usage)
	}
	return usages, nil
}

func (s *BOMService) invalidateCostCache(id string) {
	if s.rdb != nil {
		s.rdb.Del(context.Background(), bomCostCacheKey(id))
	}
}

func bomCostCacheKey(id string) string {
	return "mes:bom:cost:" + id
}
