package service

import (
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
)

type ProductService struct {
	repo    *repository.ProductRepository
	bomRepo *repository.BOMRepository
}

func NewProductService(repo *repository.ProductRepository, bomRepo *repository.BOMRepository) *ProductService {
	return &ProductService{repo: repo, bomRepo: bomRepo}
}

type CreateProductRequest struct {
	SKU                string   `json:"sku" binding:"required"`
	Name               string   `json:"name" binding:"required"`
	Unit               string   `json:"unit"`
	Type               string   `json:"type"`
	Category           string   `json:"category"`
	Cost               *float64 `json:"cost"`
	DefaultWarehouseID string   `json:"default_warehouse_id"`
}

func (s *ProductService) Create(req CreateProductRequest) (*entity.Product, error) {
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	ptype := req.Type
	if ptype == "" {
		ptype = entity.ProductTypeRaw
	}
	if ptype != entity.ProductTypeRaw && ptype != entity.ProductTypeFinished {
		return nil, validation("非法产品类型: %s", req.Type)
	}

	p := &entity.Product{
		ID:                 uuid.New().String(),
		SKU:                req.SKU,
		Name:               req.Name,
		Unit:               unit,
		Type:               ptype,
		Category:           req.Category,
		Cost:               req.Cost,
		DefaultWarehouseID: req.DefaultWarehouseID,
	}
	if err := s.repo.Create(p); err != nil {
		return nil, fmt.Errorf("创建产品失败: %w", err)
	}
	return p, nil
}

func (s *ProductService) GetByID(id string) (*entity.Product, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("产品不存在: %s", id)
		}
		return nil, fmt.Errorf("查询产品失败: %w", err)
	}
	return p, nil
}

func (s *ProductService) List(params repository.ProductListParams) ([]entity.Product, int64, error) {
	return s.repo.List(params)
}

type UpdateProductRequest struct {
	Name               string   `json:"name"`
	Unit               string   `json:"unit"`
	Category           string   `json:"category"`
	Cost               *float64 `json:"cost"`
	DefaultWarehouseID string   `json:"default_warehouse_id"`
}

func (s *ProductService) Update(id string, req UpdateProductRequest) (*entity.Product, error) {
	p, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Unit != "" {
		p.Unit = req.Unit
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	if req.Cost != nil {
		p.Cost = req.Cost
	}
	if req.DefaultWarehouseID != "" {
		p.DefaultWarehouseID = req.DefaultWarehouseID
	}
	if err := s.repo.Update(p); err != nil {
		return nil, fmt.Errorf("更新产品失败: %w", err)
	}
	return p, nil
}

// Delete 被任一BOM引用的产品不能删除
func (s *ProductService) Delete(id string) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	count, err := s.bomRepo.CountUsage(id)
	if err != nil {
		return fmt.Errorf("查询BOM引用失败: %w", err)
	}
	if count > 0 {
		return validation("产品已被 %d 个BOM引用，不能删除", count)
	}
	return s.repo.Delete(id)
}
