package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// InventoryService 库存台账：每次调整/调拨都追加一条不可变流水，
// 余额可由流水重放复原。仓库主数据也挂在这里维护。
type InventoryService struct {
	repo          *repository.InventoryRepository
	warehouseRepo *repository.WarehouseRepository
	productRepo   *repository.ProductRepository
	db            *gorm.DB
}

func NewInventoryService(
	repo *repository.InventoryRepository,
	warehouseRepo *repository.WarehouseRepository,
	productRepo *repository.ProductRepository,
	db *gorm.DB,
) *InventoryService {
	return &InventoryService{repo: repo, warehouseRepo: warehouseRepo, productRepo: productRepo, db: db}
}

type AdjustRequest struct {
	ProductID   string  `json:"product_id" binding:"required"`
	WarehouseID string  `json:"warehouse_id" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	Type        string  `json:"type" binding:"required"` // increase / decrease
	Reason      string  `json:"reason" binding:"required"`
}

// Adjust 手工调整库存。decrease 不允许把在库数量调成负数。
func (s *InventoryService) Adjust(req AdjustRequest, userID string) (*entity.InventoryItem, error) {
	if req.Type != entity.TxTypeIncrease && req.Type != entity.TxTypeDecrease {
		return nil, validation("非法调整类型: %s", req.Type)
	}
	if _, err := s.productRepo.GetByID(req.ProductID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("产品不存在: %s", req.ProductID)
		}
		return nil, fmt.Errorf("查询产品失败: %w", err)
	}

	delta := req.Quantity
	if req.Type == entity.TxTypeDecrease {
		delta = -req.Quantity
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.GetForUpdate(tx, req.ProductID, req.WarehouseID)
		if errors.Is(err, repository.ErrNotFound) {
			item = &entity.InventoryItem{
				ID:          uuid.New().String(),
				ProductID:   req.ProductID,
				WarehouseID: req.WarehouseID,
			}
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("创建库存记录失败: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("查询库存失败: %w", err)
		}

		newQty := item.QtyOnHand + delta
		if newQty < 0 {
			return validation("库存不足")
		}
		item.QtyOnHand = newQty
		item.LastMovedAt = &now
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("更新库存失败: %w", err)
		}

		record := &entity.StockTransaction{
			ID:           uuid.New().String(),
			ProductID:    req.ProductID,
			WarehouseID:  req.WarehouseID,
			Type:         req.Type,
			Quantity:     delta,
			BalanceAfter: newQty,
			RefType:      entity.RefTypeAdjust,
			RefID:        uuid.New().String(),
			Reason:       req.Reason,
			CreatedBy:    userID,
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByProductAndWarehouse(req.ProductID, req.WarehouseID)
}

type TransferRequest struct {
	ProductID         string  `json:"product_id" binding:"required"`
	SourceWarehouseID string  `json:"source_warehouse_id" binding:"required"`
	TargetWarehouseID string  `json:"target_warehouse_id" binding:"required"`
	Quantity          float64 `json:"quantity" binding:"required,gt=0"`
	Reason            string  `json:"reason"`
}

// Transfer 跨仓调拨。源扣减与目标增加在同一事务内，行锁保证不会出现
// 只扣不加的半程状态；两条流水互相记录对方仓库。
func (s *InventoryService) Transfer(req TransferRequest, userID string) error {
	if req.SourceWarehouseID == req.TargetWarehouseID {
		return validation("源仓库与目标仓库不能相同")
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		src, err := s.repo.GetForUpdate(tx, req.ProductID, req.SourceWarehouseID)
		if errors.Is(err, repository.ErrNotFound) {
			return validation("库存不足")
		}
		if err != nil {
			return fmt.Errorf("查询源仓库存失败: %w", err)
		}
		if src.QtyOnHand < req.Quantity {
			return validation("库存不足")
		}

		dst, err := s.repo.GetForUpdate(tx, req.ProductID, req.TargetWarehouseID)
		if errors.Is(err, repository.ErrNotFound) {
			dst = &entity.InventoryItem{
				ID:          uuid.New().String(),
				ProductID:   req.ProductID,
				WarehouseID: req.TargetWarehouseID,
			}
			if err := tx.Create(dst).Error; err != nil {
				return fmt.Errorf("创建目标仓库存失败: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("查询目标仓库存失败: %w", err)
		}

		src.QtyOnHand -= req.Quantity
		src.LastMovedAt = &now
		if err := tx.Save(src).Error; err != nil {
			return fmt.Errorf("扣减源仓库存失败: %w", err)
		}
		dst.QtyOnHand += req.Quantity
		dst.LastMovedAt = &now
		if err := tx.Save(dst).Error; err != nil {
			return fmt.Errorf("增加目标仓库存失败: %w", err)
		}

		out := &entity.StockTransaction{
			ID:           uuid.New().String(),
			ProductID:    req.ProductID,
			WarehouseID:  req.SourceWarehouseID,
			Type:         entity.TxTypeOut,
			Quantity:     -req.Quantity,
			BalanceAfter: src.QtyOnHand,
			RefType:      entity.RefTypeTransfer,
			RefID:        req.TargetWarehouseID,
			Reason:       req.Reason,
			CreatedBy:    userID,
		}
		if err := tx.Create(out).Error; err != nil {
			return err
		}
		in := &entity.StockTransaction{
			ID:           uuid.New().String(),
			ProductID:    req.ProductID,
			WarehouseID:  req.TargetWarehouseID,
			Type:         entity.TxTypeIn,
			Quantity:     req.Quantity,
			BalanceAfter: dst.QtyOnHand,
			RefType:      entity.RefTypeTransfer,
			RefID:        req.SourceWarehouseID,
			Reason:       req.Reason,
			CreatedBy:    userID,
		}
		return tx.Create(in).Error
	})
}

func (s *InventoryService) GetStock(params repository.StockListParams) ([]entity.InventoryItem, int64, error) {
	return s.repo.List(params)
}

func (s *InventoryService) ListTransactions(productID, warehouseID string, page, size int) ([]entity.StockTransaction, int64, error) {
	return s.repo.ListTransactions(productID, warehouseID, page, size)
}

// ExportStock 导出库存报表
func (s *InventoryService) ExportStock(params repository.StockListParams) (*excelize.File, error) {
	params.Page = 1
	params.Size = 10000
	items, _, err := s.repo.List(params)
	if err != nil {
		return nil, fmt.Errorf("查询库存失败: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Stock"
	f.SetSheetName("Sheet1", sheet)
	headers := []string{"SKU", "产品", "仓库", "在库", "预留", "可用"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, item := range items {
		sku, name, warehouse := "", "", ""
		if item.Product != nil {
			sku = item.Product.SKU
			name = item.Product.Name
		}
		if item.Warehouse != nil {
			warehouse = item.Warehouse.Name
		}
		values := []interface{}{sku, name, warehouse, item.QtyOnHand, item.QtyReserved, item.Available()}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	return f, nil
}

type CreateWarehouseRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Manager string `json:"manager"`
	Notes   string `json:"notes"`
}

func (s *InventoryService) CreateWarehouse(req CreateWarehouseRequest) (*entity.Warehouse, error) {
	w := &entity.Warehouse{
		ID:      uuid.New().String(),
		Code:    req.Code,
		Name:    req.Name,
		Address: req.Address,
		Manager: req.Manager,
		Status:  entity.WarehouseStatusActive,
		Notes:   req.Notes,
	}
	if err := s.warehouseRepo.Create(w); err != nil {
		return nil, fmt.Errorf("创建仓库失败: %w", err)
	}
	return w, nil
}

func (s *InventoryService) GetWarehouse(id string) (*entity.Warehouse, error) {
	w, err := s.warehouseRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("仓库不存在: %s", id)
		}
		return nil, fmt.Errorf("查询仓库失败: %w", err)
	}
	return w, nil
}

func (s *InventoryService) ListWarehouses() ([]entity.Warehouse, error) {
	return s.warehouseRepo.List()
}
