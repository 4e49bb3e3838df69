package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req service.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.svc.Adjust(req, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, item)
}

func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req service.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.Transfer(req, userID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func stockParams(c *gin.Context) repository.StockListParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.StockListParams{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Keyword:     c.Query("keyword"),
		Page:        page,
		Size:        size,
	}
	if v := c.Query("min_qty"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MinQty = &f
		}
	}
	if v := c.Query("max_qty"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MaxQty = &f
		}
	}
	return params
}

func (h *InventoryHandler) List(c *gin.Context) {
	params := stockParams(c)
	items, total, err := h.svc.GetStock(params)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": items, "total": total, "page": params.Page, "size": params.Size})
}

func (h *InventoryHandler) Transactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	txs, total, err := h.svc.ListTransactions(c.Query("product_id"), c.Query("warehouse_id"), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": txs, "total": total, "page": page, "size": size})
}

// Export 导出库存xlsx
func (h *InventoryHandler) Export(c *gin.Context) {
	f, err := h.svc.ExportStock(stockParams(c))
	if err != nil {
		fail(c, err)
		return
	}
	filename := fmt.Sprintf("stock-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)
	f.Write(c.Writer)
}

func (h *InventoryHandler) CreateWarehouse(c *gin.Context) {
	var req service.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, err := h.svc.CreateWarehouse(req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, w)
}

func (h *InventoryHandler) GetWarehouse(c *gin.Context) {
	w, err := h.svc.GetWarehouse(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, w)
}

func (h *InventoryHandler) ListWarehouses(c *gin.Context) {
	warehouses, err := h.svc.ListWarehouses()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, warehouses)
}
