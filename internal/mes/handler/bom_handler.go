package handler

import (
	"strconv"

	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type BOMHandler struct {
	svc *service.BOMService
}

func NewBOMHandler(svc *service.BOMService) *BOMHandler {
	return &BOMHandler{svc: svc}
}

func (h *BOMHandler) Create(c *gin.Context) {
	var req service.CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	bom, err := h.svc.Create(req, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, bom)
}

func (h *BOMHandler) Get(c *gin.Context) {
	bom, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, bom)
}

func (h *BOMHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.BOMListParams{
		ProductID:  c.Query("product_id"),
		ActiveOnly: c.Query("active") == "true",
		Page:       page,
		Size:       size,
	}
	boms, total, err := h.svc.List(params)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": boms, "total": total, "page": page, "size": size})
}

func (h *BOMHandler) Update(c *gin.Context) {
	var req service.UpdateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	bom, err := h.svc.Update(c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, bom)
}

func (h *BOMHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *BOMHandler) ToggleActive(c *gin.Context) {
	bom, err := h.svc.ToggleActive(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, bom)
}

func (h *BOMHandler) Cost(c *gin.Context) {
	result, err := h.svc.CalculateCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

func (h *BOMHandler) Usage(c *gin.Context) {
	usages, err := h.svc.GetUsage(c.Param("componentId"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, usages)
}
