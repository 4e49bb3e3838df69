package handler

import (
	"strconv"

	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type ManufacturingHandler struct {
	svc *service.ManufacturingService
}

func NewManufacturingHandler(svc *service.ManufacturingService) *ManufacturingHandler {
	return &ManufacturingHandler{svc: svc}
}

func (h *ManufacturingHandler) Create(c *gin.Context) {
	var req service.CreateMORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	mo, err := h.svc.Create(req, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, mo)
}

func (h *ManufacturingHandler) Get(c *gin.Context) {
	mo, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, mo)
}

func (h *ManufacturingHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.MOListParams{
		Status:    c.Query("status"),
		ProductID: c.Query("product_id"),
		Priority:  c.Query("priority"),
		Keyword:   c.Query("keyword"),
		Page:      page,
		Size:      size,
	}
	mos, total, err := h.svc.List(params)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": mos, "total": total, "page": page, "size": size})
}

func (h *ManufacturingHandler) Update(c *gin.Context) {
	var req service.UpdateMORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	mo, err := h.svc.Update(c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, mo)
}

func (h *ManufacturingHandler) Start(c *gin.Context) {
	mo, err := h.svc.StartProduction(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, mo)
}

func (h *ManufacturingHandler) Complete(c *gin.Context) {
	mo, err := h.svc.CompleteProduction(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, mo)
}

func (h *ManufacturingHandler) Cancel(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	c.ShouldBindJSON(&req)
	mo, err := h.svc.CancelOrder(c.Param("id"), req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, mo)
}

func (h *ManufacturingHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
