package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
	"strconv"
)

type WorkOrderHandler struct {
	svc *service.WorkOrderService
}

func NewWorkOrderHandler(svc *service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc}
}

func (h *WorkOrderHandler) Get(c *gin.Context) {
	wo, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, wo)
}

func (h *WorkOrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.WOListParams{
		MOID:         c.Query("mo_id"),
		Status:       c.Query("status"),
		WorkCenterID: c.Query("work_center_id"),
		OperatorID:   c.Query("operator_id"),
		Page:         page,
		Size:         size,
	}
	wos, total, err := h.svc.List(params)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": wos, "total": total, "page": page, "size": size})
}

func (h *WorkOrderHandler) Start(c *gin.Context) {
	var req struct {
		OperatorID string `json:"operator_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	wo, err := h.svc.Start(c.Param("id"), req.OperatorID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, wo)
}

func (h *WorkOrderHandler) Pause(c *gin.Context) {
	var req struct {
		Comments string `json:"comments"`
	}
	c.ShouldBindJSON(&req)
	wo, err := h.svc.Pause(c.Param("id"), req.Comments)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, wo)
}

func (h *WorkOrderHandler) Complete(c *gin.Context) {
	var req service.CompleteWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	wo, err := h.svc.Complete(c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, wo)
}

func (h *WorkOrderHandler) Cancel(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	c.ShouldBindJSON(&req)
	wo, err := h.svc.Cancel(c.Param("id"), req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, wo)
}

func (h *WorkOrderHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
