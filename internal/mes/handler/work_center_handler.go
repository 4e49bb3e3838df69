package handler

import (
	"strconv"

	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type WorkCenterHandler struct {
	svc *service.WorkCenterService
}

func NewWorkCenterHandler(svc *service.WorkCenterService) *WorkCenterHandler {
	return &WorkCenterHandler{svc: svc}
}

func (h *WorkCenterHandler) Create(c *gin.Context) {
	var req service.CreateWorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	wc, err := h.svc.Create(req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, wc)
}

func (h *WorkCenterHandler) Get(c *gin.Context) {
	wc, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, wc)
}

func (h *WorkCenterHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	centers, total, err := h.svc.List(page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": centers, "total": total, "page": page, "size": size})
}

func (h *WorkCenterHandler) Update(c *gin.Context) {
	var req service.UpdateWorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	wc, err := h.svc.Update(c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, wc)
}

func (h *WorkCenterHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
