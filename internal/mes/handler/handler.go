package handler

import (
	"net/http"

	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// Handlers MES 处理器集合
type Handlers struct {
	Product       *ProductHandler
	BOM           *BOMHandler
	Manufacturing *ManufacturingHandler
	WorkOrder     *WorkOrderHandler
	WorkCenter    *WorkCenterHandler
	Inventory     *InventoryHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Product:       NewProductHandler(services.Product),
		BOM:           NewBOMHandler(services.BOM),
		Manufacturing: NewManufacturingHandler(services.Manufacturing),
		WorkOrder:     NewWorkOrderHandler(services.WorkOrder),
		WorkCenter:    NewWorkCenterHandler(services.WorkCenter),
		Inventory:     NewInventoryHandler(services.Inventory),
	}
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": data})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
}

// fail 按错误类别映射HTTP状态码：NotFound→404，InvalidTransition→409，
// Validation/InvalidState→400，其余→500
func fail(c *gin.Context, err error) {
	switch service.KindOf(err) {
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
	case service.KindValidation, service.KindInvalidState:
		c.JSON(http.StatusBadRequest, gin.H{"code": 10003, "message": err.Error()})
	case service.KindInvalidTransition:
		c.JSON(http.StatusConflict, gin.H{"code": 10004, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}

func userID(c *gin.Context) string {
	if v, exists := c.Get("user_id"); exists {
		if id, isStr := v.(string); isStr {
			return id
		}
	}
	return ""
}
