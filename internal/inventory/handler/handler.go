package handler

import (
	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/inventory"
	"github.com/fekuna/omnipos-commerce/internal/inventory/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

type adjustRequest struct {
	VariantID      string `json:"variant_id" binding:"required,uuid"`
	QuantityChange int    `json:"quantity_change" binding:"required"`
	Reason         string `json:"reason" binding:"required,max=255"`
	ReferenceID    string `json:"reference_id" binding:"max=100"`
	ReferenceType  string `json:"reference_type" binding:"max=50"`
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}

	movement, err := h.uc.AdjustStock(c.Request.Context(), &dto.AdjustStockInput{
		VariantID:      req.VariantID,
		QuantityChange: req.QuantityChange,
		Reason:         req.Reason,
		ReferenceID:    req.ReferenceID,
		ReferenceType:  req.ReferenceType,
		UserID:         auth.GetUserID(c),
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, movement)
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	start, err := httpx.QueryTime(c, "from")
	if err != nil {
		httpx.BindError(c, err)
		return
	}
	end, err := httpx.QueryTime(c, "to")
	if err != nil {
		httpx.BindError(c, err)
		return
	}

	items, total, err := h.uc.ListMovements(c.Request.Context(), &dto.MovementFilters{
		ProductID:    c.Query("product_id"),
		VariantID:    c.Query("variant_id"),
		MovementType: c.Query("type"),
		StartDate:    start,
		EndDate:      end,
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, items, total, page, pageSize)
}

func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	items, total, err := h.uc.ListLowStock(c.Request.Context(), page, pageSize)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, items, total, page, pageSize)
}
