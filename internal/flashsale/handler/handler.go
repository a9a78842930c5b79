package handler

import (
	"time"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/flashsale"
	"github.com/fekuna/omnipos-commerce/internal/flashsale/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type FlashSaleHandler struct {
	uc     flashsale.UseCase
	logger logger.ZapLogger
}

func NewFlashSaleHandler(uc flashsale.UseCase, log logger.ZapLogger) *FlashSaleHandler {
	return &FlashSaleHandler{
		uc:     uc,
		logger: log,
	}
}

type itemRequest struct {
	ProductID     string          `json:"product_id" binding:"required,uuid"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	QuantityLimit *int            `json:"quantity_limit" binding:"omitempty,min=1"`
}

type saleRequest struct {
	Name        string        `json:"name" binding:"required,max=120"`
	Description string        `json:"description" binding:"max=2000"`
	StartsAt    time.Time     `json:"starts_at" binding:"required"`
	EndsAt      time.Time     `json:"ends_at" binding:"required"`
	Items       []itemRequest `json:"items" binding:"required,min=1,dive"`
}

func (r *saleRequest) toInput(actorID, id string) *dto.SaleInput {
	in := &dto.SaleInput{
		ActorID:     actorID,
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		StartsAt:    r.StartsAt,
		EndsAt:      r.EndsAt,
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, dto.ItemInput{
			ProductID:     it.ProductID,
			SalePrice:     it.SalePrice,
			QuantityLimit: it.QuantityLimit,
		})
	}
	return in
}

func (h *FlashSaleHandler) CreateSale(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	sale, err := h.uc.CreateSale(c.Request.Context(), req.toInput(auth.GetUserID(c), ""))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, sale)
}

func (h *FlashSaleHandler) GetSale(c *gin.Context) {
	sale, err := h.uc.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, sale)
}

func (h *FlashSaleHandler) ListSales(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	sales, total, err := h.uc.ListSales(c.Request.Context(), &dto.SaleFilters{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, sales, total, page, pageSize)
}

func (h *FlashSaleHandler) UpdateSale(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	sale, err := h.uc.UpdateSale(c.Request.Context(), req.toInput(auth.GetUserID(c), c.Param("id")))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, sale)
}

func (h *FlashSaleHandler) DeleteSale(c *gin.Context) {
	if err := h.uc.DeleteSale(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

func (h *FlashSaleHandler) CancelSale(c *gin.Context) {
	sale, err := h.uc.CancelSale(c.Request.Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, sale)
}

func (h *FlashSaleHandler) ListActive(c *gin.Context) {
	sales, err := h.uc.ListActive(c.Request.Context())
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, sales)
}
