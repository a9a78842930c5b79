package handler

import (
	"time"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/discount"
	"github.com/fekuna/omnipos-commerce/internal/discount/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type DiscountHandler struct {
	uc     discount.UseCase
	logger logger.ZapLogger
}

func NewDiscountHandler(uc discount.UseCase, log logger.ZapLogger) *DiscountHandler {
	return &DiscountHandler{
		uc:     uc,
		logger: log,
	}
}

type codeRequest struct {
	Code           string          `json:"code" binding:"required,max=40,alphanum"`
	Description    string          `json:"description" binding:"max=255"`
	Type           string          `json:"type" binding:"required,oneof=PERCENTAGE FIXED FREE_SHIPPING"`
	Value          decimal.Decimal `json:"value"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	MaxUses        *int            `json:"max_uses" binding:"omitempty,min=1"`
	StartsAt       *time.Time      `json:"starts_at"`
	EndsAt         *time.Time      `json:"ends_at"`
	IsActive       *bool           `json:"is_active"`
}

func (r *codeRequest) toInput(actorID, id string) *dto.CodeInput {
	return &dto.CodeInput{
		ActorID:        actorID,
		ID:             id,
		Code:           r.Code,
		Description:    r.Description,
		Type:           r.Type,
		Value:          r.Value,
		MinOrderAmount: r.MinOrderAmount,
		MaxUses:        r.MaxUses,
		StartsAt:       r.StartsAt,
		EndsAt:         r.EndsAt,
		IsActive:       r.IsActive == nil || *r.IsActive,
	}
}

func (h *DiscountHandler) CreateCode(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	d, err := h.uc.CreateCode(c.Request.Context(), req.toInput(auth.GetUserID(c), ""))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, d)
}

func (h *DiscountHandler) GetCode(c *gin.Context) {
	d, err := h.uc.GetCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, d)
}

func (h *DiscountHandler) ListCodes(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	codes, total, err := h.uc.ListCodes(c.Request.Context(), &dto.CodeFilters{
		Query:    c.Query("q"),
		IsActive: httpx.QueryBool(c, "is_active"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, codes, total, page, pageSize)
}

func (h *DiscountHandler) UpdateCode(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	d, err := h.uc.UpdateCode(c.Request.Context(), req.toInput(auth.GetUserID(c), c.Param("id")))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, d)
}

func (h *DiscountHandler) DeleteCode(c *gin.Context) {
	if err := h.uc.DeleteCode(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

type validateRequest struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func (h *DiscountHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	quote, err := h.uc.Validate(c.Request.Context(), req.Code, req.Subtotal)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, quote)
}
