package handler

import (
	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/pos"
	"github.com/fekuna/omnipos-commerce/internal/pos/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type POSHandler struct {
	uc     pos.UseCase
	logger logger.ZapLogger
}

func NewPOSHandler(uc pos.UseCase, log logger.ZapLogger) *POSHandler {
	return &POSHandler{
		uc:     uc,
		logger: log,
	}
}

type openRequest struct {
	RegisterName string          `json:"register_name" binding:"required,max=100"`
	OpeningCash  decimal.Decimal `json:"opening_cash"`
}

type closeRequest struct {
	ClosingCash decimal.Decimal `json:"closing_cash"`
	Notes       string          `json:"notes" binding:"max=1000"`
}

type saleLine struct {
	VariantID string `json:"variant_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=999"`
}

type saleRequest struct {
	Items          []saleLine       `json:"items" binding:"required,min=1,dive"`
	PaymentMethod  string           `json:"payment_method" binding:"required,oneof=CASH CARD"`
	AmountTendered *decimal.Decimal `json:"amount_tendered"`
	CustomerID     string           `json:"customer_id" binding:"omitempty,uuid"`
	DiscountCode   string           `json:"discount_code" binding:"max=50"`
	Notes          string           `json:"notes" binding:"max=1000"`
}

func (h *POSHandler) OpenSession(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	session, err := h.uc.OpenSession(c.Request.Context(), &dto.OpenInput{
		StaffID:      auth.GetUserID(c),
		RegisterName: req.RegisterName,
		OpeningCash:  req.OpeningCash,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, session)
}

func (h *POSHandler) CloseSession(c *gin.Context) {
	var req closeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	report, err := h.uc.CloseSession(c.Request.Context(), &dto.CloseInput{
		StaffID:     auth.GetUserID(c),
		ClosingCash: req.ClosingCash,
		Notes:       req.Notes,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, report)
}

func (h *POSHandler) GetCurrentSession(c *gin.Context) {
	session, err := h.uc.GetCurrentSession(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, session)
}

func (h *POSHandler) GetSession(c *gin.Context) {
	session, err := h.uc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, session)
}

func (h *POSHandler) ListSessions(c *gin.Context) {
	from, err := httpx.QueryTime(c, "from")
	if err != nil {
		httpx.BindError(c, err)
		return
	}
	to, err := httpx.QueryTime(c, "to")
	if err != nil {
		httpx.BindError(c, err)
		return
	}
	page, pageSize := httpx.Pagination(c)

	sessions, total, err := h.uc.ListSessions(c.Request.Context(), &dto.SessionFilters{
		StaffID:  c.Query("staff_id"),
		Status:   c.Query("status"),
		From:     from,
		To:       to,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, sessions, total, page, pageSize)
}

func (h *POSHandler) CreateSale(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}

	items := make([]dto.SaleLine, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, dto.SaleLine{VariantID: it.VariantID, Quantity: it.Quantity})
	}
	o, err := h.uc.CreateSale(c.Request.Context(), &dto.SaleInput{
		StaffID:        auth.GetUserID(c),
		Items:          items,
		PaymentMethod:  req.PaymentMethod,
		AmountTendered: req.AmountTendered,
		CustomerID:     req.CustomerID,
		DiscountCode:   req.DiscountCode,
		Notes:          req.Notes,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, o)
}
