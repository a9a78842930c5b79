package handler

import (
	"time"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/order"
	"github.com/fekuna/omnipos-commerce/internal/order/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: log,
	}
}

type checkoutRequest struct {
	AddressID      string `json:"address_id" binding:"required,uuid"`
	DiscountCode   string `json:"discount_code" binding:"max=50"`
	PointsToRedeem int    `json:"points_to_redeem" binding:"min=0"`
	PaymentMethod  string `json:"payment_method" binding:"omitempty,max=50"`
	Notes          string `json:"notes" binding:"max=1000"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PAID PROCESSING SHIPPED DELIVERED CANCELLED REFUNDED"`
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	o, err := h.uc.Checkout(c.Request.Context(), &dto.CheckoutInput{
		UserID:         auth.GetUserID(c),
		AddressID:      req.AddressID,
		DiscountCode:   req.DiscountCode,
		PointsToRedeem: req.PointsToRedeem,
		PaymentMethod:  req.PaymentMethod,
		Notes:          req.Notes,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, o)
}

// filters reads the shared list query. ok is false when a response was written.
func (h *OrderHandler) filters(c *gin.Context) (*dto.OrderFilters, bool) {
	from, err := httpx.QueryTime(c, "from")
	if err != nil {
		httpx.BindError(c, err)
		return nil, false
	}
	to, err := httpx.QueryTime(c, "to")
	if err != nil {
		httpx.BindError(c, err)
		return nil, false
	}
	page, pageSize := httpx.Pagination(c)
	return &dto.OrderFilters{
		Status:   c.Query("status"),
		Channel:  c.Query("channel"),
		From:     from,
		To:       to,
		Query:    c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	}, true
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	f, ok := h.filters(c)
	if !ok {
		return
	}
	orders, total, err := h.uc.ListMyOrders(c.Request.Context(), auth.GetUserID(c), f)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, orders, total, f.Page, f.PageSize)
}

func (h *OrderHandler) GetMyOrder(c *gin.Context) {
	o, err := h.uc.GetMyOrder(c.Request.Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, o)
}

func (h *OrderHandler) CancelMyOrder(c *gin.Context) {
	o, err := h.uc.CancelMyOrder(c.Request.Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, o)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	f, ok := h.filters(c)
	if !ok {
		return
	}
	orders, total, err := h.uc.ListOrders(c.Request.Context(), f)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, orders, total, f.Page, f.PageSize)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.uc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, o)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	o, err := h.uc.UpdateStatus(c.Request.Context(), &dto.StatusInput{
		ActorID: auth.GetUserID(c),
		OrderID: c.Param("id"),
		Status:  req.Status,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, o)
}

func (h *OrderHandler) SalesSummary(c *gin.Context) {
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

	var start, end time.Time
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}
	summary, err := h.uc.SalesSummary(c.Request.Context(), start, end)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, summary)
}
