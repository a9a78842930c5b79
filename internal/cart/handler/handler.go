package handler

import (
	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/cart"
	"github.com/fekuna/omnipos-commerce/internal/cart/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	uc     cart.UseCase
	logger logger.ZapLogger
}

func NewCartHandler(uc cart.UseCase, log logger.ZapLogger) *CartHandler {
	return &CartHandler{
		uc:     uc,
		logger: log,
	}
}

type addItemRequest struct {
	VariantID string `json:"variant_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=999"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=999"`
}

func owner(c *gin.Context) dto.Owner {
	return dto.Owner{
		UserID:    auth.GetUserID(c),
		SessionID: c.GetHeader(auth.CartSessionHeader),
	}
}

// respond echoes the guest session token so clients can keep it.
func respond(c *gin.Context, view *model.CartView) {
	if view.UserID == nil && view.SessionID != nil {
		c.Header(auth.CartSessionHeader, *view.SessionID)
	}
	httpx.OK(c, view)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.uc.GetCart(c.Request.Context(), owner(c))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	respond(c, view)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	view, err := h.uc.AddItem(c.Request.Context(), owner(c), &dto.AddItemInput{
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	respond(c, view)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	view, err := h.uc.UpdateItem(c.Request.Context(), owner(c), c.Param("itemId"), *req.Quantity)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	respond(c, view)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	view, err := h.uc.RemoveItem(c.Request.Context(), owner(c), c.Param("itemId"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	respond(c, view)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.uc.Clear(c.Request.Context(), owner(c)); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

// Merge folds the guest cart named by the session header into the caller's cart.
func (h *CartHandler) Merge(c *gin.Context) {
	session := c.GetHeader(auth.CartSessionHeader)
	if err := h.uc.MergeGuestCart(c.Request.Context(), session, auth.GetUserID(c)); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	view, err := h.uc.GetCart(c.Request.Context(), dto.Owner{UserID: auth.GetUserID(c)})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, view)
}

func (h *CartHandler) ListAbandoned(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	carts, total, err := h.uc.ListAbandoned(c.Request.Context(), page, pageSize)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, carts, total, page, pageSize)
}
