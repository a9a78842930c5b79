package handler

import (
	"github.com/fekuna/omnipos-commerce/internal/marketing"
	"github.com/fekuna/omnipos-commerce/internal/marketing/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type NewsletterHandler struct {
	uc     marketing.UseCase
	logger logger.ZapLogger
}

func NewNewsletterHandler(uc marketing.UseCase, log logger.ZapLogger) *NewsletterHandler {
	return &NewsletterHandler{
		uc:     uc,
		logger: log,
	}
}

type subscribeRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Source string `json:"source" binding:"max=50"`
}

type unsubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	sub, err := h.uc.Subscribe(c.Request.Context(), &dto.SubscribeInput{Email: req.Email, Source: req.Source})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, gin.H{"email": sub.Email, "status": sub.Status})
}

func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	if err := h.uc.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

func (h *NewsletterHandler) ListSubscribers(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	subs, total, err := h.uc.ListSubscribers(c.Request.Context(), &dto.SubscriberFilters{
		Status:   c.Query("status"),
		Query:    c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, subs, total, page, pageSize)
}
