package handler

import (
	"strconv"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/review"
	"github.com/fekuna/omnipos-commerce/internal/review/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	uc     review.UseCase
	logger logger.ZapLogger
}

func NewReviewHandler(uc review.UseCase, log logger.ZapLogger) *ReviewHandler {
	return &ReviewHandler{
		uc:     uc,
		logger: log,
	}
}

type createRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Title  string `json:"title" binding:"max=200"`
	Body   string `json:"body" binding:"max=5000"`
}

type moderateRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	rv, err := h.uc.CreateReview(c.Request.Context(), &dto.CreateReviewInput{
		UserID:    auth.GetUserID(c),
		ProductID: c.Param("id"),
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Body,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, rv)
}

func (h *ReviewHandler) ListProductReviews(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	reviews, total, err := h.uc.ListProductReviews(c.Request.Context(), c.Param("slug"), page, pageSize)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, reviews, total, page, pageSize)
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	rating, _ := strconv.Atoi(c.Query("rating"))
	reviews, total, err := h.uc.ListReviews(c.Request.Context(), &dto.ReviewFilters{
		ProductID: c.Query("product_id"),
		Status:    c.Query("status"),
		Rating:    rating,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, reviews, total, page, pageSize)
}

func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	rv, err := h.uc.ModerateReview(c.Request.Context(), &dto.ModerateInput{
		ActorID: auth.GetUserID(c),
		ID:      c.Param("id"),
		Status:  req.Status,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, rv)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	if err := h.uc.DeleteReview(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}
