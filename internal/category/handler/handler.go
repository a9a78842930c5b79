package handler

import (
	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/category"
	"github.com/fekuna/omnipos-commerce/internal/category/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

type categoryRequest struct {
	ParentID    *string `json:"parent_id" binding:"omitempty,uuid"`
	Name        string  `json:"name" binding:"required,max=120"`
	Slug        string  `json:"slug" binding:"omitempty,max=140,slug"`
	Description string  `json:"description" binding:"max=2000"`
	ImageURL    string  `json:"image_url" binding:"omitempty,url"`
	SortOrder   int     `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}

	cat, err := h.uc.CreateCategory(c.Request.Context(), &dto.CreateCategoryInput{
		ActorID:     auth.GetUserID(c),
		ParentID:    req.ParentID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, cat)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	cat, err := h.uc.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, cat)
}

func (h *CategoryHandler) GetCategoryBySlug(c *gin.Context) {
	cat, err := h.uc.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, cat)
}

// ListCategories serves both the public and admin lists; public callers only see active ones.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	filters := &dto.CategoryFilters{
		IsActive: httpx.QueryBool(c, "is_active"),
		Query:    c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	}
	if parent, ok := c.GetQuery("parent_id"); ok {
		filters.ParentID = &parent
	}
	if !auth.IsStaff(auth.GetRole(c)) {
		active := true
		filters.IsActive = &active
	}

	categories, total, err := h.uc.ListCategories(c.Request.Context(), filters)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, categories, total, page, pageSize)
}

func (h *CategoryHandler) GetTree(c *gin.Context) {
	tree, err := h.uc.GetTree(c.Request.Context())
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, tree)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	cat, err := h.uc.UpdateCategory(c.Request.Context(), &dto.UpdateCategoryInput{
		ActorID:     auth.GetUserID(c),
		ID:          c.Param("id"),
		ParentID:    req.ParentID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		IsActive:    active,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, cat)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.uc.DeleteCategory(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}
