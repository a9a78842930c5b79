package handler

import (
	"encoding/json"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/cms"
	"github.com/fekuna/omnipos-commerce/internal/cms/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type CMSHandler struct {
	uc     cms.UseCase
	logger logger.ZapLogger
}

func NewCMSHandler(uc cms.UseCase, log logger.ZapLogger) *CMSHandler {
	return &CMSHandler{
		uc:     uc,
		logger: log,
	}
}

type templateRequest struct {
	Name           string          `json:"name" binding:"required,max=100"`
	BlockType      string          `json:"block_type" binding:"max=50"`
	Description    string          `json:"description" binding:"max=500"`
	RequiredFields []string        `json:"required_fields"`
	DefaultConfig  json.RawMessage `json:"default_config"`
}

type pageRequest struct {
	Title   string          `json:"title" binding:"required,max=200"`
	Slug    string          `json:"slug" binding:"max=200"`
	Content json.RawMessage `json:"content"`
	Note    string          `json:"note" binding:"max=255"`
}

type blockRequest struct {
	PageID     *string         `json:"page_id" binding:"omitempty,uuid"`
	TemplateID string          `json:"template_id" binding:"required,uuid"`
	Name       string          `json:"name" binding:"required,max=100"`
	Placement  string          `json:"placement" binding:"max=50"`
	SortOrder  int             `json:"sort_order"`
	Config     json.RawMessage `json:"config"`
	IsActive   *bool           `json:"is_active"`
}

type reorderRequest struct {
	BlockIDs []string `json:"block_ids" binding:"required,min=1,dive,uuid"`
}

func (h *CMSHandler) templateInput(c *gin.Context) (*dto.TemplateInput, bool) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return nil, false
	}
	return &dto.TemplateInput{
		ActorID:        auth.GetUserID(c),
		ID:             c.Param("id"),
		Name:           req.Name,
		BlockType:      req.BlockType,
		Description:    req.Description,
		RequiredFields: req.RequiredFields,
		DefaultConfig:  req.DefaultConfig,
	}, true
}

func (h *CMSHandler) ListTemplates(c *gin.Context) {
	templates, err := h.uc.ListTemplates(c.Request.Context())
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, templates)
}

func (h *CMSHandler) GetTemplate(c *gin.Context) {
	t, err := h.uc.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, t)
}

func (h *CMSHandler) CreateTemplate(c *gin.Context) {
	input, ok := h.templateInput(c)
	if !ok {
		return
	}
	t, err := h.uc.CreateTemplate(c.Request.Context(), input)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, t)
}

func (h *CMSHandler) UpdateTemplate(c *gin.Context) {
	input, ok := h.templateInput(c)
	if !ok {
		return
	}
	t, err := h.uc.UpdateTemplate(c.Request.Context(), input)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, t)
}

func (h *CMSHandler) DeleteTemplate(c *gin.Context) {
	if err := h.uc.DeleteTemplate(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

func (h *CMSHandler) pageInput(c *gin.Context) (*dto.PageInput, bool) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return nil, false
	}
	return &dto.PageInput{
		ActorID: auth.GetUserID(c),
		ID:      c.Param("id"),
		Title:   req.Title,
		Slug:    req.Slug,
		Content: req.Content,
		Note:    req.Note,
	}, true
}

func (h *CMSHandler) ListPages(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	pages, total, err := h.uc.ListPages(c.Request.Context(), &dto.PageFilters{
		Status:   c.Query("status"),
		Query:    c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, pages, total, page, pageSize)
}

func (h *CMSHandler) GetPage(c *gin.Context) {
	p, err := h.uc.GetPage(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, p)
}

func (h *CMSHandler) CreatePage(c *gin.Context) {
	input, ok := h.pageInput(c)
	if !ok {
		return
	}
	p, err := h.uc.CreatePage(c.Request.Context(), input)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, p)
}

func (h *CMSHandler) UpdatePage(c *gin.Context) {
	input, ok := h.pageInput(c)
	if !ok {
		return
	}
	p, err := h.uc.UpdatePage(c.Request.Context(), input)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, p)
}

func (h *CMSHandler) PublishPage(c *gin.Context) {
	p, err := h.uc.PublishPage(c.Request.Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, p)
}

func (h *CMSHandler) UnpublishPage(c *gin.Context) {
	p, err := h.uc.UnpublishPage(c.Request.Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, p)
}

func (h *CMSHandler) ArchivePage(c *gin.Context) {
	p, err := h.uc.ArchivePage(c.Request.Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, p)
}

func (h *CMSHandler) DeletePage(c *gin.Context) {
	if err := h.uc.DeletePage(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

func (h *CMSHandler) ListRevisions(c *gin.Context) {
	revs, err := h.uc.ListRevisions(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, revs)
}

func (h *CMSHandler) RestoreRevision(c *gin.Context) {
	p, err := h.uc.RestoreRevision(c.Request.Context(), &dto.RestoreInput{
		ActorID:    auth.GetUserID(c),
		PageID:     c.Param("id"),
		RevisionID: c.Param("revisionId"),
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, p)
}

// GetPublishedPage serves the storefront.
func (h *CMSHandler) GetPublishedPage(c *gin.Context) {
	p, err := h.uc.GetPublishedPage(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, p)
}

func (h *CMSHandler) blockInput(c *gin.Context) (*dto.BlockInput, bool) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return nil, false
	}
	return &dto.BlockInput{
		ActorID:    auth.GetUserID(c),
		ID:         c.Param("id"),
		PageID:     req.PageID,
		TemplateID: req.TemplateID,
		Name:       req.Name,
		Placement:  req.Placement,
		SortOrder:  req.SortOrder,
		Config:     req.Config,
		IsActive:   req.IsActive,
	}, true
}

func (h *CMSHandler) ListBlocks(c *gin.Context) {
	active := httpx.QueryBool(c, "active")
	blocks, err := h.uc.ListBlocks(c.Request.Context(), &dto.BlockFilters{
		PageID:     c.Query("page_id"),
		Placement:  c.Query("placement"),
		ActiveOnly: active != nil && *active,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, blocks)
}

func (h *CMSHandler) CreateBlock(c *gin.Context) {
	input, ok := h.blockInput(c)
	if !ok {
		return
	}
	b, err := h.uc.CreateBlock(c.Request.Context(), input)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, b)
}

func (h *CMSHandler) UpdateBlock(c *gin.Context) {
	input, ok := h.blockInput(c)
	if !ok {
		return
	}
	b, err := h.uc.UpdateBlock(c.Request.Context(), input)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, b)
}

func (h *CMSHandler) DeleteBlock(c *gin.Context) {
	if err := h.uc.DeleteBlock(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

func (h *CMSHandler) ReorderBlocks(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	blocks, err := h.uc.ReorderBlocks(c.Request.Context(), &dto.ReorderInput{
		ActorID:  auth.GetUserID(c),
		PageID:   c.Param("id"),
		BlockIDs: req.BlockIDs,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, blocks)
}
