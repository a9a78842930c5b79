package handler

import (
	"encoding/json"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/theme"
	"github.com/fekuna/omnipos-commerce/internal/theme/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ThemeHandler struct {
	uc     theme.UseCase
	logger logger.ZapLogger
}

func NewThemeHandler(uc theme.UseCase, log logger.ZapLogger) *ThemeHandler {
	return &ThemeHandler{
		uc:     uc,
		logger: log,
	}
}

type themeRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Description string          `json:"description" binding:"max=500"`
	Settings    json.RawMessage `json:"settings"`
}

func (h *ThemeHandler) bind(c *gin.Context) (*dto.ThemeInput, bool) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return nil, false
	}
	return &dto.ThemeInput{
		ActorID:     auth.GetUserID(c),
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Settings:    req.Settings,
	}, true
}

func (h *ThemeHandler) List(c *gin.Context) {
	themes, err := h.uc.List(c.Request.Context())
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, themes)
}

func (h *ThemeHandler) Get(c *gin.Context) {
	t, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, t)
}

func (h *ThemeHandler) GetActive(c *gin.Context) {
	t, err := h.uc.GetActive(c.Request.Context())
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, t)
}

func (h *ThemeHandler) Create(c *gin.Context) {
	input, ok := h.bind(c)
	if !ok {
		return
	}
	t, err := h.uc.Create(c.Request.Context(), input)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, t)
}

func (h *ThemeHandler) Update(c *gin.Context) {
	input, ok := h.bind(c)
	if !ok {
		return
	}
	t, err := h.uc.Update(c.Request.Context(), input)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, t)
}

func (h *ThemeHandler) Delete(c *gin.Context) {
	if err := h.uc.Delete(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

func (h *ThemeHandler) Activate(c *gin.Context) {
	t, err := h.uc.Activate(c.Request.Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, t)
}
