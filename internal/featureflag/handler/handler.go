package handler

import (
	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/featureflag"
	"github.com/fekuna/omnipos-commerce/internal/featureflag/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type FlagHandler struct {
	uc     featureflag.UseCase
	logger logger.ZapLogger
}

func NewFlagHandler(uc featureflag.UseCase, log logger.ZapLogger) *FlagHandler {
	return &FlagHandler{
		uc:     uc,
		logger: log,
	}
}

type upsertRequest struct {
	Description string `json:"description" binding:"max=255"`
	Enabled     bool   `json:"enabled"`
	IsPremium   bool   `json:"is_premium"`
}

func (h *FlagHandler) List(c *gin.Context) {
	flags, err := h.uc.List(c.Request.Context())
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, flags)
}

func (h *FlagHandler) Get(c *gin.Context) {
	flag, err := h.uc.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, flag)
}

// Upsert is PUT /feature-flags/:key.
func (h *FlagHandler) Upsert(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	flag, err := h.uc.Upsert(c.Request.Context(), &dto.FlagInput{
		ActorID:     auth.GetUserID(c),
		Key:         c.Param("key"),
		Description: req.Description,
		Enabled:     req.Enabled,
		IsPremium:   req.IsPremium,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, flag)
}

func (h *FlagHandler) Toggle(c *gin.Context) {
	flag, err := h.uc.Toggle(c.Request.Context(), auth.GetUserID(c), c.Param("key"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, flag)
}
