package handler

import (
	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	"github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ActivityLogHandler struct {
	uc     activitylog.UseCase
	logger logger.ZapLogger
}

func NewActivityLogHandler(uc activitylog.UseCase, log logger.ZapLogger) *ActivityLogHandler {
	return &ActivityLogHandler{uc: uc, logger: log}
}

func (h *ActivityLogHandler) ListLogs(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
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

	logs, total, err := h.uc.ListLogs(c.Request.Context(), &dto.LogFilters{
		ActorID:    c.Query("actor_id"),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		Action:     c.Query("action"),
		From:       from,
		To:         to,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, logs, total, page, pageSize)
}
