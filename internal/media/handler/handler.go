package handler

import (
	"io"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/media"
	"github.com/fekuna/omnipos-commerce/internal/media/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	uc       media.UseCase
	maxBytes int64
	logger   logger.ZapLogger
}

func NewMediaHandler(uc media.UseCase, maxBytes int64, log logger.ZapLogger) *MediaHandler {
	return &MediaHandler{
		uc:       uc,
		maxBytes: maxBytes,
		logger:   log,
	}
}

type updateRequest struct {
	AltText string `json:"alt_text" binding:"max=255"`
	Folder  string `json:"folder" binding:"max=100"`
}

func (h *MediaHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		httpx.Error(c, h.logger, apperror.Invalid("MediaFileRequired", "a file is required").Wrap(err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	defer f.Close()

	// One byte past the limit is enough for the use case to reject it.
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}

	asset, err := h.uc.Upload(c.Request.Context(), &dto.UploadInput{
		ActorID:      auth.GetUserID(c),
		OriginalName: fh.Filename,
		Data:         data,
		Folder:       c.PostForm("folder"),
		AltText:      c.PostForm("alt_text"),
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, asset)
}

func (h *MediaHandler) List(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	assets, total, err := h.uc.List(c.Request.Context(), &dto.MediaFilters{
		Folder:     c.Query("folder"),
		MimePrefix: c.Query("mime"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, assets, total, page, pageSize)
}

func (h *MediaHandler) Get(c *gin.Context) {
	asset, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, asset)
}

func (h *MediaHandler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	asset, err := h.uc.Update(c.Request.Context(), &dto.UpdateInput{
		ActorID: auth.GetUserID(c),
		ID:      c.Param("id"),
		AltText: req.AltText,
		Folder:  req.Folder,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, asset)
}

func (h *MediaHandler) Delete(c *gin.Context) {
	if err := h.uc.Delete(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}
