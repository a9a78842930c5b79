package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/seo"
	"github.com/fekuna/omnipos-commerce/internal/seo/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type SEOHandler struct {
	uc     seo.UseCase
	logger logger.ZapLogger
}

func NewSEOHandler(uc seo.UseCase, log logger.ZapLogger) *SEOHandler {
	return &SEOHandler{
		uc:     uc,
		logger: log,
	}
}

type upsertRequest struct {
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	CanonicalURL    string `json:"canonical_url"`
	OGImage         string `json:"og_image"`
	NoIndex         bool   `json:"no_index"`
}

func (h *SEOHandler) Upsert(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	meta, err := h.uc.Upsert(c.Request.Context(), &dto.MetadataInput{
		ActorID:         auth.GetUserID(c),
		EntityType:      c.Param("type"),
		EntityID:        c.Param("id"),
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		CanonicalURL:    req.CanonicalURL,
		OGImage:         req.OGImage,
		NoIndex:         req.NoIndex,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, meta)
}

func (h *SEOHandler) Get(c *gin.Context) {
	meta, err := h.uc.Get(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, meta)
}

func (h *SEOHandler) Delete(c *gin.Context) {
	if err := h.uc.Delete(c.Request.Context(), auth.GetUserID(c), c.Param("type"), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

func (h *SEOHandler) Sitemap(c *gin.Context) {
	doc, err := h.uc.Sitemap(c.Request.Context())
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=900")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", doc)
}
