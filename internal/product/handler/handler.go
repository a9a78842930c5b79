package handler

import (
	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/product"
	"github.com/fekuna/omnipos-commerce/internal/product/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

type variantRequest struct {
	SKU             string          `json:"sku" binding:"required,max=64"`
	Name            string          `json:"name" binding:"max=120"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
	Stock           int             `json:"stock" binding:"min=0"`
	IsActive        *bool           `json:"is_active"`
}

func (r variantRequest) toInput(actorID, productID, variantID string) dto.VariantInput {
	return dto.VariantInput{
		ActorID:         actorID,
		ID:              variantID,
		ProductID:       productID,
		SKU:             r.SKU,
		Name:            r.Name,
		PriceAdjustment: r.PriceAdjustment,
		Stock:           r.Stock,
		IsActive:        r.IsActive == nil || *r.IsActive,
	}
}

// variantUpdateRequest has no stock; stock changes go through inventory adjustments.
type variantUpdateRequest struct {
	SKU             string          `json:"sku" binding:"required,max=64"`
	Name            string          `json:"name" binding:"max=120"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
	IsActive        *bool           `json:"is_active"`
}

type productRequest struct {
	CategoryID     string           `json:"category_id" binding:"omitempty,uuid"`
	Name           string           `json:"name" binding:"required,max=200"`
	Slug           string           `json:"slug" binding:"omitempty,max=220,slug"`
	Description    string           `json:"description" binding:"max=10000"`
	BasePrice      decimal.Decimal  `json:"base_price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	Images         []string         `json:"images" binding:"max=20,dive,url"`
	IsFeatured     bool             `json:"is_featured"`
	IsActive       *bool            `json:"is_active"`
	SKU            string           `json:"sku" binding:"max=64"`
	Stock          int              `json:"stock" binding:"min=0"`
	Variants       []variantRequest `json:"variants" binding:"dive"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}

	actorID := auth.GetUserID(c)
	input := &dto.CreateProductInput{
		ActorID:        actorID,
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		BasePrice:      req.BasePrice,
		CompareAtPrice: req.CompareAtPrice,
		Images:         req.Images,
		IsFeatured:     req.IsFeatured,
		SKU:            req.SKU,
		Stock:          req.Stock,
	}
	for _, v := range req.Variants {
		input.Variants = append(input.Variants, v.toInput(actorID, "", ""))
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), input)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, p)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.uc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, p)
}

func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	p, err := h.uc.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, p)
}

// ListProducts serves the storefront and the back office; non-staff callers only see active products.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	filters := &dto.ProductFilters{
		CategoryID:   c.Query("category_id"),
		CategorySlug: c.Query("category"),
		IsActive:     httpx.QueryBool(c, "is_active"),
		IsFeatured:   httpx.QueryBool(c, "featured"),
		SearchQuery:  c.Query("q"),
		SortBy:       c.Query("sort_by"),
		SortOrder:    c.Query("sort_order"),
		Page:         page,
		PageSize:     pageSize,
	}

	var err error
	if filters.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		httpx.BindError(c, err)
		return
	}
	if filters.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		httpx.BindError(c, err)
		return
	}
	if !auth.IsStaff(auth.GetRole(c)) {
		active := true
		filters.IsActive = &active
	}

	products, total, err := h.uc.ListProducts(c.Request.Context(), filters)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, products, total, page, pageSize)
}

func queryDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}

	p, err := h.uc.UpdateProduct(c.Request.Context(), &dto.UpdateProductInput{
		ActorID:        auth.GetUserID(c),
		ID:             c.Param("id"),
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		BasePrice:      req.BasePrice,
		CompareAtPrice: req.CompareAtPrice,
		Images:         req.Images,
		IsFeatured:     req.IsFeatured,
		IsActive:       req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, p)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.uc.DeleteProduct(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

func (h *ProductHandler) AddVariant(c *gin.Context) {
	var req variantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	input := req.toInput(auth.GetUserID(c), c.Param("id"), "")
	v, err := h.uc.AddVariant(c.Request.Context(), &input)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, v)
}

func (h *ProductHandler) UpdateVariant(c *gin.Context) {
	var req variantUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	input := dto.VariantInput{
		ActorID:         auth.GetUserID(c),
		ID:              c.Param("variantId"),
		ProductID:       c.Param("id"),
		SKU:             req.SKU,
		Name:            req.Name,
		PriceAdjustment: req.PriceAdjustment,
		IsActive:        req.IsActive == nil || *req.IsActive,
	}
	v, err := h.uc.UpdateVariant(c.Request.Context(), &input)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, v)
}

func (h *ProductHandler) DeleteVariant(c *gin.Context) {
	err := h.uc.DeleteVariant(c.Request.Context(), auth.GetUserID(c), c.Param("id"), c.Param("variantId"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

func (h *ProductHandler) Reindex(c *gin.Context) {
	n, err := h.uc.ReindexAll(c.Request.Context())
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, gin.H{"indexed": n})
}
