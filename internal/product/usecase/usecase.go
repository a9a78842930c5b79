package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/product"
	"github.com/fekuna/omnipos-commerce/internal/product/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/cache"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/fekuna/omnipos-commerce/pkg/search"
	"github.com/fekuna/omnipos-commerce/pkg/textutil"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const listCacheTTL = 5 * time.Minute

var (
	errProductNotFound = apperror.NotFound("ProductNotFound", "product not found")
	errVariantNotFound = apperror.NotFound("VariantNotFound", "variant not found")
)

type productUseCase struct {
	repo     product.Repository
	cache    *cache.RedisClient
	es       *search.Client
	pricer   product.FlashPricer
	activity activitylog.Recorder
	logger   logger.ZapLogger

	indexOnce sync.Once
}

// NewProductUseCase wires the catalog. cache, es and pricer may be nil.
func NewProductUseCase(
	repo product.Repository,
	cache *cache.RedisClient,
	es *search.Client,
	pricer product.FlashPricer,
	activity activitylog.Recorder,
	log logger.ZapLogger,
) product.UseCase {
	return &productUseCase{
		repo:     repo,
		cache:    cache,
		es:       es,
		pricer:   pricer,
		activity: activity,
		logger:   log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if input.BasePrice.IsNegative() {
		return nil, apperror.Invalid("PriceNegative", "price must not be negative")
	}
	if err := uc.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	slug, err := uc.resolveSlug(ctx, input.Slug, input.Name, "")
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now()

	variants := input.Variants
	if len(variants) == 0 {
		if strings.TrimSpace(input.SKU) == "" {
			return nil, apperror.Invalid("SKURequired", "sku is required when no variants are given")
		}
		variants = []dto.VariantInput{{SKU: input.SKU, Name: "Default", Stock: input.Stock, IsActive: true}}
	}

	p := &model.Product{
		BaseModel:      model.NewBase(id, now),
		CategoryID:     optional(input.CategoryID),
		Name:           strings.TrimSpace(input.Name),
		Slug:           slug,
		Description:    optional(input.Description),
		BasePrice:      input.BasePrice.Round(2),
		CompareAtPrice: input.CompareAtPrice,
		Images:         pq.StringArray(nonNil(input.Images)),
		IsActive:       true,
		IsFeatured:     input.IsFeatured,
	}

	seen := map[string]bool{}
	for _, vi := range variants {
		sku := strings.ToUpper(strings.TrimSpace(vi.SKU))
		if seen[sku] {
			return nil, skuTaken(sku)
		}
		seen[sku] = true

		v, err := uc.buildVariant(ctx, p, vi, "")
		if err != nil {
			return nil, err
		}
		v.BaseModel = model.NewBase(uuid.New().String(), now)
		p.Variants = append(p.Variants, *v)
		if v.IsActive {
			p.Stock += v.Stock
		}
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperror.Conflict("ProductConflict", "slug or sku is already in use").Wrap(err)
		}
		return nil, err
	}

	uc.afterWrite(ctx, input.ActorID, "product.created", p)
	return p, nil
}

func (uc *productUseCase) buildVariant(ctx context.Context, p *model.Product, vi dto.VariantInput, excludeID string) (*model.ProductVariant, error) {
	sku := strings.ToUpper(strings.TrimSpace(vi.SKU))
	if sku == "" {
		return nil, apperror.Invalid("SKURequired", "sku is required")
	}
	if vi.Stock < 0 {
		return nil, apperror.Invalid("VariantStockInvalid", "stock must not be negative")
	}
	if p.BasePrice.Add(vi.PriceAdjustment).IsNegative() {
		return nil, apperror.Invalid("PriceNegative", "price must not be negative")
	}

	taken, err := uc.repo.IsSKUTaken(ctx, sku, excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, skuTaken(sku)
	}

	name := strings.TrimSpace(vi.Name)
	if name == "" {
		name = sku
	}
	return &model.ProductVariant{
		ProductID:       p.ID,
		SKU:             sku,
		Name:            name,
		PriceAdjustment: vi.PriceAdjustment.Round(2),
		Stock:           vi.Stock,
		IsActive:        vi.IsActive,
	}, nil
}

func skuTaken(sku string) *apperror.Error {
	return apperror.Conflict("SKUTaken", "sku {{.SKU}} is already in use").WithData("SKU", sku)
}

func (uc *productUseCase) resolveSlug(ctx context.Context, slug, name, excludeID string) (string, error) {
	if slug == "" {
		slug = textutil.Slugify(name)
	}
	if !textutil.IsSlug(slug) {
		return "", apperror.Invalid("SlugInvalid", "slug may only contain lowercase letters, digits and dashes")
	}
	taken, err := uc.repo.IsSlugTaken(ctx, slug, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperror.Conflict("SlugTaken", "slug {{.Slug}} is already in use").WithData("Slug", slug)
	}
	return slug, nil
}

func (uc *productUseCase) checkCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	ok, err := uc.repo.CategoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Invalid("CategoryNotFound", "category not found")
	}
	return nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errProductNotFound
	}
	return p, nil
}

func (uc *productUseCase) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := uc.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, errProductNotFound
	}

	active := p.Variants[:0]
	for _, v := range p.Variants {
		if v.IsActive {
			active = append(active, v)
		}
	}
	p.Variants = active

	products := []model.Product{*p}
	uc.applyFlashPrices(ctx, products)
	return &products[0], nil
}

type cachedList struct {
	Products []model.Product `json:"products"`
	Count    int             `json:"count"`
}

// ListProducts caches public (active-only) listings. Flash prices are applied
// after the cache so a sale starting does not wait for expiry.
func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	public := filters.IsActive != nil && *filters.IsActive

	var cacheKey string
	if public {
		key, err := listCacheKey(filters)
		if err == nil {
			cacheKey = key
			var hit cachedList
			found, err := uc.cache.GetJSON(ctx, cacheKey, &hit)
			if err != nil {
				uc.logger.Warn("product list cache read failed", zap.Error(err))
			}
			if found {
				uc.applyFlashPrices(ctx, hit.Products)
				return hit.Products, hit.Count, nil
			}
		}
	}

	products, count, err := uc.search(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" {
		if err := uc.cache.SetJSON(ctx, cacheKey, cachedList{Products: products, Count: count}, listCacheTTL); err != nil {
			uc.logger.Warn("product list cache write failed", zap.Error(err))
		}
	}

	uc.applyFlashPrices(ctx, products)
	return products, count, nil
}

func listCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%x", md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateListCache(ctx context.Context) {
	if err := uc.cache.DeleteByPattern(ctx, product.ListCachePattern); err != nil {
		uc.logger.Warn("product list cache invalidation failed", zap.Error(err))
	}
}

func (uc *productUseCase) applyFlashPrices(ctx context.Context, products []model.Product) {
	if uc.pricer == nil || len(products) == 0 {
		return
	}
	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	prices, err := uc.pricer.ActivePrices(ctx, ids)
	if err != nil {
		uc.logger.Warn("flash price lookup failed", zap.Error(err))
		return
	}
	for i := range products {
		if price, ok := prices[products[i].ID]; ok {
			price := price
			products[i].FlashPrice = &price
		}
	}
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.BasePrice.IsNegative() {
		return nil, apperror.Invalid("PriceNegative", "price must not be negative")
	}
	if input.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != input.CategoryID) {
		if err := uc.checkCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	slug := input.Slug
	if slug == "" {
		slug = p.Slug
	}
	if slug != p.Slug {
		if slug, err = uc.resolveSlug(ctx, slug, input.Name, p.ID); err != nil {
			return nil, err
		}
	}

	p.CategoryID = optional(input.CategoryID)
	p.Name = strings.TrimSpace(input.Name)
	p.Slug = slug
	p.Description = optional(input.Description)
	p.BasePrice = input.BasePrice.Round(2)
	p.CompareAtPrice = input.CompareAtPrice
	p.Images = pq.StringArray(nonNil(input.Images))
	p.IsFeatured = input.IsFeatured
	p.IsActive = input.IsActive
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	uc.afterWrite(ctx, input.ActorID, "product.updated", p)
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, actorID, id string) error {
	p, err := uc.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	p.IsActive = false

	uc.afterWrite(ctx, actorID, "product.deleted", p)
	return nil
}

func (uc *productUseCase) AddVariant(ctx context.Context, input *dto.VariantInput) (*model.ProductVariant, error) {
	p, err := uc.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	v, err := uc.buildVariant(ctx, p, *input, "")
	if err != nil {
		return nil, err
	}
	v.BaseModel = model.NewBase(uuid.New().String(), time.Now())

	if err := uc.repo.AddVariant(ctx, v); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, skuTaken(v.SKU).Wrap(err)
		}
		return nil, err
	}

	uc.afterWrite(ctx, input.ActorID, "product.variant_added", p)
	return v, nil
}

func (uc *productUseCase) UpdateVariant(ctx context.Context, input *dto.VariantInput) (*model.ProductVariant, error) {
	p, err := uc.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.FindVariant(ctx, p.ID, input.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errVariantNotFound
	}

	update := *input
	update.Stock = 0
	v, err := uc.buildVariant(ctx, p, update, existing.ID)
	if err != nil {
		return nil, err
	}
	v.BaseModel = existing.BaseModel
	v.UpdatedAt = time.Now()
	v.Stock = existing.Stock

	if err := uc.repo.UpdateVariant(ctx, v); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, skuTaken(v.SKU).Wrap(err)
		}
		return nil, err
	}

	uc.afterWrite(ctx, input.ActorID, "product.variant_updated", p)
	return v, nil
}

func (uc *productUseCase) DeleteVariant(ctx context.Context, actorID, productID, variantID string) error {
	p, err := uc.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	found := false
	for _, v := range p.Variants {
		if v.ID == variantID {
			found = true
			break
		}
	}
	if !found {
		return errVariantNotFound
	}
	if len(p.Variants) == 1 {
		return apperror.Conflict("LastVariant", "a product must keep at least one variant")
	}

	if err := uc.repo.DeleteVariant(ctx, productID, variantID); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.Conflict("VariantHasOrders", "variant has orders; deactivate it instead").Wrap(err)
		}
		return err
	}

	uc.afterWrite(ctx, actorID, "product.variant_deleted", p)
	return nil
}

// afterWrite invalidates cached listings, refreshes the search index and records the change.
func (uc *productUseCase) afterWrite(ctx context.Context, actorID, action string, p *model.Product) {
	uc.invalidateListCache(ctx)

	if uc.es != nil {
		doc := newSearchDocument(p)
		go uc.syncToElastic(context.WithoutCancel(ctx), doc)
	}

	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    actorID,
		Action:     action,
		EntityType: "product",
		EntityID:   p.ID,
		Metadata:   map[string]interface{}{"slug": p.Slug},
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
