package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/product/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	indexName    = "products"
	reindexBatch = 200
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"name":        { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"slug":        { "type": "keyword" },
			"description": { "type": "text" },
			"category_id": { "type": "keyword" },
			"base_price":  { "type": "double" },
			"avg_rating":  { "type": "double" },
			"is_active":   { "type": "boolean" },
			"is_featured": { "type": "boolean" },
			"created_at":  { "type": "date" }
		}
	}
}`

type searchDocument struct {
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price"`
	AvgRating   decimal.Decimal `json:"avg_rating"`
	IsActive    bool            `json:"is_active"`
	IsFeatured  bool            `json:"is_featured"`
	CreatedAt   time.Time       `json:"created_at"`

	id string
}

func newSearchDocument(p *model.Product) searchDocument {
	doc := searchDocument{
		id:         p.ID,
		Name:       p.Name,
		Slug:       p.Slug,
		BasePrice:  p.BasePrice,
		AvgRating:  p.AvgRating,
		IsActive:   p.IsActive,
		IsFeatured: p.IsFeatured,
		CreatedAt:  p.CreatedAt,
	}
	if p.Description != nil {
		doc.Description = *p.Description
	}
	if p.CategoryID != nil {
		doc.CategoryID = *p.CategoryID
	}
	return doc
}

func (uc *productUseCase) ensureIndex(ctx context.Context) {
	uc.indexOnce.Do(func() {
		if err := uc.es.CreateIndex(ctx, indexName, indexMapping); err != nil {
			uc.logger.Error("failed to create product index", zap.Error(err))
		}
	})
}

// syncToElastic indexes active products and removes inactive ones.
func (uc *productUseCase) syncToElastic(ctx context.Context, doc searchDocument) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	uc.ensureIndex(ctx)

	if !doc.IsActive {
		if err := uc.es.Delete(ctx, indexName, doc.id); err != nil {
			uc.logger.Error("failed to delete product from index", zap.String("product_id", doc.id), zap.Error(err))
		}
		return
	}
	if err := uc.es.Index(ctx, indexName, doc.id, doc); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", doc.id), zap.Error(err))
	}
}

func (uc *productUseCase) ReindexAll(ctx context.Context) (int, error) {
	if uc.es == nil {
		return 0, nil
	}
	uc.ensureIndex(ctx)

	indexed := 0
	after := ""
	for {
		batch, err := uc.repo.FindAllActive(ctx, after, reindexBatch)
		if err != nil {
			return indexed, err
		}
		for i := range batch {
			doc := newSearchDocument(&batch[i])
			if err := uc.es.Index(ctx, indexName, doc.id, doc); err != nil {
				return indexed, err
			}
			indexed++
		}
		if len(batch) < reindexBatch {
			return indexed, nil
		}
		after = batch[len(batch)-1].ID
	}
}

// search runs free-text queries on Elasticsearch when available and hydrates
// hits from the database. Any failure falls back to SQL.
func (uc *productUseCase) search(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	// category slugs are not indexed; those queries stay on SQL
	if filters.SearchQuery == "" || uc.es == nil || filters.CategorySlug != "" {
		return uc.repo.FindAll(ctx, filters)
	}

	res, err := uc.es.Search(ctx, indexName, buildSearchQuery(filters))
	if err != nil {
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
		return uc.repo.FindAll(ctx, filters)
	}

	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	products, err := uc.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	return products, res.Hits.Total.Value, nil
}

var searchSortFields = map[string]string{
	"name":       "name.raw",
	"price":      "base_price",
	"created_at": "created_at",
	"rating":     "avg_rating",
}

func buildSearchQuery(f *dto.ProductFilters) map[string]interface{} {
	filter := []map[string]interface{}{}
	if f.IsActive != nil {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"is_active": *f.IsActive}})
	}
	if f.IsFeatured != nil {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"is_featured": *f.IsFeatured}})
	}
	if f.CategoryID != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"category_id": f.CategoryID}})
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		rng := map[string]interface{}{}
		if f.MinPrice != nil {
			rng["gte"] = f.MinPrice.InexactFloat64()
		}
		if f.MaxPrice != nil {
			rng["lte"] = f.MaxPrice.InexactFloat64()
		}
		filter = append(filter, map[string]interface{}{"range": map[string]interface{}{"base_price": rng}})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"multi_match": map[string]interface{}{
							"query":     f.SearchQuery,
							"fields":    []string{"name^3", "description"},
							"fuzziness": "AUTO",
						},
					},
				},
				"filter": filter,
			},
		},
		"_source": false,
	}

	if field, ok := searchSortFields[f.SortBy]; ok {
		order := "desc"
		if f.SortOrder == "asc" {
			order = "asc"
		}
		q["sort"] = []map[string]interface{}{{field: map[string]interface{}{"order": order}}}
	}

	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q["from"] = (page - 1) * f.PageSize
		q["size"] = f.PageSize
	}
	return q
}
