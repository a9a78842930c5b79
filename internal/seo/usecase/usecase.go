package usecase

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/seo"
	"github.com/fekuna/omnipos-commerce/internal/seo/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/cache"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxTitleLen       = 70
	maxDescriptionLen = 160

	sitemapCacheKey = "seo:sitemap"
	sitemapCacheTTL = 15 * time.Minute
)

var errMetadataNotFound = apperror.NotFound("SEONotFound", "seo metadata not found")

type seoUseCase struct {
	repo     seo.Repository
	cache    *cache.RedisClient
	baseURL  string
	activity activitylog.Recorder
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewSEOUseCase(repo seo.Repository, cache *cache.RedisClient, publicBaseURL string, activity activitylog.Recorder, log logger.ZapLogger) seo.UseCase {
	return &seoUseCase{
		repo:     repo,
		cache:    cache,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
		activity: activity,
		logger:   log,
		now:      time.Now,
	}
}

// checkKey rejects unknown entity types and malformed ids before any query.
func checkKey(entityType, entityID string) error {
	switch entityType {
	case model.SEOProduct, model.SEOCategory, model.SEOPage:
	default:
		return apperror.Invalid("SEOEntityTypeInvalid", "entity type must be product, category or page")
	}
	if _, err := uuid.Parse(entityID); err != nil {
		return errMetadataNotFound
	}
	return nil
}

func checkURL(raw, messageID string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperror.Invalid(messageID, "{{.Field}} must be an absolute http(s) URL").WithData("Field", messageID)
	}
	return nil
}

func (uc *seoUseCase) Upsert(ctx context.Context, input *dto.MetadataInput) (*model.SEOMetadata, error) {
	if err := checkKey(input.EntityType, input.EntityID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.MetaTitle)
	desc := strings.TrimSpace(input.MetaDescription)
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, apperror.Invalid("SEOTitleTooLong", "meta title must be at most {{.Max}} characters").WithData("Max", maxTitleLen)
	}
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return nil, apperror.Invalid("SEODescriptionTooLong", "meta description must be at most {{.Max}} characters").WithData("Max", maxDescriptionLen)
	}
	if err := checkURL(input.CanonicalURL, "SEOCanonicalURLInvalid"); err != nil {
		return nil, err
	}
	if err := checkURL(input.OGImage, "SEOImageURLInvalid"); err != nil {
		return nil, err
	}

	exists, err := uc.repo.EntityExists(ctx, input.EntityType, input.EntityID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NotFound("SEOEntityNotFound", "the {{.Type}} does not exist").WithData("Type", input.EntityType)
	}

	now := uc.now()
	meta := &model.SEOMetadata{
		BaseModel:       model.NewBase(uuid.New().String(), now),
		EntityType:      input.EntityType,
		EntityID:        input.EntityID,
		MetaTitle:       title,
		MetaDescription: desc,
		CanonicalURL:    input.CanonicalURL,
		OGImage:         input.OGImage,
		NoIndex:         input.NoIndex,
	}
	if err := uc.repo.Upsert(ctx, meta); err != nil {
		return nil, err
	}

	uc.invalidateSitemap(ctx)
	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    input.ActorID,
		Action:     "seo.upserted",
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Metadata:   map[string]interface{}{"no_index": input.NoIndex},
	})
	return meta, nil
}

func (uc *seoUseCase) Get(ctx context.Context, entityType, entityID string) (*model.SEOMetadata, error) {
	if err := checkKey(entityType, entityID); err != nil {
		return nil, err
	}
	meta, err := uc.repo.Find(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, errMetadataNotFound
	}
	return meta, nil
}

func (uc *seoUseCase) Delete(ctx context.Context, actorID, entityType, entityID string) error {
	if err := checkKey(entityType, entityID); err != nil {
		return err
	}
	deleted, err := uc.repo.Delete(ctx, entityType, entityID)
	if err != nil {
		return err
	}
	if !deleted {
		return errMetadataNotFound
	}
	uc.invalidateSitemap(ctx)
	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    actorID,
		Action:     "seo.deleted",
		EntityType: entityType,
		EntityID:   entityID,
	})
	return nil
}

func (uc *seoUseCase) Sitemap(ctx context.Context) ([]byte, error) {
	var cached string
	if ok, err := uc.cache.GetJSON(ctx, sitemapCacheKey, &cached); err == nil && ok {
		return []byte(cached), nil
	}

	entries, err := uc.repo.SitemapEntries(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := seo.RenderSitemap(uc.baseURL, entries)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetJSON(ctx, sitemapCacheKey, string(doc), sitemapCacheTTL); err != nil {
		uc.logger.Warn("failed to cache sitemap", zap.Error(err))
	}
	return doc, nil
}

func (uc *seoUseCase) invalidateSitemap(ctx context.Context) {
	if err := uc.cache.Delete(ctx, sitemapCacheKey); err != nil {
		uc.logger.Warn("failed to invalidate sitemap cache", zap.Error(err))
	}
}
