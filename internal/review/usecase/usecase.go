package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/product"
	"github.com/fekuna/omnipos-commerce/internal/review"
	"github.com/fekuna/omnipos-commerce/internal/review/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/cache"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	errReviewNotFound  = apperror.NotFound("ReviewNotFound", "review not found")
	errProductNotFound = apperror.NotFound("ProductNotFound", "product not found")
)

type reviewUseCase struct {
	repo     review.Repository
	cache    *cache.RedisClient
	activity activitylog.Recorder
	logger   logger.ZapLogger
	now      func() time.Time
}

// NewReviewUseCase builds the review service. cache may be nil; when set,
// storefront listings are dropped whenever a product's rating moves.
func NewReviewUseCase(repo review.Repository, cache *cache.RedisClient, activity activitylog.Recorder, log logger.ZapLogger) review.UseCase {
	return &reviewUseCase{
		repo:     repo,
		cache:    cache,
		activity: activity,
		logger:   log,
		now:      time.Now,
	}
}

func (uc *reviewUseCase) CreateReview(ctx context.Context, input *dto.CreateReviewInput) (*model.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperror.Invalid("RatingInvalid", "rating must be between 1 and 5")
	}
	productID, err := uc.repo.FindProductID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, errProductNotFound
	}
	verified, err := uc.repo.HasDeliveredPurchase(ctx, input.UserID, productID)
	if err != nil {
		return nil, err
	}

	rv := &model.Review{
		BaseModel:  model.NewBase(uuid.New().String(), uc.now()),
		ProductID:  productID,
		UserID:     input.UserID,
		Rating:     input.Rating,
		Title:      strings.TrimSpace(input.Title),
		Body:       strings.TrimSpace(input.Body),
		Status:     model.ReviewPending,
		IsVerified: verified,
	}
	if err := uc.repo.Create(ctx, rv); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperror.Conflict("ReviewExists", "you have already reviewed this product").Wrap(err)
		}
		return nil, err
	}

	uc.logger.Info("review submitted",
		zap.String("review_id", rv.ID),
		zap.String("product_id", productID),
		zap.Bool("verified", verified),
	)
	return rv, nil
}

func (uc *reviewUseCase) ListProductReviews(ctx context.Context, productSlug string, page, pageSize int) ([]model.Review, int, error) {
	productID, err := uc.repo.FindProductID(ctx, productSlug)
	if err != nil {
		return nil, 0, err
	}
	if productID == "" {
		return nil, 0, errProductNotFound
	}
	return uc.repo.FindAll(ctx, &dto.ReviewFilters{
		ProductID: productID,
		Status:    model.ReviewApproved,
		Page:      page,
		PageSize:  pageSize,
	})
}

func (uc *reviewUseCase) ListReviews(ctx context.Context, filters *dto.ReviewFilters) ([]model.Review, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *reviewUseCase) ModerateReview(ctx context.Context, input *dto.ModerateInput) (*model.Review, error) {
	if input.Status != model.ReviewApproved && input.Status != model.ReviewRejected {
		return nil, apperror.Invalid("ReviewStatusInvalid", "reviews can only be approved or rejected")
	}
	rv, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, errReviewNotFound
	}

	rv.Status = input.Status
	rv.UpdatedAt = uc.now()
	if err := uc.repo.SetStatus(ctx, rv); err != nil {
		return nil, err
	}
	uc.ratingChanged(ctx, input.ActorID, "review.moderated", rv)
	return rv, nil
}

func (uc *reviewUseCase) DeleteReview(ctx context.Context, actorID, id string) error {
	rv, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rv == nil {
		return errReviewNotFound
	}
	if err := uc.repo.Delete(ctx, rv); err != nil {
		return err
	}
	uc.ratingChanged(ctx, actorID, "review.deleted", rv)
	return nil
}

func (uc *reviewUseCase) ratingChanged(ctx context.Context, actorID, action string, rv *model.Review) {
	if err := uc.cache.DeleteByPattern(ctx, product.ListCachePattern); err != nil {
		uc.logger.Warn("product list cache invalidation failed", zap.Error(err))
	}
	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    actorID,
		Action:     action,
		EntityType: "review",
		EntityID:   rv.ID,
		Metadata:   map[string]interface{}{"product_id": rv.ProductID, "status": rv.Status},
	})
}
