package review

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/review/dto"
)

type UseCase interface {
	CreateReview(ctx context.Context, input *dto.CreateReviewInput) (*model.Review, error)
	// ListProductReviews is the storefront view: approved reviews only.
	ListProductReviews(ctx context.Context, productSlug string, page, pageSize int) ([]model.Review, int, error)
	ListReviews(ctx context.Context, filters *dto.ReviewFilters) ([]model.Review, int, error)
	ModerateReview(ctx context.Context, input *dto.ModerateInput) (*model.Review, error)
	DeleteReview(ctx context.Context, actorID, id string) error
}
