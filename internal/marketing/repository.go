package marketing

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/marketing/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

type Repository interface {
	// Subscribe inserts or re-subscribes by email and refreshes s from the row.
	Subscribe(ctx context.Context, s *model.NewsletterSubscriber) error
	Unsubscribe(ctx context.Context, email string, at time.Time) (bool, error)
	FindAll(ctx context.Context, filters *dto.SubscriberFilters) ([]model.NewsletterSubscriber, int, error)
}
