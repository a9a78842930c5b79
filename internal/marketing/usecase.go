package marketing

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/marketing/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

type UseCase interface {
	// Subscribe is idempotent and re-activates an unsubscribed address.
	Subscribe(ctx context.Context, input *dto.SubscribeInput) (*model.NewsletterSubscriber, error)
	Unsubscribe(ctx context.Context, email string) error
	ListSubscribers(ctx context.Context, filters *dto.SubscriberFilters) ([]model.NewsletterSubscriber, int, error)
}
