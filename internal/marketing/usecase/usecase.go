package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/marketing"
	"github.com/fekuna/omnipos-commerce/internal/marketing/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type marketingUseCase struct {
	repo     marketing.Repository
	validate *validator.Validate
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewMarketingUseCase(repo marketing.Repository, log logger.ZapLogger) marketing.UseCase {
	return &marketingUseCase{
		repo:     repo,
		validate: validator.New(),
		logger:   log,
		now:      time.Now,
	}
}

func (uc *marketingUseCase) normalize(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := uc.validate.Var(email, "required,email,max=254"); err != nil {
		return "", apperror.Invalid("EmailInvalid", "a valid email address is required").Wrap(err)
	}
	return email, nil
}

func (uc *marketingUseCase) Subscribe(ctx context.Context, input *dto.SubscribeInput) (*model.NewsletterSubscriber, error) {
	email, err := uc.normalize(input.Email)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	sub := &model.NewsletterSubscriber{
		BaseModel:    model.NewBase(uuid.New().String(), now),
		Email:        email,
		Status:       model.SubscriberSubscribed,
		Source:       strings.TrimSpace(input.Source),
		SubscribedAt: now,
	}
	if err := uc.repo.Subscribe(ctx, sub); err != nil {
		return nil, err
	}
	uc.logger.Info("newsletter subscription", zap.String("subscriber_id", sub.ID), zap.String("source", sub.Source))
	return sub, nil
}

// Unsubscribe succeeds for unknown addresses so membership is not disclosed.
func (uc *marketingUseCase) Unsubscribe(ctx context.Context, email string) error {
	email, err := uc.normalize(email)
	if err != nil {
		return err
	}
	changed, err := uc.repo.Unsubscribe(ctx, email, uc.now())
	if err != nil {
		return err
	}
	if changed {
		uc.logger.Info("newsletter unsubscribe")
	}
	return nil
}

func (uc *marketingUseCase) ListSubscribers(ctx context.Context, filters *dto.SubscriberFilters) ([]model.NewsletterSubscriber, int, error) {
	switch filters.Status {
	case "", model.SubscriberSubscribed, model.SubscriberUnsubscribed:
	default:
		return nil, 0, apperror.Invalid("SubscriberStatusInvalid", "status must be SUBSCRIBED or UNSUBSCRIBED")
	}
	return uc.repo.FindAll(ctx, filters)
}
