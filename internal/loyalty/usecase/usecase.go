package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/featureflag"
	"github.com/fekuna/omnipos-commerce/internal/loyalty"
	"github.com/fekuna/omnipos-commerce/internal/loyalty/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/order"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/fekuna/omnipos-commerce/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	errTierNotFound    = apperror.NotFound("TierNotFound", "loyalty tier not found")
	errAccountNotFound = apperror.NotFound("LoyaltyAccountNotFound", "loyalty account not found")
	hundred            = decimal.NewFromInt(100)
)

// Rates converts money to points and back.
type Rates struct {
	PointValue        decimal.Decimal
	PointsPerCurrency decimal.Decimal
}

type loyaltyUseCase struct {
	repo     loyalty.Repository
	rates    Rates
	flags    featureflag.Checker
	activity activitylog.Recorder
	logger   logger.ZapLogger
	now      func() time.Time
}

// NewLoyaltyUseCase builds the loyalty service. flags may be nil, which
// leaves the program always on.
func NewLoyaltyUseCase(repo loyalty.Repository, rates Rates, flags featureflag.Checker, activity activitylog.Recorder, log logger.ZapLogger) loyalty.UseCase {
	return &loyaltyUseCase{
		repo:     repo,
		rates:    rates,
		flags:    flags,
		activity: activity,
		logger:   log,
		now:      time.Now,
	}
}

func (uc *loyaltyUseCase) ListTiers(ctx context.Context) ([]model.LoyaltyTier, error) {
	return uc.repo.ListTiers(ctx)
}

func checkTier(input *dto.TierInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperror.Invalid("TierNameRequired", "tier name is required")
	}
	if input.MinPoints < 0 {
		return apperror.Invalid("TierMinPointsInvalid", "minimum points must not be negative")
	}
	if input.DiscountPercent.IsNegative() || input.DiscountPercent.GreaterThan(hundred) {
		return apperror.Invalid("TierDiscountRange", "discount must be between 0 and 100 percent")
	}
	if input.PointsMultiplier.LessThan(decimal.NewFromInt(1)) {
		return apperror.Invalid("TierMultiplierInvalid", "points multiplier must be at least 1")
	}
	return nil
}

func tierConflict(err error) error {
	if postgres.IsUniqueViolation(err) {
		return apperror.Conflict("TierConflict", "a tier with this name or threshold already exists").Wrap(err)
	}
	return err
}

func (uc *loyaltyUseCase) CreateTier(ctx context.Context, input *dto.TierInput) (*model.LoyaltyTier, error) {
	if err := checkTier(input); err != nil {
		return nil, err
	}
	tier := &model.LoyaltyTier{
		BaseModel:        model.NewBase(uuid.New().String(), uc.now()),
		Name:             strings.TrimSpace(input.Name),
		MinPoints:        input.MinPoints,
		DiscountPercent:  input.DiscountPercent,
		PointsMultiplier: input.PointsMultiplier,
		Benefits:         input.Benefits,
	}
	if err := uc.repo.CreateTier(ctx, tier); err != nil {
		return nil, tierConflict(err)
	}
	uc.refresh(ctx)
	uc.record(ctx, input.ActorID, "loyalty_tier.created", "loyalty_tier", tier.ID, map[string]interface{}{"name": tier.Name})
	return tier, nil
}

func (uc *loyaltyUseCase) UpdateTier(ctx context.Context, input *dto.TierInput) (*model.LoyaltyTier, error) {
	if err := checkTier(input); err != nil {
		return nil, err
	}
	tier, err := uc.repo.FindTierByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, errTierNotFound
	}

	tier.Name = strings.TrimSpace(input.Name)
	tier.MinPoints = input.MinPoints
	tier.DiscountPercent = input.DiscountPercent
	tier.PointsMultiplier = input.PointsMultiplier
	tier.Benefits = input.Benefits
	tier.UpdatedAt = uc.now()
	if err := uc.repo.UpdateTier(ctx, tier); err != nil {
		return nil, tierConflict(err)
	}
	uc.refresh(ctx)
	uc.record(ctx, input.ActorID, "loyalty_tier.updated", "loyalty_tier", tier.ID, map[string]interface{}{"name": tier.Name})
	return tier, nil
}

func (uc *loyaltyUseCase) DeleteTier(ctx context.Context, actorID, id string) error {
	tier, err := uc.repo.FindTierByID(ctx, id)
	if err != nil {
		return err
	}
	if tier == nil {
		return errTierNotFound
	}
	if err := uc.repo.DeleteTier(ctx, id); err != nil {
		return err
	}
	uc.refresh(ctx)
	uc.record(ctx, actorID, "loyalty_tier.deleted", "loyalty_tier", id, map[string]interface{}{"name": tier.Name})
	return nil
}

// refresh reassigns tiers after thresholds changed. A failure only delays
// the move until the account's next transaction.
func (uc *loyaltyUseCase) refresh(ctx context.Context) {
	if err := uc.repo.RefreshTiers(ctx); err != nil {
		uc.logger.Error("failed to refresh loyalty tiers", zap.Error(err))
	}
}

func (uc *loyaltyUseCase) EnsureAccount(ctx context.Context, userID string) (*model.LoyaltyAccount, error) {
	account, err := uc.repo.FindAccountByUser(ctx, userID)
	if err != nil || account != nil {
		return account, err
	}

	if err := uc.repo.CreateAccount(ctx, &model.LoyaltyAccount{
		BaseModel: model.NewBase(uuid.New().String(), uc.now()),
		UserID:    userID,
	}); err != nil {
		return nil, err
	}
	uc.logger.Info("loyalty account opened", zap.String("user_id", userID))
	return uc.repo.FindAccountByUser(ctx, userID)
}

func (uc *loyaltyUseCase) GetMyAccount(ctx context.Context, userID string) (*model.LoyaltyAccount, error) {
	account, err := uc.EnsureAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errAccountNotFound
	}
	return account, nil
}

func (uc *loyaltyUseCase) ListMyTransactions(ctx context.Context, userID string, page, pageSize int) ([]model.LoyaltyTransaction, int, error) {
	account, err := uc.GetMyAccount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return uc.repo.ListTransactions(ctx, account.ID, page, pageSize)
}

func (uc *loyaltyUseCase) Quote(ctx context.Context, userID string, points int) (*model.PointsQuote, error) {
	if points < 0 {
		return nil, apperror.Invalid("PointsInvalid", "points to redeem must not be negative")
	}
	account, err := uc.GetMyAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if points > account.PointsBalance {
		return nil, apperror.Invalid("PointsInsufficient", "you only have {{.Balance}} points").
			WithData("Balance", account.PointsBalance)
	}
	return &model.PointsQuote{
		Points: points,
		Value:  uc.rates.PointValue.Mul(decimal.NewFromInt(int64(points))).Round(2),
	}, nil
}

func (uc *loyaltyUseCase) ListAccounts(ctx context.Context, filters *dto.AccountFilters) ([]model.LoyaltyAccount, int, error) {
	return uc.repo.ListAccounts(ctx, filters)
}

func (uc *loyaltyUseCase) AdjustPoints(ctx context.Context, input *dto.AdjustInput) (*model.LoyaltyAccount, error) {
	if input.Points == 0 {
		return nil, apperror.Invalid("AdjustmentZero", "adjustment must not be zero")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperror.Invalid("AdjustmentReasonRequired", "a reason is required")
	}

	account, err := uc.repo.FindAccountByUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errAccountNotFound
	}
	if account.PointsBalance+input.Points < 0 {
		return nil, apperror.Invalid("PointsInsufficient", "you only have {{.Balance}} points").
			WithData("Balance", account.PointsBalance)
	}

	lifetime := 0
	if input.Points > 0 {
		lifetime = input.Points
	}
	actor := input.ActorID
	if _, err := uc.repo.Post(ctx, input.UserID, &model.LoyaltyTransaction{
		ID:          uuid.New().String(),
		Type:        model.LoyaltyAdjust,
		Points:      input.Points,
		Description: strings.TrimSpace(input.Reason),
		CreatedBy:   &actor,
		CreatedAt:   uc.now(),
	}, lifetime); err != nil {
		return nil, err
	}

	uc.record(ctx, input.ActorID, "loyalty.points_adjusted", "loyalty_account", account.ID, map[string]interface{}{
		"user_id": input.UserID,
		"points":  input.Points,
		"reason":  input.Reason,
	})
	return uc.repo.FindAccountByUser(ctx, input.UserID)
}

func (uc *loyaltyUseCase) HandleOrderEvent(ctx context.Context, event *order.Event) error {
	if event.UserID == nil || *event.UserID == "" {
		return nil
	}
	switch event.Status {
	case model.OrderPaid:
		return uc.earn(ctx, event)
	case model.OrderCancelled, model.OrderRefunded:
		return uc.reverse(ctx, event)
	}
	return nil
}

// earn awards floor(total x rate x tier multiplier) once per order.
func (uc *loyaltyUseCase) earn(ctx context.Context, event *order.Event) error {
	if uc.flags != nil && !uc.flags.IsEnabled(ctx, featureflag.LoyaltyProgram) {
		return nil
	}
	total, err := decimal.NewFromString(event.GrandTotal)
	if err != nil {
		return apperror.Invalid("InvalidRequest", "invalid request").Wrap(err)
	}
	account, err := uc.EnsureAccount(ctx, *event.UserID)
	if err != nil {
		return err
	}
	if account == nil {
		return loyalty.ErrAccountNotFound
	}

	multiplier := decimal.NewFromInt(1)
	if account.Tier != nil {
		multiplier = account.Tier.PointsMultiplier
	}
	points := int(total.Mul(uc.rates.PointsPerCurrency).Mul(multiplier).Floor().IntPart())
	if points <= 0 {
		return nil
	}

	applied, err := uc.post(ctx, event, model.LoyaltyEarn, points, points, "Earned on order "+event.OrderNumber)
	if err != nil || !applied {
		return err
	}
	metrics.RecordPointsAwarded(points)
	uc.logger.Info("loyalty points earned",
		zap.String("user_id", *event.UserID),
		zap.String("order_id", event.OrderID),
		zap.Int("points", points),
	)
	return nil
}

// reverse takes back earned points and returns redeemed ones.
func (uc *loyaltyUseCase) reverse(ctx context.Context, event *order.Event) error {
	posted, err := uc.repo.OrderPoints(ctx, event.OrderID)
	if err != nil {
		return err
	}
	if earned := posted[model.LoyaltyEarn]; earned > 0 {
		if _, err := uc.post(ctx, event, model.LoyaltyReverse, -earned, -earned, "Reversed for order "+event.OrderNumber); err != nil {
			return err
		}
	}
	if redeemed := -posted[model.LoyaltyRedeem]; redeemed > 0 {
		if _, err := uc.post(ctx, event, model.LoyaltyRefund, redeemed, 0, "Refunded from order "+event.OrderNumber); err != nil {
			return err
		}
	}
	return nil
}

func (uc *loyaltyUseCase) post(ctx context.Context, event *order.Event, txType string, points, lifetime int, description string) (bool, error) {
	orderID := event.OrderID
	return uc.repo.Post(ctx, *event.UserID, &model.LoyaltyTransaction{
		ID:          uuid.New().String(),
		Type:        txType,
		Points:      points,
		OrderID:     &orderID,
		Description: description,
		CreatedAt:   uc.now(),
	}, lifetime)
}

func (uc *loyaltyUseCase) record(ctx context.Context, actorID, action, entityType, entityID string, meta map[string]interface{}) {
	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   meta,
	})
}
