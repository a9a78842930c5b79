package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/discount"
	"github.com/fekuna/omnipos-commerce/internal/discount/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errCodeNotFound = apperror.NotFound("DiscountNotFound", "discount code not found")

type discountUseCase struct {
	repo     discount.Repository
	activity activitylog.Recorder
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewDiscountUseCase(repo discount.Repository, activity activitylog.Recorder, log logger.ZapLogger) discount.UseCase {
	return &discountUseCase{
		repo:     repo,
		activity: activity,
		logger:   log,
		now:      time.Now,
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (uc *discountUseCase) CreateCode(ctx context.Context, input *dto.CodeInput) (*model.DiscountCode, error) {
	d := &model.DiscountCode{BaseModel: model.NewBase(uuid.New().String(), uc.now())}
	apply(d, input)
	if err := discount.CheckDefinition(d); err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindByCode(ctx, d.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, codeTaken(d.Code)
	}

	if err := uc.repo.Create(ctx, d); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, codeTaken(d.Code).Wrap(err)
		}
		return nil, err
	}
	uc.record(ctx, input.ActorID, "discount.created", d)
	return d, nil
}

func apply(d *model.DiscountCode, input *dto.CodeInput) {
	d.Code = normalizeCode(input.Code)
	d.Description = strings.TrimSpace(input.Description)
	d.Type = strings.ToUpper(input.Type)
	d.Value = input.Value.Round(2)
	d.MinOrderAmount = input.MinOrderAmount.Round(2)
	d.MaxUses = input.MaxUses
	d.StartsAt = input.StartsAt
	d.EndsAt = input.EndsAt
	d.IsActive = input.IsActive
	if d.Type == model.DiscountFreeShipping {
		d.Value = decimal.Zero
	}
}

func codeTaken(code string) *apperror.Error {
	return apperror.Conflict("DiscountCodeTaken", "discount code {{.Code}} already exists").WithData("Code", code)
}

func (uc *discountUseCase) GetCode(ctx context.Context, id string) (*model.DiscountCode, error) {
	d, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errCodeNotFound
	}
	return d, nil
}

func (uc *discountUseCase) ListCodes(ctx context.Context, filters *dto.CodeFilters) ([]model.DiscountCode, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *discountUseCase) UpdateCode(ctx context.Context, input *dto.CodeInput) (*model.DiscountCode, error) {
	d, err := uc.GetCode(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	previous := d.Code
	apply(d, input)
	if err := discount.CheckDefinition(d); err != nil {
		return nil, err
	}

	if d.Code != previous {
		existing, err := uc.repo.FindByCode(ctx, d.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, codeTaken(d.Code)
		}
	}

	d.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	uc.record(ctx, input.ActorID, "discount.updated", d)
	return d, nil
}

func (uc *discountUseCase) DeleteCode(ctx context.Context, actorID, id string) error {
	d, err := uc.GetCode(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.record(ctx, actorID, "discount.deleted", d)
	return nil
}

func (uc *discountUseCase) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*dto.Quote, error) {
	d, err := uc.repo.FindByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperror.Invalid("DiscountUnknown", "discount code does not exist")
	}

	amount, err := discount.Evaluate(d, subtotal, uc.now())
	if err != nil {
		return nil, err
	}
	return &dto.Quote{
		Discount:     d,
		Code:         d.Code,
		Type:         d.Type,
		Amount:       amount,
		FreeShipping: d.Type == model.DiscountFreeShipping,
	}, nil
}

func (uc *discountUseCase) record(ctx context.Context, actorID, action string, d *model.DiscountCode) {
	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    actorID,
		Action:     action,
		EntityType: "discount",
		EntityID:   d.ID,
		Metadata:   map[string]interface{}{"code": d.Code},
	})
}
