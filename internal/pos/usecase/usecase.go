package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/model"
	orderdto "github.com/fekuna/omnipos-commerce/internal/order/dto"
	"github.com/fekuna/omnipos-commerce/internal/pos"
	"github.com/fekuna/omnipos-commerce/internal/pos/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	errNoOpenSession   = apperror.Invalid("SessionNotOpen", "open a register session first")
	errSessionNotFound = apperror.NotFound("SessionNotFound", "register session not found")
)

type posUseCase struct {
	repo      pos.Repository
	orders    pos.OrderPlacer
	customers pos.CustomerFinder
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewPOSUseCase(repo pos.Repository, orders pos.OrderPlacer, customers pos.CustomerFinder, log logger.ZapLogger) pos.UseCase {
	return &posUseCase{
		repo:      repo,
		orders:    orders,
		customers: customers,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *posUseCase) OpenSession(ctx context.Context, input *dto.OpenInput) (*model.POSSession, error) {
	if input.OpeningCash.IsNegative() {
		return nil, apperror.Invalid("OpeningCashInvalid", "opening cash must not be negative")
	}
	existing, err := uc.repo.FindOpenByStaff(ctx, input.StaffID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, sessionAlreadyOpen(existing.ID)
	}

	session := &model.POSSession{
		ID:           uuid.New().String(),
		StaffID:      input.StaffID,
		RegisterName: strings.TrimSpace(input.RegisterName),
		Status:       model.SessionOpen,
		OpeningCash:  input.OpeningCash.Round(2),
		CashSales:    decimal.Zero,
		CardSales:    decimal.Zero,
		OpenedAt:     uc.now(),
	}
	if err := uc.repo.Open(ctx, session); err != nil {
		// Two opens racing past the lookup meet the partial unique index.
		if postgres.IsUniqueViolation(err) {
			return nil, sessionAlreadyOpen("").Wrap(err)
		}
		return nil, err
	}

	uc.logger.Info("register session opened",
		zap.String("session_id", session.ID),
		zap.String("staff_id", session.StaffID),
		zap.String("register", session.RegisterName),
	)
	return session, nil
}

func sessionAlreadyOpen(id string) *apperror.Error {
	err := apperror.Conflict("SessionAlreadyOpen", "you already have an open register session")
	if id != "" {
		err.WithData("SessionID", id)
	}
	return err
}

func (uc *posUseCase) CloseSession(ctx context.Context, input *dto.CloseInput) (*dto.SessionReport, error) {
	if input.ClosingCash.IsNegative() {
		return nil, apperror.Invalid("ClosingCashInvalid", "closing cash must not be negative")
	}
	session, err := uc.repo.FindOpenByStaff(ctx, input.StaffID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errNoOpenSession
	}

	closing := input.ClosingCash.Round(2)
	session.ClosingCash = &closing
	session.Notes = strings.TrimSpace(input.Notes)
	closed, err := uc.repo.Close(ctx, session)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, errNoOpenSession
	}

	report := &dto.SessionReport{POSSession: session, Variance: session.Variance()}
	uc.logger.Info("register session closed",
		zap.String("session_id", session.ID),
		zap.String("staff_id", session.StaffID),
		zap.Int("orders", session.OrderCount),
		zap.String("variance", report.Variance.StringFixed(2)),
	)
	return report, nil
}

func (uc *posUseCase) GetCurrentSession(ctx context.Context, staffID string) (*model.POSSession, error) {
	session, err := uc.repo.FindOpenByStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errSessionNotFound
	}
	return session, nil
}

func (uc *posUseCase) GetSession(ctx context.Context, id string) (*model.POSSession, error) {
	session, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errSessionNotFound
	}
	return session, nil
}

func (uc *posUseCase) ListSessions(ctx context.Context, filters *dto.SessionFilters) ([]model.POSSession, int, error) {
	if filters.From != nil && filters.To != nil && !filters.From.Before(*filters.To) {
		return nil, 0, apperror.Invalid("DateRangeInvalid", "from must be before to")
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *posUseCase) CreateSale(ctx context.Context, input *dto.SaleInput) (*model.Order, error) {
	switch input.PaymentMethod {
	case model.PaymentCash:
		if input.AmountTendered == nil {
			return nil, apperror.Invalid("TenderedRequired", "amount tendered is required for cash sales")
		}
	case model.PaymentCard:
	default:
		return nil, apperror.Invalid("PaymentMethodInvalid", "payment method must be CASH or CARD")
	}

	session, err := uc.repo.FindOpenByStaff(ctx, input.StaffID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errNoOpenSession
	}

	var email string
	if input.CustomerID != "" {
		customer, err := uc.customers.GetMe(ctx, input.CustomerID)
		if err != nil {
			return nil, err
		}
		email = customer.Email
	}

	lines := make([]orderdto.LineInput, 0, len(input.Items))
	for _, it := range input.Items {
		lines = append(lines, orderdto.LineInput{VariantID: it.VariantID, Quantity: it.Quantity})
	}

	o, err := uc.orders.PlaceOrder(ctx, &orderdto.PlaceOrderInput{
		ActorID:        input.StaffID,
		UserID:         input.CustomerID,
		CustomerEmail:  email,
		Channel:        model.ChannelPOS,
		Status:         model.OrderPaid,
		Items:          lines,
		DiscountCode:   input.DiscountCode,
		PaymentMethod:  input.PaymentMethod,
		AmountTendered: input.AmountTendered,
		POSSessionID:   session.ID,
		Notes:          input.Notes,
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("register sale recorded",
		zap.String("session_id", session.ID),
		zap.String("order_id", o.ID),
		zap.String("payment_method", o.PaymentMethod),
	)
	return o, nil
}
