package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/model"
	orderdto "github.com/fekuna/omnipos-commerce/internal/order/dto"
	"github.com/fekuna/omnipos-commerce/internal/pos/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Open(ctx context.Context, s *model.POSSession) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockRepo) FindOpenByStaff(ctx context.Context, staffID string) (*model.POSSession, error) {
	args := m.Called(ctx, staffID)
	s, _ := args.Get(0).(*model.POSSession)
	return s, args.Error(1)
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (*model.POSSession, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.POSSession)
	return s, args.Error(1)
}

func (m *mockRepo) FindAll(ctx context.Context, f *dto.SessionFilters) ([]model.POSSession, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.POSSession), args.Int(1), args.Error(2)
}

func (m *mockRepo) Close(ctx context.Context, s *model.POSSession) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) PlaceOrder(ctx context.Context, in *orderdto.PlaceOrderInput) (*model.Order, error) {
	args := m.Called(ctx, in)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

type stubCustomers map[string]*model.User

func (s stubCustomers) GetMe(_ context.Context, id string) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("UserNotFound", "user not found")
}

func newUseCase(repo *mockRepo, orders *mockOrders) *posUseCase {
	uc := NewPOSUseCase(repo, orders, stubCustomers{"c1": {Email: "ann@example.com"}}, logger.NewNop()).(*posUseCase)
	uc.now = func() time.Time { return time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC) }
	return uc
}

func openSession() *model.POSSession {
	return &model.POSSession{ID: "s1", StaffID: "staff1", Status: model.SessionOpen, OpeningCash: decimal.NewFromInt(100)}
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestOpenSession(t *testing.T) {
	repo := new(mockRepo)
	uc := newUseCase(repo, new(mockOrders))

	repo.On("FindOpenByStaff", mock.Anything, "staff1").Return(nil, nil)
	repo.On("Open", mock.Anything, mock.MatchedBy(func(s *model.POSSession) bool {
		return s.Status == model.SessionOpen && s.RegisterName == "Front" && s.OpeningCash.Equal(decimal.NewFromInt(150))
	})).Return(nil)

	s, err := uc.OpenSession(context.Background(), &dto.OpenInput{
		StaffID: "staff1", RegisterName: " Front ", OpeningCash: decimal.NewFromInt(150),
	})
	require.NoError(t, err)
	assert.Equal(t, "staff1", s.StaffID)
	repo.AssertExpectations(t)
}

func TestOpenSessionOnePerStaff(t *testing.T) {
	repo := new(mockRepo)
	uc := newUseCase(repo, new(mockOrders))
	repo.On("FindOpenByStaff", mock.Anything, "staff1").Return(openSession(), nil)

	_, err := uc.OpenSession(context.Background(), &dto.OpenInput{StaffID: "staff1", RegisterName: "Front"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	repo.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
}

func TestOpenSessionRaceHitsIndex(t *testing.T) {
	repo := new(mockRepo)
	uc := newUseCase(repo, new(mockOrders))
	repo.On("FindOpenByStaff", mock.Anything, "staff1").Return(nil, nil)
	repo.On("Open", mock.Anything, mock.Anything).Return(&pq.Error{Code: "23505"})

	_, err := uc.OpenSession(context.Background(), &dto.OpenInput{StaffID: "staff1", RegisterName: "Front"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestCloseSessionReportsVariance(t *testing.T) {
	repo := new(mockRepo)
	uc := newUseCase(repo, new(mockOrders))

	repo.On("FindOpenByStaff", mock.Anything, "staff1").Return(openSession(), nil)
	repo.On("Close", mock.Anything, mock.AnythingOfType("*model.POSSession")).
		Run(func(args mock.Arguments) {
			s := args.Get(1).(*model.POSSession)
			expected := decimal.NewFromInt(340)
			s.ExpectedCash = &expected
			s.Status = model.SessionClosed
		}).
		Return(true, nil)

	report, err := uc.CloseSession(context.Background(), &dto.CloseInput{StaffID: "staff1", ClosingCash: decimal.RequireFromString("335.5")})
	require.NoError(t, err)
	assert.Equal(t, "-4.50", report.Variance.StringFixed(2))
	assert.Equal(t, model.SessionClosed, report.Status)
}

func TestCloseSessionWithoutOpen(t *testing.T) {
	repo := new(mockRepo)
	uc := newUseCase(repo, new(mockOrders))
	repo.On("FindOpenByStaff", mock.Anything, "staff1").Return(nil, nil)

	_, err := uc.CloseSession(context.Background(), &dto.CloseInput{StaffID: "staff1"})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))
}

func TestCreateSaleBuildsPaidPOSOrder(t *testing.T) {
	repo := new(mockRepo)
	orders := new(mockOrders)
	uc := newUseCase(repo, orders)

	repo.On("FindOpenByStaff", mock.Anything, "staff1").Return(openSession(), nil)
	orders.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(in *orderdto.PlaceOrderInput) bool {
		return in.Channel == model.ChannelPOS &&
			in.Status == model.OrderPaid &&
			!in.Ship &&
			in.POSSessionID == "s1" &&
			in.UserID == "c1" &&
			in.CustomerEmail == "ann@example.com" &&
			in.ActorID == "staff1" &&
			len(in.Items) == 1 && in.Items[0].Quantity == 2
	})).Return(&model.Order{BaseModel: model.BaseModel{ID: "o1"}, PaymentMethod: model.PaymentCash}, nil)

	o, err := uc.CreateSale(context.Background(), &dto.SaleInput{
		StaffID:        "staff1",
		Items:          []dto.SaleLine{{VariantID: "v1", Quantity: 2}},
		PaymentMethod:  model.PaymentCash,
		AmountTendered: money("50"),
		CustomerID:     "c1",
	})
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)
	orders.AssertExpectations(t)
}

func TestCreateSaleNeedsOpenSession(t *testing.T) {
	repo := new(mockRepo)
	orders := new(mockOrders)
	uc := newUseCase(repo, orders)
	repo.On("FindOpenByStaff", mock.Anything, "staff1").Return(nil, nil)

	_, err := uc.CreateSale(context.Background(), &dto.SaleInput{
		StaffID: "staff1", Items: []dto.SaleLine{{VariantID: "v1", Quantity: 1}}, PaymentMethod: model.PaymentCard,
	})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "SessionNotOpen", appErr.MessageID)
	orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

func TestCreateSaleCashNeedsTendered(t *testing.T) {
	uc := newUseCase(new(mockRepo), new(mockOrders))

	_, err := uc.CreateSale(context.Background(), &dto.SaleInput{
		StaffID: "staff1", Items: []dto.SaleLine{{VariantID: "v1", Quantity: 1}}, PaymentMethod: model.PaymentCash,
	})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "TenderedRequired", appErr.MessageID)
}

func TestCreateSaleUnknownCustomer(t *testing.T) {
	repo := new(mockRepo)
	uc := newUseCase(repo, new(mockOrders))
	repo.On("FindOpenByStaff", mock.Anything, "staff1").Return(openSession(), nil)

	_, err := uc.CreateSale(context.Background(), &dto.SaleInput{
		StaffID: "staff1", Items: []dto.SaleLine{{VariantID: "v1", Quantity: 1}},
		PaymentMethod: model.PaymentCard, CustomerID: "nobody",
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestListSessionsRejectsInvertedRange(t *testing.T) {
	uc := newUseCase(new(mockRepo), new(mockOrders))
	from := time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	_, _, err := uc.ListSessions(context.Background(), &dto.SessionFilters{From: &from, To: &to})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))
}
