package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	cartdto "github.com/fekuna/omnipos-commerce/internal/cart/dto"
	"github.com/fekuna/omnipos-commerce/internal/discount"
	"github.com/fekuna/omnipos-commerce/internal/featureflag"
	"github.com/fekuna/omnipos-commerce/internal/flashsale"
	"github.com/fekuna/omnipos-commerce/internal/inventory"
	"github.com/fekuna/omnipos-commerce/internal/loyalty"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/order"
	"github.com/fekuna/omnipos-commerce/internal/order/dto"
	"github.com/fekuna/omnipos-commerce/internal/pos"
	"github.com/fekuna/omnipos-commerce/internal/product"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/broker"
	"github.com/fekuna/omnipos-commerce/pkg/cache"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/fekuna/omnipos-commerce/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var errOrderNotFound = apperror.NotFound("OrderNotFound", "order not found")

// Collaborators are the other slices checkout reads from. Any of them may be
// nil; the matching feature is then skipped.
type Collaborators struct {
	Carts     order.CartReader
	Flash     order.FlashItems
	Discounts order.DiscountValidator
	Loyalty   order.LoyaltyReader
	Flags     featureflag.Checker
	Events    broker.Publisher
	Activity  activitylog.Recorder
	// Listings holds cached storefront pages, which carry stock.
	Listings *cache.RedisClient
}

type orderUseCase struct {
	repo     order.Repository
	settings order.Settings
	with     Collaborators
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewOrderUseCase(repo order.Repository, settings order.Settings, with Collaborators, log logger.ZapLogger) order.UseCase {
	if with.Activity == nil {
		with.Activity = activitylog.NopRecorder{}
	}
	return &orderUseCase{
		repo:     repo,
		settings: settings,
		with:     with,
		logger:   log,
		now:      time.Now,
	}
}

func (uc *orderUseCase) Checkout(ctx context.Context, input *dto.CheckoutInput) (*model.Order, error) {
	if uc.with.Carts == nil {
		return nil, apperror.Busy("CheckoutUnavailable", "checkout is unavailable")
	}
	cart, err := uc.with.Carts.GetCart(ctx, cartdto.Owner{UserID: input.UserID})
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperror.Invalid("CartEmpty", "your cart is empty")
	}

	address, err := uc.repo.FindAddress(ctx, input.UserID, input.AddressID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, apperror.NotFound("AddressNotFound", "address not found")
	}
	email, err := uc.repo.FindCustomerEmail(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	lines := make([]dto.LineInput, 0, len(cart.Items))
	for _, it := range cart.Items {
		lines = append(lines, dto.LineInput{VariantID: it.VariantID, Quantity: it.Quantity})
	}
	return uc.PlaceOrder(ctx, &dto.PlaceOrderInput{
		ActorID:        input.UserID,
		UserID:         input.UserID,
		CustomerEmail:  email,
		Channel:        model.ChannelWeb,
		Status:         model.OrderPending,
		Items:          lines,
		DiscountCode:   input.DiscountCode,
		PointsToRedeem: input.PointsToRedeem,
		Ship:           true,
		Address:        address,
		PaymentMethod:  input.PaymentMethod,
		CartID:         cart.ID,
		Notes:          input.Notes,
	})
}

// priced is a validated order line at its checkout price.
type priced struct {
	variant   model.SellableVariant
	quantity  int
	unitPrice decimal.Decimal
	flash     *model.FlashSaleItem
}

func (uc *orderUseCase) PlaceOrder(ctx context.Context, input *dto.PlaceOrderInput) (*model.Order, error) {
	lines, err := uc.priceLines(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.unitPrice.Mul(decimal.NewFromInt(int64(l.quantity))))
	}

	priceIn := order.PriceInput{Subtotal: subtotal, Ship: input.Ship, PointsRequested: input.PointsToRedeem}

	var code *model.DiscountCode
	if c := strings.TrimSpace(input.DiscountCode); c != "" {
		if uc.with.Discounts == nil {
			return nil, apperror.Invalid("DiscountUnknown", "discount code does not exist")
		}
		quote, err := uc.with.Discounts.Validate(ctx, c, subtotal.Round(2))
		if err != nil {
			return nil, err
		}
		code = quote.Discount
		priceIn.CodeDiscount = quote.Amount
		priceIn.FreeShipping = quote.FreeShipping
	}

	if err := uc.applyLoyalty(ctx, input, &priceIn); err != nil {
		return nil, err
	}

	totals, err := uc.settings.Price(priceIn)
	if err != nil {
		return nil, err
	}

	o, flashUses, err := uc.buildOrder(input, lines, totals, code)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Place(ctx, &dto.Placement{
		Order:     o,
		FlashUses: flashUses,
		CartID:    input.CartID,
		ActorID:   input.ActorID,
	}); err != nil {
		return nil, placementError(err)
	}

	uc.dropListings(ctx)
	metrics.RecordOrderPlaced(o.Channel)
	uc.logger.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("channel", o.Channel),
		zap.String("grand_total", o.GrandTotal.StringFixed(2)),
	)
	uc.publish(ctx, order.EventCreated, o, "")
	return o, nil
}

// priceLines merges duplicate variants, checks availability and resolves
// the unit price of every line.
func (uc *orderUseCase) priceLines(ctx context.Context, items []dto.LineInput) ([]priced, error) {
	if len(items) == 0 {
		return nil, apperror.Invalid("OrderEmpty", "an order needs at least one item")
	}

	quantities := map[string]int{}
	ids := []string{}
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, apperror.Invalid("QuantityInvalid", "quantity must be at least 1")
		}
		if _, ok := quantities[it.VariantID]; !ok {
			ids = append(ids, it.VariantID)
		}
		quantities[it.VariantID] += it.Quantity
	}

	variants, err := uc.repo.FindSellable(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.SellableVariant, len(variants))
	productIDs := make([]string, 0, len(variants))
	for _, v := range variants {
		byID[v.VariantID] = v
		productIDs = append(productIDs, v.ProductID)
	}

	flash := map[string]model.FlashSaleItem{}
	if uc.with.Flash != nil && uc.enabled(ctx, featureflag.FlashSales) {
		if flash, err = uc.with.Flash.ActiveItems(ctx, productIDs); err != nil {
			return nil, err
		}
	}

	lines := make([]priced, 0, len(ids))
	onSale := map[string]int{}
	for _, id := range ids {
		v, ok := byID[id]
		if !ok || !v.IsActive {
			return nil, apperror.Invalid("VariantUnavailable", "this product is not available")
		}
		qty := quantities[id]
		if qty > v.Stock {
			return nil, apperror.Invalid("InsufficientStockFor", "only {{.Available}} of {{.SKU}} left in stock").
				WithData("Available", v.Stock).
				WithData("SKU", v.SKU)
		}

		line := priced{variant: v, quantity: qty, unitPrice: v.BasePrice.Add(v.PriceAdjustment)}
		if item, ok := flash[v.ProductID]; ok {
			onSale[item.ID] += qty
			if rem := item.Remaining(); rem >= 0 && onSale[item.ID] > rem {
				return nil, apperror.Invalid("FlashSaleLimitExceeded", "only {{.Remaining}} left at the sale price").
					WithData("Remaining", rem)
			}
			line.flash = &item
			line.unitPrice = item.SalePrice.Add(v.PriceAdjustment)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (uc *orderUseCase) enabled(ctx context.Context, key string) bool {
	return uc.with.Flags == nil || uc.with.Flags.IsEnabled(ctx, key)
}

// applyLoyalty fills the tier discount and redeemable balance for members.
func (uc *orderUseCase) applyLoyalty(ctx context.Context, input *dto.PlaceOrderInput, in *order.PriceInput) error {
	if input.UserID == "" || uc.with.Loyalty == nil || !uc.enabled(ctx, featureflag.LoyaltyProgram) {
		if input.PointsToRedeem > 0 {
			return apperror.Invalid("LoyaltyUnavailable", "points cannot be redeemed on this order")
		}
		return nil
	}
	account, err := uc.with.Loyalty.GetMyAccount(ctx, input.UserID)
	if err != nil {
		return err
	}
	in.PointsBalance = account.PointsBalance
	if account.Tier != nil {
		in.TierPercent = account.Tier.DiscountPercent
	}
	return nil
}

func (uc *orderUseCase) buildOrder(input *dto.PlaceOrderInput, lines []priced, t order.Totals, code *model.DiscountCode) (*model.Order, []dto.FlashUse, error) {
	now := uc.now()
	o := &model.Order{
		BaseModel:       model.NewBase(uuid.New().String(), now),
		OrderNumber:     orderNumber(input.Channel, now),
		CustomerEmail:   input.CustomerEmail,
		Channel:         input.Channel,
		Status:          input.Status,
		Currency:        uc.settings.Currency,
		Subtotal:        t.Subtotal,
		DiscountTotal:   t.DiscountTotal,
		TierDiscount:    t.TierDiscount,
		LoyaltyDiscount: t.LoyaltyDiscount,
		ShippingTotal:   t.ShippingTotal,
		TaxTotal:        t.TaxTotal,
		GrandTotal:      t.GrandTotal,
		PointsRedeemed:  t.PointsRedeemed,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
	}
	if input.UserID != "" {
		userID := input.UserID
		o.UserID = &userID
	}
	if code != nil {
		o.DiscountCodeID = &code.ID
		o.DiscountCode = &code.Code
	}
	if input.POSSessionID != "" {
		session := input.POSSessionID
		o.POSSessionID = &session
	}
	if input.Address != nil {
		raw, err := json.Marshal(input.Address)
		if err != nil {
			return nil, nil, err
		}
		o.ShippingAddress = types.JSONText(raw)
	}

	if input.PaymentMethod == model.PaymentCash && input.AmountTendered != nil {
		if input.AmountTendered.LessThan(o.GrandTotal) {
			return nil, nil, apperror.Invalid("TenderedInsufficient", "amount tendered is less than the total of {{.Total}}").
				WithData("Total", o.GrandTotal.StringFixed(2))
		}
		tendered := input.AmountTendered.Round(2)
		change := tendered.Sub(o.GrandTotal)
		o.AmountTendered = &tendered
		o.ChangeDue = &change
	}

	uses := []dto.FlashUse{}
	for _, l := range lines {
		item := model.OrderItem{
			ID:          uuid.New().String(),
			OrderID:     o.ID,
			ProductID:   l.variant.ProductID,
			VariantID:   l.variant.VariantID,
			ProductName: l.variant.ProductName,
			VariantName: l.variant.VariantName,
			SKU:         l.variant.SKU,
			UnitPrice:   l.unitPrice.Round(2),
			Quantity:    l.quantity,
			LineTotal:   l.unitPrice.Mul(decimal.NewFromInt(int64(l.quantity))).Round(2),
		}
		if l.flash != nil {
			saleID := l.flash.FlashSaleID
			item.FlashSaleID = &saleID
			uses = append(uses, dto.FlashUse{ItemID: l.flash.ID, Quantity: l.quantity})
		}
		o.Items = append(o.Items, item)
	}
	return o, uses, nil
}

// orderNumber renders ORD-YYYYMMDD-XXXXXXXX, with a POS- prefix at the register.
func orderNumber(channel string, now time.Time) string {
	prefix := "ORD"
	if channel == model.ChannelPOS {
		prefix = "POS"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return prefix + "-" + now.UTC().Format("20060102") + "-" + suffix
}

// placementError maps guard failures inside the order transaction. They mean
// another checkout won a race after validation passed.
func placementError(err error) error {
	switch {
	case errors.Is(err, inventory.ErrInsufficientStock):
		return apperror.Conflict("StockChanged", "an item sold out while you were checking out").Wrap(err)
	case errors.Is(err, flashsale.ErrSoldOut):
		return apperror.Conflict("FlashSaleSoldOut", "the flash sale sold out").Wrap(err)
	case errors.Is(err, discount.ErrUsageExhausted):
		return apperror.Conflict("DiscountExhausted", "discount code has been fully used").Wrap(err)
	case errors.Is(err, loyalty.ErrInsufficientPoints):
		return apperror.Conflict("PointsChanged", "your points balance changed, please try again").Wrap(err)
	case errors.Is(err, pos.ErrSessionClosed):
		return apperror.Conflict("SessionNotOpen", "the register session is closed").Wrap(err)
	}
	return err
}

func (uc *orderUseCase) publish(ctx context.Context, eventType string, o *model.Order, previous string) {
	if uc.with.Events == nil {
		return
	}
	event := order.Event{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		Channel:        o.Channel,
		Status:         o.Status,
		PreviousStatus: previous,
		GrandTotal:     o.GrandTotal.StringFixed(2),
		PointsRedeemed: o.PointsRedeemed,
	}
	if err := uc.with.Events.Publish(ctx, o.ID, eventType, event); err != nil {
		uc.logger.Error("failed to publish order event",
			zap.String("order_id", o.ID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (uc *orderUseCase) ListMyOrders(ctx context.Context, userID string, filters *dto.OrderFilters) ([]model.Order, int, error) {
	filters.UserID = userID
	return uc.repo.FindAll(ctx, filters)
}

func (uc *orderUseCase) GetMyOrder(ctx context.Context, userID, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.UserID == nil || *o.UserID != userID {
		return nil, errOrderNotFound
	}
	return o, nil
}

func (uc *orderUseCase) CancelMyOrder(ctx context.Context, userID, id string) (*model.Order, error) {
	o, err := uc.GetMyOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !order.CustomerCancellable(o.Status) {
		return nil, apperror.Invalid("OrderNotCancellable", "this order can no longer be cancelled").
			WithData("Status", o.Status)
	}
	return uc.transition(ctx, o, model.OrderCancelled, userID)
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errOrderNotFound
	}
	return o, nil
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, input *dto.StatusInput) (*model.Order, error) {
	o, err := uc.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	return uc.transition(ctx, o, input.Status, input.ActorID)
}

// transition applies a status change. Only cancellation restocks; refunded
// goods are handled outside the system.
func (uc *orderUseCase) transition(ctx context.Context, o *model.Order, to, actorID string) (*model.Order, error) {
	from := o.Status
	if !order.CanTransition(from, to) {
		return nil, apperror.Invalid("StatusTransitionInvalid", "cannot move an order from {{.From}} to {{.To}}").
			WithData("From", from).
			WithData("To", to)
	}

	o.Status = to
	o.UpdatedAt = uc.now()
	if err := uc.repo.Transition(ctx, o, from, to == model.OrderCancelled, actorID); err != nil {
		o.Status = from
		if errors.Is(err, order.ErrStatusChanged) {
			return nil, apperror.Conflict("OrderConflict", "the order was updated by someone else").Wrap(err)
		}
		return nil, err
	}

	if to == model.OrderCancelled {
		uc.dropListings(ctx)
	}
	uc.logger.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", from),
		zap.String("to", to),
	)
	uc.publish(ctx, order.EventStatusChanged, o, from)
	uc.with.Activity.Record(ctx, &logdto.RecordInput{
		ActorID:    actorID,
		Action:     "order.status_changed",
		EntityType: "order",
		EntityID:   o.ID,
		Metadata:   map[string]interface{}{"from": from, "to": to, "order_number": o.OrderNumber},
	})
	return o, nil
}

func (uc *orderUseCase) dropListings(ctx context.Context) {
	if err := uc.with.Listings.DeleteByPattern(ctx, product.ListCachePattern); err != nil {
		uc.logger.Warn("failed to invalidate product listings", zap.Error(err))
	}
}

func (uc *orderUseCase) SalesSummary(ctx context.Context, from, to time.Time) (*model.SalesSummary, error) {
	if to.IsZero() {
		to = uc.now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if !from.Before(to) {
		return nil, apperror.Invalid("DateRangeInvalid", "start must be before end")
	}
	return uc.repo.SalesSummary(ctx, from, to)
}
