package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/cart"
	"github.com/fekuna/omnipos-commerce/internal/cart/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/broker"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/fekuna/omnipos-commerce/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const EventCartAbandoned = "CartAbandoned"

var errItemNotFound = apperror.NotFound("CartItemNotFound", "cart item not found")

type cartUseCase struct {
	repo         cart.Repository
	pricer       cart.Pricer
	events       broker.Publisher
	abandonAfter time.Duration
	logger       logger.ZapLogger
	now          func() time.Time
}

// NewCartUseCase builds the cart service. pricer and events may be nil.
func NewCartUseCase(repo cart.Repository, pricer cart.Pricer, events broker.Publisher, abandonAfter time.Duration, log logger.ZapLogger) cart.UseCase {
	return &cartUseCase{
		repo:         repo,
		pricer:       pricer,
		events:       events,
		abandonAfter: abandonAfter,
		logger:       log,
		now:          time.Now,
	}
}

// resolve finds the owner's cart, creating it when create is set. Guests
// without a session token get a fresh one.
func (uc *cartUseCase) resolve(ctx context.Context, owner dto.Owner, create bool) (*model.Cart, error) {
	var (
		c   *model.Cart
		err error
	)
	switch {
	case !owner.IsGuest():
		c, err = uc.repo.FindByUser(ctx, owner.UserID)
	case owner.SessionID != "":
		c, err = uc.repo.FindBySession(ctx, owner.SessionID)
	}
	if err != nil || c != nil || !create {
		return c, err
	}

	now := uc.now()
	c = &model.Cart{
		BaseModel:      model.NewBase(uuid.New().String(), now),
		Status:         model.CartActive,
		LastActivityAt: now,
	}
	if owner.IsGuest() {
		session := owner.SessionID
		if session == "" {
			session = uuid.New().String()
		}
		c.SessionID = &session
	} else {
		userID := owner.UserID
		c.UserID = &userID
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *cartUseCase) GetCart(ctx context.Context, owner dto.Owner) (*model.CartView, error) {
	c, err := uc.resolve(ctx, owner, true)
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, c)
}

// view prices every line at current prices. Lines whose variant disappeared are dropped.
func (uc *cartUseCase) view(ctx context.Context, c *model.Cart) (*model.CartView, error) {
	items, err := uc.repo.ListItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	out := &model.CartView{Cart: *c, Items: []model.CartLine{}, Subtotal: decimal.Zero}
	if len(items) == 0 {
		return out, nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.VariantID
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
	flash := uc.flashPrices(ctx, productIDs)

	for _, it := range items {
		v, ok := byID[it.VariantID]
		if !ok {
			continue
		}
		base, onSale := flash[v.ProductID]
		if !onSale {
			base = v.BasePrice
		}
		unit := base.Add(v.PriceAdjustment)
		line := model.CartLine{
			ItemID:      it.ID,
			VariantID:   v.VariantID,
			ProductID:   v.ProductID,
			ProductName: v.ProductName,
			ProductSlug: v.ProductSlug,
			VariantName: v.VariantName,
			SKU:         v.SKU,
			Image:       v.Image,
			UnitPrice:   unit,
			Quantity:    it.Quantity,
			LineTotal:   unit.Mul(decimal.NewFromInt(int64(it.Quantity))),
			Available:   v.Stock,
			FlashSale:   onSale,
		}
		if !v.IsActive {
			line.Available = 0
		}
		out.Items = append(out.Items, line)
		out.ItemCount += it.Quantity
		out.Subtotal = out.Subtotal.Add(line.LineTotal)
	}
	out.Subtotal = out.Subtotal.Round(2)
	return out, nil
}

func (uc *cartUseCase) flashPrices(ctx context.Context, productIDs []string) map[string]decimal.Decimal {
	if uc.pricer == nil || len(productIDs) == 0 {
		return nil
	}
	prices, err := uc.pricer.ActivePrices(ctx, productIDs)
	if err != nil {
		uc.logger.Warn("flash price lookup failed", zap.Error(err))
		return nil
	}
	return prices
}

func (uc *cartUseCase) sellable(ctx context.Context, variantID string) (*model.SellableVariant, error) {
	variants, err := uc.repo.FindSellable(ctx, []string{variantID})
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 || !variants[0].IsActive {
		return nil, apperror.Invalid("VariantUnavailable", "this product is not available")
	}
	return &variants[0], nil
}

func insufficient(available int) *apperror.Error {
	return apperror.Invalid("InsufficientStock", "only {{.Available}} left in stock").WithData("Available", available)
}

func (uc *cartUseCase) AddItem(ctx context.Context, owner dto.Owner, input *dto.AddItemInput) (*model.CartView, error) {
	if input.Quantity < 1 {
		return nil, apperror.Invalid("QuantityInvalid", "quantity must be at least 1")
	}
	v, err := uc.sellable(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}
	c, err := uc.resolve(ctx, owner, true)
	if err != nil {
		return nil, err
	}

	items, err := uc.repo.ListItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	line := &model.CartItem{BaseModel: model.NewBase(uuid.New().String(), now), CartID: c.ID, VariantID: v.VariantID}
	for _, it := range items {
		if it.VariantID == v.VariantID {
			line.BaseModel = it.BaseModel
			line.UpdatedAt = now
			line.Quantity = it.Quantity
		}
	}
	line.Quantity += input.Quantity
	if line.Quantity > v.Stock {
		return nil, insufficient(v.Stock)
	}

	if err := uc.repo.SetItemQuantity(ctx, line); err != nil {
		return nil, err
	}
	return uc.touched(ctx, c)
}

func (uc *cartUseCase) UpdateItem(ctx context.Context, owner dto.Owner, itemID string, quantity int) (*model.CartView, error) {
	if quantity < 0 {
		return nil, apperror.Invalid("QuantityInvalid", "quantity must be at least 1")
	}
	if quantity == 0 {
		return uc.RemoveItem(ctx, owner, itemID)
	}

	c, item, err := uc.findItem(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	v, err := uc.sellable(ctx, item.VariantID)
	if err != nil {
		return nil, err
	}
	if quantity > v.Stock {
		return nil, insufficient(v.Stock)
	}

	item.Quantity = quantity
	item.UpdatedAt = uc.now()
	if err := uc.repo.SetItemQuantity(ctx, item); err != nil {
		return nil, err
	}
	return uc.touched(ctx, c)
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, owner dto.Owner, itemID string) (*model.CartView, error) {
	c, _, err := uc.findItem(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.DeleteItem(ctx, c.ID, itemID); err != nil {
		return nil, err
	}
	return uc.touched(ctx, c)
}

func (uc *cartUseCase) findItem(ctx context.Context, owner dto.Owner, itemID string) (*model.Cart, *model.CartItem, error) {
	c, err := uc.resolve(ctx, owner, false)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, errItemNotFound
	}
	item, err := uc.repo.FindItem(ctx, c.ID, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, errItemNotFound
	}
	return c, item, nil
}

func (uc *cartUseCase) Clear(ctx context.Context, owner dto.Owner) error {
	c, err := uc.resolve(ctx, owner, false)
	if err != nil || c == nil {
		return err
	}
	if err := uc.repo.ClearItems(ctx, c.ID); err != nil {
		return err
	}
	return uc.repo.Touch(ctx, c)
}

func (uc *cartUseCase) touched(ctx context.Context, c *model.Cart) (*model.CartView, error) {
	if err := uc.repo.Touch(ctx, c); err != nil {
		return nil, err
	}
	return uc.view(ctx, c)
}

// MergeGuestCart sums guest lines into the user's cart, capping each line at
// current stock, then deletes the guest cart.
func (uc *cartUseCase) MergeGuestCart(ctx context.Context, sessionID, userID string) error {
	if sessionID == "" || userID == "" {
		return nil
	}
	guest, err := uc.repo.FindBySession(ctx, sessionID)
	if err != nil || guest == nil {
		return err
	}
	guestItems, err := uc.repo.ListItems(ctx, guest.ID)
	if err != nil {
		return err
	}

	target, err := uc.resolve(ctx, dto.Owner{UserID: userID}, true)
	if err != nil {
		return err
	}
	userItems, err := uc.repo.ListItems(ctx, target.ID)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(guestItems))
	for _, it := range guestItems {
		ids = append(ids, it.VariantID)
	}
	variants, err := uc.repo.FindSellable(ctx, ids)
	if err != nil {
		return err
	}
	stock := make(map[string]int, len(variants))
	for _, v := range variants {
		if v.IsActive {
			stock[v.VariantID] = v.Stock
		}
	}

	existing := make(map[string]model.CartItem, len(userItems))
	for _, it := range userItems {
		existing[it.VariantID] = it
	}

	now := uc.now()
	lines := make([]model.CartItem, 0, len(guestItems))
	for _, it := range guestItems {
		available, ok := stock[it.VariantID]
		if !ok {
			continue
		}
		line := model.CartItem{BaseModel: model.NewBase(uuid.New().String(), now), CartID: target.ID, VariantID: it.VariantID}
		qty := it.Quantity
		if cur, ok := existing[it.VariantID]; ok {
			line.BaseModel = cur.BaseModel
			line.UpdatedAt = now
			qty += cur.Quantity
		}
		if qty > available {
			qty = available
		}
		if qty < 1 {
			continue
		}
		line.Quantity = qty
		lines = append(lines, line)
	}

	if err := uc.repo.Merge(ctx, guest.ID, target, lines); err != nil {
		return err
	}
	uc.logger.Info("guest cart merged", zap.String("user_id", userID), zap.Int("lines", len(lines)))
	return nil
}

func (uc *cartUseCase) SweepAbandoned(ctx context.Context) (int, error) {
	carts, err := uc.repo.MarkAbandoned(ctx, uc.now().Add(-uc.abandonAfter))
	if err != nil {
		return 0, err
	}
	metrics.RecordCartsAbandoned(len(carts))

	if uc.events != nil {
		for _, c := range carts {
			payload := dto.AbandonedEvent{
				CartID:    c.ID,
				UserID:    c.UserID,
				Email:     c.Email,
				Subtotal:  c.Subtotal.StringFixed(2),
				ItemCount: c.ItemCount,
			}
			if err := uc.events.Publish(ctx, c.ID, EventCartAbandoned, payload); err != nil {
				uc.logger.Error("failed to publish cart event", zap.String("cart_id", c.ID), zap.Error(err))
			}
		}
	}
	return len(carts), nil
}

func (uc *cartUseCase) ListAbandoned(ctx context.Context, page, pageSize int) ([]model.AbandonedCart, int, error) {
	return uc.repo.ListAbandoned(ctx, page, pageSize)
}
