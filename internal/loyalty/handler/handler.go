package handler

import (
	"strconv"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/loyalty"
	"github.com/fekuna/omnipos-commerce/internal/loyalty/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type LoyaltyHandler struct {
	uc     loyalty.UseCase
	logger logger.ZapLogger
}

func NewLoyaltyHandler(uc loyalty.UseCase, log logger.ZapLogger) *LoyaltyHandler {
	return &LoyaltyHandler{
		uc:     uc,
		logger: log,
	}
}

type tierRequest struct {
	Name             string          `json:"name" binding:"required,max=100"`
	MinPoints        int             `json:"min_points" binding:"min=0"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
	PointsMultiplier decimal.Decimal `json:"points_multiplier"`
	Benefits         string          `json:"benefits" binding:"max=2000"`
}

type adjustRequest struct {
	Points int    `json:"points" binding:"required"`
	Reason string `json:"reason" binding:"required,max=255"`
}

func (r *tierRequest) input(c *gin.Context, id string) *dto.TierInput {
	multiplier := r.PointsMultiplier
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}
	return &dto.TierInput{
		ActorID:          auth.GetUserID(c),
		ID:               id,
		Name:             r.Name,
		MinPoints:        r.MinPoints,
		DiscountPercent:  r.DiscountPercent,
		PointsMultiplier: multiplier,
		Benefits:         r.Benefits,
	}
}

func (h *LoyaltyHandler) ListTiers(c *gin.Context) {
	tiers, err := h.uc.ListTiers(c.Request.Context())
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, tiers)
}

func (h *LoyaltyHandler) CreateTier(c *gin.Context) {
	var req tierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	tier, err := h.uc.CreateTier(c.Request.Context(), req.input(c, ""))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, tier)
}

func (h *LoyaltyHandler) UpdateTier(c *gin.Context) {
	var req tierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	tier, err := h.uc.UpdateTier(c.Request.Context(), req.input(c, c.Param("id")))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, tier)
}

func (h *LoyaltyHandler) DeleteTier(c *gin.Context) {
	if err := h.uc.DeleteTier(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

func (h *LoyaltyHandler) GetMyAccount(c *gin.Context) {
	account, err := h.uc.GetMyAccount(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, account)
}

func (h *LoyaltyHandler) ListMyTransactions(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	txs, total, err := h.uc.ListMyTransactions(c.Request.Context(), auth.GetUserID(c), page, pageSize)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, txs, total, page, pageSize)
}

func (h *LoyaltyHandler) Quote(c *gin.Context) {
	points, err := strconv.Atoi(c.Query("points"))
	if err != nil {
		httpx.Error(c, h.logger, apperror.Invalid("PointsInvalid", "points to redeem must not be negative").Wrap(err))
		return
	}
	quote, err := h.uc.Quote(c.Request.Context(), auth.GetUserID(c), points)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, quote)
}

func (h *LoyaltyHandler) ListAccounts(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	accounts, total, err := h.uc.ListAccounts(c.Request.Context(), &dto.AccountFilters{
		TierID:   c.Query("tier_id"),
		Query:    c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, accounts, total, page, pageSize)
}

func (h *LoyaltyHandler) AdjustPoints(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	account, err := h.uc.AdjustPoints(c.Request.Context(), &dto.AdjustInput{
		ActorID: auth.GetUserID(c),
		UserID:  c.Param("userId"),
		Points:  req.Points,
		Reason:  req.Reason,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, account)
}
