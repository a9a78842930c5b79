package handler

import (
	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/user"
	"github.com/fekuna/omnipos-commerce/internal/user/dto"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	uc     user.UseCase
	logger logger.ZapLogger
}

func NewUserHandler(uc user.UseCase, log logger.ZapLogger) *UserHandler {
	return &UserHandler{uc: uc, logger: log}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=120"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type profileRequest struct {
	Name  string `json:"name" binding:"omitempty,max=120"`
	Phone string `json:"phone" binding:"omitempty,max=32"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

type addressRequest struct {
	Label      string `json:"label" binding:"max=50"`
	Recipient  string `json:"recipient" binding:"required,max=120"`
	Phone      string `json:"phone" binding:"max=32"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	Province   string `json:"province" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
	IsDefault  bool   `json:"is_default"`
}

type roleRequest struct {
	Role string `json:"role" binding:"required,oneof=CUSTOMER STAFF ADMIN"`
}

type activeRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}

	res, err := h.uc.Register(c.Request.Context(), &dto.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Phone:     req.Phone,
		SessionID: c.GetHeader(auth.CartSessionHeader),
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, res)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}

	res, err := h.uc.Login(c.Request.Context(), &dto.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		SessionID: c.GetHeader(auth.CartSessionHeader),
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, res)
}

func (h *UserHandler) GetMe(c *gin.Context) {
	u, err := h.uc.GetMe(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, u)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	u, err := h.uc.UpdateMe(c.Request.Context(), &dto.UpdateProfileInput{
		UserID: auth.GetUserID(c),
		Name:   req.Name,
		Phone:  req.Phone,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, u)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	err := h.uc.ChangePassword(c.Request.Context(), &dto.ChangePasswordInput{
		UserID:          auth.GetUserID(c),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

func (h *UserHandler) ListAddresses(c *gin.Context) {
	addresses, err := h.uc.ListAddresses(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, addresses)
}

func (h *UserHandler) CreateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	a, err := h.uc.CreateAddress(c.Request.Context(), toAddressInput(c, "", &req))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.Created(c, a)
}

func (h *UserHandler) UpdateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	a, err := h.uc.UpdateAddress(c.Request.Context(), toAddressInput(c, c.Param("id"), &req))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, a)
}

func toAddressInput(c *gin.Context, id string, req *addressRequest) *dto.AddressInput {
	return &dto.AddressInput{
		ID:         id,
		UserID:     auth.GetUserID(c),
		Label:      req.Label,
		Recipient:  req.Recipient,
		Phone:      req.Phone,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		Province:   req.Province,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}
}

func (h *UserHandler) DeleteAddress(c *gin.Context) {
	if err := h.uc.DeleteAddress(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.NoContent(c)
}

func (h *UserHandler) SetDefaultAddress(c *gin.Context) {
	a, err := h.uc.SetDefaultAddress(c.Request.Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, a)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := httpx.Pagination(c)
	users, total, err := h.uc.ListUsers(c.Request.Context(), &dto.UserFilters{
		Role:     c.Query("role"),
		Query:    c.Query("q"),
		IsActive: httpx.QueryBool(c, "is_active"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.List(c, users, total, page, pageSize)
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	u, err := h.uc.UpdateRole(c.Request.Context(), &dto.UpdateRoleInput{
		ActorID: auth.GetUserID(c),
		UserID:  c.Param("id"),
		Role:    req.Role,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, u)
}

func (h *UserHandler) SetActive(c *gin.Context) {
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindError(c, err)
		return
	}
	u, err := h.uc.SetActive(c.Request.Context(), &dto.SetActiveInput{
		ActorID:  auth.GetUserID(c),
		UserID:   c.Param("id"),
		IsActive: *req.IsActive,
	})
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	httpx.OK(c, u)
}
