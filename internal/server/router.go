// Package server assembles the HTTP router and the gRPC health endpoint.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/featureflag"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/fekuna/omnipos-commerce/pkg/metrics"
	"github.com/fekuna/omnipos-commerce/pkg/middleware"
	"github.com/gin-gonic/gin"

	logH "github.com/fekuna/omnipos-commerce/internal/activitylog/handler"
	cartH "github.com/fekuna/omnipos-commerce/internal/cart/handler"
	catH "github.com/fekuna/omnipos-commerce/internal/category/handler"
	cmsH "github.com/fekuna/omnipos-commerce/internal/cms/handler"
	discH "github.com/fekuna/omnipos-commerce/internal/discount/handler"
	flagH "github.com/fekuna/omnipos-commerce/internal/featureflag/handler"
	flashH "github.com/fekuna/omnipos-commerce/internal/flashsale/handler"
	invH "github.com/fekuna/omnipos-commerce/internal/inventory/handler"
	loyH "github.com/fekuna/omnipos-commerce/internal/loyalty/handler"
	mktH "github.com/fekuna/omnipos-commerce/internal/marketing/handler"
	mediaH "github.com/fekuna/omnipos-commerce/internal/media/handler"
	orderH "github.com/fekuna/omnipos-commerce/internal/order/handler"
	posH "github.com/fekuna/omnipos-commerce/internal/pos/handler"
	prodH "github.com/fekuna/omnipos-commerce/internal/product/handler"
	reviewH "github.com/fekuna/omnipos-commerce/internal/review/handler"
	seoH "github.com/fekuna/omnipos-commerce/internal/seo/handler"
	themeH "github.com/fekuna/omnipos-commerce/internal/theme/handler"
	userH "github.com/fekuna/omnipos-commerce/internal/user/handler"
)

type Handlers struct {
	User       *userH.UserHandler
	Category   *catH.CategoryHandler
	Product    *prodH.ProductHandler
	Inventory  *invH.InventoryHandler
	Cart       *cartH.CartHandler
	Order      *orderH.OrderHandler
	Discount   *discH.DiscountHandler
	Review     *reviewH.ReviewHandler
	Loyalty    *loyH.LoyaltyHandler
	CMS        *cmsH.CMSHandler
	FlashSale  *flashH.FlashSaleHandler
	POS        *posH.POSHandler
	Media      *mediaH.MediaHandler
	Flags      *flagH.FlagHandler
	Theme      *themeH.ThemeHandler
	SEO        *seoH.SEOHandler
	Newsletter *mktH.NewsletterHandler
	Activity   *logH.ActivityLogHandler
}

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Handlers Handlers
	Tokens   *auth.TokenManager
	Flags    featureflag.Checker
	Limiter  *middleware.RateLimiter
	DB       Pinger
	MediaDir string
	Logger   logger.ZapLogger
}

func NewRouter(d Deps) *gin.Engine {
	httpx.RegisterValidators()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(d.Logger),
		middleware.AccessLog(d.Logger),
		metrics.Middleware(),
	)

	r.GET("/healthz", healthz(d.DB))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/sitemap.xml", d.Handlers.SEO.Sitemap)
	if d.MediaDir != "" {
		r.Static("/media", d.MediaDir)
	}

	h := d.Handlers
	log := d.Logger
	optionalAuth := auth.Authenticate(d.Tokens, log, false)
	requireAuth := auth.Authenticate(d.Tokens, log, true)
	feature := func(key string) gin.HandlerFunc { return featureflag.RequireFeature(d.Flags, log, key) }

	api := r.Group("/api/v1")

	// Public
	authGroup := api.Group("/auth", d.Limiter.Handler())
	authGroup.POST("/register", h.User.Register)
	authGroup.POST("/login", h.User.Login)

	api.GET("/products", h.Product.ListProducts)
	api.GET("/products/:slug", h.Product.GetProductBySlug)
	api.GET("/products/:slug/reviews", h.Review.ListProductReviews)
	api.GET("/categories", h.Category.ListCategories)
	api.GET("/categories/tree", h.Category.GetTree)
	api.GET("/categories/:slug", h.Category.GetCategoryBySlug)
	api.GET("/pages/:slug", h.CMS.GetPublishedPage)
	api.GET("/themes/active", h.Theme.GetActive)
	api.GET("/seo/:type/:id", h.SEO.Get)
	api.GET("/flash-sales/active", feature(featureflag.FlashSales), h.FlashSale.ListActive)
	api.POST("/discounts/validate", optionalAuth, h.Discount.Validate)

	newsletter := api.Group("/newsletter", d.Limiter.Handler())
	newsletter.POST("/subscribe", h.Newsletter.Subscribe)
	newsletter.POST("/unsubscribe", h.Newsletter.Unsubscribe)

	cart := api.Group("/cart", optionalAuth)
	cart.GET("", h.Cart.GetCart)
	cart.DELETE("", h.Cart.Clear)
	cart.POST("/items", h.Cart.AddItem)
	cart.PATCH("/items/:itemId", h.Cart.UpdateItem)
	cart.DELETE("/items/:itemId", h.Cart.RemoveItem)

	// Customer
	me := api.Group("", requireAuth)
	me.GET("/me", h.User.GetMe)
	me.PATCH("/me", h.User.UpdateMe)
	me.PUT("/me/password", h.User.ChangePassword)
	me.GET("/me/addresses", h.User.ListAddresses)
	me.POST("/me/addresses", h.User.CreateAddress)
	me.PUT("/me/addresses/:id", h.User.UpdateAddress)
	me.DELETE("/me/addresses/:id", h.User.DeleteAddress)
	me.POST("/me/addresses/:id/default", h.User.SetDefaultAddress)
	me.POST("/cart/merge", h.Cart.Merge)
	me.POST("/checkout", h.Order.Checkout)
	me.GET("/orders", h.Order.ListMyOrders)
	me.GET("/orders/:id", h.Order.GetMyOrder)
	me.POST("/orders/:id/cancel", h.Order.CancelMyOrder)
	me.POST("/products/:id/reviews", h.Review.CreateReview)

	loyalty := me.Group("/loyalty/me", feature(featureflag.LoyaltyProgram))
	loyalty.GET("", h.Loyalty.GetMyAccount)
	loyalty.GET("/transactions", h.Loyalty.ListMyTransactions)
	loyalty.GET("/quote", h.Loyalty.Quote)

	// Admin
	admin := api.Group("/admin", requireAuth, auth.RequireRoles(log, auth.RoleStaff, auth.RoleAdmin))
	registerAdmin(admin, h, feature)

	adminOnly := api.Group("/admin", requireAuth, auth.RequireRoles(log, auth.RoleAdmin))
	adminOnly.GET("/users", h.User.ListUsers)
	adminOnly.PATCH("/users/:id/role", h.User.UpdateRole)
	adminOnly.PATCH("/users/:id/active", h.User.SetActive)
	adminOnly.GET("/activity-logs", h.Activity.ListLogs)

	return r
}

func registerAdmin(admin *gin.RouterGroup, h Handlers, feature func(string) gin.HandlerFunc) {
	admin.GET("/products", h.Product.ListProducts)
	admin.POST("/products", h.Product.CreateProduct)
	admin.POST("/products/reindex", h.Product.Reindex)
	admin.GET("/products/:id", h.Product.GetProduct)
	admin.PUT("/products/:id", h.Product.UpdateProduct)
	admin.DELETE("/products/:id", h.Product.DeleteProduct)
	admin.POST("/products/:id/variants", h.Product.AddVariant)
	admin.PUT("/products/:id/variants/:variantId", h.Product.UpdateVariant)
	admin.DELETE("/products/:id/variants/:variantId", h.Product.DeleteVariant)

	admin.GET("/categories", h.Category.ListCategories)
	admin.POST("/categories", h.Category.CreateCategory)
	admin.GET("/categories/:id", h.Category.GetCategory)
	admin.PUT("/categories/:id", h.Category.UpdateCategory)
	admin.DELETE("/categories/:id", h.Category.DeleteCategory)

	admin.POST("/inventory/adjustments", h.Inventory.AdjustStock)
	admin.GET("/inventory/movements", h.Inventory.ListMovements)
	admin.GET("/inventory/low-stock", h.Inventory.ListLowStock)

	admin.GET("/orders", h.Order.ListOrders)
	admin.GET("/orders/:id", h.Order.GetOrder)
	admin.PATCH("/orders/:id/status", h.Order.UpdateStatus)
	admin.GET("/stats/sales", h.Order.SalesSummary)

	admin.GET("/reviews", h.Review.ListReviews)
	admin.PATCH("/reviews/:id", h.Review.ModerateReview)
	admin.DELETE("/reviews/:id", h.Review.DeleteReview)

	admin.GET("/discounts", h.Discount.ListCodes)
	admin.POST("/discounts", h.Discount.CreateCode)
	admin.GET("/discounts/:id", h.Discount.GetCode)
	admin.PUT("/discounts/:id", h.Discount.UpdateCode)
	admin.DELETE("/discounts/:id", h.Discount.DeleteCode)

	loyalty := admin.Group("/loyalty", feature(featureflag.LoyaltyProgram))
	loyalty.GET("/tiers", h.Loyalty.ListTiers)
	loyalty.POST("/tiers", h.Loyalty.CreateTier)
	loyalty.PUT("/tiers/:id", h.Loyalty.UpdateTier)
	loyalty.DELETE("/tiers/:id", h.Loyalty.DeleteTier)
	loyalty.GET("/accounts", h.Loyalty.ListAccounts)
	loyalty.POST("/accounts/:userId/adjust", h.Loyalty.AdjustPoints)

	cms := admin.Group("/cms")
	cms.GET("/templates", h.CMS.ListTemplates)
	cms.POST("/templates", h.CMS.CreateTemplate)
	cms.GET("/templates/:id", h.CMS.GetTemplate)
	cms.PUT("/templates/:id", h.CMS.UpdateTemplate)
	cms.DELETE("/templates/:id", h.CMS.DeleteTemplate)
	cms.GET("/pages", h.CMS.ListPages)
	cms.POST("/pages", h.CMS.CreatePage)
	cms.GET("/pages/:id", h.CMS.GetPage)
	cms.PUT("/pages/:id", h.CMS.UpdatePage)
	cms.DELETE("/pages/:id", h.CMS.DeletePage)
	cms.POST("/pages/:id/publish", h.CMS.PublishPage)
	cms.POST("/pages/:id/unpublish", h.CMS.UnpublishPage)
	cms.POST("/pages/:id/archive", h.CMS.ArchivePage)
	cms.GET("/pages/:id/revisions", h.CMS.ListRevisions)
	cms.POST("/pages/:id/revisions/:revisionId/restore", h.CMS.RestoreRevision)
	cms.PUT("/pages/:id/blocks/order", h.CMS.ReorderBlocks)
	cms.GET("/blocks", h.CMS.ListBlocks)
	cms.POST("/blocks", h.CMS.CreateBlock)
	cms.PUT("/blocks/:id", h.CMS.UpdateBlock)
	cms.DELETE("/blocks/:id", h.CMS.DeleteBlock)

	flash := admin.Group("/flash-sales", feature(featureflag.FlashSales))
	flash.GET("", h.FlashSale.ListSales)
	flash.POST("", h.FlashSale.CreateSale)
	flash.GET("/:id", h.FlashSale.GetSale)
	flash.PUT("/:id", h.FlashSale.UpdateSale)
	flash.DELETE("/:id", h.FlashSale.DeleteSale)
	flash.POST("/:id/cancel", h.FlashSale.CancelSale)

	pos := admin.Group("/pos", feature(featureflag.POS))
	pos.POST("/sessions", h.POS.OpenSession)
	pos.GET("/sessions", h.POS.ListSessions)
	pos.GET("/sessions/current", h.POS.GetCurrentSession)
	pos.POST("/sessions/current/close", h.POS.CloseSession)
	pos.GET("/sessions/:id", h.POS.GetSession)
	pos.POST("/sales", h.POS.CreateSale)

	admin.GET("/media", h.Media.List)
	admin.POST("/media", h.Media.Upload)
	admin.GET("/media/:id", h.Media.Get)
	admin.PATCH("/media/:id", h.Media.Update)
	admin.DELETE("/media/:id", h.Media.Delete)

	admin.GET("/feature-flags", h.Flags.List)
	admin.GET("/feature-flags/:key", h.Flags.Get)
	admin.PUT("/feature-flags/:key", h.Flags.Upsert)
	admin.POST("/feature-flags/:key/toggle", h.Flags.Toggle)

	admin.GET("/themes", h.Theme.List)
	admin.POST("/themes", h.Theme.Create)
	admin.GET("/themes/:id", h.Theme.Get)
	admin.PUT("/themes/:id", h.Theme.Update)
	admin.DELETE("/themes/:id", h.Theme.Delete)
	admin.POST("/themes/:id/activate", h.Theme.Activate)

	admin.PUT("/seo/:type/:id", h.SEO.Upsert)
	admin.DELETE("/seo/:type/:id", h.SEO.Delete)

	admin.GET("/newsletter/subscribers", h.Newsletter.ListSubscribers)
	admin.GET("/carts/abandoned", h.Cart.ListAbandoned)
}

func healthz(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
