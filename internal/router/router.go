package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nexacart/internal/authz"
	"github.com/nexacart/internal/cache"
	"github.com/nexacart/internal/config"
	adminhandlers "github.com/nexacart/internal/http/handlers/admin"
	publichandlers "github.com/nexacart/internal/http/handlers/public"
	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/logger"
	"github.com/nexacart/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "nxc"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 静态文件服务（上传的商品图等）
	r.Static("/uploads", "./uploads")

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:slug", publicHandler.GetProduct)
			public.GET("/categories", publicHandler.ListCategories)
			public.GET("/captcha/setting", publicHandler.GetCaptchaSetting)
			public.GET("/captcha/image", publicHandler.GenerateImageCaptcha)
			public.POST("/session", publicHandler.CreateSession)
		}

		// 购物车与下单：游客（会话）与登录用户共用
		shop := apiV1.Group("")
		shop.Use(
			SessionMiddleware(c.SessionStore),
			OptionalUserJWTMiddleware(cfg.UserJWT.SecretKey, c.UserRepo),
		)
		{
			shop.GET("/cart", publicHandler.GetCart)
			shop.POST("/cart/items", publicHandler.UpsertCartItem)
			shop.DELETE("/cart/items/:product_id", publicHandler.DeleteCartItem)
			shop.POST("/checkout", publicHandler.Checkout)
		}

		// 支付回执
		apiV1.POST("/payments/verify", publicHandler.VerifyPayment)
		apiV1.POST("/payments/callback/:transaction_id", publicHandler.PaymentCallback)
		apiV1.GET("/payments/callback", publicHandler.PaymentReturn)

		// 游客订单查询
		apiV1.POST("/orders/lookup", publicHandler.LookupOrder)

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetProfile)
			user.PUT("/me/profile", publicHandler.UpdateProfile)
			user.PUT("/me/password", publicHandler.ChangePassword)
			user.GET("/me/orders", publicHandler.ListMyOrders)
			user.GET("/me/orders/:id", publicHandler.GetMyOrder)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.Login)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.GetProfile)
				authorized.PUT("/password", adminHandler.ChangePassword)

				// 商品管理
				authorized.GET("/products", adminHandler.ListProducts)
				authorized.GET("/products/:id", adminHandler.GetProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.PATCH("/products/:id/active", adminHandler.SetProductActive)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				// 分类管理
				authorized.GET("/categories", adminHandler.ListCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				// 订单与发货管理
				authorized.GET("/orders", adminHandler.ListOrders)
				authorized.GET("/orders/:id", adminHandler.GetOrder)
				authorized.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
				authorized.POST("/orders/:id/confirm-payment", adminHandler.ConfirmOfflinePayment)
				authorized.POST("/orders/:id/dispatch", adminHandler.DispatchOrder)
				authorized.GET("/orders/:id/tracking", adminHandler.GetOrderTracking)

				// 设置管理
				authorized.GET("/settings/:key", adminHandler.GetSetting)
				authorized.PUT("/settings/:key", adminHandler.UpdateSetting)
				authorized.GET("/settings-smtp", adminHandler.GetSMTPSetting)
				authorized.PUT("/settings-smtp", adminHandler.UpdateSMTPSetting)
				authorized.GET("/settings-captcha", adminHandler.GetCaptchaSetting)
				authorized.PUT("/settings-captcha", adminHandler.UpdateCaptchaSetting)

				// 权限管理
				authorized.GET("/authz/roles", adminHandler.ListRoles)
				authorized.POST("/authz/roles", adminHandler.CreateRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantRolePolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeRolePolicy)
				authorized.GET("/authz/admins/:id", adminHandler.GetAdminAccess)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})

				// 文件上传
				authorized.POST("/upload", adminHandler.Upload)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
