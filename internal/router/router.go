package router

import (
	"sort"
	"strings"

	"github.com/whistledesk/internal/authz"
	"github.com/whistledesk/internal/cache"
	"github.com/whistledesk/internal/config"
	adminhandlers "github.com/whistledesk/internal/http/handlers/admin"
	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	publichandlers "github.com/whistledesk/internal/http/handlers/public"
	"github.com/whistledesk/internal/http/response"
	"github.com/whistledesk/internal/logger"
	"github.com/whistledesk/internal/provider"

	"github.com/gin-gonic/gin"
)

const adminRoutePrefix = "/admin/"

// SetupRouter builds the HTTP engine
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisClient := cache.Client()
	loginRule := NewRateLimitRule(cfg.Redis.Prefix, "login", cfg.Security.LoginRateLimit)
	forgotRule := NewRateLimitRule(cfg.Redis.Prefix, "forgot_password", cfg.Security.ForgotPasswordRateLimit)
	cookieName := handlershared.CookieName(cfg.Cookie)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
		cfg.CORS.AllowCredentials,
		cfg.CORS.MaxAge,
	))

	// auth
	r.POST("/signup", adminHandler.Signup)
	r.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIP), adminHandler.Login)
	r.POST("/logout", adminHandler.Logout)

	password := r.Group("/password")
	{
		password.POST("/forgotPassword", RateLimitMiddleware(redisClient, forgotRule, KeyByIPAndJSONField("email")), adminHandler.ForgotPassword)
		password.POST("/resetPassword", adminHandler.ResetPassword)
	}

	session := r.Group("/session")
	{
		session.GET("/checkSession", adminHandler.CheckSession)
		session.POST("/regenerateSession", adminHandler.RegenerateSession)
	}

	// public intake
	captcha := r.Group("/captcha")
	{
		captcha.GET("/config", publicHandler.GetCaptchaConfig)
		captcha.GET("/image", publicHandler.GetImageCaptcha)
	}
	r.POST("/issues", publicHandler.SubmitIssue)
	r.GET("/issues/:ref", publicHandler.GetIssueStatus)
	r.POST("/ussd", publicHandler.USSDCallback)

	admin := r.Group("/admin")
	admin.Use(AdminAuthMiddleware(c.AuthService, cookieName), AdminRBACMiddleware(c.AuthzService))
	{
		admin.GET("/issues", adminHandler.ListIssues)
		admin.GET("/issues/stream", adminHandler.IssueStream)
		admin.GET("/issues/:ref", adminHandler.GetIssue)
		admin.PATCH("/issues/:ref/status", adminHandler.UpdateIssueStatus)
		admin.POST("/issues/:ref/responses", adminHandler.AddIssueResponse)
		admin.GET("/audit-trails", adminHandler.ListAuditTrails)
		admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
			response.Success(ctx, buildAdminPermissionCatalog(r))
		})
		admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
		admin.POST("/authz/reload", adminHandler.ReloadAuthzPolicy)
	}

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

// buildAdminPermissionCatalog lists every admin route as a grantable permission
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
		if !strings.HasPrefix(item.Path, adminRoutePrefix) {
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
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
