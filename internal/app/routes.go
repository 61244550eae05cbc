package app

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chyrplite/core/internal/middleware"
	"github.com/chyrplite/core/internal/modules/category"
	"github.com/chyrplite/core/internal/modules/comment"
	"github.com/chyrplite/core/internal/modules/post"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/modules/settings"
	"github.com/chyrplite/core/internal/modules/upload"
	"github.com/chyrplite/core/internal/modules/user"
	"github.com/chyrplite/core/internal/pkg/blob"
	"github.com/chyrplite/core/internal/pkg/mail"
	"github.com/chyrplite/core/internal/pkg/response"
)

func (a *App) registerRoutes(store blob.Store, resolver *rbac.Resolver) {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"uptime": time.Since(processStart).Truncate(time.Second).String(),
		})
	})

	if a.cfg.Storage.Driver == "local" {
		r.Static(a.cfg.Storage.BaseURL, a.cfg.Storage.StaticDir)
	}

	postSvc := post.NewService(db, store, a.logger)
	settingsSvc := settings.NewService(db, a.logger)
	categorySvc := category.NewService(db)
	mailer := mail.New(settingsSvc.MailConfig)
	commentSvc := comment.NewService(db, postSvc, a.logger,
		comment.WithNotifier(mailer, settingsSvc.AdminEmail))
	uploadSvc := upload.NewService(db, store, a.logger)
	userSvc := user.NewService(db)

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth(db))

	user.NewHandler(userSvc, resolver).RegisterRoutes(api, authMW)
	rbac.NewHandler(resolver).RegisterRoutes(api, authMW)
	settings.NewHandler(settingsSvc, resolver).RegisterRoutes(api, authMW)
	category.NewHandler(categorySvc, resolver).RegisterRoutes(api, authMW)
	post.NewHandler(postSvc, resolver).RegisterRoutes(api, authMW)
	comment.NewHandler(commentSvc, resolver).RegisterRoutes(api, authMW)
	upload.NewHandler(uploadSvc, resolver).RegisterRoutes(api, authMW)
}
