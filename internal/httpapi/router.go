package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cobom/geoloc193/internal/common"
	"github.com/cobom/geoloc193/internal/config"
	"github.com/cobom/geoloc193/internal/httpapi/handlers"
	"github.com/cobom/geoloc193/internal/httpapi/middleware"
	"github.com/cobom/geoloc193/internal/request"
	"github.com/cobom/geoloc193/internal/shortlink"
	"github.com/cobom/geoloc193/internal/store/redisstore"
	"github.com/cobom/geoloc193/internal/upload"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, svc *request.Service, uploads *upload.Store, short *shortlink.Store, sessions middleware.SessionChecker) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.NewHandler(db, cfg, rds, svc, uploads, short)

	r.GET("/ping", h.Ping)

	// auth
	r.POST("/login", h.Login)

	// staff (JWT + live session required)
	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret, sessions))
	authGroup.POST("/logout", h.Logout)
	authGroup.GET("/me", h.Me)

	authGroup.POST("/requests", h.CreateRequest)
	authGroup.GET("/requests", h.ListRequests)
	authGroup.GET("/requests/:id", h.GetRequest)
	authGroup.PATCH("/requests/:id", h.UpdateRequest)
	authGroup.GET("/requests/:id/messages", h.ListMessagesStaff)
	authGroup.POST("/requests/:id/messages", h.PostMessageStaff)
	authGroup.GET("/requests/:id/messages/unread", h.UnreadCountStaff)
	authGroup.POST("/requests/:id/messages/read", h.MarkReadStaff)

	authGroup.GET("/users", h.ListUsers)
	authGroup.POST("/users", h.CreateUser)
	authGroup.PATCH("/users/:id", h.UpdateUser)
	authGroup.DELETE("/users/:id", h.DeleteUser)

	authGroup.POST("/uploads/:kind", h.Upload)

	// requester flow: the link token is the credential
	r.GET("/public/find-by-phone", h.FindByPhone)
	r.GET("/public/requests/:token", h.GetPublicRequest)
	r.POST("/public/requests/:token/location", h.ShareLocation)
	r.GET("/public/requests/:token/messages", h.ListMessagesPublic)
	r.POST("/public/requests/:token/messages", h.PostMessagePublic)
	r.GET("/public/requests/:token/messages/unread", h.UnreadCountPublic)
	r.POST("/public/requests/:token/subscribe", h.SubscribePush)
	r.POST("/public/uploads/:kind", h.Upload)

	r.GET("/uploads/:kind/:file", h.ServeUpload)
	r.GET("/s/:code", h.ResolveShortLink)

	// external cron hook; the sweep itself is idempotent
	r.POST("/cron/archive", h.RunArchiveSweep)

	return r
}
