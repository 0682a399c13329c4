package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cobom/geoloc193/internal/common"
	"github.com/cobom/geoloc193/internal/config"
	"github.com/cobom/geoloc193/internal/request"
	"github.com/cobom/geoloc193/internal/shortlink"
	"github.com/cobom/geoloc193/internal/store/redisstore"
	"github.com/cobom/geoloc193/internal/upload"
)

type Handler struct {
	DB      *gorm.DB
	Cfg     config.Config
	Redis   *redisstore.Store
	Svc     *request.Service
	Uploads *upload.Store
	Short   *shortlink.Store
}

func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, svc *request.Service, uploads *upload.Store, short *shortlink.Store) *Handler {
	return &Handler{
		DB:      db,
		Cfg:     cfg,
		Redis:   rds,
		Svc:     svc,
		Uploads: uploads,
		Short:   short,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

// failFromErr maps service sentinels onto the response envelope. Anything
// unrecognized is a 500 with no detail leaked to the client.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, request.ErrInvalidInput):
		common.Fail(c, http.StatusBadRequest, 10010, err.Error())
	case errors.Is(err, request.ErrForbidden):
		common.Fail(c, http.StatusForbidden, 40300, "not allowed")
	case errors.Is(err, request.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40404, "request not found")
	case errors.Is(err, request.ErrConflict):
		common.Fail(c, http.StatusConflict, 40900, "record changed concurrently, retry")
	case errors.Is(err, request.ErrLinkExpired):
		common.Fail(c, http.StatusGone, 41001, "link expired")
	case errors.Is(err, request.ErrChatExpired):
		common.Fail(c, http.StatusGone, 41002, "chat window closed")
	default:
		common.Fail(c, http.StatusInternalServerError, 20001, "internal error")
	}
}
