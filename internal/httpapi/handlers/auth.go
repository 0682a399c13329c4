package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cobom/geoloc193/internal/auth"
	"github.com/cobom/geoloc193/internal/common"
	"github.com/cobom/geoloc193/internal/httpapi/middleware"
	"github.com/cobom/geoloc193/internal/models"
)

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

const tokenTTL = 8 * time.Hour

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "username and password required")
		return
	}

	var user models.User
	err := h.DB.WithContext(c.Request.Context()).
		Where("username = ?", req.Username).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusUnauthorized, 40110, "invalid credentials")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if !user.Active || !auth.CheckPassword(user.PasswordHash, req.Password) {
		common.Fail(c, http.StatusUnauthorized, 40110, "invalid credentials")
		return
	}

	// Rotating the stored token invalidates every earlier login.
	session, err := common.NewULID()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to create session")
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("session_token", session).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if h.Redis != nil {
		_ = h.Redis.SetSessionToken(c.Request.Context(), user.ID, session)
	}

	token, err := auth.SignJWT(user.ID, string(user.Role), session, h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}

	common.OK(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"name":     user.Name,
			"role":     user.Role,
			"station":  user.Station,
		},
	})
}

func (h *Handler) Logout(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40100, "not authenticated")
		return
	}

	if err := h.DB.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", caller.ID).
		Update("session_token", "").Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if h.Redis != nil {
		_ = h.Redis.DeleteSessionToken(c.Request.Context(), caller.ID)
	}

	common.OK(c, gin.H{"logged_out": true})
}

func (h *Handler) Me(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40100, "not authenticated")
		return
	}

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&user, caller.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "user not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, user)
}
