package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cobom/geoloc193/internal/auth"
	"github.com/cobom/geoloc193/internal/common"
	"github.com/cobom/geoloc193/internal/httpapi/middleware"
	"github.com/cobom/geoloc193/internal/models"
)

type createUserReq struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
	Station  string      `json:"station"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok || !caller.CanManageUsers() {
		common.Fail(c, http.StatusForbidden, 40301, "administrator role required")
		return
	}

	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" || req.Name == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "username, password and name required")
		return
	}
	if !models.ValidRole(req.Role) {
		common.Fail(c, http.StatusBadRequest, 10003, "unknown role")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         req.Role,
		Station:      req.Station,
		Active:       true,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "failed to create user (username may already exist)")
		return
	}
	common.OK(c, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok || !caller.CanListUsers() {
		common.Fail(c, http.StatusForbidden, 40302, "supervisor or administrator role required")
		return
	}

	var users []models.User
	if err := h.DB.WithContext(c.Request.Context()).
		Order("name ASC").
		Find(&users).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, users)
}

type updateUserReq struct {
	Name     *string      `json:"name"`
	Role     *models.Role `json:"role"`
	Station  *string      `json:"station"`
	Active   *bool        `json:"active"`
	Password *string      `json:"password"`
}

func (h *Handler) UpdateUser(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok || !caller.CanManageUsers() {
		common.Fail(c, http.StatusForbidden, 40301, "administrator role required")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10005, "invalid user id")
		return
	}

	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			common.Fail(c, http.StatusBadRequest, 10003, "unknown role")
			return
		}
		fields["role"] = *req.Role
	}
	if req.Station != nil {
		fields["station"] = *req.Station
	}
	if req.Active != nil {
		fields["active"] = *req.Active
		if !*req.Active {
			// Deactivation also kills the live session.
			fields["session_token"] = ""
		}
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			common.Fail(c, http.StatusInternalServerError, 20002, "failed to hash password")
			return
		}
		fields["password_hash"] = hash
	}
	if len(fields) == 0 {
		common.Fail(c, http.StatusBadRequest, 10006, "nothing to update")
		return
	}

	res := h.DB.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, 40401, "user not found")
		return
	}

	if req.Active != nil && !*req.Active && h.Redis != nil {
		_ = h.Redis.DeleteSessionToken(c.Request.Context(), id)
	}

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok || !caller.CanManageUsers() {
		common.Fail(c, http.StatusForbidden, 40301, "administrator role required")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10005, "invalid user id")
		return
	}
	if !caller.CanDeleteUser(id) {
		common.Fail(c, http.StatusForbidden, 40303, "cannot delete your own account")
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Delete(&models.User{}, id)
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, 40401, "user not found")
		return
	}

	if h.Redis != nil {
		_ = h.Redis.DeleteSessionToken(c.Request.Context(), id)
	}
	common.OK(c, gin.H{"deleted": true})
}
