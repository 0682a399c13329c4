package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cobom/geoloc193/internal/common"
	"github.com/cobom/geoloc193/internal/httpapi/middleware"
	"github.com/cobom/geoloc193/internal/request"
)

type postMessageReq struct {
	Kind     request.Kind `json:"kind"`
	Content  string       `json:"content"`
	MediaURL *string      `json:"media_url"`
	FileName *string      `json:"file_name"`
}

func (h *Handler) PostMessageStaff(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40100, "not authenticated")
		return
	}

	var req postMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	rec, err := h.Svc.GetForCaller(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}

	msg, err := h.Svc.PostMessage(c.Request.Context(), idString(rec), request.SenderAgent, req.Kind, req.Content, req.MediaURL, req.FileName)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, msg)
}

func (h *Handler) ListMessagesStaff(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40100, "not authenticated")
		return
	}

	rec, err := h.Svc.GetForCaller(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}

	msgs, err := h.Svc.ListMessages(c.Request.Context(), idString(rec), request.SenderAgent)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, msgs)
}

func (h *Handler) UnreadCountStaff(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40100, "not authenticated")
		return
	}

	rec, err := h.Svc.GetForCaller(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}

	n, err := h.Svc.UnreadCount(c.Request.Context(), idString(rec), request.SenderAgent)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"unread": n})
}

func (h *Handler) MarkReadStaff(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40100, "not authenticated")
		return
	}

	rec, err := h.Svc.GetForCaller(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}

	if err := h.Svc.MarkRead(c.Request.Context(), idString(rec), request.SenderAgent); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"marked": true})
}

func (h *Handler) PostMessagePublic(c *gin.Context) {
	var req postMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	rec, err := h.Svc.GetByLinkToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		failFromErr(c, err)
		return
	}

	msg, err := h.Svc.PostMessage(c.Request.Context(), idString(rec), request.SenderRequester, req.Kind, req.Content, req.MediaURL, req.FileName)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, msg)
}

func (h *Handler) ListMessagesPublic(c *gin.Context) {
	rec, err := h.Svc.GetByLinkToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		failFromErr(c, err)
		return
	}

	msgs, err := h.Svc.ListMessages(c.Request.Context(), idString(rec), request.SenderRequester)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, msgs)
}

func (h *Handler) UnreadCountPublic(c *gin.Context) {
	rec, err := h.Svc.GetByLinkToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		failFromErr(c, err)
		return
	}

	n, err := h.Svc.UnreadCount(c.Request.Context(), idString(rec), request.SenderRequester)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"unread": n})
}

// idString renders the resolved record's primary key so downstream lookups are
// unambiguous regardless of how the record was addressed.
func idString(rec *request.Request) string {
	return strconv.FormatUint(rec.ID, 10)
}
