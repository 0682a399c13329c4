package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cobom/geoloc193/internal/common"
	"github.com/cobom/geoloc193/internal/request"
)

// GetPublicRequest serves the requester-facing page data behind the
// capability link.
func (h *Handler) GetPublicRequest(c *gin.Context) {
	rec, err := h.Svc.GetForRequester(c.Request.Context(), c.Param("token"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, rec)
}

type shareLocationReq struct {
	Coordinates request.Coordinates `json:"coordinates"`
}

// ShareLocation records the requester's browser geolocation fix. Status
// promotion and geocoding follow from the coordinate write.
func (h *Handler) ShareLocation(c *gin.Context) {
	var req shareLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	rec, err := h.Svc.GetByLinkToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		failFromErr(c, err)
		return
	}

	updated, err := h.Svc.UpdateRequest(c.Request.Context(), nil, idString(rec), request.UpdateInput{
		Coordinates: &req.Coordinates,
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, updated)
}

// FindByPhone resumes an active case from the caller's phone number. The
// response never distinguishes "no record" from "record but unreachable".
func (h *Handler) FindByPhone(c *gin.Context) {
	phone := c.Query("phone")
	match, err := h.Svc.FindByPhoneSuffix(c.Request.Context(), phone, time.Now())
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, match)
}

type subscribeReq struct {
	Subscription string `json:"subscription"`
}

func (h *Handler) SubscribePush(c *gin.Context) {
	var req subscribeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	rec, err := h.Svc.GetByLinkToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		failFromErr(c, err)
		return
	}

	if err := h.Svc.SetPushSubscription(c.Request.Context(), idString(rec), req.Subscription); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"subscribed": true})
}

// ResolveShortLink expands an SMS short code into the full requester link.
func (h *Handler) ResolveShortLink(c *gin.Context) {
	token, err := h.Short.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		common.Fail(c, http.StatusNotFound, 40405, "short link not found")
		return
	}
	c.Redirect(http.StatusFound, h.Cfg.BaseURL+"/requests/"+token)
}
