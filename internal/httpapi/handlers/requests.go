package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cobom/geoloc193/internal/common"
	"github.com/cobom/geoloc193/internal/httpapi/middleware"
	"github.com/cobom/geoloc193/internal/request"
)

type createRequestReq struct {
	RequesterName string `json:"requester_name"`
	Phone         string `json:"phone"`
}

func (h *Handler) CreateRequest(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40100, "not authenticated")
		return
	}

	var req createRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	rec, err := h.Svc.CreateRequest(c.Request.Context(), caller, req.RequesterName, req.Phone)
	if err != nil {
		failFromErr(c, err)
		return
	}

	// The short form goes out by SMS; failure to mint one is not fatal.
	shortURL := ""
	if h.Short != nil {
		code, err := h.Short.CreateFor(c.Request.Context(), rec.LinkToken)
		if err != nil {
			log.Printf("[CreateRequest] short link failed request=%d err=%v", rec.ID, err)
		} else {
			shortURL = h.Cfg.BaseURL + "/s/" + code
		}
	}

	common.OK(c, gin.H{
		"request":   rec,
		"link_url":  h.Cfg.BaseURL + "/requests/" + rec.LinkToken,
		"short_url": shortURL,
	})
}

func (h *Handler) ListRequests(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40100, "not authenticated")
		return
	}

	var filters request.ListFilters
	if v := c.Query("status"); v != "" {
		st := request.Status(v)
		filters.Status = &st
	}
	filters.IncludeArchived = c.Query("include_archived") == "true"

	recs, err := h.Svc.ListRequests(c.Request.Context(), caller, filters)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, recs)
}

func (h *Handler) GetRequest(c *gin.Context) {
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
	common.OK(c, rec)
}

type updateRequestReq struct {
	Status      *request.Status      `json:"status"`
	Coordinates *request.Coordinates `json:"coordinates"`
	Address     *string              `json:"address"`
	City        *string              `json:"city"`
	Street      *string              `json:"street"`
	PlusCode    *string              `json:"plus_code"`
}

func (h *Handler) UpdateRequest(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40100, "not authenticated")
		return
	}

	var req updateRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	rec, err := h.Svc.UpdateRequest(c.Request.Context(), &caller, c.Param("id"), request.UpdateInput{
		Status:      req.Status,
		Coordinates: req.Coordinates,
		Address:     req.Address,
		City:        req.City,
		Street:      req.Street,
		PlusCode:    req.PlusCode,
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, rec)
}

// RunArchiveSweep lets an external cron trigger the same sweep the background
// ticker runs.
func (h *Handler) RunArchiveSweep(c *gin.Context) {
	archived, err := h.Svc.SweepArchive(c.Request.Context(), time.Now())
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"archived": archived})
}
