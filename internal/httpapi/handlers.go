package httpapi

import (
	"errors"
	"net/http"
	"time"

	"hotline-router/internal/reporting"
	"hotline-router/internal/representatives"
	"hotline-router/internal/routing"
	"hotline-router/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Engine        *routing.Engine
	Directory     RepresentativeLister
	Reports       *reporting.Service
	Events        Subscriber
	HotlineNumber string

	// Now is used for default report ranges.
	Now func() time.Time
}

type RepresentativeLister interface {
	List() []representatives.Representative
}

// --- Hotline ---

func (h Handlers) GetHotline(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"number":  h.HotlineNumber,
		"display": routing.FormatPhoneNumber(h.HotlineNumber),
	})
}

// --- Calls ---

type initiateCallRequest struct {
	UserID string `json:"user_id"`
}

func (h Handlers) InitiateCall(c *gin.Context) {
	var req initiateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.Engine.InitiateCall(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, routing.ErrUserIDRequired) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
			return
		}
		logger.FromGin(c).Error("initiate call failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "initiate call failed"})
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h Handlers) GetCallStatus(c *gin.Context) {
	st, ok := h.Engine.CallStatus(c.Param("call_id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h Handlers) EndCall(c *gin.Context) {
	if !h.Engine.EndCall(c.Request.Context(), c.Param("call_id")) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ended": true})
}

func (h Handlers) ListActiveCalls(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"calls": h.Engine.ActiveCalls()})
}

func (h Handlers) ListQueue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"calls": h.Engine.CallQueue()})
}

func (h Handlers) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Engine.Stats())
}

// --- Representatives ---

type setAvailabilityRequest struct {
	Available *bool `json:"available"`
}

func (h Handlers) ListRepresentatives(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"representatives": h.Directory.List()})
}

func (h Handlers) SetAvailability(c *gin.Context) {
	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "available required"})
		return
	}
	err := h.Engine.SetAvailability(c.Request.Context(), c.Param("id"), *req.Available)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "available": *req.Available})
	case errors.Is(err, routing.ErrRepresentativeNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "representative not found"})
	case errors.Is(err, routing.ErrRepresentativeBusy):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "representative is on a call"})
	default:
		logger.FromGin(c).Error("set availability failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "set availability failed"})
	}
}

// --- Reports ---

// CallsSummary reports over [from, to). Both default to the last 24 hours.
func (h Handlers) CallsSummary(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	r := reporting.TimeRange{To: now().UTC()}
	r.From = r.To.Add(-24 * time.Hour)

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		r.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		r.To = t
	}

	out, err := h.Reports.CallsSummary(c.Request.Context(), r)
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
			return
		}
		logger.FromGin(c).Error("calls summary failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls summary failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}
