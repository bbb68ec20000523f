package dashboard

import (
	"net/http"
	"time"

	"github.com/MySundayS/employee-lita/internal/shared/apperror"
	"github.com/MySundayS/employee-lita/internal/shared/response"
	"github.com/MySundayS/employee-lita/internal/store"
	"github.com/MySundayS/employee-lita/internal/syncer"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service     Service
	syncService syncer.Service
	invalidate  func(*gin.Context) // drops snapshot cache after manual sync
	refresh     time.Duration
}

func NewHandler(service Service, syncService syncer.Service, loader *SnapshotLoader, refresh time.Duration) *Handler {
	h := &Handler{
		service:     service,
		syncService: syncService,
		refresh:     refresh,
	}
	h.invalidate = func(c *gin.Context) {
		if loader != nil {
			loader.Invalidate(c.Request.Context())
		}
	}
	return h
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// asOfDate reads the optional ?date=YYYY-MM-DD query, defaulting to today.
func asOfDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	t, err := time.ParseInLocation(store.DateLayout, raw, time.Local)
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput,
			"date must be YYYY-MM-DD", err.Error())
		return time.Time{}, false
	}
	return t, true
}

func (h *Handler) Summary(c *gin.Context) {
	asOf, ok := asOfDate(c)
	if !ok {
		return
	}
	resp, err := h.service.Summary(c.Request.Context(), asOf)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Employees(c *gin.Context) {
	asOf, ok := asOfDate(c)
	if !ok {
		return
	}
	resp, err := h.service.Employees(c.Request.Context(), asOf)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Employee(c *gin.Context) {
	asOf, ok := asOfDate(c)
	if !ok {
		return
	}
	resp, err := h.service.Employee(c.Request.Context(), c.Param("id"), asOf)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// TriggerSync runs one synchronous sync pass, the dashboard's manual
// "sync now" button. Concurrent triggers get 409.
func (h *Handler) TriggerSync(c *gin.Context) {
	result, err := h.syncService.Sync(c.Request.Context(), nil)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	h.invalidate(c)
	response.Success(c, http.StatusOK, gin.H{
		"written": result.Written,
		"fetched": result.Fetched,
	})
}

func (h *Handler) SyncStatus(c *gin.Context) {
	response.Success(c, http.StatusOK, h.syncService.Status())
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Index renders the HTML dashboard with its auto-refresh timer.
func (h *Handler) Index(c *gin.Context) {
	asOf := time.Now()
	summary, err := h.service.Summary(c.Request.Context(), asOf)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	employees, err := h.service.Employees(c.Request.Context(), asOf)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.HTML(http.StatusOK, "dashboard.tmpl", gin.H{
		"RefreshSeconds": int(h.refresh.Seconds()),
		"Summary":        summary,
		"Employees":      employees,
		"Status":         h.syncService.Status(),
		"RatePercent":    int(summary.Rate * 100),
	})
}
