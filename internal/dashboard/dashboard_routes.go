package dashboard

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	dash := r.Group("/dashboard")
	{
		dash.GET("/summary", h.Summary)
		dash.GET("/employees", h.Employees)
		dash.GET("/employees/:id", h.Employee)
	}

	r.POST("/sync", h.TriggerSync)
	r.GET("/sync/status", h.SyncStatus)
}

func RegisterUI(router *gin.Engine, h *Handler) {
	router.SetHTMLTemplate(pageTemplate)
	router.GET("/", h.Index)
	router.GET("/healthz", h.Healthz)
}
