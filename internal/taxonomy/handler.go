package taxonomy

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"annostat-backend/internal/shared/server/respond"
)

// Handler serves the annotation template.
type Handler struct {
	template Template
}

// NewHandler creates a handler serving the given template.
func NewHandler(t Template) *Handler {
	return &Handler{template: t}
}

// RegisterRoutes mounts the template routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/template", h.get)
}

func (h *Handler) get(c *gin.Context) {
	respond.JSON(c, http.StatusOK, h.template)
}
