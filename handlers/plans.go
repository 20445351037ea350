package handlers

import (
	"net/http"

	"taxly/services/plans"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PlanHandler serves the public plan catalog.
type PlanHandler struct {
	Catalog plans.Catalog
}

func NewPlanHandler(catalog plans.Catalog) *PlanHandler {
	return &PlanHandler{Catalog: catalog}
}

// ListPlansHandler returns all plans sorted by price.
func (h *PlanHandler) ListPlansHandler(c *gin.Context) {
	all, err := h.Catalog.ListPlans(c.Request.Context())
	if err != nil {
		getLogger(c).Error("failed to list plans", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": all})
}
