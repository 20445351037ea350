package handlers

import (
	"net/http"

	"taxly/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last recorded health snapshot. Before the first
// monitor tick the snapshot is zero-valued and reported as OK.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()

	code := http.StatusOK
	if !status.CheckedAt.IsZero() {
		healthy := status.Mongo
		for _, ok := range status.Redis {
			healthy = healthy && ok
		}
		if !healthy {
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, status)
}
