package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getHealth answers liveness checks. It is served at the root, outside the
// documented /api/v1 group. The ledger is in memory, so a running process can serve.
func getHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
