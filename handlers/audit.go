package handlers

import (
	"strconv"

	"github.com/Angel-Soto43/AzalMechanicalSupport/utils"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs returns the enriched audit trail, newest first.
func ListAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	action := c.Query("action")

	var userID *uint
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err == nil {
			id := uint(parsed)
			userID = &id
		}
	}

	out, err := getServices().Audit.ListLogs(c.Request.Context(), page, pageSize, action, userID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, out)
}
