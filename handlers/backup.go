package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Angel-Soto43/AzalMechanicalSupport/logger"
	"github.com/Angel-Soto43/AzalMechanicalSupport/services"
	"github.com/Angel-Soto43/AzalMechanicalSupport/utils"

	"github.com/gin-gonic/gin"
)

// ExportBackup streams a zip of the latest files uploaded in the requested
// range, folder structure preserved. The archive is written straight to the
// response; headers go out before the first entry.
func ExportBackup(c *gin.Context) {
	rng := c.DefaultQuery("range", services.BackupRangeWeek)

	in := services.BackupInput{Range: rng}
	if rng == services.BackupRangeCustom {
		start, err := time.ParseInLocation("2006-01-02", c.Query("start"), time.Local)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
			return
		}
		end, err := time.ParseInLocation("2006-01-02", c.Query("end"), time.Local)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
			return
		}
		in.Start = start
		in.End = end
	}

	filename := fmt.Sprintf("backup_%s_%s.zip", rng, time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	result, err := getServices().Backup.BuildArchive(c.Request.Context(), actorFromContext(c), c.Writer, in)
	if err != nil {
		if !c.Writer.Written() {
			c.Header("Content-Type", "application/json")
			c.Header("Content-Disposition", "")
			respondServiceError(c, err)
			return
		}
		// Archive bytes are already on the wire; all that is left is to stop.
		c.Abort()
		return
	}

	logger.Infof("backup export completed: %d files (%s)", result.Count, rng)
}
