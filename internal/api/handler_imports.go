package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"job-connect-backend/internal/importer"
	"job-connect-backend/internal/logging"
)

type latestImport struct {
	Running bool `json:"running"`
	*importer.Report
}

// GetLatestImport handles GET /api/imports/latest.
func (h *Handler) GetLatestImport(c *gin.Context) {
	report, ok := h.importer.LastReport()
	running := h.importer.Running()
	if !ok && !running {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no import has run yet"})
		return
	}
	c.JSON(http.StatusOK, latestImport{Running: running, Report: report})
}

// TriggerImport handles POST /api/imports. The import runs within the request.
func (h *Handler) TriggerImport(c *gin.Context) {
	report, err := h.importer.ImportOnce(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, report)
	case errors.Is(err, importer.ErrImportRunning):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, importer.ErrDataFile), errors.Is(err, importer.ErrNoEntities):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log := logging.GetFromContext(c.Request.Context())
		log.Error().Err(err).Msg("triggered import failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "import failed", "report": report})
	}
}
