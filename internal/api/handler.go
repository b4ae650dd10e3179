package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"job-connect-backend/internal/importer"
	"job-connect-backend/internal/model"
	"job-connect-backend/internal/store"
)

// Importer is the import service as the API sees it.
type Importer interface {
	ImportOnce(ctx context.Context) (*importer.Report, error)
	LastReport() (*importer.Report, bool)
	Running() bool
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	importer Importer
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, imp Importer) *Handler {
	return &Handler{
		store:    s,
		importer: imp,
	}
}

func entityTypeParam(c *gin.Context) (model.EntityType, bool) {
	return model.Lookup(c.Param("type"))
}
