package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"job-connect-backend/internal/logging"
	"job-connect-backend/internal/model"
	"job-connect-backend/internal/store"
)

type entitySummary struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type entityPage struct {
	Entity   string `json:"entity"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Total    int64  `json:"total"`
	Items    any    `json:"items"`
}

// ListEntityTypes handles GET /api/entities.
func (h *Handler) ListEntityTypes(c *gin.Context) {
	ctx := c.Request.Context()

	var response []entitySummary
	for _, et := range model.All() {
		n, err := h.store.Count(ctx, et)
		if err != nil {
			log := logging.GetFromContext(ctx)
			log.Error().Err(err).Str("entity", et.Name).Msg("count failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to count entities"})
			return
		}
		response = append(response, entitySummary{Name: et.Name, Count: n})
	}
	c.JSON(http.StatusOK, response)
}

// ListEntities handles GET /api/entities/:type.
func (h *Handler) ListEntities(c *gin.Context) {
	et, ok := entityTypeParam(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown entity type"})
		return
	}

	opts := store.ListOptions{}
	var err error
	if v := c.Query("page"); v != "" {
		if opts.Page, err = strconv.Atoi(v); err != nil || opts.Page < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return
		}
	}
	if v := c.Query("page_size"); v != "" {
		if opts.PageSize, err = strconv.Atoi(v); err != nil || opts.PageSize < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid page_size"})
			return
		}
	}
	if v := c.Query("include_disabled"); v != "" {
		if opts.IncludeDisabled, err = strconv.ParseBool(v); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid include_disabled"})
			return
		}
	}

	opts = opts.Normalized()
	items, total, err := h.store.List(c.Request.Context(), et, opts)
	if err != nil {
		log := logging.GetFromContext(c.Request.Context())
		log.Error().Err(err).Str("entity", et.Name).Msg("list failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to list entities"})
		return
	}

	c.JSON(http.StatusOK, entityPage{
		Entity:   et.Name,
		Page:     opts.Page,
		PageSize: opts.PageSize,
		Total:    total,
		Items:    items,
	})
}

// GetEntity handles GET /api/entities/:type/:key, where key is an id or a uuid.
func (h *Handler) GetEntity(c *gin.Context) {
	et, ok := entityTypeParam(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown entity type"})
		return
	}

	obj, err := h.store.Get(c.Request.Context(), et, c.Param("key"))
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		log := logging.GetFromContext(c.Request.Context())
		log.Error().Err(err).Str("entity", et.Name).Msg("get failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to get entity"})
		return
	}
	c.JSON(http.StatusOK, obj)
}
