package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"job-connect-backend/internal/logging"
	"job-connect-backend/internal/store"
)

// GetDeviceStateMachine handles GET /api/state-machines/device/:id.
func (h *Handler) GetDeviceStateMachine(c *gin.Context) {
	getStateMachine(c, func(ctx context.Context, id int64) (any, error) {
		return h.store.DeviceStateMachine(ctx, id)
	})
}

// GetSRStateMachine handles GET /api/state-machines/sr/:id.
func (h *Handler) GetSRStateMachine(c *gin.Context) {
	getStateMachine(c, func(ctx context.Context, id int64) (any, error) {
		return h.store.SRStateMachine(ctx, id)
	})
}

func getStateMachine(c *gin.Context, load func(ctx context.Context, id int64) (any, error)) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid state machine ID"})
		return
	}

	sm, err := load(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "state machine not found"})
		return
	}
	if err != nil {
		log := logging.GetFromContext(c.Request.Context())
		log.Error().Err(err).Int64("id", id).Msg("failed to load state machine")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load state machine"})
		return
	}
	c.JSON(http.StatusOK, sm)
}
