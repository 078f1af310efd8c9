package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dresscirc/pricing-api/internal/service"
	"github.com/dresscirc/pricing-api/pkg/response"
)

// CalendarHandler exposes the occasion calendar endpoints.
type CalendarHandler struct {
	calendars *service.CalendarService
}

// NewCalendarHandler constructs handler.
func NewCalendarHandler(calendars *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendars: calendars}
}

// Get godoc
// @Summary Current normalized occasion calendar
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar [get]
func (h *CalendarHandler) Get(c *gin.Context) {
	snapshot, err := h.calendars.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot.Rows, map[string]interface{}{
		"used_defaults": snapshot.UsedDefaults,
		"has_segments":  snapshot.HasSegments,
		"dropped_rows":  snapshot.DroppedRows,
		"loaded_at":     snapshot.LoadedAt,
	})
}

// Reload godoc
// @Summary Reload the occasion calendar from its source
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /calendar/reload [post]
func (h *CalendarHandler) Reload(c *gin.Context) {
	snapshot, err := h.calendars.Reload(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"rows":          len(snapshot.Rows),
		"dropped_rows":  snapshot.DroppedRows,
		"used_defaults": snapshot.UsedDefaults,
		"loaded_at":     snapshot.LoadedAt,
	})
}
