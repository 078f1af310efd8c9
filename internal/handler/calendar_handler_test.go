package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dresscirc/pricing-api/internal/models"
	"github.com/dresscirc/pricing-api/internal/service"
)

func newCalendarFixture(t *testing.T, snapshot *models.CalendarSnapshot) *CalendarHandler {
	t.Helper()
	calendars := service.NewCalendarService(&staticCalendarSource{snapshot: snapshot}, nil, nil)
	return NewCalendarHandler(calendars)
}

func TestCalendarHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newCalendarFixture(t, &models.CalendarSnapshot{
		Rows:        models.DefaultCalendarRows(),
		HasSegments: true,
		DroppedRows: 2,
		LoadedAt:    time.Now().UTC(),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/calendar", nil)
	c.Request = req

	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.OccasionRow   `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 7)
	assert.Equal(t, false, envelope.Meta["used_defaults"])
	assert.Equal(t, true, envelope.Meta["has_segments"])
	assert.Equal(t, float64(2), envelope.Meta["dropped_rows"])
}

func TestCalendarHandlerReload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newCalendarFixture(t, &models.CalendarSnapshot{
		Rows:         models.DefaultCalendarRows(),
		HasSegments:  true,
		UsedDefaults: true,
		LoadedAt:     time.Now().UTC(),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/calendar/reload", nil)
	c.Request = req

	h.Reload(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, float64(7), envelope.Data["rows"])
	assert.Equal(t, true, envelope.Data["used_defaults"])
}
