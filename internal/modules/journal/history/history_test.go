package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/middleware"
	"github.com/mx-space/journal/internal/models"
	"github.com/mx-space/journal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryOrderAndAverage(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "idp|1")
	other := testutil.CreateUser(t, db, "idp|2")

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	scores := []float64{6, -2, 2}
	for i, score := range scores {
		e := testutil.CreateEntry(t, db, u.ID, "entry", testutil.Analysis("m", score))
		// Insert order is reversed relative to the update timeline.
		at := base.Add(time.Duration(len(scores)-i) * time.Hour)
		require.NoError(t, db.Model(e.Analysis).UpdateColumn("updated_at", at).Error)
	}
	testutil.CreateEntry(t, db, other.ID, "entry", testutil.Analysis("m", -10))

	h, err := NewService(db).Get(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, h.Analyses, 3)
	assert.Equal(t, []float64{2, -2, 6}, []float64{
		h.Analyses[0].SentimentScore, h.Analyses[1].SentimentScore, h.Analyses[2].SentimentScore,
	})
	assert.InDelta(t, 2.0, h.Average, 1e-9)
}

func TestHistoryEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "idp|1")

	r := gin.New()
	NewHandler(NewService(db)).RegisterRoutes(r.Group("/api"), func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, u.ID)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Analyses []models.EntryAnalysisModel `json:"analyses"`
			Average  float64                     `json:"average"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotNil(t, body.Data.Analyses)
	assert.Empty(t, body.Data.Analyses)
	assert.Zero(t, body.Data.Average)
}
