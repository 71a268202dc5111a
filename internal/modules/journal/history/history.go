package history

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/middleware"
	"github.com/mx-space/journal/internal/models"
	"github.com/mx-space/journal/internal/pkg/response"
	"gorm.io/gorm"
)

// History is the sentiment timeline shown on the dashboard.
type History struct {
	Analyses []models.EntryAnalysisModel `json:"analyses"`
	Average  float64                     `json:"average"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Get returns every analysis of the user, oldest update first, with the mean
// sentiment score (0 when there are none).
func (s *Service) Get(ctx context.Context, userID string) (*History, error) {
	analyses := []models.EntryAnalysisModel{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at ASC").
		Find(&analyses).Error; err != nil {
		return nil, fmt.Errorf("load analyses: %w", err)
	}

	h := &History{Analyses: analyses}
	if len(analyses) > 0 {
		var sum float64
		for _, a := range analyses {
			sum += a.SentimentScore
		}
		h.Average = sum / float64(len(analyses))
	}
	return h, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/history", authMW, h.get)
}

func (h *Handler) get(c *gin.Context) {
	hist, err := h.svc.Get(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, hist)
}
