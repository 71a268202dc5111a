package question

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/middleware"
	"github.com/mx-space/journal/internal/models"
	"github.com/mx-space/journal/internal/modules/processing/ai"
	"github.com/mx-space/journal/internal/pkg/response"
	"gorm.io/gorm"
)

// Answerer answers a question from a set of journal entries.
type Answerer interface {
	Answer(ctx context.Context, question string, docs []ai.Document) (string, error)
}

type AskDTO struct {
	Question string `json:"question" binding:"required"`
}

type Service struct {
	db *gorm.DB
	qa Answerer
}

func NewService(db *gorm.DB, qa Answerer) *Service { return &Service{db: db, qa: qa} }

// Ask answers question from the user's own entries.
func (s *Service) Ask(ctx context.Context, userID, question string) (string, error) {
	var entries []models.JournalEntryModel
	if err := s.db.WithContext(ctx).
		Select("id", "content", "created_at").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return "", fmt.Errorf("load entries: %w", err)
	}

	docs := make([]ai.Document, len(entries))
	for i, e := range entries {
		docs[i] = ai.Document{ID: e.ID, Content: e.Content, CreatedAt: e.CreatedAt}
	}
	return s.qa.Answer(ctx, question, docs)
}

// Handler serves POST /question. A nil service means no embedding provider
// is configured and the route answers 503.
type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, mw ...gin.HandlerFunc) {
	handlers := append([]gin.HandlerFunc{authMW}, mw...)
	rg.POST("/question", append(handlers, h.ask)...)
}

func (h *Handler) ask(c *gin.Context) {
	if h.svc == nil {
		response.ServiceUnavailable(c, "question answering is not configured")
		return
	}
	var dto AskDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(dto.Question) == "" {
		response.BadRequest(c, "question is required")
		return
	}

	answer, err := h.svc.Ask(c.Request.Context(), middleware.CurrentUserID(c), dto.Question)
	switch {
	case err == nil:
		response.OK(c, answer)
	case errors.Is(err, ai.ErrEmptyQuestion):
		response.BadRequest(c, "question is required")
	case errors.Is(err, ai.ErrModelBusy):
		_ = c.Error(err)
		response.ServiceUnavailable(c, "model is busy, try again shortly")
	default:
		response.InternalError(c, err)
	}
}
