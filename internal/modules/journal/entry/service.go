package entry

import (
	"context"
	"errors"
	"fmt"

	"github.com/mx-space/journal/internal/models"
	"github.com/mx-space/journal/internal/modules/processing/ai"
	"github.com/mx-space/journal/internal/pkg/pagination"
	"github.com/mx-space/journal/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Analyzer annotates entry content.
type Analyzer interface {
	Analyze(ctx context.Context, content string) ai.Outcome
}

type Service struct {
	db       *gorm.DB
	analyzer Analyzer
	log      *zap.Logger
}

func NewService(db *gorm.DB, analyzer Analyzer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, analyzer: analyzer, log: log}
}

// Create stores a new entry for userID and analyzes it. A failed analysis is
// logged and the entry is returned without one; BackfillMissing retries it.
func (s *Service) Create(ctx context.Context, userID, content string) (*models.JournalEntryModel, error) {
	e := models.JournalEntryModel{UserID: userID, Content: content}
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	if err := s.analyzeAndStore(ctx, &e); err != nil {
		s.log.Warn("new entry left without analysis", zap.String("entry", e.ID), zap.Error(err))
	}
	return s.Get(ctx, userID, e.ID)
}

// List returns one page of the user's entries, newest first.
func (s *Service) List(ctx context.Context, userID string, q pagination.Query) ([]models.JournalEntryModel, response.Pagination, error) {
	entries := []models.JournalEntryModel{}
	base := s.db.WithContext(ctx).Model(&models.JournalEntryModel{}).Where("user_id = ?", userID)
	pag, err := pagination.Paginate(base, q, &entries, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Analysis").Order("created_at DESC")
	})
	if err != nil {
		return nil, response.Pagination{}, fmt.Errorf("list entries: %w", err)
	}
	return entries, pag, nil
}

// Get loads an entry owned by userID together with its analysis. An entry
// owned by someone else is reported as ErrEntryNotFound.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.JournalEntryModel, error) {
	var e models.JournalEntryModel
	err := s.db.WithContext(ctx).Preload("Analysis").
		Where("id = ? AND user_id = ?", id, userID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("load entry: %w", err)
	}
	return &e, nil
}

// Update replaces the entry content, then runs exactly one analysis and one
// analysis upsert.
func (s *Service) Update(ctx context.Context, userID, id, content string) (*models.JournalEntryModel, error) {
	e, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(e).Update("content", content).Error; err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	e.Content = content

	if err := s.analyzeAndStore(ctx, e); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// Reanalyze runs the analysis again on the stored content.
func (s *Service) Reanalyze(ctx context.Context, userID, id string) (*models.JournalEntryModel, error) {
	e, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.analyzeAndStore(ctx, e); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// Delete removes the entry and its analysis for good.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e models.JournalEntryModel
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return fmt.Errorf("load entry: %w", err)
		}
		if err := tx.Unscoped().Where("entry_id = ?", id).Delete(&models.EntryAnalysisModel{}).Error; err != nil {
			return fmt.Errorf("delete analysis: %w", err)
		}
		if err := tx.Unscoped().Delete(&e).Error; err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		return nil
	})
}

// BackfillMissing analyzes up to limit entries that have no analysis, oldest
// first, and reports how many it stored. Failures are joined and do not stop
// the remaining entries.
func (s *Service) BackfillMissing(ctx context.Context, limit int) (int, error) {
	db := s.db.WithContext(ctx)
	var pending []models.JournalEntryModel
	if err := db.
		Where("id NOT IN (?)", db.Model(&models.EntryAnalysisModel{}).Select("entry_id")).
		Order("created_at ASC").
		Limit(limit).
		Find(&pending).Error; err != nil {
		return 0, fmt.Errorf("find unanalyzed entries: %w", err)
	}

	done := 0
	var errs []error
	for i := range pending {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.analyzeAndStore(ctx, &pending[i]); err != nil {
			errs = append(errs, err)
			continue
		}
		done++
	}
	if done > 0 {
		s.log.Info("backfilled entry analyses", zap.Int("count", done), zap.Int("failed", len(errs)))
	}
	return done, errors.Join(errs...)
}

func (s *Service) analyzeAndStore(ctx context.Context, e *models.JournalEntryModel) error {
	outcome := s.analyzer.Analyze(ctx, e.Content)
	a, err := outcome.Result()
	if err != nil {
		s.log.Warn("entry analysis failed",
			zap.String("entry", e.ID),
			zap.Stringer("outcome", outcome.Status),
			zap.Error(err))
		return fmt.Errorf("analyze entry %s: %w", e.ID, err)
	}
	if outcome.Status == ai.OutcomeRepaired {
		s.log.Info("entry analysis needed repair", zap.String("entry", e.ID))
	}
	return s.upsertAnalysis(ctx, e, a)
}

// upsertAnalysis writes a into the entry's single analysis row with one
// INSERT ... ON CONFLICT (entry_id) statement.
func (s *Service) upsertAnalysis(ctx context.Context, e *models.JournalEntryModel, a *ai.Analysis) error {
	row := models.EntryAnalysisModel{
		EntryID:        e.ID,
		UserID:         e.UserID,
		Mood:           a.Mood,
		Subject:        a.Subject,
		Negative:       a.Negative,
		Summary:        a.Summary,
		Color:          a.Color,
		SentimentScore: a.SentimentScore,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "entry_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "mood", "subject", "negative", "summary", "color",
			"sentiment_score", "updated_at", "deleted_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("store analysis for entry %s: %w", e.ID, err)
	}
	return nil
}
