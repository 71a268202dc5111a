package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/middleware"
	"github.com/mx-space/journal/internal/models"
	"github.com/mx-space/journal/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Document is the exported JSON file.
type Document struct {
	UserID     string                     `json:"userId"`
	ExportedAt time.Time                  `json:"exportedAt"`
	Entries    []models.JournalEntryModel `json:"entries"`
}

// Result describes one uploaded export.
type Result struct {
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	Entries int    `json:"entries"`
	Bytes   int    `json:"bytes"`
}

type Service struct {
	db       *gorm.DB
	uploader Uploader
	bucket   string
	prefix   string
	log      *zap.Logger
	now      func() time.Time
}

func NewService(db *gorm.DB, uploader Uploader, bucket, prefix string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:       db,
		uploader: uploader,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		log:      log,
		now:      time.Now,
	}
}

// Export uploads every entry of the user, with analyses, as one JSON object
// under <prefix>/<userId>/<timestamp>.json.
func (s *Service) Export(ctx context.Context, userID string) (*Result, error) {
	entries := []models.JournalEntryModel{}
	if err := s.db.WithContext(ctx).
		Preload("Analysis").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	now := s.now().UTC()
	payload, err := json.MarshalIndent(Document{UserID: userID, ExportedAt: now, Entries: entries}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := path.Join(s.prefix, userID, now.Format("20060102T150405Z")+".json")
	if _, err := s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String("application/json"),
	}); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	s.log.Info("journal exported",
		zap.String("user", userID),
		zap.String("key", key),
		zap.Int("entries", len(entries)))
	return &Result{Bucket: s.bucket, Key: key, Entries: len(entries), Bytes: len(payload)}, nil
}

// Handler serves POST /export. A nil service means no bucket is configured.
type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, mw ...gin.HandlerFunc) {
	handlers := append([]gin.HandlerFunc{authMW}, mw...)
	rg.POST("/export", append(handlers, h.export)...)
}

func (h *Handler) export(c *gin.Context) {
	if h.svc == nil {
		response.NotFoundMsg(c, "export is not configured")
		return
	}
	res, err := h.svc.Export(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, res)
}
