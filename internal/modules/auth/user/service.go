package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mx-space/journal/internal/models"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Resolve returns the internal user for an identity-provider subject,
// creating it on first sight. A changed non-empty email is written back.
func (s *Service) Resolve(ctx context.Context, externalID, email string) (*models.UserModel, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, errMissingExternalID
	}
	email = strings.TrimSpace(email)
	db := s.db.WithContext(ctx)

	var u models.UserModel
	err := db.Where(models.UserModel{ExternalID: externalID}).
		Attrs(models.UserModel{Email: email}).
		FirstOrCreate(&u).Error
	if err != nil {
		// A concurrent first request may have inserted the row already.
		if ferr := db.Where("external_id = ?", externalID).First(&u).Error; ferr != nil {
			return nil, fmt.Errorf("resolve user: %w", err)
		}
	}

	if email != "" && u.Email != email {
		if err := db.Model(&u).Update("email", email).Error; err != nil {
			return nil, fmt.Errorf("update user email: %w", err)
		}
		u.Email = email
	}
	return &u, nil
}

// GetByExternalID looks a user up without creating it.
func (s *Service) GetByExternalID(ctx context.Context, externalID string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.WithContext(ctx).Where("external_id = ?", strings.TrimSpace(externalID)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
