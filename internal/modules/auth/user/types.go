package user

import (
	"errors"
	"time"

	"github.com/mx-space/journal/internal/models"
)

type userResponse struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"externalId"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toResponse(u *models.UserModel) userResponse {
	return userResponse{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Email:      u.Email,
		CreatedAt:  u.CreatedAt,
	}
}

var errMissingExternalID = errors.New("identity subject is empty")
