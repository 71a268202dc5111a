package entry

import "errors"

// DefaultContent is stored when a create request carries no content.
const DefaultContent = "new entry"

type CreateEntryDTO struct {
	Content *string `json:"content"`
}

type EntryUpdates struct {
	Content *string `json:"content" binding:"required"`
}

type UpdateEntryDTO struct {
	Updates *EntryUpdates `json:"updates" binding:"required"`
}

type deletedResponse struct {
	ID string `json:"id"`
}

var ErrEntryNotFound = errors.New("entry not found")
