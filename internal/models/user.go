package models

// UserModel maps an identity-provider subject to an internal user id.
type UserModel struct {
	Base
	ExternalID string              `json:"externalId" gorm:"size:191;uniqueIndex;not null"`
	Email      string              `json:"email"      gorm:"size:320"`
	Entries    []JournalEntryModel `json:"-"          gorm:"foreignKey:UserID"`
}

func (UserModel) TableName() string { return "users" }
