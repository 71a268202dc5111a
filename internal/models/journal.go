package models

// JournalEntryModel is a single free-text journal entry.
type JournalEntryModel struct {
	Base
	UserID   string              `json:"userId"   gorm:"type:char(36);index;not null"`
	Content  string              `json:"content"  gorm:"type:text"`
	Analysis *EntryAnalysisModel `json:"analysis" gorm:"foreignKey:EntryID"`
}

func (JournalEntryModel) TableName() string { return "journal_entries" }

// EntryAnalysisModel holds the model-derived annotations for one entry.
// SentimentScore is kept within [-10, 10].
type EntryAnalysisModel struct {
	Base
	EntryID        string  `json:"entryId"        gorm:"type:char(36);uniqueIndex;not null"`
	UserID         string  `json:"userId"         gorm:"type:char(36);index;not null"`
	Mood           string  `json:"mood"           gorm:"type:text"`
	Subject        string  `json:"subject"        gorm:"type:text"`
	Negative       bool    `json:"negative"       gorm:"not null;default:false"`
	Summary        string  `json:"summary"        gorm:"type:text"`
	Color          string  `json:"color"          gorm:"size:16"`
	SentimentScore float64 `json:"sentimentScore" gorm:"not null;default:0"`
}

func (EntryAnalysisModel) TableName() string { return "entry_analyses" }
