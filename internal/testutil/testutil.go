// Package testutil provides an in-memory database and fixtures for service
// and handler tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mx-space/journal/internal/config"
	"github.com/mx-space/journal/internal/database"
	"github.com/mx-space/journal/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB opens a migrated in-memory SQLite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, dbSeq.Add(1))
	db, err := database.Open(config.DriverSQLite, dsn, logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user whose external id is externalID.
func CreateUser(t testing.TB, db *gorm.DB, externalID string) *models.UserModel {
	t.Helper()
	u := &models.UserModel{ExternalID: externalID, Email: externalID + "@example.com"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateEntry inserts an entry for userID, with an analysis when a is non-nil.
func CreateEntry(t testing.TB, db *gorm.DB, userID, content string, a *models.EntryAnalysisModel) *models.JournalEntryModel {
	t.Helper()
	entry := &models.JournalEntryModel{UserID: userID, Content: content}
	require.NoError(t, db.Create(entry).Error)
	if a != nil {
		a.EntryID = entry.ID
		a.UserID = userID
		require.NoError(t, db.Create(a).Error)
		entry.Analysis = a
	}
	return entry
}

// Analysis returns a valid analysis row with the given score.
func Analysis(mood string, score float64) *models.EntryAnalysisModel {
	return &models.EntryAnalysisModel{
		Mood:           mood,
		Subject:        "day",
		Summary:        "A " + mood + " day.",
		Color:          "#33aa55",
		Negative:       score < 0,
		SentimentScore: score,
	}
}
