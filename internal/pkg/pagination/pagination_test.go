package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/models"
	"github.com/mx-space/journal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func queryFor(rawQuery string) Query {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, Query{Page: 1, Size: DefaultSize}, queryFor(""))
	assert.Equal(t, Query{Page: 3, Size: 25}, queryFor("page=3&size=25"))
	assert.Equal(t, Query{Page: 1, Size: MaxSize}, queryFor("page=0&size=500"))
	assert.Equal(t, Query{Page: 1, Size: DefaultSize}, queryFor("page=abc&size=-4"))
}

func TestPaginate(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "idp|pager")
	other := testutil.CreateUser(t, db, "idp|other")
	for _, content := range []string{"one", "two", "three"} {
		testutil.CreateEntry(t, db, u.ID, content, nil)
	}
	testutil.CreateEntry(t, db, other.ID, "not mine", nil)

	scoped := func() *gorm.DB {
		return db.Model(&models.JournalEntryModel{}).Where("user_id = ?", u.ID)
	}
	byContent := func(tx *gorm.DB) *gorm.DB { return tx.Order("content ASC") }

	var page []models.JournalEntryModel
	meta, err := Paginate(scoped(), Query{Page: 2, Size: 2}, &page, byContent)
	require.NoError(t, err)
	assert.Equal(t, int64(3), meta.Total)
	assert.Equal(t, 2, meta.TotalPage)
	assert.False(t, meta.HasNextPage)
	require.Len(t, page, 1)
	assert.Equal(t, "two", page[0].Content)

	page = nil
	meta, err = Paginate(scoped(), Query{Page: 1, Size: 2}, &page, byContent)
	require.NoError(t, err)
	assert.True(t, meta.HasNextPage)
	require.Len(t, page, 2)
	assert.Equal(t, "one", page[0].Content)
	assert.Equal(t, "three", page[1].Content)
}
