package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/middleware"
	"github.com/mx-space/journal/internal/models"
	"github.com/mx-space/journal/internal/pkg/jwt"
	"github.com/mx-space/journal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCreatesOnce(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first, err := svc.Resolve(ctx, "idp|42", "a@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := svc.Resolve(ctx, "idp|42", "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.UserModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestResolveUpdatesEmail(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	u, err := svc.Resolve(ctx, "idp|7", "old@example.com")
	require.NoError(t, err)

	u2, err := svc.Resolve(ctx, "idp|7", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, u2.ID)
	assert.Equal(t, "new@example.com", u2.Email)

	// An empty email claim leaves the stored one alone.
	u3, err := svc.Resolve(ctx, "idp|7", "")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u3.Email)

	stored, err := svc.GetByExternalID(ctx, "idp|7")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", stored.Email)
}

func TestResolveRejectsEmptySubject(t *testing.T) {
	svc := NewService(testutil.NewDB(t))
	_, err := svc.Resolve(context.Background(), "  ", "x@example.com")
	assert.ErrorIs(t, err, errMissingExternalID)
}

func TestGetByExternalID(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	created := testutil.CreateUser(t, db, "idp|known")

	u, err := svc.GetByExternalID(context.Background(), "idp|known")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, created.ID, u.ID)

	u, err = svc.GetByExternalID(context.Background(), "idp|unknown")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestMeAndSyncRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	svc := NewService(db)
	verifier, err := jwt.NewVerifier(jwt.Options{HMACSecret: "s"})
	require.NoError(t, err)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"), middleware.Auth(verifier, svc))

	token, err := jwt.Sign("s", jwt.SignOptions{Subject: "idp|me", Email: "me@example.com", TTL: time.Minute})
	require.NoError(t, err)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/me"},
		{http.MethodPost, "/api/users/sync"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, tc.path)

		var body struct {
			Data userResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "idp|me", body.Data.ExternalID)
		assert.Equal(t, "me@example.com", body.Data.Email)
		assert.NotEmpty(t, body.Data.ID)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
