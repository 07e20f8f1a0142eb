package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogshouse/dogs-api/internal/domain/entity"
	"github.com/dogshouse/dogs-api/internal/domain/repository"
	"github.com/dogshouse/dogs-api/pkg/helpers"
)

// stubUsers only answers GetByID; nothing else is reached by these tests.
type stubUsers struct {
	repository.UserRepository
	user *entity.User
}

func (s stubUsers) GetByID(context.Context, string) (*entity.User, error) {
	if s.user == nil {
		return nil, repository.ErrNotFound
	}
	return s.user, nil
}

func protectedRouter(t *testing.T, users repository.UserRepository, jwt *helpers.JWTManager, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(testLogger(), true))
	chain := append([]gin.HandlerFunc{Protect(users, jwt)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})
	r.GET("/secure", chain...)
	return r
}

func TestProtect(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	activeUser := &entity.User{ID: "user-1", Role: entity.RoleUser, Active: true}
	token, _, err := jwt.Generate("user-1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		users  repository.UserRepository
		header string
		status int
	}{
		{"MissingToken", stubUsers{user: activeUser}, "", http.StatusUnauthorized},
		{"MalformedHeader", stubUsers{user: activeUser}, "Token abc", http.StatusUnauthorized},
		{"GarbageToken", stubUsers{user: activeUser}, "Bearer not.a.jwt", http.StatusUnauthorized},
		{"DeletedUser", stubUsers{}, "Bearer " + token, http.StatusUnauthorized},
		{"Valid", stubUsers{user: activeUser}, "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(t, tt.users, jwt)
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestProtectAcceptsCookie(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	token, _, err := jwt.Generate("user-1")
	require.NoError(t, err)
	r := protectedRouter(t, stubUsers{user: &entity.User{ID: "user-1", Active: true}}, jwt)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestProtectRejectsTokenIssuedBeforePasswordChange(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	token, _, err := jwt.Generate("user-1")
	require.NoError(t, err)

	stale := &entity.User{
		ID:                "user-1",
		Active:            true,
		PasswordChangedAt: time.Now().Add(time.Minute),
	}
	r := protectedRouter(t, stubUsers{user: stale}, jwt)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "recently changed the password")
}

func TestProtectRejectsExpiredToken(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", -time.Minute)
	token, _, err := jwt.Generate("user-1")
	require.NoError(t, err)
	r := protectedRouter(t, stubUsers{user: &entity.User{ID: "user-1", Active: true}}, jwt)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "session has expired")
}

func TestRestrictTo(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	token, _, err := jwt.Generate("user-1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		role   string
		status int
	}{
		{"AdminAllowed", entity.RoleAdmin, http.StatusOK},
		{"SellerAllowed", entity.RoleSeller, http.StatusOK},
		{"PlainUserForbidden", entity.RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &entity.User{ID: "user-1", Role: tt.role, Active: true}
			r := protectedRouter(t, stubUsers{user: u}, jwt,
				RestrictTo(entity.RoleAdmin, entity.RoleSeller))
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestRequireVerified(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	token, _, err := jwt.Generate("user-1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		verified bool
		status   int
	}{
		{"Verified", true, http.StatusOK},
		{"Unverified", false, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &entity.User{ID: "user-1", Active: true, EmailVerify: tt.verified}
			r := protectedRouter(t, stubUsers{user: u}, jwt, RequireVerified())
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}
