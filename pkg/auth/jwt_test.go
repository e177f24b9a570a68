package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "Alice", "alice@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestRequireAuthHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	token, err := GenerateToken(7, "Alice", "alice@example.com")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/my-books", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	RequireAuth()(c)

	assert.False(t, c.IsAborted())
	userID, ok := UserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint(7), userID)
}

func TestRequireAuthCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	token, err := GenerateToken(7, "Alice", "alice@example.com")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/my-books", nil)
	c.Request.AddCookie(&http.Cookie{Name: "token", Value: token})

	RequireAuth()(c)

	assert.False(t, c.IsAborted())
	userID, ok := UserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint(7), userID)
}

func TestRequireAuthMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/my-books", nil)

	RequireAuth()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/my-books", nil)
	c.Request.Header.Set("Authorization", "Bearer garbage")

	RequireAuth()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
