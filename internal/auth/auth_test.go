package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *JWTManager {
	t.Helper()
	jm, err := NewJWTManager("test-secret")
	require.NoError(t, err)
	return jm
}

func TestJWTManager(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a signing key", func(t *testing.T) {
		_, err := NewJWTManager("")
		require.Error(t, err)
	})

	t.Run("round trip preserves client id", func(t *testing.T) {
		jm := newManager(t)
		token, err := jm.GenerateToken(ctx, "ci-pipeline", time.Hour)
		require.NoError(t, err)

		claims, err := jm.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "ci-pipeline", claims.ClientID)
		assert.Equal(t, "fastapi-forge", claims.Issuer)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		jm := newManager(t)
		token, err := jm.GenerateToken(ctx, "ci-pipeline", -time.Minute)
		require.NoError(t, err)

		_, err = jm.ValidateToken(ctx, token)
		require.Error(t, err)
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		jm := newManager(t)
		token, err := jm.GenerateToken(ctx, "ci-pipeline", time.Hour)
		require.NoError(t, err)

		other, err := NewJWTManager("different-secret")
		require.NoError(t, err)
		_, err = other.ValidateToken(ctx, token)
		require.Error(t, err)
	})

	t.Run("refresh issues a valid replacement", func(t *testing.T) {
		jm := newManager(t)
		token, err := jm.GenerateToken(ctx, "ci-pipeline", time.Hour)
		require.NoError(t, err)

		refreshed, err := jm.RefreshToken(ctx, token, time.Hour)
		require.NoError(t, err)
		claims, err := jm.ValidateToken(ctx, refreshed)
		require.NoError(t, err)
		assert.Equal(t, "ci-pipeline", claims.ClientID)
	})
}

func protectedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"client_id": c.GetString("client_id")})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	jm := newManager(t)
	r := protectedRouter(RequireAuth(jm))

	t.Run("missing header rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid bearer token accepted", func(t *testing.T) {
		token, err := jm.GenerateToken(context.Background(), "ci-pipeline", time.Hour)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ci-pipeline")
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireServiceAuth(t *testing.T) {
	jm := newManager(t)
	r := protectedRouter(RequireServiceAuth(jm, "service-key"))

	t.Run("api key accepted", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("X-API-Key", "service-key")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong api key rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("X-API-Key", "wrong")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("jwt also accepted", func(t *testing.T) {
		token, err := jm.GenerateToken(context.Background(), "ci-pipeline", time.Hour)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no credentials rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
