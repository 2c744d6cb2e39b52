package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/javajoker/barter-backend/internal/store"
	"github.com/javajoker/barter-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNegotiateLanguage(t *testing.T) {
	supported := []string{"en", "hi"}

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"hi-IN,hi;q=0.9,en;q=0.8", "hi"},
		{"fr-FR, en-GB;q=0.8", "en"},
		{"de", "en"},
		{"HI", "hi"},
		{" , en_US", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, negotiateLanguage(tt.header, supported, "en"))
		})
	}
}

func TestRedact(t *testing.T) {
	out := redact([]byte(`{"email":"a@b.test","password":"secret1","refresh_token":"x"}`))
	assert.Equal(t, "a@b.test", out["email"])
	assert.Equal(t, "[redacted]", out["password"])
	assert.Equal(t, "[redacted]", out["refresh_token"])

	assert.Nil(t, redact(nil))
	assert.Nil(t, redact([]byte("not json")))
}

func TestExtractResource(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "offers", extractResourceType("/v1/offers/"+id.String()+"/accept"))
	assert.Equal(t, "health", extractResourceType("/health"))
	assert.Equal(t, "unknown", extractResourceType("/"))
	assert.Equal(t, id.String(), extractResourceID("/v1/offers/"+id.String()+"/accept"))
	assert.Empty(t, extractResourceID("/v1/listings/mine"))
}

func TestAuditLogSkipsFailuresAndReads(t *testing.T) {
	st := store.NewMemoryStore()
	r := gin.New()
	r.Use(AuditLogMiddleware(st))
	r.POST("/v1/listings", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/v1/offers", func(c *gin.Context) { c.Status(http.StatusConflict) })
	r.GET("/v1/listings", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/v1/listings", strings.NewReader(`{"title":"Lamp"}`)),
		httptest.NewRequest(http.MethodPost, "/v1/offers", strings.NewReader(`{}`)),
		httptest.NewRequest(http.MethodGet, "/v1/listings", nil),
	} {
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Eventually(t, func() bool { return len(st.AuditLogs()) == 1 }, time.Second, 10*time.Millisecond)
	entry := st.AuditLogs()[0]
	assert.Equal(t, "POST /v1/listings", entry.Action)
	assert.Equal(t, "listings", entry.ResourceType)
	assert.Equal(t, "Lamp", entry.NewValues["title"])
}

func TestRateLimiterKeysByCaller(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1)
	defer rl.Stop()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set("user_id", user)
		}
		c.Next()
	})
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("alice"))
	assert.Equal(t, http.StatusTooManyRequests, call("alice"))
	assert.Equal(t, http.StatusOK, call("bob"))
	assert.Equal(t, http.StatusOK, call(""))
	assert.Equal(t, http.StatusTooManyRequests, call(""))
}

func TestAuthRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	revoker := store.NewMemoryTokenRevoker()

	r := gin.New()
	r.GET("/me", AuthRequired(revoker), func(c *gin.Context) {
		claims, ok := GetClaims(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.UserID)
	})

	userID := uuid.New()
	token, err := utils.GenerateJWT(userID, "", true, 1)
	require.NoError(t, err)

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := call("Bearer " + token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Token "+token).Code)

	claims, err := utils.ValidateJWT(token)
	require.NoError(t, err)
	require.NoError(t, revoker.Revoke(context.Background(), claims.ID, time.Hour))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+token).Code)
}
