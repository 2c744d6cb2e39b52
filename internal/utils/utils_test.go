package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")
	userID := uuid.New()

	access, err := GenerateJWT(userID, "a@example.com", false, 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(access)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.RemainingTTL() > 50*time.Minute)

	_, err = ValidateRefreshToken(access)
	assert.Error(t, err, "access token must not refresh")

	refresh, err := GenerateRefreshToken(userID, 1)
	require.NoError(t, err)
	_, err = ValidateJWT(refresh)
	assert.Error(t, err, "refresh token must not authenticate")

	refreshClaims, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), refreshClaims.Subject)
}

func TestJWTRejectsOtherSecret(t *testing.T) {
	SetJWTSecret("one")
	token, err := GenerateJWT(uuid.New(), "", true, 1)
	require.NoError(t, err)

	SetJWTSecret("two")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestCustomToken(t *testing.T) {
	token, err := GenerateCustomToken("shared", "ext-42", "Asha", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateCustomToken("shared", token)
	require.NoError(t, err)
	assert.Equal(t, "ext-42", claims.Subject)
	assert.Equal(t, "Asha", claims.DisplayName)

	_, err = ValidateCustomToken("", token)
	assert.Error(t, err)
	_, err = ValidateCustomToken("other", token)
	assert.Error(t, err)
}

type listingInput struct {
	Category  string `validate:"required,category"`
	Condition string `validate:"omitempty,condition"`
	Type      string `validate:"required,listing_type"`
	Password  string `validate:"omitempty,strong_password"`
}

func TestValidatorEnums(t *testing.T) {
	ok := listingInput{Category: "Books", Condition: "Minor Defects", Type: "Giveaway", Password: "abcd1234"}
	assert.NoError(t, ValidateStruct(&ok))

	bad := listingInput{Category: "Cars", Condition: "Mint", Type: "Sale", Password: "short"}
	errs := GetValidationErrors(ValidateStruct(&bad))
	require.Len(t, errs, 4)

	tags := map[string]string{}
	for _, e := range errs {
		tags[e.Field] = e.Tag
	}
	assert.Equal(t, "category", tags["category"])
	assert.Equal(t, "condition", tags["condition"])
	assert.Equal(t, "listing_type", tags["type"])
	assert.Equal(t, "strong_password", tags["password"])
}

func TestResetToken(t *testing.T) {
	token, hash, err := GenerateResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 40)
	assert.Equal(t, HashString(token), hash)
}

func TestRandomIndex(t *testing.T) {
	for i := 0; i < 50; i++ {
		idx := RandomIndex(4)
		assert.True(t, idx >= 0 && idx < 4)
	}
	assert.Equal(t, 0, RandomIndex(0))
}

func TestPageParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query string
		want  PageParams
	}{
		{"", PageParams{Page: 1, Limit: DefaultPageSize}},
		{"?page=3&limit=10", PageParams{Page: 3, Limit: 10}},
		{"?page=-2&limit=abc", PageParams{Page: 1, Limit: DefaultPageSize}},
		{"?limit=500", PageParams{Page: 1, Limit: MaxPageSize}},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/v1/listings"+tc.query, nil)
		assert.Equal(t, tc.want, GetPageParams(c), tc.query)
	}

	assert.Equal(t, 20, PageParams{Page: 3, Limit: 10}.Offset())
}

func TestNewPage(t *testing.T) {
	page := NewPage([]string{"a"}, 41, PageParams{Page: 2, Limit: 20})
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasMore)

	last := NewPage(nil, 40, PageParams{Page: 2, Limit: 20})
	assert.Equal(t, 2, last.TotalPages)
	assert.False(t, last.HasMore)

	empty := NewPage(nil, 0, PageParams{Page: 1, Limit: 20})
	assert.Zero(t, empty.TotalPages)
	assert.False(t, empty.HasMore)
}
