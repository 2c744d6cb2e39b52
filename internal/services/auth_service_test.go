package services

import (
	"context"
	"net/smtp"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/barter-backend/internal/config"
	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/store"
	"github.com/javajoker/barter-backend/internal/utils"
)

const testCustomSecret = "custom-token-secret"

type AuthServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *store.MemoryStore
	cfg      *config.Config
	notifier *NotificationService
	auth     *AuthService
	sentMail [][]byte
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = store.NewMemoryStore()
	suite.cfg = &config.Config{
		JWT: config.JWTConfig{
			CustomTokenSecret: testCustomSecret,
			AccessTokenTTL:    1,
			RefreshTokenTTL:   24,
		},
		Email:    config.EmailConfig{SMTPHost: "smtp.test", SMTPPort: "25", FromEmail: "noreply@barter.test"},
		Frontend: config.FrontendConfig{BaseURL: "http://barter.test"},
	}
	suite.sentMail = nil
	suite.notifier = NewNotificationService(suite.store, suite.cfg, livequery.NewHub(nil))
	suite.notifier.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		suite.sentMail = append(suite.sentMail, msg)
		return nil
	}
	suite.auth = NewAuthService(suite.store, suite.cfg, store.NewMemoryTokenRevoker(), suite.notifier)
}

func registerRequest(email string) *RegisterRequest {
	return &RegisterRequest{
		FirstName:     "Asha",
		LastName:      "Rao",
		Email:         email,
		Password:      "barter123",
		Mobile:        "9999999999",
		Address1:      "12 MG Road",
		City:          "Pune",
		Pin:           "411001",
		State:         "Maharashtra",
		Country:       "India",
		AgreedToTerms: true,
	}
}

func (suite *AuthServiceTestSuite) TestAnonymousUpgradeKeepsIdentity() {
	anon, err := suite.auth.SignInAnonymously(suite.ctx)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), anon.User.Anonymous)
	assert.False(suite.T(), anon.User.HasProfile())

	claims, err := utils.ValidateJWT(anon.AccessToken)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), claims.Anonymous)

	id := anon.User.ID
	resp, err := suite.auth.Register(suite.ctx, &id, registerRequest("Asha@Example.com"))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), id, resp.User.ID)
	assert.False(suite.T(), resp.User.Anonymous)
	assert.True(suite.T(), resp.User.HasProfile())
	assert.Equal(suite.T(), "asha@example.com", resp.User.EmailAddress())
	assert.Equal(suite.T(), "Asha Rao", resp.User.FullName)
	assert.Equal(suite.T(), "Bearer", resp.TokenType)
	assert.Equal(suite.T(), 3600, resp.ExpiresIn)
}

func (suite *AuthServiceTestSuite) TestRegisterGuards() {
	req := registerRequest("asha@example.com")
	req.AgreedToTerms = false
	_, err := suite.auth.Register(suite.ctx, nil, req)
	assert.ErrorIs(suite.T(), err, ErrTermsNotAccepted)

	req = registerRequest("asha@example.com")
	req.Password = "short"
	_, err = suite.auth.Register(suite.ctx, nil, req)
	assert.Error(suite.T(), err)

	_, err = suite.auth.Register(suite.ctx, nil, registerRequest("asha@example.com"))
	require.NoError(suite.T(), err)
	_, err = suite.auth.Register(suite.ctx, nil, registerRequest("ASHA@example.com"))
	assert.ErrorIs(suite.T(), err, ErrEmailTaken)
}

func (suite *AuthServiceTestSuite) TestLoginChecksPassword() {
	_, err := suite.auth.Register(suite.ctx, nil, registerRequest("asha@example.com"))
	require.NoError(suite.T(), err)

	_, err = suite.auth.Login(suite.ctx, &LoginRequest{Email: "asha@example.com", Password: "wrong1234"})
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)

	_, err = suite.auth.Login(suite.ctx, &LoginRequest{Email: "nobody@example.com", Password: "barter123"})
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)

	resp, err := suite.auth.Login(suite.ctx, &LoginRequest{Email: "asha@example.com", Password: "barter123"})
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), resp.AccessToken)
	assert.NotNil(suite.T(), resp.User.LastLoginAt)
}

func (suite *AuthServiceTestSuite) TestRefreshRotatesToken() {
	resp, err := suite.auth.SignInAnonymously(suite.ctx)
	require.NoError(suite.T(), err)

	rotated, err := suite.auth.RefreshToken(suite.ctx, resp.RefreshToken)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), resp.User.ID, rotated.User.ID)

	_, err = suite.auth.RefreshToken(suite.ctx, resp.RefreshToken)
	assert.ErrorIs(suite.T(), err, ErrInvalidToken)

	_, err = suite.auth.RefreshToken(suite.ctx, resp.AccessToken)
	assert.ErrorIs(suite.T(), err, ErrInvalidToken)
}

func (suite *AuthServiceTestSuite) TestLogoutRevokesBothTokens() {
	resp, err := suite.auth.SignInAnonymously(suite.ctx)
	require.NoError(suite.T(), err)
	access, err := utils.ValidateJWT(resp.AccessToken)
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.auth.Logout(suite.ctx, access, resp.RefreshToken))

	revoked, err := suite.auth.IsRevoked(suite.ctx, access.ID)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), revoked)

	_, err = suite.auth.RefreshToken(suite.ctx, resp.RefreshToken)
	assert.ErrorIs(suite.T(), err, ErrInvalidToken)
}

func (suite *AuthServiceTestSuite) TestCustomTokenSignIn() {
	token, err := utils.GenerateCustomToken(testCustomSecret, "ext-42", "Ravi", time.Minute)
	require.NoError(suite.T(), err)

	first, err := suite.auth.SignInWithCustomToken(suite.ctx, &CustomTokenRequest{Token: token})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Ravi", first.User.FullName)

	again, err := suite.auth.SignInWithCustomToken(suite.ctx, &CustomTokenRequest{Token: token})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), first.User.ID, again.User.ID)

	forged, err := utils.GenerateCustomToken("other-secret", "ext-42", "Ravi", time.Minute)
	require.NoError(suite.T(), err)
	_, err = suite.auth.SignInWithCustomToken(suite.ctx, &CustomTokenRequest{Token: forged})
	assert.ErrorIs(suite.T(), err, ErrInvalidToken)
}

func (suite *AuthServiceTestSuite) TestPasswordReset() {
	_, err := suite.auth.Register(suite.ctx, nil, registerRequest("asha@example.com"))
	require.NoError(suite.T(), err)

	// unknown addresses are not revealed
	require.NoError(suite.T(), suite.auth.ForgotPassword(suite.ctx, &ForgotPasswordRequest{Email: "nobody@example.com"}))
	assert.Empty(suite.T(), suite.sentMail)

	require.NoError(suite.T(), suite.auth.ForgotPassword(suite.ctx, &ForgotPasswordRequest{Email: "asha@example.com"}))
	require.Len(suite.T(), suite.sentMail, 1)

	match := regexp.MustCompile(`token=([A-Za-z0-9]{40})`).FindStringSubmatch(string(suite.sentMail[0]))
	require.Len(suite.T(), match, 2)

	err = suite.auth.ResetPassword(suite.ctx, &ResetPasswordRequest{Token: "wrong", NewPassword: "newpass123"})
	assert.ErrorIs(suite.T(), err, ErrInvalidToken)

	require.NoError(suite.T(), suite.auth.ResetPassword(suite.ctx, &ResetPasswordRequest{Token: match[1], NewPassword: "newpass123"}))

	_, err = suite.auth.Login(suite.ctx, &LoginRequest{Email: "asha@example.com", Password: "newpass123"})
	assert.NoError(suite.T(), err)

	// tokens are single use
	err = suite.auth.ResetPassword(suite.ctx, &ResetPasswordRequest{Token: match[1], NewPassword: "another123"})
	assert.ErrorIs(suite.T(), err, ErrInvalidToken)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
