// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/barter-backend/internal/config"
	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/store"
	"github.com/javajoker/barter-backend/internal/utils"
)

const resetTokenTTL = time.Hour

type AuthService struct {
	store    store.Store
	cfg      *config.Config
	revoker  store.TokenRevoker
	notifier *NotificationService
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest completes a profile. Called by an anonymous session it
// upgrades that identity in place.
type RegisterRequest struct {
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,strong_password"`
	Mobile        string `json:"mobile" validate:"required,max=30"`
	DOB           string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Sex           string `json:"sex" validate:"omitempty,max=20"`
	Address1      string `json:"address1" validate:"required,max=255"`
	Address2      string `json:"address2" validate:"max=255"`
	City          string `json:"city" validate:"required,max=100"`
	Pin           string `json:"pin" validate:"required,max=20"`
	State         string `json:"state" validate:"required,max=100"`
	Country       string `json:"country" validate:"required,max=100"`
	AgreedToTerms bool   `json:"agreed_to_terms"`
}

type CustomTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strong_password"`
}

func NewAuthService(st store.Store, cfg *config.Config, revoker store.TokenRevoker, notifier *NotificationService) *AuthService {
	return &AuthService{
		store:    st,
		cfg:      cfg,
		revoker:  revoker,
		notifier: notifier,
	}
}

func (s *AuthService) SignInAnonymously(ctx context.Context) (*AuthResponse, error) {
	user := &models.User{Anonymous: true}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create anonymous user: %w", err)
	}
	return s.issueTokens(user)
}

// SignInWithCustomToken exchanges a token minted by a trusted backend for a
// session, creating the identity on first use.
func (s *AuthService) SignInWithCustomToken(ctx context.Context, req *CustomTokenRequest) (*AuthResponse, error) {
	claims, err := utils.ValidateCustomToken(s.cfg.JWT.CustomTokenSecret, req.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.store.GetUserByExternalID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		externalID := claims.Subject
		user = &models.User{ExternalID: &externalID, FullName: claims.DisplayName}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) Register(ctx context.Context, currentUserID *uuid.UUID, req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !req.AgreedToTerms {
		return nil, ErrTermsNotAccepted
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.store.GetUserByEmail(ctx, email); err == nil {
		if currentUserID == nil || existing.ID != *currentUserID {
			return nil, ErrEmailTaken
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	// upgrade the caller's identity when it has no profile yet
	var user *models.User
	if currentUserID != nil {
		current, err := s.store.GetUser(ctx, *currentUserID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if current != nil && !current.HasProfile() {
			user = current
		}
	}
	isNew := user == nil
	if isNew {
		user = &models.User{}
	}

	now := time.Now()
	user.Email = &email
	user.Anonymous = false
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.FullName = strings.TrimSpace(user.FirstName + " " + user.LastName)
	user.Mobile = req.Mobile
	user.DOB = req.DOB
	user.Sex = req.Sex
	user.Address1 = req.Address1
	user.Address2 = req.Address2
	user.City = req.City
	user.Pin = req.Pin
	user.State = req.State
	user.Country = req.Country
	user.TermsAccepted = true
	user.JoinedAt = &now
	user.LastLoginAt = &now

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var err error
	if isNew {
		err = s.store.CreateUser(ctx, user)
	} else {
		err = s.store.UpdateUser(ctx, user)
	}
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.PasswordHash == "" || user.CheckPassword(req.Password) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.store.UpdateUser(ctx, user); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}

	return s.issueTokens(user)
}

// RefreshToken rotates a refresh token. The presented one is revoked.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.revoker.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.issueTokens(user)
}

// Logout revokes the access token and, when supplied, the refresh token.
func (s *AuthService) Logout(ctx context.Context, access *utils.JWTClaims, refreshToken string) error {
	if err := s.revoker.Revoke(ctx, access.ID, access.RemainingTTL()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		// already unusable
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.RemainingTTL())
}

// IsRevoked reports whether a token id was signed out.
func (s *AuthService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.revoker.IsRevoked(ctx, tokenID)
}

func (s *AuthService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Don't reveal if email exists or not for security
		return nil
	}

	token, hash, err := utils.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiry := time.Now().Add(resetTokenTTL)
	user.ResetTokenHash = hash
	user.ResetTokenExpiry = &expiry
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	if err := s.notifier.SendPasswordResetEmail(user, token); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to send password reset email")
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.store.GetUserByResetToken(ctx, utils.HashString(req.Token))
	if err != nil {
		return ErrInvalidToken
	}
	if user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return ErrInvalidToken
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.ResetTokenHash = ""
	user.ResetTokenExpiry = nil

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.EmailAddress(), user.Anonymous, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}
