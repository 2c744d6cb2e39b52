// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/store"
)

type UserService struct {
	store store.Store
}

type PublicProfile struct {
	models.Profile
	ActiveListings int64   `json:"active_listings"`
	RatingCount    int     `json:"rating_count"`
	RatingAverage  float64 `json:"rating_average"`
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return user, nil
}

// GetPublicProfile returns what other traders may see about a user.
// Identities that never completed registration have no public profile.
func (s *UserService) GetPublicProfile(ctx context.Context, userID uuid.UUID) (*PublicProfile, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasProfile() {
		return nil, ErrUserNotFound
	}

	_, active, err := s.store.FindListings(ctx, store.ListingFilter{
		OwnerID: &userID,
		Status:  models.ListingStatusActive,
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}

	ratings, err := s.store.ListRatings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	profile := &PublicProfile{
		Profile:        user.ToProfile(),
		ActiveListings: active,
		RatingCount:    len(ratings),
	}
	if len(ratings) > 0 {
		total := 0
		for _, r := range ratings {
			total += r.Score
		}
		profile.RatingAverage = float64(total) / float64(len(ratings))
	}
	return profile, nil
}
