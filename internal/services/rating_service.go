// internal/services/rating_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/store"
	"github.com/javajoker/barter-backend/internal/utils"
)

type RatingService struct {
	store store.Store
}

type RateRequest struct {
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

func NewRatingService(st store.Store) *RatingService {
	return &RatingService{store: st}
}

// Rate records the rater's score for the other side of an accepted trade.
func (s *RatingService) Rate(ctx context.Context, raterID, offerID uuid.UUID, req *RateRequest) (*models.Rating, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !offer.IsParticipant(raterID) {
		return nil, ErrNotParticipant
	}
	if offer.Status != models.OfferStatusAccepted {
		return nil, ErrRatingNotAllowed
	}

	rating := &models.Rating{
		OfferID: offer.ID,
		RaterID: raterID,
		RateeID: offer.Counterparty(raterID),
		Score:   req.Score,
		Comment: strings.TrimSpace(req.Comment),
	}
	if err := s.store.CreateRating(ctx, rating); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyRated
		}
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}
	return rating, nil
}

func (s *RatingService) ForUser(ctx context.Context, userID uuid.UUID) ([]models.Rating, error) {
	ratings, err := s.store.ListRatings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}
	return ratings, nil
}
