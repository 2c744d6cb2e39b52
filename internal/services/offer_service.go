// internal/services/offer_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/store"
	"github.com/javajoker/barter-backend/internal/utils"
)

type OfferService struct {
	store         store.Store
	publisher     livequery.Publisher
	notifications *NotificationService
	now           func() time.Time
}

// ProposeRequest targets a listing. OfferedItemID names one of the bidder's
// own active listings and is ignored for Giveaway listings.
type ProposeRequest struct {
	ListingID     uuid.UUID `json:"listing_id" validate:"required"`
	OfferedItemID string    `json:"offered_item_id"`
}

// RatingPrompt invites the accepting owner to rate the counterparty.
type RatingPrompt struct {
	OfferID   uuid.UUID `json:"offer_id"`
	RaterID   uuid.UUID `json:"rater_id"`
	RateeID   uuid.UUID `json:"ratee_id"`
	RateeName string    `json:"ratee_name"`
}

type AcceptResult struct {
	Offer        *models.Offer `json:"offer"`
	RatingPrompt *RatingPrompt `json:"rating_prompt"`
}

func NewOfferService(st store.Store, publisher livequery.Publisher, notifications *NotificationService) *OfferService {
	return &OfferService{
		store:         st,
		publisher:     publisher,
		notifications: notifications,
		now:           time.Now,
	}
}

func (s *OfferService) Propose(ctx context.Context, bidderID uuid.UUID, req *ProposeRequest) (*models.Offer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	bidder, err := s.store.GetUser(ctx, bidderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !bidder.HasProfile() {
		return nil, ErrProfileRequired
	}

	listing, err := s.getListing(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.UserID == bidderID {
		return nil, ErrOwnListing
	}
	if !listing.IsActive() {
		return nil, ErrListingUnavailable
	}

	offer := &models.Offer{
		ListingID:    listing.ID,
		ListingTitle: listing.Title,
		OwnerID:      listing.UserID,
		BidderID:     bidderID,
		BidderName:   bidder.DisplayName(),
		Status:       models.OfferStatusPending,
	}

	if listing.Type == models.ListingTypeGiveaway {
		offer.OfferedItemID = models.ClaimSentinel
		offer.OfferedItemTitle = models.GiveawayClaimTitle
	} else {
		item, err := s.offeredItem(ctx, bidderID, req.OfferedItemID)
		if err != nil {
			return nil, err
		}
		offer.OfferedItemID = item.ID.String()
		offer.OfferedItemTitle = item.Title
	}

	if err := s.store.CreateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	s.publisher.Publish(ctx, livequery.OfferChange(offer))
	s.notifications.OfferReceived(ctx, offer)

	return offer, nil
}

// offeredItem resolves the bidder's item for a Barter offer. It must be one
// of the bidder's own listings and still active.
func (s *OfferService) offeredItem(ctx context.Context, bidderID uuid.UUID, rawID string) (*models.Listing, error) {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" || rawID == models.ClaimSentinel {
		return nil, ErrNoOfferedItem
	}
	itemID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrNoOfferedItem
	}
	item, err := s.store.GetListing(ctx, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoOfferedItem
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if item.UserID != bidderID || !item.IsActive() {
		return nil, ErrNoOfferedItem
	}
	return item, nil
}

// Accept settles a pending offer. The offer status and both listing status
// flips commit in one transaction; if either item has already been traded
// nothing changes and ErrListingUnavailable is returned.
func (s *OfferService) Accept(ctx context.Context, actorID, offerID uuid.UUID) (*AcceptResult, error) {
	offer, err := s.decidable(ctx, actorID, offerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	offeredListingID, barter := offer.OfferedListingID()

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.UpdateOfferStatus(ctx, offer.ID, models.OfferStatusPending, models.OfferStatusAccepted, now); err != nil {
			return conflictAs(err, ErrOfferNotPending)
		}
		if err := tx.UpdateListingStatus(ctx, offer.ListingID, models.ListingStatusActive, models.ListingStatusTraded); err != nil {
			return conflictAs(err, ErrListingUnavailable)
		}
		if barter {
			if err := tx.UpdateListingStatus(ctx, offeredListingID, models.ListingStatusActive, models.ListingStatusTraded); err != nil {
				return conflictAs(err, ErrListingUnavailable)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := offer.Transition(models.OfferStatusAccepted, now); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, livequery.OfferChange(offer))
	s.publishTraded(ctx, offer.ListingID, offer.OwnerID)
	if barter {
		s.publishTraded(ctx, offeredListingID, offer.BidderID)
	}
	s.notifications.OfferAccepted(ctx, offer)

	return &AcceptResult{
		Offer: offer,
		RatingPrompt: &RatingPrompt{
			OfferID:   offer.ID,
			RaterID:   actorID,
			RateeID:   offer.BidderID,
			RateeName: offer.BidderName,
		},
	}, nil
}

// Reject declines a pending offer. The listing stays active.
func (s *OfferService) Reject(ctx context.Context, actorID, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.decidable(ctx, actorID, offerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.UpdateOfferStatus(ctx, offer.ID, models.OfferStatusPending, models.OfferStatusRejected, now); err != nil {
			return conflictAs(err, ErrOfferNotPending)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := offer.Transition(models.OfferStatusRejected, now); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, livequery.OfferChange(offer))
	s.notifications.OfferRejected(ctx, offer)

	return offer, nil
}

// Get returns an offer visible to one of its participants.
func (s *OfferService) Get(ctx context.Context, viewerID, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.getOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !offer.IsParticipant(viewerID) {
		return nil, ErrNotParticipant
	}
	return offer, nil
}

// ListIncoming returns offers made on the owner's listings, newest first.
func (s *OfferService) ListIncoming(ctx context.Context, ownerID uuid.UUID) ([]models.Offer, error) {
	offers, err := s.store.FindOffers(ctx, store.OfferFilter{OwnerID: &ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to load incoming offers: %w", err)
	}
	return offers, nil
}

// ListMine returns offers the bidder has made, newest first.
func (s *OfferService) ListMine(ctx context.Context, bidderID uuid.UUID) ([]models.Offer, error) {
	offers, err := s.store.FindOffers(ctx, store.OfferFilter{BidderID: &bidderID})
	if err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}
	return offers, nil
}

func (s *OfferService) decidable(ctx context.Context, actorID, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.getOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.OwnerID != actorID {
		return nil, ErrNotListingOwner
	}
	if offer.Status != models.OfferStatusPending {
		return nil, ErrOfferNotPending
	}
	return offer, nil
}

func (s *OfferService) getOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return offer, nil
}

func (s *OfferService) getListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.store.GetListing(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return listing, nil
}

func (s *OfferService) publishTraded(ctx context.Context, listingID, ownerID uuid.UUID) {
	l := &models.Listing{UserID: ownerID, Status: models.ListingStatusTraded}
	l.ID = listingID
	s.publisher.Publish(ctx, livequery.ListingChange(l, models.ListingStatusActive))
}

// conflictAs maps lost conditional updates to a domain error.
func conflictAs(err, domainErr error) error {
	if errors.Is(err, store.ErrConflict) || errors.Is(err, store.ErrNotFound) {
		return domainErr
	}
	return err
}
