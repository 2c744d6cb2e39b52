// internal/services/livequery_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/store"
)

// LiveQueryService binds the hub to the store and decides who may watch
// which query.
type LiveQueryService struct {
	store store.Store
	hub   *livequery.Hub
}

func NewLiveQueryService(st store.Store, hub *livequery.Hub) *LiveQueryService {
	s := &LiveQueryService{store: st, hub: hub}
	hub.Register(livequery.CollectionListings, s.loadListings)
	hub.Register(livequery.CollectionOffers, s.loadOffers)
	hub.Register(livequery.CollectionMessages, s.loadMessages)
	hub.Register(livequery.CollectionNotifications, s.loadNotifications)
	return s
}

// Subscribe opens a live query for the caller. Listings are public; offers
// and notifications must be filtered by the caller's own id; messages only
// for offers the caller takes part in.
func (s *LiveQueryService) Subscribe(ctx context.Context, callerID uuid.UUID, q livequery.Query) (*livequery.Subscription, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, callerID, q); err != nil {
		return nil, err
	}
	return s.hub.Subscribe(ctx, q)
}

func (s *LiveQueryService) authorize(ctx context.Context, callerID uuid.UUID, q livequery.Query) error {
	switch q.Collection {
	case livequery.CollectionListings:
		return nil
	case livequery.CollectionOffers, livequery.CollectionNotifications:
		if q.Value != callerID.String() {
			return ErrQueryForbidden
		}
		return nil
	case livequery.CollectionMessages:
		offerID, err := uuid.Parse(q.Value)
		if err != nil {
			return fmt.Errorf("%w: bad offer id", livequery.ErrInvalidQuery)
		}
		offer, err := s.store.GetOffer(ctx, offerID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrOfferNotFound
		}
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if !offer.IsParticipant(callerID) {
			return ErrQueryForbidden
		}
		return nil
	}
	return ErrQueryForbidden
}

func (s *LiveQueryService) loadListings(ctx context.Context, q livequery.Query) (interface{}, error) {
	filter := store.ListingFilter{}
	switch q.Field {
	case "status":
		filter.Status = models.ListingStatus(q.Value)
	case "user_id":
		id, err := uuid.Parse(q.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: bad user id", livequery.ErrInvalidQuery)
		}
		filter.OwnerID = &id
	}
	listings, _, err := s.store.FindListings(ctx, filter)
	return listings, err
}

func (s *LiveQueryService) loadOffers(ctx context.Context, q livequery.Query) (interface{}, error) {
	id, err := uuid.Parse(q.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user id", livequery.ErrInvalidQuery)
	}
	filter := store.OfferFilter{}
	if q.Field == "owner_id" {
		filter.OwnerID = &id
	} else {
		filter.BidderID = &id
	}
	return s.store.FindOffers(ctx, filter)
}

func (s *LiveQueryService) loadMessages(ctx context.Context, q livequery.Query) (interface{}, error) {
	id, err := uuid.Parse(q.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: bad offer id", livequery.ErrInvalidQuery)
	}
	messages, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	models.SortMessages(messages)
	return messages, nil
}

func (s *LiveQueryService) loadNotifications(ctx context.Context, q livequery.Query) (interface{}, error) {
	id, err := uuid.Parse(q.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user id", livequery.ErrInvalidQuery)
	}
	return s.store.ListNotifications(ctx, id, false)
}
