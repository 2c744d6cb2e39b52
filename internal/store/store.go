// Package store persists marketplace documents behind one interface so the
// services can run against Postgres or an in-process map.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("record was modified concurrently")
	ErrDuplicate = errors.New("record already exists")
)

// ListingFilter narrows FindListings. Zero values are ignored.
type ListingFilter struct {
	OwnerID        *uuid.UUID
	ExcludeOwnerID *uuid.UUID
	Status         models.ListingStatus
	Category       models.Category
	Limit          int
	Offset         int
}

type OfferFilter struct {
	OwnerID   *uuid.UUID
	BidderID  *uuid.UUID
	ListingID *uuid.UUID
	Status    models.OfferStatus
}

// Store defines persistence operations for users, listings, offers and the
// records hanging off them. Lists are newest first except messages, which
// come back oldest first.
type Store interface {
	// users
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error)

	// listings
	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	FindListings(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error)
	// UpdateListingStatus fails with ErrConflict unless the listing is currently in status from.
	UpdateListingStatus(ctx context.Context, id uuid.UUID, from, to models.ListingStatus) error

	// offers
	CreateOffer(ctx context.Context, offer *models.Offer) error
	GetOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	FindOffers(ctx context.Context, filter OfferFilter) ([]models.Offer, error)
	UpdateOfferStatus(ctx context.Context, id uuid.UUID, from, to models.OfferStatus, decidedAt time.Time) error

	// messages
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, offerID uuid.UUID) ([]models.Message, error)

	// ratings
	CreateRating(ctx context.Context, rating *models.Rating) error
	ListRatings(ctx context.Context, rateeID uuid.UUID) ([]models.Rating, error)

	// notifications
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error

	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error

	// WithTx runs fn against a Store whose writes commit together or not at all.
	WithTx(ctx context.Context, fn func(Store) error) error
}
