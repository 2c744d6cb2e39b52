// internal/models/offer.go
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// ClaimSentinel stands in for the offered item on Giveaway claims.
	ClaimSentinel      = "claim"
	GiveawayClaimTitle = "Giveaway Claim"
)

var ErrInvalidOfferTransition = errors.New("invalid offer status transition")

type Offer struct {
	BaseModel
	ListingID        uuid.UUID   `json:"listing_id" gorm:"type:uuid;not null;index"`
	ListingTitle     string      `json:"listing_title" gorm:"size:255"`
	OwnerID          uuid.UUID   `json:"owner_id" gorm:"type:uuid;not null;index"`
	BidderID         uuid.UUID   `json:"bidder_id" gorm:"type:uuid;not null;index"`
	BidderName       string      `json:"bidder_name" gorm:"size:200"`
	OfferedItemID    string      `json:"offered_item_id" gorm:"size:64;not null"`
	OfferedItemTitle string      `json:"offered_item_title" gorm:"size:255"`
	Status           OfferStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	DecidedAt        *time.Time  `json:"decided_at"`
}

func (o *Offer) IsClaim() bool {
	return o.OfferedItemID == ClaimSentinel
}

func (o *Offer) IsParticipant(userID uuid.UUID) bool {
	return userID == o.OwnerID || userID == o.BidderID
}

// Counterparty returns the other side of the trade for a participant.
func (o *Offer) Counterparty(userID uuid.UUID) uuid.UUID {
	if userID == o.OwnerID {
		return o.BidderID
	}
	return o.OwnerID
}

// OfferedListingID parses the offered item id. ok is false for claims.
func (o *Offer) OfferedListingID() (uuid.UUID, bool) {
	if o.IsClaim() {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(o.OfferedItemID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// TradeTitles returns what the viewer gives up and what they receive.
func (o *Offer) TradeTitles(viewerID uuid.UUID) (mine, theirs string) {
	if viewerID == o.OwnerID {
		return o.ListingTitle, o.OfferedItemTitle
	}
	return o.OfferedItemTitle, o.ListingTitle
}

func (o *Offer) CanTransitionTo(next OfferStatus) bool {
	return o.Status == OfferStatusPending && next.Terminal()
}

// Transition moves a pending offer to a terminal status.
func (o *Offer) Transition(next OfferStatus, at time.Time) error {
	if !o.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidOfferTransition, o.Status, next)
	}
	o.Status = next
	o.DecidedAt = &at
	return nil
}
