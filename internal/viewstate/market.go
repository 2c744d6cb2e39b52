package viewstate

import (
	"errors"

	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/models"
)

var ErrNotMyItem = errors.New("item is not one of your active listings")

// Partition splits an active-listings snapshot into what others posted and
// what the viewer posted, keeping snapshot order.
func Partition(listings []models.Listing, viewerID uuid.UUID) (others, mine []models.Listing) {
	for _, l := range listings {
		if l.UserID == viewerID {
			mine = append(mine, l)
		} else {
			others = append(others, l)
		}
	}
	return others, mine
}

// OfferForm is the state behind the offer overlay.
type OfferForm struct {
	target   models.Listing
	choices  []models.Listing
	selected string
}

// NewOfferForm offers the viewer's active listings as trade items. A
// Giveaway target needs no item.
func NewOfferForm(target models.Listing, myListings []models.Listing) *OfferForm {
	f := &OfferForm{target: target}
	if target.Type == models.ListingTypeGiveaway {
		return f
	}
	for _, l := range myListings {
		if l.Status == models.ListingStatusActive && l.ID != target.ID {
			f.choices = append(f.choices, l)
		}
	}
	return f
}

func (f *OfferForm) Target() models.Listing {
	return f.target
}

func (f *OfferForm) IsClaim() bool {
	return f.target.Type == models.ListingTypeGiveaway
}

func (f *OfferForm) Choices() []models.Listing {
	return f.choices
}

func (f *OfferForm) Select(listingID string) error {
	for _, l := range f.choices {
		if l.ID.String() == listingID {
			f.selected = listingID
			return nil
		}
	}
	return ErrNotMyItem
}

// CanSubmit is false for a Barter target until an item is chosen.
func (f *OfferForm) CanSubmit() bool {
	return f.IsClaim() || f.selected != ""
}

// OfferedItemID is the claim sentinel for giveaways, else the chosen item.
func (f *OfferForm) OfferedItemID() string {
	if f.IsClaim() {
		return models.ClaimSentinel
	}
	return f.selected
}
