package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferTransition(t *testing.T) {
	now := time.Now()

	offer := &Offer{Status: OfferStatusPending}
	require.NoError(t, offer.Transition(OfferStatusAccepted, now))
	assert.Equal(t, OfferStatusAccepted, offer.Status)
	require.NotNil(t, offer.DecidedAt)

	err := offer.Transition(OfferStatusRejected, now)
	assert.True(t, errors.Is(err, ErrInvalidOfferTransition))
	assert.Equal(t, OfferStatusAccepted, offer.Status)

	pending := &Offer{Status: OfferStatusPending}
	assert.Error(t, pending.Transition(OfferStatusPending, now))
	assert.Nil(t, pending.DecidedAt)
}

func TestOfferPerspective(t *testing.T) {
	owner, bidder := uuid.New(), uuid.New()
	offer := &Offer{
		OwnerID:          owner,
		BidderID:         bidder,
		ListingTitle:     "Camera",
		OfferedItemTitle: "Guitar",
	}

	mine, theirs := offer.TradeTitles(owner)
	assert.Equal(t, "Camera", mine)
	assert.Equal(t, "Guitar", theirs)

	mine, theirs = offer.TradeTitles(bidder)
	assert.Equal(t, "Guitar", mine)
	assert.Equal(t, "Camera", theirs)

	assert.Equal(t, bidder, offer.Counterparty(owner))
	assert.Equal(t, owner, offer.Counterparty(bidder))
	assert.False(t, offer.IsParticipant(uuid.New()))
}

func TestOfferedListingID(t *testing.T) {
	claim := &Offer{OfferedItemID: ClaimSentinel}
	_, ok := claim.OfferedListingID()
	assert.False(t, ok)

	id := uuid.New()
	barter := &Offer{OfferedItemID: id.String()}
	got, ok := barter.OfferedListingID()
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestListingAgeDescription(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		mfg  string
		want string
	}{
		{"", ""},
		{"not-a-date", ""},
		{"2021-06-15", "3 years old"},
		{"2021-06-16", "2 years old"},
		{"2024-01-01", "Less than a year old"},
		{"2023-07-01", "Less than a year old"},
	}

	for _, tt := range tests {
		l := &Listing{MfgDate: tt.mfg}
		assert.Equal(t, tt.want, l.AgeDescription(now), tt.mfg)
	}
}

func TestEnums(t *testing.T) {
	assert.True(t, CategoryBooks.Valid())
	assert.False(t, Category("Cars").Valid())
	assert.True(t, ConditionMinorDefects.Valid())
	assert.False(t, ListingType("Sale").Valid())
}

func TestUserLocation(t *testing.T) {
	u := &User{City: "Pune", State: "MH"}
	assert.Equal(t, "Pune, MH", u.Location())
	assert.Equal(t, "MH", (&User{State: "MH"}).Location())
	assert.False(t, u.HasProfile())
}

func TestSortMessages(t *testing.T) {
	base := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	msgs := []Message{
		{BaseModel: BaseModel{CreatedAt: base.Add(2 * time.Minute)}, Text: "c"},
		{BaseModel: BaseModel{CreatedAt: base}, Text: "a"},
		{BaseModel: BaseModel{CreatedAt: base.Add(time.Minute)}, Text: "b"},
		{BaseModel: BaseModel{CreatedAt: base}, Text: "a2"},
	}
	SortMessages(msgs)

	var texts []string
	for _, m := range msgs {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"a", "a2", "b", "c"}, texts)
}
