package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/barter-backend/internal/models"
)

func newListing(owner uuid.UUID, title string) *models.Listing {
	return &models.Listing{
		UserID:   owner,
		Title:    title,
		Category: models.CategoryBooks,
		Type:     models.ListingTypeBarter,
	}
}

func TestMemoryStoreFindListings(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, s.CreateListing(ctx, newListing(alice, "a1")))
	require.NoError(t, s.CreateListing(ctx, newListing(alice, "a2")))
	b1 := newListing(bob, "b1")
	require.NoError(t, s.CreateListing(ctx, b1))
	assert.Equal(t, models.ListingStatusActive, b1.Status)

	mine, total, err := s.FindListings(ctx, ListingFilter{OwnerID: &alice})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "a2", mine[0].Title, "newest first")

	others, _, err := s.FindListings(ctx, ListingFilter{ExcludeOwnerID: &alice, Status: models.ListingStatusActive})
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "b1", others[0].Title)

	page, total, err := s.FindListings(ctx, ListingFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 1)
}

func TestMemoryStoreConditionalStatusUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	l := newListing(uuid.New(), "lamp")
	require.NoError(t, s.CreateListing(ctx, l))
	require.NoError(t, s.UpdateListingStatus(ctx, l.ID, models.ListingStatusActive, models.ListingStatusTraded))
	assert.ErrorIs(t, s.UpdateListingStatus(ctx, l.ID, models.ListingStatusActive, models.ListingStatusTraded), ErrConflict)
	assert.ErrorIs(t, s.UpdateListingStatus(ctx, uuid.New(), models.ListingStatusActive, models.ListingStatusTraded), ErrNotFound)

	o := &models.Offer{ListingID: l.ID, OwnerID: l.UserID, BidderID: uuid.New(), OfferedItemID: models.ClaimSentinel}
	require.NoError(t, s.CreateOffer(ctx, o))
	assert.Equal(t, models.OfferStatusPending, o.Status)
	require.NoError(t, s.UpdateOfferStatus(ctx, o.ID, models.OfferStatusPending, models.OfferStatusRejected, time.Now()))
	assert.ErrorIs(t, s.UpdateOfferStatus(ctx, o.ID, models.OfferStatusPending, models.OfferStatusAccepted, time.Now()), ErrConflict)

	got, err := s.GetOffer(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusRejected, got.Status)
	assert.NotNil(t, got.DecidedAt)
}

func TestMemoryStoreWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	l := newListing(uuid.New(), "bike")
	require.NoError(t, s.CreateListing(ctx, l))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx Store) error {
		if err := tx.UpdateListingStatus(ctx, l.ID, models.ListingStatusActive, models.ListingStatusTraded); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusActive, got.Status)
}

func TestMemoryStoreRollbackKeepsOtherWrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	l := newListing(uuid.New(), "bike")
	require.NoError(t, s.CreateListing(ctx, l))
	offerID := uuid.New()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx Store) error {
		require.NoError(t, tx.UpdateListingStatus(ctx, l.ID, models.ListingStatusActive, models.ListingStatusTraded))
		require.NoError(t, tx.CreateNotification(ctx, &models.Notification{UserID: l.UserID, Title: "traded"}))

		done := make(chan error, 1)
		go func() {
			done <- s.CreateMessage(ctx, &models.Message{OfferID: offerID, SenderID: uuid.New(), Text: "still there?"})
		}()
		require.NoError(t, <-done)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	msgs, err := s.ListMessages(ctx, offerID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "still there?", msgs[0].Text)

	got, err := s.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusActive, got.Status)

	notes, err := s.ListNotifications(ctx, l.UserID, false)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestMemoryStoreNestedTx(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a, b := newListing(uuid.New(), "a"), newListing(uuid.New(), "b")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx Store) error {
		require.NoError(t, tx.CreateListing(ctx, a))
		assert.ErrorIs(t, tx.WithTx(ctx, func(inner Store) error {
			require.NoError(t, inner.CreateListing(ctx, b))
			return boom
		}), boom)
		return nil
	})
	require.NoError(t, err)

	_, err = s.GetListing(ctx, a.ID)
	assert.NoError(t, err)
	_, err = s.GetListing(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreMessagesAscending(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	offerID := uuid.New()

	for _, text := range []string{"hi", "is it available?", "yes"} {
		require.NoError(t, s.CreateMessage(ctx, &models.Message{OfferID: offerID, SenderID: uuid.New(), Text: text}))
	}
	require.NoError(t, s.CreateMessage(ctx, &models.Message{OfferID: uuid.New(), Text: "other thread"}))

	msgs, err := s.ListMessages(ctx, offerID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "hi", msgs[0].Text)
	assert.Equal(t, "yes", msgs[2].Text)
}

func TestMemoryStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	email := "a@example.com"

	require.NoError(t, s.CreateUser(ctx, &models.User{Email: &email}))
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Email: &email}), ErrDuplicate)

	offerID, rater := uuid.New(), uuid.New()
	require.NoError(t, s.CreateRating(ctx, &models.Rating{OfferID: offerID, RaterID: rater, Score: 5}))
	assert.ErrorIs(t, s.CreateRating(ctx, &models.Rating{OfferID: offerID, RaterID: rater, Score: 4}), ErrDuplicate)
}

func TestMemoryStoreNotifications(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	user := uuid.New()

	n := &models.Notification{UserID: user, Type: models.NotificationOfferReceived, Title: "New offer"}
	require.NoError(t, s.CreateNotification(ctx, n))

	assert.ErrorIs(t, s.MarkNotificationRead(ctx, n.ID, uuid.New(), time.Now()), ErrNotFound)
	require.NoError(t, s.MarkNotificationRead(ctx, n.ID, user, time.Now()))

	unread, err := s.ListNotifications(ctx, user, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestMemoryTokenRevoker(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTokenRevoker()

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Minute))
	require.NoError(t, r.Revoke(ctx, "jti-2", 0))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisTokenRevoker(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := NewRedisTokenRevoker(client)
	require.NoError(t, r.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
