package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/barter-backend/internal/ai"
	"github.com/javajoker/barter-backend/internal/config"
	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/store"
	"github.com/javajoker/barter-backend/internal/viewstate"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	opts    []ai.GenerateOptions
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	return f.reply, f.err
}

type MarketplaceTestSuite struct {
	suite.Suite
	ctx           context.Context
	store         *store.MemoryStore
	hub           *livequery.Hub
	notifications *NotificationService
	listings      *ListingService
	offers        *OfferService
	messages      *MessageService
	ratings       *RatingService
	live          *LiveQueryService

	alice *models.User
	bob   *models.User
}

func (suite *MarketplaceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = store.NewMemoryStore()
	suite.hub = livequery.NewHub(nil)
	suite.notifications = NewNotificationService(suite.store, &config.Config{}, suite.hub)
	suite.listings = NewListingService(suite.store, suite.hub)
	suite.offers = NewOfferService(suite.store, suite.hub, suite.notifications)
	suite.messages = NewMessageService(suite.store, suite.hub, suite.notifications)
	suite.ratings = NewRatingService(suite.store)
	suite.live = NewLiveQueryService(suite.store, suite.hub)

	suite.alice = suite.newTrader("Alice", "Pune", "Maharashtra")
	suite.bob = suite.newTrader("Bob", "Mysuru", "Karnataka")
}

func (suite *MarketplaceTestSuite) newTrader(name, city, state string) *models.User {
	joined := time.Now()
	u := &models.User{FirstName: name, FullName: name, City: city, State: state, JoinedAt: &joined}
	require.NoError(suite.T(), suite.store.CreateUser(suite.ctx, u))
	return u
}

func (suite *MarketplaceTestSuite) post(owner *models.User, title string, kind models.ListingType) *models.Listing {
	l, err := suite.listings.Create(suite.ctx, owner.ID, &CreateListingRequest{
		Title:    title,
		Category: models.CategoryOther,
		Type:     kind,
	})
	require.NoError(suite.T(), err)
	return l
}

func (suite *MarketplaceTestSuite) listingStatus(id uuid.UUID) models.ListingStatus {
	l, err := suite.store.GetListing(suite.ctx, id)
	require.NoError(suite.T(), err)
	return l.Status
}

func (suite *MarketplaceTestSuite) TestCreateListingDefaults() {
	l := suite.post(suite.alice, "Lamp", models.ListingTypeBarter)

	assert.Equal(suite.T(), "1", l.Quantity)
	assert.Equal(suite.T(), "India", l.Country)
	assert.Equal(suite.T(), "0", l.Warranty)
	assert.Equal(suite.T(), models.ConditionGood, l.Condition)
	assert.Equal(suite.T(), "Pune, Maharashtra", l.Location)
	assert.Equal(suite.T(), "Alice", l.UserName)
	assert.Contains(suite.T(), models.Gradients, l.Gradient)
	assert.Equal(suite.T(), models.ListingStatusActive, l.Status)
}

func (suite *MarketplaceTestSuite) TestCreateListingRequiresProfile() {
	anon := &models.User{Anonymous: true}
	require.NoError(suite.T(), suite.store.CreateUser(suite.ctx, anon))

	_, err := suite.listings.Create(suite.ctx, anon.ID, &CreateListingRequest{
		Title: "Kettle", Category: models.CategoryHome, Type: models.ListingTypeBarter,
	})
	assert.ErrorIs(suite.T(), err, ErrProfileRequired)
}

func (suite *MarketplaceTestSuite) TestGiveawayDropsWants() {
	l, err := suite.listings.Create(suite.ctx, suite.alice.ID, &CreateListingRequest{
		Title: "Old Textbook", Category: models.CategoryBooks, Type: models.ListingTypeGiveaway, Wants: "anything",
	})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), l.Wants)
}

func (suite *MarketplaceTestSuite) TestBrowseExcludesViewerAndTraded() {
	suite.post(suite.alice, "Lamp", models.ListingTypeBarter)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)

	listings, total, err := suite.listings.Browse(suite.ctx, &suite.alice.ID, BrowseParams{})
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 1, total)
	require.Len(suite.T(), listings, 1)
	assert.Equal(suite.T(), bike.ID, listings[0].ID)

	all, _, err := suite.listings.Browse(suite.ctx, nil, BrowseParams{})
	require.NoError(suite.T(), err)
	others, mine := viewstate.Partition(all, suite.alice.ID)
	assert.Len(suite.T(), mine, 1)
	assert.Len(suite.T(), others, 1)
}

func (suite *MarketplaceTestSuite) TestBarterTradeAccepted() {
	lamp := suite.post(suite.alice, "Lamp", models.ListingTypeBarter)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)

	offer, err := suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{
		ListingID: lamp.ID, OfferedItemID: bike.ID.String(),
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OfferStatusPending, offer.Status)
	assert.Equal(suite.T(), "Lamp", offer.ListingTitle)
	assert.Equal(suite.T(), "Bicycle", offer.OfferedItemTitle)
	assert.Equal(suite.T(), "Bob", offer.BidderName)
	assert.Equal(suite.T(), suite.alice.ID, offer.OwnerID)

	incoming, err := suite.offers.ListIncoming(suite.ctx, suite.alice.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), incoming, 1)
	mine, err := suite.offers.ListMine(suite.ctx, suite.bob.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), mine, 1)

	result, err := suite.offers.Accept(suite.ctx, suite.alice.ID, offer.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OfferStatusAccepted, result.Offer.Status)
	assert.NotNil(suite.T(), result.Offer.DecidedAt)
	require.NotNil(suite.T(), result.RatingPrompt)
	assert.Equal(suite.T(), suite.bob.ID, result.RatingPrompt.RateeID)

	assert.Equal(suite.T(), models.ListingStatusTraded, suite.listingStatus(lamp.ID))
	assert.Equal(suite.T(), models.ListingStatusTraded, suite.listingStatus(bike.ID))

	stored, err := suite.store.GetOffer(suite.ctx, offer.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OfferStatusAccepted, stored.Status)

	notes, err := suite.notifications.List(suite.ctx, suite.bob.ID, false)
	require.NoError(suite.T(), err)
	require.NotEmpty(suite.T(), notes)
	assert.Equal(suite.T(), models.NotificationOfferAccepted, notes[0].Type)
}

func (suite *MarketplaceTestSuite) TestGiveawayClaimAccepted() {
	book := suite.post(suite.alice, "Old Textbook", models.ListingTypeGiveaway)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)

	offer, err := suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{
		ListingID: book.ID, OfferedItemID: bike.ID.String(),
	})
	require.NoError(suite.T(), err)
	assert.True(suite.T(), offer.IsClaim())
	assert.Equal(suite.T(), models.GiveawayClaimTitle, offer.OfferedItemTitle)

	_, err = suite.offers.Accept(suite.ctx, suite.alice.ID, offer.ID)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), models.ListingStatusTraded, suite.listingStatus(book.ID))
	assert.Equal(suite.T(), models.ListingStatusActive, suite.listingStatus(bike.ID))
}

func (suite *MarketplaceTestSuite) TestRejectLeavesListingActive() {
	lamp := suite.post(suite.alice, "Lamp", models.ListingTypeBarter)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)
	offer, err := suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{
		ListingID: lamp.ID, OfferedItemID: bike.ID.String(),
	})
	require.NoError(suite.T(), err)

	rejected, err := suite.offers.Reject(suite.ctx, suite.alice.ID, offer.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OfferStatusRejected, rejected.Status)
	assert.Equal(suite.T(), models.ListingStatusActive, suite.listingStatus(lamp.ID))
	assert.Equal(suite.T(), models.ListingStatusActive, suite.listingStatus(bike.ID))

	_, err = suite.offers.Accept(suite.ctx, suite.alice.ID, offer.ID)
	assert.ErrorIs(suite.T(), err, ErrOfferNotPending)
	_, err = suite.offers.Reject(suite.ctx, suite.alice.ID, offer.ID)
	assert.ErrorIs(suite.T(), err, ErrOfferNotPending)
}

func (suite *MarketplaceTestSuite) TestOnlyOwnerDecides() {
	lamp := suite.post(suite.alice, "Lamp", models.ListingTypeBarter)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)
	offer, err := suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{
		ListingID: lamp.ID, OfferedItemID: bike.ID.String(),
	})
	require.NoError(suite.T(), err)

	_, err = suite.offers.Accept(suite.ctx, suite.bob.ID, offer.ID)
	assert.ErrorIs(suite.T(), err, ErrNotListingOwner)
	_, err = suite.offers.Reject(suite.ctx, suite.bob.ID, offer.ID)
	assert.ErrorIs(suite.T(), err, ErrNotListingOwner)

	_, err = suite.offers.Accept(suite.ctx, suite.alice.ID, uuid.New())
	assert.ErrorIs(suite.T(), err, ErrOfferNotFound)
}

func (suite *MarketplaceTestSuite) TestProposeGuards() {
	lamp := suite.post(suite.alice, "Lamp", models.ListingTypeBarter)
	vase := suite.post(suite.alice, "Vase", models.ListingTypeBarter)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)

	_, err := suite.offers.Propose(suite.ctx, suite.alice.ID, &ProposeRequest{ListingID: lamp.ID, OfferedItemID: vase.ID.String()})
	assert.ErrorIs(suite.T(), err, ErrOwnListing)

	_, err = suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{ListingID: lamp.ID})
	assert.ErrorIs(suite.T(), err, ErrNoOfferedItem)

	_, err = suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{ListingID: lamp.ID, OfferedItemID: models.ClaimSentinel})
	assert.ErrorIs(suite.T(), err, ErrNoOfferedItem)

	// offering someone else's item
	_, err = suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{ListingID: lamp.ID, OfferedItemID: vase.ID.String()})
	assert.ErrorIs(suite.T(), err, ErrNoOfferedItem)

	_, err = suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{ListingID: uuid.New(), OfferedItemID: bike.ID.String()})
	assert.ErrorIs(suite.T(), err, ErrListingNotFound)

	require.NoError(suite.T(), suite.store.UpdateListingStatus(suite.ctx, lamp.ID, models.ListingStatusActive, models.ListingStatusTraded))
	_, err = suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{ListingID: lamp.ID, OfferedItemID: bike.ID.String()})
	assert.ErrorIs(suite.T(), err, ErrListingUnavailable)
}

func (suite *MarketplaceTestSuite) TestSecondAcceptOnTradedListingRollsBack() {
	lamp := suite.post(suite.alice, "Lamp", models.ListingTypeBarter)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)
	carol := suite.newTrader("Carol", "Goa", "Goa")
	kettle := suite.post(carol, "Kettle", models.ListingTypeBarter)

	first, err := suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{ListingID: lamp.ID, OfferedItemID: bike.ID.String()})
	require.NoError(suite.T(), err)
	second, err := suite.offers.Propose(suite.ctx, carol.ID, &ProposeRequest{ListingID: lamp.ID, OfferedItemID: kettle.ID.String()})
	require.NoError(suite.T(), err)

	_, err = suite.offers.Accept(suite.ctx, suite.alice.ID, first.ID)
	require.NoError(suite.T(), err)

	_, err = suite.offers.Accept(suite.ctx, suite.alice.ID, second.ID)
	assert.ErrorIs(suite.T(), err, ErrListingUnavailable)

	stored, err := suite.store.GetOffer(suite.ctx, second.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OfferStatusPending, stored.Status)
	assert.Equal(suite.T(), models.ListingStatusActive, suite.listingStatus(kettle.ID))
}

func (suite *MarketplaceTestSuite) TestConcurrentDecisionsHaveOneWinner() {
	lamp := suite.post(suite.alice, "Lamp", models.ListingTypeBarter)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)
	offer, err := suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{ListingID: lamp.ID, OfferedItemID: bike.ID.String()})
	require.NoError(suite.T(), err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = suite.offers.Accept(suite.ctx, suite.alice.ID, offer.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = suite.offers.Reject(suite.ctx, suite.alice.ID, offer.ID)
	}()
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.True(suite.T(), errors.Is(err, ErrOfferNotPending))
		}
	}
	assert.Equal(suite.T(), 1, wins)
}

func (suite *MarketplaceTestSuite) TestMessages() {
	lamp := suite.post(suite.alice, "Lamp", models.ListingTypeBarter)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)
	offer, err := suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{ListingID: lamp.ID, OfferedItemID: bike.ID.String()})
	require.NoError(suite.T(), err)

	msg, err := suite.messages.Send(suite.ctx, suite.bob.ID, offer.ID, "   ")
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), msg)

	_, err = suite.messages.Send(suite.ctx, suite.bob.ID, offer.ID, "Is it working?")
	require.NoError(suite.T(), err)
	_, err = suite.messages.Send(suite.ctx, suite.alice.ID, offer.ID, "Yes, new bulb")
	require.NoError(suite.T(), err)

	carol := suite.newTrader("Carol", "Goa", "Goa")
	_, err = suite.messages.Send(suite.ctx, carol.ID, offer.ID, "hi")
	assert.ErrorIs(suite.T(), err, ErrNotParticipant)
	_, err = suite.messages.List(suite.ctx, carol.ID, offer.ID)
	assert.ErrorIs(suite.T(), err, ErrNotParticipant)

	thread, err := suite.messages.List(suite.ctx, suite.alice.ID, offer.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), thread, 2)
	assert.Equal(suite.T(), "Is it working?", thread[0].Text)
	assert.Equal(suite.T(), "Yes, new bulb", thread[1].Text)

	notes, err := suite.notifications.List(suite.ctx, suite.bob.ID, true)
	require.NoError(suite.T(), err)
	require.NotEmpty(suite.T(), notes)
	assert.Equal(suite.T(), models.NotificationNewMessage, notes[0].Type)
}

func (suite *MarketplaceTestSuite) TestRatings() {
	lamp := suite.post(suite.alice, "Lamp", models.ListingTypeBarter)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)
	offer, err := suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{ListingID: lamp.ID, OfferedItemID: bike.ID.String()})
	require.NoError(suite.T(), err)

	_, err = suite.ratings.Rate(suite.ctx, suite.alice.ID, offer.ID, &RateRequest{Score: 5})
	assert.ErrorIs(suite.T(), err, ErrRatingNotAllowed)

	_, err = suite.offers.Accept(suite.ctx, suite.alice.ID, offer.ID)
	require.NoError(suite.T(), err)

	_, err = suite.ratings.Rate(suite.ctx, suite.alice.ID, offer.ID, &RateRequest{Score: 6})
	assert.Error(suite.T(), err)

	rating, err := suite.ratings.Rate(suite.ctx, suite.alice.ID, offer.ID, &RateRequest{Score: 4, Comment: " smooth "})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.bob.ID, rating.RateeID)
	assert.Equal(suite.T(), "smooth", rating.Comment)

	_, err = suite.ratings.Rate(suite.ctx, suite.alice.ID, offer.ID, &RateRequest{Score: 3})
	assert.ErrorIs(suite.T(), err, ErrAlreadyRated)

	profile, err := NewUserService(suite.store).GetPublicProfile(suite.ctx, suite.bob.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, profile.RatingCount)
	assert.InDelta(suite.T(), 4.0, profile.RatingAverage, 0.001)
	assert.EqualValues(suite.T(), 0, profile.ActiveListings)
}

func (suite *MarketplaceTestSuite) TestNotificationsMarkRead() {
	lamp := suite.post(suite.alice, "Lamp", models.ListingTypeBarter)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)
	_, err := suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{ListingID: lamp.ID, OfferedItemID: bike.ID.String()})
	require.NoError(suite.T(), err)

	unread, err := suite.notifications.List(suite.ctx, suite.alice.ID, true)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), unread, 1)
	assert.Equal(suite.T(), models.NotificationOfferReceived, unread[0].Type)

	assert.ErrorIs(suite.T(), suite.notifications.MarkRead(suite.ctx, suite.bob.ID, unread[0].ID), ErrNotificationNotFound)
	require.NoError(suite.T(), suite.notifications.MarkRead(suite.ctx, suite.alice.ID, unread[0].ID))

	unread, err = suite.notifications.List(suite.ctx, suite.alice.ID, true)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), unread)
}

func (suite *MarketplaceTestSuite) TestLiveQueryIncomingOffers() {
	ctx, cancel := context.WithCancel(suite.ctx)
	defer cancel()

	_, err := suite.live.Subscribe(ctx, suite.bob.ID, livequery.Query{
		Collection: livequery.CollectionOffers, Field: "owner_id", Value: suite.alice.ID.String(),
	})
	assert.ErrorIs(suite.T(), err, ErrQueryForbidden)

	sub, err := suite.live.Subscribe(ctx, suite.alice.ID, livequery.Query{
		Collection: livequery.CollectionOffers, Field: "owner_id", Value: suite.alice.ID.String(),
	})
	require.NoError(suite.T(), err)
	defer sub.Close()

	first := suite.nextOffers(sub)
	assert.Empty(suite.T(), first)

	lamp := suite.post(suite.alice, "Lamp", models.ListingTypeBarter)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)
	_, err = suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{ListingID: lamp.ID, OfferedItemID: bike.ID.String()})
	require.NoError(suite.T(), err)

	assert.Eventually(suite.T(), func() bool {
		select {
		case snap := <-sub.Updates():
			offers, ok := snap.Data.([]models.Offer)
			return ok && len(offers) == 1
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func (suite *MarketplaceTestSuite) TestLiveQueryMessagesRequireParticipant() {
	lamp := suite.post(suite.alice, "Lamp", models.ListingTypeBarter)
	bike := suite.post(suite.bob, "Bicycle", models.ListingTypeBarter)
	offer, err := suite.offers.Propose(suite.ctx, suite.bob.ID, &ProposeRequest{ListingID: lamp.ID, OfferedItemID: bike.ID.String()})
	require.NoError(suite.T(), err)
	carol := suite.newTrader("Carol", "Goa", "Goa")

	q := livequery.Query{Collection: livequery.CollectionMessages, Field: "offer_id", Value: offer.ID.String()}
	_, err = suite.live.Subscribe(suite.ctx, carol.ID, q)
	assert.ErrorIs(suite.T(), err, ErrQueryForbidden)

	sub, err := suite.live.Subscribe(suite.ctx, suite.bob.ID, q)
	require.NoError(suite.T(), err)
	sub.Close()
}

func (suite *MarketplaceTestSuite) nextOffers(sub *livequery.Subscription) []models.Offer {
	select {
	case snap := <-sub.Updates():
		offers, ok := snap.Data.([]models.Offer)
		require.True(suite.T(), ok)
		return offers
	case <-time.After(time.Second):
		suite.T().Fatal("no snapshot")
		return nil
	}
}

func TestMarketplaceTestSuite(t *testing.T) {
	suite.Run(t, new(MarketplaceTestSuite))
}

func TestFairnessAdvisor(t *testing.T) {
	gen := &fakeGenerator{reply: " Fair enough. Both are used goods. "}
	advisor := NewAdvisorService(gen)

	owner, bidder := uuid.New(), uuid.New()
	offer := &models.Offer{OwnerID: owner, BidderID: bidder, ListingTitle: "Lamp", OfferedItemTitle: "Bicycle"}

	advice := advisor.AdviseOffer(context.Background(), offer, owner)
	assert.Equal(t, "Fair enough. Both are used goods.", advice.Text)
	assert.Equal(t, "Lamp", advice.Mine)
	assert.Equal(t, "Bicycle", advice.Theirs)
	require.Len(t, gen.prompts, 1)
	assert.Equal(t, `Barter Trade Advisor: I am trading "Lamp" for "Bicycle". Is it fair? 2 sentences.`, gen.prompts[0])
	assert.False(t, gen.opts[0].JSON)

	advice = advisor.AdviseOffer(context.Background(), offer, bidder)
	assert.Equal(t, "Bicycle", advice.Mine)
	assert.Equal(t, "Lamp", advice.Theirs)
}

func TestFairnessAdvisorFallback(t *testing.T) {
	advisor := NewAdvisorService(&fakeGenerator{err: errors.New("quota exceeded")})
	assert.Equal(t, FairnessFallback, advisor.Fairness(context.Background(), "Lamp", "Bicycle"))

	advisor = NewAdvisorService(nil)
	assert.Equal(t, "Advisor busy.", advisor.Fairness(context.Background(), "Lamp", "Bicycle"))
}

func TestPolishListing(t *testing.T) {
	draft := ListingDraft{Title: "lamp", Description: "works", Type: models.ListingTypeBarter}

	tests := []struct {
		name  string
		reply string
		err   error
		want  ListingDraft
	}{
		{
			name:  "both fields",
			reply: `{"title":"Vintage Desk Lamp","description":"Warm light, fully working."}`,
			want:  ListingDraft{Title: "Vintage Desk Lamp", Description: "Warm light, fully working.", Type: models.ListingTypeBarter},
		},
		{
			name:  "title only",
			reply: `{"title":"Vintage Desk Lamp"}`,
			want:  ListingDraft{Title: "Vintage Desk Lamp", Description: "works", Type: models.ListingTypeBarter},
		},
		{
			name:  "empty description ignored",
			reply: `{"title":"","description":""}`,
			want:  draft,
		},
		{
			name:  "malformed",
			reply: `not json`,
			want:  draft,
		},
		{
			name: "provider error",
			err:  errors.New("timeout"),
			want: draft,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: tt.reply, err: tt.err}
			got := NewAdvisorService(gen).Polish(context.Background(), draft)
			assert.Equal(t, tt.want, got)
			require.Len(t, gen.opts, 1)
			assert.True(t, gen.opts[0].JSON)
			assert.Equal(t, "Rewrite Listing. Title: lamp. Desc: works. Type: Barter. Return JSON {title, description}.", gen.prompts[0])
		})
	}
}

func TestPolishEmptyDraftSkipsModel(t *testing.T) {
	gen := &fakeGenerator{reply: `{"title":"x"}`}
	draft := ListingDraft{Type: models.ListingTypeGiveaway}

	assert.Equal(t, draft, NewAdvisorService(gen).Polish(context.Background(), draft))
	assert.Empty(t, gen.prompts)
}

