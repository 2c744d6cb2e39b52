package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/services"
)

// AuthResult is returned by every sign-in call. The client keeps the
// access token for later requests.
type AuthResult struct {
	User         models.User `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
}

type RatingPrompt struct {
	OfferID   uuid.UUID `json:"offer_id"`
	RateeID   uuid.UUID `json:"ratee_id"`
	RateeName string    `json:"ratee_name"`
	Message   string    `json:"message"`
}

type AcceptResult struct {
	Offer        models.Offer `json:"offer"`
	RatingPrompt RatingPrompt `json:"rating_prompt"`
}

func (c *Client) authenticate(ctx context.Context, path string, payload interface{}) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, path, payload, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

func (c *Client) SignInAnonymously(ctx context.Context) (*AuthResult, error) {
	return c.authenticate(ctx, "/v1/auth/anonymous", nil)
}

func (c *Client) SignInWithCustomToken(ctx context.Context, token string) (*AuthResult, error) {
	return c.authenticate(ctx, "/v1/auth/custom-token", services.CustomTokenRequest{Token: token})
}

// Register completes a profile. When the client holds an anonymous token
// that identity is upgraded in place.
func (c *Client) Register(ctx context.Context, req services.RegisterRequest) (*AuthResult, error) {
	return c.authenticate(ctx, "/v1/auth/register", req)
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/v1/auth/login", services.LoginRequest{Email: email, Password: password})
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	return c.authenticate(ctx, "/v1/auth/refresh", services.RefreshRequest{RefreshToken: refreshToken})
}

// Logout revokes the current tokens and forgets the access token.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	err := c.do(ctx, http.MethodPost, "/v1/auth/logout", services.LogoutRequest{RefreshToken: refreshToken}, nil)
	c.SetToken("")
	return err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/forgot-password", services.ForgotPasswordRequest{Email: email}, nil)
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) PublicProfile(ctx context.Context, userID uuid.UUID) (*services.PublicProfile, error) {
	var out services.PublicProfile
	if err := c.do(ctx, http.MethodGet, "/v1/users/"+userID.String()+"/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Browse lists other traders' active listings, newest first.
func (c *Client) Browse(ctx context.Context, category models.Category, page int) ([]models.Listing, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", string(category))
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	path := "/v1/listings"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var listings []models.Listing
	if err := c.do(ctx, http.MethodGet, path, nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// MyListings returns the caller's listings; traded ones only when asked.
func (c *Client) MyListings(ctx context.Context, includeTraded bool) ([]models.Listing, error) {
	path := "/v1/listings/mine"
	if includeTraded {
		path += "?include_traded=true"
	}
	var listings []models.Listing
	if err := c.do(ctx, http.MethodGet, path, nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (c *Client) CreateListing(ctx context.Context, req services.CreateListingRequest) (*models.Listing, error) {
	var out struct {
		Listing models.Listing `json:"listing"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/listings", req, &out); err != nil {
		return nil, err
	}
	return &out.Listing, nil
}

// Polish never fails on the server side; an error here is transport only.
func (c *Client) Polish(ctx context.Context, draft services.ListingDraft) (services.ListingDraft, error) {
	var out services.ListingDraft
	if err := c.do(ctx, http.MethodPost, "/v1/listings/polish", draft, &out); err != nil {
		return draft, err
	}
	return out, nil
}

// Propose makes an offer. Pass models.ClaimSentinel or "" for giveaways.
func (c *Client) Propose(ctx context.Context, listingID uuid.UUID, offeredItemID string) (*models.Offer, error) {
	var out struct {
		Offer models.Offer `json:"offer"`
	}
	req := services.ProposeRequest{ListingID: listingID, OfferedItemID: offeredItemID}
	if err := c.do(ctx, http.MethodPost, "/v1/offers", req, &out); err != nil {
		return nil, err
	}
	return &out.Offer, nil
}

func (c *Client) IncomingOffers(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	err := c.do(ctx, http.MethodGet, "/v1/offers/incoming", nil, &offers)
	return offers, err
}

func (c *Client) MyOffers(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	err := c.do(ctx, http.MethodGet, "/v1/offers/mine", nil, &offers)
	return offers, err
}

func (c *Client) Accept(ctx context.Context, offerID uuid.UUID) (*AcceptResult, error) {
	var out AcceptResult
	if err := c.do(ctx, http.MethodPut, "/v1/offers/"+offerID.String()+"/accept", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reject(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	var out struct {
		Offer models.Offer `json:"offer"`
	}
	if err := c.do(ctx, http.MethodPut, "/v1/offers/"+offerID.String()+"/reject", nil, &out); err != nil {
		return nil, err
	}
	return &out.Offer, nil
}

// Messages returns the thread oldest first.
func (c *Client) Messages(ctx context.Context, offerID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	if err := c.do(ctx, http.MethodGet, "/v1/offers/"+offerID.String()+"/messages", nil, &msgs); err != nil {
		return nil, err
	}
	models.SortMessages(msgs)
	return msgs, nil
}

// SendMessage returns nil, nil when the server ignored blank text.
func (c *Client) SendMessage(ctx context.Context, offerID uuid.UUID, text string) (*models.Message, error) {
	var msg models.Message
	if err := c.do(ctx, http.MethodPost, "/v1/offers/"+offerID.String()+"/messages", services.SendMessageRequest{Text: text}, &msg); err != nil {
		return nil, err
	}
	if msg.ID == uuid.Nil {
		return nil, nil
	}
	return &msg, nil
}

func (c *Client) Advice(ctx context.Context, offerID uuid.UUID) (*services.Advice, error) {
	var out services.Advice
	if err := c.do(ctx, http.MethodGet, "/v1/offers/"+offerID.String()+"/advice", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Rate(ctx context.Context, offerID uuid.UUID, score int, comment string) (*models.Rating, error) {
	var out struct {
		Rating models.Rating `json:"rating"`
	}
	req := services.RateRequest{Score: score, Comment: comment}
	if err := c.do(ctx, http.MethodPost, "/v1/offers/"+offerID.String()+"/ratings", req, &out); err != nil {
		return nil, err
	}
	return &out.Rating, nil
}

func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]models.Notification, error) {
	path := "/v1/notifications"
	if unreadOnly {
		path += "?unread=true"
	}
	var out []models.Notification
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPut, "/v1/notifications/"+id.String()+"/read", nil, nil)
}
