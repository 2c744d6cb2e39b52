// internal/services/listing_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/store"
	"github.com/javajoker/barter-backend/internal/utils"
)

// Defaults applied to fields a poster leaves blank.
const (
	defaultQuantity = "1"
	defaultCountry  = "India"
	defaultWarranty = "0"
)

type ListingService struct {
	store     store.Store
	publisher livequery.Publisher
}

type CreateListingRequest struct {
	Title       string             `json:"title" validate:"required,max=255"`
	Category    models.Category    `json:"category" validate:"required,category"`
	Type        models.ListingType `json:"type" validate:"required,listing_type"`
	Quantity    string             `json:"quantity" validate:"max=20"`
	Condition   models.Condition   `json:"condition" validate:"omitempty,condition"`
	MfgDate     string             `json:"mfg_date" validate:"omitempty,datetime=2006-01-02"`
	Brand       string             `json:"brand" validate:"max=100"`
	Country     string             `json:"country" validate:"max=100"`
	Warranty    string             `json:"warranty" validate:"max=20"`
	Wants       string             `json:"wants" validate:"max=1000"`
	Description string             `json:"description" validate:"max=5000"`
	Gradient    string             `json:"gradient" validate:"max=100"`
	ImageURLs   []string           `json:"image_urls" validate:"max=6,dive,url"`
}

type BrowseParams struct {
	Category models.Category
	Limit    int
	Offset   int
}

func NewListingService(st store.Store, publisher livequery.Publisher) *ListingService {
	return &ListingService{
		store:     st,
		publisher: publisher,
	}
}

// Create posts a listing for ownerID. Location fields are copied from the
// owner's profile now and never resynced.
func (s *ListingService) Create(ctx context.Context, ownerID uuid.UUID, req *CreateListingRequest) (*models.Listing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	owner, err := s.store.GetUser(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !owner.HasProfile() {
		return nil, ErrProfileRequired
	}

	listing := &models.Listing{
		UserID:      owner.ID,
		UserName:    owner.DisplayName(),
		Title:       strings.TrimSpace(req.Title),
		Category:    req.Category,
		Type:        req.Type,
		Quantity:    orDefault(req.Quantity, defaultQuantity),
		Condition:   req.Condition,
		MfgDate:     req.MfgDate,
		Brand:       req.Brand,
		Country:     orDefault(req.Country, defaultCountry),
		Warranty:    orDefault(req.Warranty, defaultWarranty),
		Wants:       req.Wants,
		Description: req.Description,
		Gradient:    req.Gradient,
		ImageURLs:   req.ImageURLs,
		Status:      models.ListingStatusActive,
		Location:    owner.Location(),
		City:        owner.City,
		State:       owner.State,
	}
	if listing.Condition == "" {
		listing.Condition = models.ConditionGood
	}
	if listing.Type == models.ListingTypeGiveaway {
		listing.Wants = ""
	}
	if listing.Gradient == "" {
		listing.Gradient = models.Gradients[utils.RandomIndex(len(models.Gradients))]
	}

	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.publisher.Publish(ctx, livequery.ListingChange(listing))
	return listing, nil
}

func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.store.GetListing(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return listing, nil
}

// Browse lists active listings owned by anyone but the viewer.
func (s *ListingService) Browse(ctx context.Context, viewerID *uuid.UUID, params BrowseParams) ([]models.Listing, int64, error) {
	listings, total, err := s.store.FindListings(ctx, store.ListingFilter{
		ExcludeOwnerID: viewerID,
		Status:         models.ListingStatusActive,
		Category:       params.Category,
		Limit:          params.Limit,
		Offset:         params.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to browse listings: %w", err)
	}
	return listings, total, nil
}

// Mine lists the owner's listings. Traded ones are included on request.
func (s *ListingService) Mine(ctx context.Context, ownerID uuid.UUID, includeTraded bool) ([]models.Listing, error) {
	filter := store.ListingFilter{OwnerID: &ownerID}
	if !includeTraded {
		filter.Status = models.ListingStatusActive
	}
	listings, _, err := s.store.FindListings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	return listings, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
