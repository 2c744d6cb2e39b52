package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/barter-backend/internal/database"
	"github.com/javajoker/barter-backend/internal/models"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.conn(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateUser(ctx context.Context, user *models.User) error {
	if err := s.conn(ctx).Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *GormStore) getUserWhere(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where(query, arg).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *GormStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUserWhere(ctx, "id = ?", id)
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserWhere(ctx, "email = ?", email)
}

func (s *GormStore) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.getUserWhere(ctx, "external_id = ?", externalID)
}

func (s *GormStore) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return s.getUserWhere(ctx, "reset_token_hash = ?", tokenHash)
}

func (s *GormStore) CreateListing(ctx context.Context, listing *models.Listing) error {
	if err := s.conn(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

func (s *GormStore) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := s.conn(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &listing, nil
}

func (s *GormStore) FindListings(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error) {
	query := s.conn(ctx).Model(&models.Listing{})
	if filter.OwnerID != nil {
		query = query.Where("user_id = ?", *filter.OwnerID)
	}
	if filter.ExcludeOwnerID != nil {
		query = query.Where("user_id <> ?", *filter.ExcludeOwnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var listings []models.Listing
	if err := query.Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("find listings: %w", err)
	}
	return listings, total, nil
}

func (s *GormStore) UpdateListingStatus(ctx context.Context, id uuid.UUID, from, to models.ListingStatus) error {
	result := s.conn(ctx).Model(&models.Listing{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("update listing status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.missingOrConflict(ctx, &models.Listing{}, id)
	}
	return nil
}

func (s *GormStore) missingOrConflict(ctx context.Context, model interface{}, id uuid.UUID) error {
	var count int64
	if err := s.conn(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *GormStore) CreateOffer(ctx context.Context, offer *models.Offer) error {
	if err := s.conn(ctx).Create(offer).Error; err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	return nil
}

func (s *GormStore) GetOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := s.conn(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &offer, nil
}

func (s *GormStore) FindOffers(ctx context.Context, filter OfferFilter) ([]models.Offer, error) {
	query := s.conn(ctx).Model(&models.Offer{})
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.BidderID != nil {
		query = query.Where("bidder_id = ?", *filter.BidderID)
	}
	if filter.ListingID != nil {
		query = query.Where("listing_id = ?", *filter.ListingID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var offers []models.Offer
	if err := query.Order("created_at DESC").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("find offers: %w", err)
	}
	return offers, nil
}

func (s *GormStore) UpdateOfferStatus(ctx context.Context, id uuid.UUID, from, to models.OfferStatus, decidedAt time.Time) error {
	result := s.conn(ctx).Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "decided_at": decidedAt, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("update offer status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.missingOrConflict(ctx, &models.Offer{}, id)
	}
	return nil
}

func (s *GormStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := s.conn(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (s *GormStore) ListMessages(ctx context.Context, offerID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	if err := s.conn(ctx).Where("offer_id = ?", offerID).Order("created_at ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (s *GormStore) CreateRating(ctx context.Context, rating *models.Rating) error {
	if err := s.conn(ctx).Create(rating).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create rating: %w", err)
	}
	return nil
}

func (s *GormStore) ListRatings(ctx context.Context, rateeID uuid.UUID) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := s.conn(ctx).Where("ratee_id = ?", rateeID).Order("created_at DESC").Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if err := s.conn(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *GormStore) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	query := s.conn(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	var notifications []models.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (s *GormStore) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	result := s.conn(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", at)
	if result.Error != nil {
		return fmt.Errorf("mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return s.conn(ctx).Create(entry).Error
}

func (s *GormStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return database.WithTransaction(s.conn(ctx), func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
