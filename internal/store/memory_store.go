package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/models"
)

type memoryData struct {
	users         map[uuid.UUID]models.User
	listings      map[uuid.UUID]models.Listing
	offers        map[uuid.UUID]models.Offer
	messages      map[uuid.UUID]models.Message
	ratings       map[uuid.UUID]models.Rating
	notifications map[uuid.UUID]models.Notification
	auditLogs     []models.AuditLog
}

func newMemoryData() *memoryData {
	return &memoryData{
		users:         make(map[uuid.UUID]models.User),
		listings:      make(map[uuid.UUID]models.Listing),
		offers:        make(map[uuid.UUID]models.Offer),
		messages:      make(map[uuid.UUID]models.Message),
		ratings:       make(map[uuid.UUID]models.Rating),
		notifications: make(map[uuid.UUID]models.Notification),
	}
}

// MemoryStore keeps every record in-process. Used by tests and by the server
// when no database is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *memoryData
	now  func() time.Time
	last time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: newMemoryData(),
		now:  time.Now,
	}
}

// touch fills id and timestamps the way the database defaults would.
// Created-at values are forced strictly increasing so ordering is stable.
// Callers hold m.mu.
func (m *MemoryStore) touch(base *models.BaseModel) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	now := m.now()
	if !now.After(m.last) {
		now = m.last.Add(time.Microsecond)
	}
	m.last = now
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createUser(user)
}

func (m *MemoryStore) createUser(user *models.User) error {
	if err := m.checkUserUnique(user); err != nil {
		return err
	}
	m.touch(&user.BaseModel)
	m.data.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) checkUserUnique(user *models.User) error {
	for id, u := range m.data.users {
		if id == user.ID {
			continue
		}
		if user.Email != nil && u.Email != nil && *u.Email == *user.Email {
			return ErrDuplicate
		}
		if user.ExternalID != nil && u.ExternalID != nil && *u.ExternalID == *user.ExternalID {
			return ErrDuplicate
		}
	}
	return nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateUser(user)
}

func (m *MemoryStore) updateUser(user *models.User) error {
	if _, ok := m.data.users[user.ID]; !ok {
		return ErrNotFound
	}
	if err := m.checkUserUnique(user); err != nil {
		return err
	}
	user.UpdatedAt = m.now()
	m.data.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) findUser(match func(models.User) bool) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.data.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.ID == id })
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.Email != nil && *u.Email == email })
}

func (m *MemoryStore) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.ExternalID != nil && *u.ExternalID == externalID })
}

func (m *MemoryStore) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	if tokenHash == "" {
		return nil, ErrNotFound
	}
	return m.findUser(func(u models.User) bool { return u.ResetTokenHash == tokenHash })
}

func (m *MemoryStore) CreateListing(ctx context.Context, listing *models.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createListing(listing)
	return nil
}

func (m *MemoryStore) createListing(listing *models.Listing) {
	m.touch(&listing.BaseModel)
	if listing.Status == "" {
		listing.Status = models.ListingStatusActive
	}
	stored := *listing
	stored.ImageURLs = append([]string(nil), listing.ImageURLs...)
	m.data.listings[listing.ID] = stored
}

func (m *MemoryStore) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	listing, ok := m.data.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &listing, nil
}

func (m *MemoryStore) FindListings(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error) {
	m.mu.RLock()
	var out []models.Listing
	for _, l := range m.data.listings {
		if filter.OwnerID != nil && l.UserID != *filter.OwnerID {
			continue
		}
		if filter.ExcludeOwnerID != nil && l.UserID == *filter.ExcludeOwnerID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Category != "" && l.Category != filter.Category {
			continue
		}
		out = append(out, l)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if filter.Limit > 0 {
		start := filter.Offset
		if start > len(out) {
			start = len(out)
		}
		end := start + filter.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (m *MemoryStore) UpdateListingStatus(ctx context.Context, id uuid.UUID, from, to models.ListingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateListingStatus(id, from, to)
}

func (m *MemoryStore) updateListingStatus(id uuid.UUID, from, to models.ListingStatus) error {
	listing, ok := m.data.listings[id]
	if !ok {
		return ErrNotFound
	}
	if listing.Status != from {
		return ErrConflict
	}
	listing.Status = to
	listing.UpdatedAt = m.now()
	m.data.listings[id] = listing
	return nil
}

func (m *MemoryStore) CreateOffer(ctx context.Context, offer *models.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createOffer(offer)
	return nil
}

func (m *MemoryStore) createOffer(offer *models.Offer) {
	m.touch(&offer.BaseModel)
	if offer.Status == "" {
		offer.Status = models.OfferStatusPending
	}
	m.data.offers[offer.ID] = *offer
}

func (m *MemoryStore) GetOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	offer, ok := m.data.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &offer, nil
}

func (m *MemoryStore) FindOffers(ctx context.Context, filter OfferFilter) ([]models.Offer, error) {
	m.mu.RLock()
	var out []models.Offer
	for _, o := range m.data.offers {
		if filter.OwnerID != nil && o.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.BidderID != nil && o.BidderID != *filter.BidderID {
			continue
		}
		if filter.ListingID != nil && o.ListingID != *filter.ListingID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) UpdateOfferStatus(ctx context.Context, id uuid.UUID, from, to models.OfferStatus, decidedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateOfferStatus(id, from, to, decidedAt)
}

func (m *MemoryStore) updateOfferStatus(id uuid.UUID, from, to models.OfferStatus, decidedAt time.Time) error {
	offer, ok := m.data.offers[id]
	if !ok {
		return ErrNotFound
	}
	if offer.Status != from {
		return ErrConflict
	}
	offer.Status = to
	offer.DecidedAt = &decidedAt
	offer.UpdatedAt = m.now()
	m.data.offers[id] = offer
	return nil
}

func (m *MemoryStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(&msg.BaseModel)
	m.data.messages[msg.ID] = *msg
	return nil
}

func (m *MemoryStore) ListMessages(ctx context.Context, offerID uuid.UUID) ([]models.Message, error) {
	m.mu.RLock()
	var out []models.Message
	for _, msg := range m.data.messages {
		if msg.OfferID == offerID {
			out = append(out, msg)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CreateRating(ctx context.Context, rating *models.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createRating(rating)
}

func (m *MemoryStore) createRating(rating *models.Rating) error {
	for _, r := range m.data.ratings {
		if r.OfferID == rating.OfferID && r.RaterID == rating.RaterID {
			return ErrDuplicate
		}
	}
	m.touch(&rating.BaseModel)
	m.data.ratings[rating.ID] = *rating
	return nil
}

func (m *MemoryStore) ListRatings(ctx context.Context, rateeID uuid.UUID) ([]models.Rating, error) {
	m.mu.RLock()
	var out []models.Rating
	for _, r := range m.data.ratings {
		if r.RateeID == rateeID {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(&n.BaseModel)
	m.data.notifications[n.ID] = *n
	return nil
}

func (m *MemoryStore) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	m.mu.RLock()
	var out []models.Notification
	for _, n := range m.data.notifications {
		if n.UserID != userID || (unreadOnly && n.ReadAt != nil) {
			continue
		}
		out = append(out, n)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markNotificationRead(id, userID, at)
}

func (m *MemoryStore) markNotificationRead(id, userID uuid.UUID, at time.Time) error {
	n, ok := m.data.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.ReadAt = &at
	m.data.notifications[id] = n
	return nil
}

func (m *MemoryStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(&entry.BaseModel)
	m.data.auditLogs = append(m.data.auditLogs, *entry)
	return nil
}

// AuditLogs returns a copy of the recorded audit entries.
func (m *MemoryStore) AuditLogs() []models.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.AuditLog(nil), m.data.auditLogs...)
}

// WithTx serializes transactions. Writes go straight to the shared data and
// fn's own writes are undone if it fails; writes made outside the
// transaction in the meantime are kept.
func (m *MemoryStore) WithTx(ctx context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return (&memoryTx{MemoryStore: m}).run(fn)
}
