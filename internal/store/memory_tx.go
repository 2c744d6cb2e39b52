package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/models"
)

// memoryTx applies writes immediately and keeps an undo entry for each one,
// so a rollback only touches rows this transaction wrote.
type memoryTx struct {
	*MemoryStore
	undo []func(d *memoryData)
}

func (t *memoryTx) run(fn func(Store) error) error {
	if err := fn(t); err != nil {
		t.rollback()
		return err
	}
	return nil
}

func (t *memoryTx) rollback() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i](t.data)
	}
	t.undo = nil
}

// restore puts back the value a key had before the transaction wrote it.
func restore[V any](rows map[uuid.UUID]V, id uuid.UUID, prev V, existed bool) {
	if existed {
		rows[id] = prev
		return
	}
	delete(rows, id)
}

func (t *memoryTx) CreateUser(ctx context.Context, user *models.User) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, existed := t.data.users[user.ID]
	if err := t.createUser(user); err != nil {
		return err
	}
	id := user.ID
	t.undo = append(t.undo, func(d *memoryData) { restore(d.users, id, prev, existed) })
	return nil
}

func (t *memoryTx) UpdateUser(ctx context.Context, user *models.User) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, existed := t.data.users[user.ID]
	if err := t.updateUser(user); err != nil {
		return err
	}
	id := user.ID
	t.undo = append(t.undo, func(d *memoryData) { restore(d.users, id, prev, existed) })
	return nil
}

func (t *memoryTx) CreateListing(ctx context.Context, listing *models.Listing) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, existed := t.data.listings[listing.ID]
	t.createListing(listing)
	id := listing.ID
	t.undo = append(t.undo, func(d *memoryData) { restore(d.listings, id, prev, existed) })
	return nil
}

func (t *memoryTx) UpdateListingStatus(ctx context.Context, id uuid.UUID, from, to models.ListingStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.data.listings[id]
	if err := t.updateListingStatus(id, from, to); err != nil {
		return err
	}
	t.undo = append(t.undo, func(d *memoryData) { restore(d.listings, id, prev, true) })
	return nil
}

func (t *memoryTx) CreateOffer(ctx context.Context, offer *models.Offer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, existed := t.data.offers[offer.ID]
	t.createOffer(offer)
	id := offer.ID
	t.undo = append(t.undo, func(d *memoryData) { restore(d.offers, id, prev, existed) })
	return nil
}

func (t *memoryTx) UpdateOfferStatus(ctx context.Context, id uuid.UUID, from, to models.OfferStatus, decidedAt time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.data.offers[id]
	if err := t.updateOfferStatus(id, from, to, decidedAt); err != nil {
		return err
	}
	t.undo = append(t.undo, func(d *memoryData) { restore(d.offers, id, prev, true) })
	return nil
}

func (t *memoryTx) CreateMessage(ctx context.Context, msg *models.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, existed := t.data.messages[msg.ID]
	t.touch(&msg.BaseModel)
	t.data.messages[msg.ID] = *msg
	id := msg.ID
	t.undo = append(t.undo, func(d *memoryData) { restore(d.messages, id, prev, existed) })
	return nil
}

func (t *memoryTx) CreateRating(ctx context.Context, rating *models.Rating) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.createRating(rating); err != nil {
		return err
	}
	id := rating.ID
	t.undo = append(t.undo, func(d *memoryData) { delete(d.ratings, id) })
	return nil
}

func (t *memoryTx) CreateNotification(ctx context.Context, n *models.Notification) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, existed := t.data.notifications[n.ID]
	t.touch(&n.BaseModel)
	t.data.notifications[n.ID] = *n
	id := n.ID
	t.undo = append(t.undo, func(d *memoryData) { restore(d.notifications, id, prev, existed) })
	return nil
}

func (t *memoryTx) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.data.notifications[id]
	if err := t.markNotificationRead(id, userID, at); err != nil {
		return err
	}
	t.undo = append(t.undo, func(d *memoryData) { restore(d.notifications, id, prev, true) })
	return nil
}

func (t *memoryTx) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch(&entry.BaseModel)
	t.data.auditLogs = append(t.data.auditLogs, *entry)
	id := entry.ID
	t.undo = append(t.undo, func(d *memoryData) {
		for i := len(d.auditLogs) - 1; i >= 0; i-- {
			if d.auditLogs[i].ID == id {
				d.auditLogs = append(d.auditLogs[:i], d.auditLogs[i+1:]...)
				return
			}
		}
	})
	return nil
}

// WithTx nests: the inner fn's writes are undone on its own failure and
// otherwise become part of the outer transaction.
func (t *memoryTx) WithTx(ctx context.Context, fn func(Store) error) error {
	inner := &memoryTx{MemoryStore: t.MemoryStore}
	if err := inner.run(fn); err != nil {
		return err
	}
	t.undo = append(t.undo, inner.undo...)
	return nil
}
