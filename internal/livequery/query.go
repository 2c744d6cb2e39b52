// Package livequery keeps filtered result sets fresh for subscribers. Every
// write publishes a Change; each subscription whose query the change touches
// reloads and receives the full current result set.
package livequery

import (
	"errors"
	"fmt"
	"time"

	"github.com/javajoker/barter-backend/internal/models"
)

type Collection string

const (
	CollectionListings      Collection = "listings"
	CollectionOffers        Collection = "offers"
	CollectionMessages      Collection = "messages"
	CollectionNotifications Collection = "notifications"
)

// queryableFields lists the equality filters each collection supports.
var queryableFields = map[Collection][]string{
	CollectionListings:      {"status", "user_id"},
	CollectionOffers:        {"owner_id", "bidder_id"},
	CollectionMessages:      {"offer_id"},
	CollectionNotifications: {"user_id"},
}

var ErrInvalidQuery = errors.New("invalid live query")

// Query selects documents of one collection where Field equals Value.
type Query struct {
	Collection Collection `json:"collection"`
	Field      string     `json:"field"`
	Value      string     `json:"value"`
}

func (q Query) Validate() error {
	fields, ok := queryableFields[q.Collection]
	if !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrInvalidQuery, q.Collection)
	}
	if q.Value == "" {
		return fmt.Errorf("%w: empty value", ErrInvalidQuery)
	}
	for _, f := range fields {
		if f == q.Field {
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot be filtered by %q", ErrInvalidQuery, q.Collection, q.Field)
}

func (q Query) String() string {
	return fmt.Sprintf("%s[%s=%s]", q.Collection, q.Field, q.Value)
}

// Change describes a write: for each queryable field, the values it held
// before and after. A status flip from active to traded lists both.
type Change struct {
	Collection Collection          `json:"collection"`
	Fields     map[string][]string `json:"fields"`
}

func (c Change) Matches(q Query) bool {
	if c.Collection != q.Collection {
		return false
	}
	for _, v := range c.Fields[q.Field] {
		if v == q.Value {
			return true
		}
	}
	return false
}

// Snapshot is the complete result set of a query at one point in time.
type Snapshot struct {
	Query Query       `json:"query"`
	Data  interface{} `json:"data"`
	At    time.Time   `json:"at"`
}

// ListingChange covers a created listing or a status move from previous.
func ListingChange(l *models.Listing, previous ...models.ListingStatus) Change {
	statuses := []string{string(l.Status)}
	for _, p := range previous {
		if p != l.Status {
			statuses = append(statuses, string(p))
		}
	}
	return Change{
		Collection: CollectionListings,
		Fields: map[string][]string{
			"status":  statuses,
			"user_id": {l.UserID.String()},
		},
	}
}

func OfferChange(o *models.Offer) Change {
	return Change{
		Collection: CollectionOffers,
		Fields: map[string][]string{
			"owner_id":  {o.OwnerID.String()},
			"bidder_id": {o.BidderID.String()},
		},
	}
}

func MessageChange(m *models.Message) Change {
	return Change{
		Collection: CollectionMessages,
		Fields:     map[string][]string{"offer_id": {m.OfferID.String()}},
	}
}

func NotificationChange(n *models.Notification) Change {
	return Change{
		Collection: CollectionNotifications,
		Fields:     map[string][]string{"user_id": {n.UserID.String()}},
	}
}
