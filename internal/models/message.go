// internal/models/message.go
package models

import (
	"sort"

	"github.com/google/uuid"
)

type Message struct {
	BaseModel
	OfferID  uuid.UUID `json:"offer_id" gorm:"type:uuid;not null;index"`
	SenderID uuid.UUID `json:"sender_id" gorm:"type:uuid;not null"`
	Text     string    `json:"text" gorm:"type:text;not null"`
}

type Rating struct {
	BaseModel
	OfferID uuid.UUID `json:"offer_id" gorm:"type:uuid;not null;uniqueIndex:idx_ratings_offer_rater"`
	RaterID uuid.UUID `json:"rater_id" gorm:"type:uuid;not null;uniqueIndex:idx_ratings_offer_rater"`
	RateeID uuid.UUID `json:"ratee_id" gorm:"type:uuid;not null;index"`
	Score   int       `json:"score" gorm:"not null"`
	Comment string    `json:"comment" gorm:"type:text"`
}

// SortMessages orders a thread by creation time, oldest first. Snapshots may
// arrive in any order so callers sort every one they receive.
func SortMessages(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}
