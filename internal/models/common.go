// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryStationery  Category = "Stationery"
	CategoryBooks       Category = "Books"
	CategoryClothing    Category = "Clothing"
	CategoryHome        Category = "Home"
	CategoryTools       Category = "Tools"
	CategoryOther       Category = "Other"
)

var Categories = []Category{
	CategoryElectronics, CategoryStationery, CategoryBooks, CategoryClothing,
	CategoryHome, CategoryTools, CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Condition string

const (
	ConditionUnpacked     Condition = "Unpacked"
	ConditionExcellent    Condition = "Excellent"
	ConditionGood         Condition = "Good"
	ConditionMinorDefects Condition = "Minor Defects"
	ConditionBad          Condition = "Bad"
	ConditionScrap        Condition = "Scrap"
)

var Conditions = []Condition{
	ConditionUnpacked, ConditionExcellent, ConditionGood,
	ConditionMinorDefects, ConditionBad, ConditionScrap,
}

func (c Condition) Valid() bool {
	for _, v := range Conditions {
		if v == c {
			return true
		}
	}
	return false
}

type ListingType string

const (
	ListingTypeBarter   ListingType = "Barter"
	ListingTypeGiveaway ListingType = "Giveaway"
)

var ListingTypes = []ListingType{ListingTypeBarter, ListingTypeGiveaway}

func (t ListingType) Valid() bool {
	return t == ListingTypeBarter || t == ListingTypeGiveaway
}

type ListingStatus string

const (
	ListingStatusActive ListingStatus = "active"
	ListingStatusTraded ListingStatus = "traded"
)

type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

func (s OfferStatus) Terminal() bool {
	return s == OfferStatusAccepted || s == OfferStatusRejected
}

type NotificationType string

const (
	NotificationOfferReceived NotificationType = "offer_received"
	NotificationOfferAccepted NotificationType = "offer_accepted"
	NotificationOfferRejected NotificationType = "offer_rejected"
	NotificationNewMessage    NotificationType = "new_message"
)
