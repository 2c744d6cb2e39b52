// internal/models/listing.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const mfgDateLayout = "2006-01-02"

// Gradients is the fixed palette new listings draw from when none is given.
var Gradients = []string{
	"from-blue-200 to-cyan-200",
	"from-purple-200 to-pink-200",
	"from-orange-200 to-amber-200",
	"from-emerald-200 to-teal-200",
}

type Listing struct {
	BaseModel
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	UserName    string         `json:"user_name" gorm:"size:200"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Category    Category       `json:"category" gorm:"type:varchar(30);not null;index"`
	Type        ListingType    `json:"type" gorm:"type:varchar(20);not null"`
	Quantity    string         `json:"quantity" gorm:"size:20"`
	Condition   Condition      `json:"condition" gorm:"type:varchar(30)"`
	MfgDate     string         `json:"mfg_date" gorm:"size:20"`
	Brand       string         `json:"brand" gorm:"size:100"`
	Country     string         `json:"country" gorm:"size:100"`
	Warranty    string         `json:"warranty" gorm:"size:20"`
	Wants       string         `json:"wants" gorm:"type:text"`
	Description string         `json:"description" gorm:"type:text"`
	Gradient    string         `json:"gradient" gorm:"size:100"`
	ImageURLs   pq.StringArray `json:"image_urls" gorm:"type:text[]"`
	Status      ListingStatus  `json:"status" gorm:"type:varchar(20);default:'active';index"`
	Location    string         `json:"location" gorm:"size:255"`
	City        string         `json:"city" gorm:"size:100"`
	State       string         `json:"state" gorm:"size:100"`
}

func (l *Listing) IsActive() bool {
	return l.Status == ListingStatusActive
}

// AgeDescription renders the item's age from its manufacturing date as of now.
// Unparseable or missing dates yield an empty string.
func (l *Listing) AgeDescription(now time.Time) string {
	if l.MfgDate == "" {
		return ""
	}
	mfg, err := time.Parse(mfgDateLayout, l.MfgDate)
	if err != nil {
		return ""
	}

	age := now.Year() - mfg.Year()
	if now.Month() < mfg.Month() || (now.Month() == mfg.Month() && now.Day() < mfg.Day()) {
		age--
	}
	if age > 0 {
		return fmt.Sprintf("%d years old", age)
	}
	return "Less than a year old"
}
