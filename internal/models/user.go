// internal/models/user.go
package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an authenticated identity. Anonymous identities carry no email or
// password until they register; the profile fields stay empty until then.
type User struct {
	BaseModel
	Email        *string    `json:"email,omitempty" gorm:"uniqueIndex;size:255"`
	PasswordHash string     `json:"-" gorm:"size:255"`
	Anonymous    bool       `json:"anonymous" gorm:"default:false"`
	ExternalID   *string    `json:"-" gorm:"uniqueIndex;size:255"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Profile
	FirstName     string     `json:"first_name" gorm:"size:100"`
	LastName      string     `json:"last_name" gorm:"size:100"`
	FullName      string     `json:"full_name" gorm:"size:200"`
	Mobile        string     `json:"mobile" gorm:"size:30"`
	DOB           string     `json:"dob" gorm:"size:20"`
	Sex           string     `json:"sex" gorm:"size:20"`
	Address1      string     `json:"address1" gorm:"size:255"`
	Address2      string     `json:"address2" gorm:"size:255"`
	City          string     `json:"city" gorm:"size:100"`
	Pin           string     `json:"pin" gorm:"size:20"`
	State         string     `json:"state" gorm:"size:100"`
	Country       string     `json:"country" gorm:"size:100"`
	TermsAccepted bool       `json:"terms_accepted"`
	JoinedAt      *time.Time `json:"joined_at"`

	ResetTokenHash   string     `json:"-" gorm:"size:255"`
	ResetTokenExpiry *time.Time `json:"-"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// HasProfile reports whether registration was completed.
func (u *User) HasProfile() bool {
	return u.JoinedAt != nil
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Location is the "city, state" string stamped on new listings.
func (u *User) Location() string {
	switch {
	case u.City != "" && u.State != "":
		return u.City + ", " + u.State
	case u.City != "":
		return u.City
	default:
		return u.State
	}
}

func (u *User) EmailAddress() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// Profile is the public view of a user.
type Profile struct {
	ID       string     `json:"id"`
	FullName string     `json:"full_name"`
	City     string     `json:"city"`
	State    string     `json:"state"`
	Country  string     `json:"country"`
	JoinedAt *time.Time `json:"joined_at"`
}

func (u *User) ToProfile() Profile {
	return Profile{
		ID:       u.ID.String(),
		FullName: u.DisplayName(),
		City:     u.City,
		State:    u.State,
		Country:  u.Country,
		JoinedAt: u.JoinedAt,
	}
}
