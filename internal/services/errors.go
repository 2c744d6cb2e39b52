// internal/services/errors.go
package services

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTermsNotAccepted   = errors.New("terms and conditions must be accepted")
	ErrProfileRequired    = errors.New("a completed profile is required")

	ErrListingNotFound    = errors.New("listing not found")
	ErrListingUnavailable = errors.New("listing is no longer available")
	ErrOwnListing         = errors.New("cannot make an offer on your own listing")
	ErrNoOfferedItem      = errors.New("an active item of yours must be offered")

	ErrOfferNotFound   = errors.New("offer not found")
	ErrOfferNotPending = errors.New("offer is not in pending status")
	ErrNotListingOwner = errors.New("only the listing owner can decide an offer")
	ErrNotParticipant  = errors.New("not a participant in this offer")

	ErrRatingNotAllowed = errors.New("only accepted trades can be rated")
	ErrAlreadyRated     = errors.New("trade already rated")

	ErrNotificationNotFound = errors.New("notification not found")
	ErrQueryForbidden       = errors.New("live query not permitted")
)
