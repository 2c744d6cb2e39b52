// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthPasswordReset      = "auth.password_reset"
	KeyAuthResetEmailSent     = "auth.reset_email_sent"
	KeyAuthTermsRequired      = "auth.terms_required"

	// Users
	KeyUserNotFound        = "user.not_found"
	KeyUserProfileRequired = "user.profile_required"

	// Listings
	KeyListingCreated     = "listing.created"
	KeyListingNotFound    = "listing.not_found"
	KeyListingUnavailable = "listing.unavailable"
	KeyListingOwn         = "listing.own"

	// Offers
	KeyOfferCreated      = "offer.created"
	KeyOfferAccepted     = "offer.accepted"
	KeyOfferRejected     = "offer.rejected"
	KeyOfferNotFound     = "offer.not_found"
	KeyOfferNotPending   = "offer.not_pending"
	KeyOfferNotOwner     = "offer.not_owner"
	KeyOfferNoItem       = "offer.no_item"
	KeyOfferForbidden    = "offer.forbidden"
	KeyOfferRatingPrompt = "offer.rating_prompt"

	// Ratings
	KeyRatingCreated   = "rating.created"
	KeyRatingDuplicate = "rating.duplicate"
	KeyRatingNotReady  = "rating.not_ready"

	// Notifications
	KeyNotificationNotFound = "notification.not_found"
	KeyNotificationRead     = "notification.read"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"

	KeyRateLimited = "rate_limit.exceeded"
)
