// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/barter-backend/internal/i18n"
	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/services"
	"github.com/javajoker/barter-backend/internal/utils"
)

type errorMapping struct {
	err    error
	status int
	code   string
	key    string
}

var serviceErrors = []errorMapping{
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED", i18n.KeyAuthInvalidCredentials},
	{services.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED", i18n.KeyAuthInvalidToken},
	{services.ErrEmailTaken, http.StatusConflict, "CONFLICT", i18n.KeyAuthUserExists},
	{services.ErrTermsNotAccepted, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyAuthTermsRequired},
	{services.ErrProfileRequired, http.StatusForbidden, "PROFILE_REQUIRED", i18n.KeyUserProfileRequired},
	{services.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyUserNotFound},
	{services.ErrListingNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyListingNotFound},
	{services.ErrListingUnavailable, http.StatusConflict, "LISTING_UNAVAILABLE", i18n.KeyListingUnavailable},
	{services.ErrOwnListing, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyListingOwn},
	{services.ErrNoOfferedItem, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyOfferNoItem},
	{services.ErrOfferNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyOfferNotFound},
	{services.ErrOfferNotPending, http.StatusConflict, "OFFER_NOT_PENDING", i18n.KeyOfferNotPending},
	{services.ErrNotListingOwner, http.StatusForbidden, "FORBIDDEN", i18n.KeyOfferNotOwner},
	{services.ErrNotParticipant, http.StatusForbidden, "FORBIDDEN", i18n.KeyOfferForbidden},
	{services.ErrQueryForbidden, http.StatusForbidden, "FORBIDDEN", i18n.KeyOfferForbidden},
	{services.ErrRatingNotAllowed, http.StatusConflict, "CONFLICT", i18n.KeyRatingNotReady},
	{services.ErrAlreadyRated, http.StatusConflict, "CONFLICT", i18n.KeyRatingDuplicate},
	{services.ErrNotificationNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyNotificationNotFound},
	{services.ErrFileTooLarge, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyFileTooLarge},
	{services.ErrFileTypeInvalid, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyFileInvalidType},
	{services.ErrTooManyFiles, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyFileUploadFailed},
	{services.ErrMessageTooLong, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyValidationInvalid},
	{livequery.ErrInvalidQuery, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyValidationInvalid},
}

// respondError writes the envelope for a service error.
func respondError(c *gin.Context, err error) {
	if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	lang := utils.GetLangFromContext(c)
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			message := i18n.T(lang, m.key)
			if m.key == i18n.KeyValidationInvalid {
				message = i18n.T(lang, m.key, "request")
			}
			utils.ErrorResponse(c, m.status, m.code, message, nil)
			return
		}
	}

	logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
	utils.InternalErrorResponse(c, "")
}

// bindJSON decodes the body and runs the validator, writing the error
// response itself when either fails.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := utils.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return id, ok
}

func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, name), nil)
		return id, false
	}
	return id, true
}
