// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/services"
	"github.com/javajoker/barter-backend/internal/utils"
)

type UserHandler struct {
	userService   *services.UserService
	ratingService *services.RatingService
}

func NewUserHandler(userService *services.UserService, ratingService *services.RatingService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		ratingService: ratingService,
	}
}

// GET /users/:id/profile
func (h *UserHandler) GetPublicProfile(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	profile, err := h.userService.GetPublicProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}

// GET /users/:id/ratings
func (h *UserHandler) GetRatings(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	ratings, err := h.ratingService.ForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}

	utils.SuccessResponse(c, ratings)
}

// GET /meta/enums
// The closed value sets the posting form offers.
func GetEnums(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"categories":    models.Categories,
		"conditions":    models.Conditions,
		"listing_types": models.ListingTypes,
		"gradients":     models.Gradients,
	})
}
