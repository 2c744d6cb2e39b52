// internal/handlers/offer.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/barter-backend/internal/i18n"
	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/services"
	"github.com/javajoker/barter-backend/internal/utils"
)

type OfferHandler struct {
	offerService   *services.OfferService
	messageService *services.MessageService
	advisorService *services.AdvisorService
	ratingService  *services.RatingService
}

func NewOfferHandler(
	offerService *services.OfferService,
	messageService *services.MessageService,
	advisorService *services.AdvisorService,
	ratingService *services.RatingService,
) *OfferHandler {
	return &OfferHandler{
		offerService:   offerService,
		messageService: messageService,
		advisorService: advisorService,
		ratingService:  ratingService,
	}
}

// POST /offers
func (h *OfferHandler) Propose(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.ProposeRequest
	if !bindJSON(c, &req) {
		return
	}

	offer, err := h.offerService.Propose(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOfferCreated),
		"offer":   offer,
	})
}

// GET /offers/incoming
func (h *OfferHandler) Incoming(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	offers, err := h.offerService.ListIncoming(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOffers(c, offers)
}

// GET /offers/mine
func (h *OfferHandler) Mine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	offers, err := h.offerService.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOffers(c, offers)
}

func respondOffers(c *gin.Context, offers []models.Offer) {
	if offers == nil {
		offers = []models.Offer{}
	}
	utils.SuccessResponse(c, offers)
}

// GET /offers/:id
func (h *OfferHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offerID, ok := paramID(c, "id")
	if !ok {
		return
	}

	offer, err := h.offerService.Get(c.Request.Context(), userID, offerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, offer)
}

// PUT /offers/:id/accept
func (h *OfferHandler) Accept(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offerID, ok := paramID(c, "id")
	if !ok {
		return
	}

	result, err := h.offerService.Accept(c.Request.Context(), userID, offerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOfferAccepted),
		"offer":   result.Offer,
		"rating_prompt": gin.H{
			"offer_id":   result.RatingPrompt.OfferID,
			"ratee_id":   result.RatingPrompt.RateeID,
			"ratee_name": result.RatingPrompt.RateeName,
			"message":    i18n.T(lang, i18n.KeyOfferRatingPrompt, result.RatingPrompt.RateeName),
		},
	})
}

// PUT /offers/:id/reject
func (h *OfferHandler) Reject(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offerID, ok := paramID(c, "id")
	if !ok {
		return
	}

	offer, err := h.offerService.Reject(c.Request.Context(), userID, offerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOfferRejected),
		"offer":   offer,
	})
}

// GET /offers/:id/messages
func (h *OfferHandler) Messages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offerID, ok := paramID(c, "id")
	if !ok {
		return
	}

	messages, err := h.messageService.List(c.Request.Context(), userID, offerID)
	if err != nil {
		respondError(c, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	utils.SuccessResponse(c, messages)
}

// POST /offers/:id/messages
// Blank text is accepted and ignored with 204.
func (h *OfferHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offerID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), userID, offerID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	if msg == nil {
		utils.NoContentResponse(c)
		return
	}

	utils.CreatedResponse(c, msg)
}

// GET /offers/:id/advice
func (h *OfferHandler) Advice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offerID, ok := paramID(c, "id")
	if !ok {
		return
	}

	offer, err := h.offerService.Get(c.Request.Context(), userID, offerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, h.advisorService.AdviseOffer(c.Request.Context(), offer, userID))
}

// POST /offers/:id/ratings
func (h *OfferHandler) Rate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offerID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.RateRequest
	if !bindJSON(c, &req) {
		return
	}

	rating, err := h.ratingService.Rate(c.Request.Context(), userID, offerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRatingCreated),
		"rating":  rating,
	})
}
