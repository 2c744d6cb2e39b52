// internal/handlers/listing.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/i18n"
	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/services"
	"github.com/javajoker/barter-backend/internal/utils"
)

// multipart bodies larger than this are rejected before parsing
const maxUploadBody = 40 << 20

type ListingHandler struct {
	listingService *services.ListingService
	storageService *services.StorageService
	advisorService *services.AdvisorService
}

func NewListingHandler(listingService *services.ListingService, storageService *services.StorageService, advisorService *services.AdvisorService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		storageService: storageService,
		advisorService: advisorService,
	}
}

// GET /listings
// Active listings of other traders, newest first.
func (h *ListingHandler) Browse(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	params := utils.GetPageParams(c)

	category := models.Category(c.Query("category"))
	if category != "" && !category.Valid() {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "category"), nil)
		return
	}

	browse := services.BrowseParams{
		Category: category,
		Limit:    params.Limit,
		Offset:   params.Offset(),
	}

	var viewerID *uuid.UUID
	if id, ok := utils.CurrentUserID(c); ok {
		viewerID = &id
	}

	listings, total, err := h.listingService.Browse(c.Request.Context(), viewerID, browse)
	if err != nil {
		respondError(c, err)
		return
	}
	if listings == nil {
		listings = []models.Listing{}
	}

	utils.PaginatedResponse(c, utils.NewPage(listings, total, params))
}

// GET /listings/mine
func (h *ListingHandler) Mine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	listings, err := h.listingService.Mine(c.Request.Context(), userID, c.Query("include_traded") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	if listings == nil {
		listings = []models.Listing{}
	}

	utils.SuccessResponse(c, listings)
}

// GET /listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	listingID, ok := paramID(c, "id")
	if !ok {
		return
	}

	listing, err := h.listingService.Get(c.Request.Context(), listingID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /listings
func (h *ListingHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.CreateListingRequest
	if !bindJSON(c, &req) {
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyListingCreated),
		"listing": listing,
	})
}

// POST /listings/upload-images
// Multipart form with up to six "images" parts.
func (h *ListingHandler) UploadImages(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)
	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "images"), nil)
		return
	}

	results, err := h.storageService.UploadListingImages(c.Request.Context(), files)
	if err != nil {
		respondError(c, err)
		return
	}

	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFileUploadSuccess),
		"files":   results,
		"urls":    urls,
	})
}

// POST /listings/polish
// Always answers 200; on any model failure the draft comes back unchanged.
func (h *ListingHandler) Polish(c *gin.Context) {
	var draft services.ListingDraft
	if !bindJSON(c, &draft) {
		return
	}

	utils.SuccessResponse(c, h.advisorService.Polish(c.Request.Context(), draft))
}
