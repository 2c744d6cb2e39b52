// internal/services/advisor_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/barter-backend/internal/ai"
	"github.com/javajoker/barter-backend/internal/models"
)

// FairnessFallback is returned whenever the model cannot be reached.
const FairnessFallback = "Advisor busy."

// AdvisorService wraps the text generator for the two advisory features.
// Neither feature ever fails the caller.
type AdvisorService struct {
	generator ai.TextGenerator
}

// ListingDraft is the part of a listing form the polish feature rewrites.
type ListingDraft struct {
	Title       string             `json:"title" validate:"max=255"`
	Description string             `json:"description" validate:"max=5000"`
	Type        models.ListingType `json:"type" validate:"omitempty,listing_type"`
}

type Advice struct {
	OfferID uuid.UUID `json:"offer_id"`
	Mine    string    `json:"mine"`
	Theirs  string    `json:"theirs"`
	Text    string    `json:"text"`
}

type polishResponse struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func NewAdvisorService(generator ai.TextGenerator) *AdvisorService {
	if generator == nil {
		generator = ai.Disabled{}
	}
	return &AdvisorService{generator: generator}
}

func FairnessPrompt(mine, theirs string) string {
	return fmt.Sprintf("Barter Trade Advisor: I am trading %q for %q. Is it fair? 2 sentences.", mine, theirs)
}

func PolishPrompt(draft ListingDraft) string {
	return fmt.Sprintf("Rewrite Listing. Title: %s. Desc: %s. Type: %s. Return JSON {title, description}.",
		draft.Title, draft.Description, draft.Type)
}

// Fairness asks whether the trade is fair from the viewer's side.
func (s *AdvisorService) Fairness(ctx context.Context, mine, theirs string) string {
	text, err := s.generator.GenerateText(ctx, FairnessPrompt(mine, theirs), ai.GenerateOptions{})
	if err != nil {
		logrus.WithError(err).Warn("Fairness advisor unavailable")
		return FairnessFallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return FairnessFallback
	}
	return text
}

// AdviseOffer runs Fairness for one participant of the offer.
func (s *AdvisorService) AdviseOffer(ctx context.Context, offer *models.Offer, viewerID uuid.UUID) *Advice {
	mine, theirs := offer.TradeTitles(viewerID)
	return &Advice{
		OfferID: offer.ID,
		Mine:    mine,
		Theirs:  theirs,
		Text:    s.Fairness(ctx, mine, theirs),
	}
}

// Polish rewrites a listing draft. Only non-empty fields of the model's
// answer replace the draft; any failure returns the draft unchanged.
func (s *AdvisorService) Polish(ctx context.Context, draft ListingDraft) ListingDraft {
	if strings.TrimSpace(draft.Title) == "" && strings.TrimSpace(draft.Description) == "" {
		return draft
	}

	raw, err := s.generator.GenerateText(ctx, PolishPrompt(draft), ai.GenerateOptions{JSON: true})
	if err != nil {
		logrus.WithError(err).Warn("Listing polish unavailable")
		return draft
	}

	var resp polishResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		logrus.WithError(err).Warn("Listing polish returned malformed JSON")
		return draft
	}

	polished := draft
	if resp.Title != nil && strings.TrimSpace(*resp.Title) != "" {
		polished.Title = strings.TrimSpace(*resp.Title)
	}
	if resp.Description != nil && strings.TrimSpace(*resp.Description) != "" {
		polished.Description = strings.TrimSpace(*resp.Description)
	}
	return polished
}
