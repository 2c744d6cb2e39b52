// internal/services/message_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/store"
)

const maxMessageLength = 2000

var ErrMessageTooLong = errors.New("message is too long")

// MessageService handles the chat thread attached to each offer.
type MessageService struct {
	store         store.Store
	publisher     livequery.Publisher
	notifications *NotificationService
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

func NewMessageService(st store.Store, publisher livequery.Publisher, notifications *NotificationService) *MessageService {
	return &MessageService{
		store:         st,
		publisher:     publisher,
		notifications: notifications,
	}
}

// Send appends a message to the offer's thread. Blank text is ignored and
// returns a nil message without error.
func (s *MessageService) Send(ctx context.Context, senderID, offerID uuid.UUID, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if len(text) > maxMessageLength {
		return nil, ErrMessageTooLong
	}

	offer, err := s.participantOffer(ctx, senderID, offerID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		OfferID:  offer.ID,
		SenderID: senderID,
		Text:     text,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.publisher.Publish(ctx, livequery.MessageChange(msg))
	s.notifications.NewMessage(ctx, offer, msg)

	return msg, nil
}

// List returns the thread oldest first.
func (s *MessageService) List(ctx context.Context, viewerID, offerID uuid.UUID) ([]models.Message, error) {
	if _, err := s.participantOffer(ctx, viewerID, offerID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	models.SortMessages(messages)
	return messages, nil
}

func (s *MessageService) participantOffer(ctx context.Context, userID, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !offer.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return offer, nil
}
