// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/barter-backend/internal/config"
	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/store"
)

// NotificationService records in-app notices for offer events and sends the
// few transactional emails the marketplace needs. Delivery failures are
// logged and never fail the operation that triggered them.
type NotificationService struct {
	store     store.Store
	config    *config.Config
	publisher livequery.Publisher
	sendMail  func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(st store.Store, config *config.Config, publisher livequery.Publisher) *NotificationService {
	return &NotificationService{
		store:     st,
		config:    config,
		publisher: publisher,
		sendMail:  smtp.SendMail,
	}
}

func (s *NotificationService) notify(ctx context.Context, userID uuid.UUID, kind models.NotificationType, title, message string, offerID *uuid.UUID) {
	n := &models.Notification{
		UserID:         userID,
		Type:           kind,
		Title:          title,
		Message:        message,
		RelatedOfferID: offerID,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"type":    kind,
		}).Error("Failed to create notification")
		return
	}
	s.publisher.Publish(ctx, livequery.NotificationChange(n))
}

// Offer notifications
func (s *NotificationService) OfferReceived(ctx context.Context, offer *models.Offer) {
	message := fmt.Sprintf("%s offered %q for your %q", offer.BidderName, offer.OfferedItemTitle, offer.ListingTitle)
	if offer.IsClaim() {
		message = fmt.Sprintf("%s wants to claim your %q", offer.BidderName, offer.ListingTitle)
	}
	s.notify(ctx, offer.OwnerID, models.NotificationOfferReceived, "New offer", message, &offer.ID)
}

func (s *NotificationService) OfferAccepted(ctx context.Context, offer *models.Offer) {
	message := fmt.Sprintf("Your offer for %q was accepted", offer.ListingTitle)
	s.notify(ctx, offer.BidderID, models.NotificationOfferAccepted, "Offer accepted", message, &offer.ID)
}

func (s *NotificationService) OfferRejected(ctx context.Context, offer *models.Offer) {
	message := fmt.Sprintf("Your offer for %q was declined", offer.ListingTitle)
	s.notify(ctx, offer.BidderID, models.NotificationOfferRejected, "Offer declined", message, &offer.ID)
}

func (s *NotificationService) NewMessage(ctx context.Context, offer *models.Offer, msg *models.Message) {
	recipient := offer.Counterparty(msg.SenderID)
	title := fmt.Sprintf("New message about %q", offer.ListingTitle)
	s.notify(ctx, recipient, models.NotificationNewMessage, title, msg.Text, &offer.ID)
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	notifications, err := s.store.ListNotifications(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	err := s.store.MarkNotificationRead(ctx, notificationID, userID, time.Now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	s.publisher.Publish(ctx, livequery.Change{
		Collection: livequery.CollectionNotifications,
		Fields:     map[string][]string{"user_id": {userID.String()}},
	})
	return nil
}

// Authentication emails
func (s *NotificationService) SendPasswordResetEmail(user *models.User, resetToken string) error {
	tmpl := s.getEmailTemplate("password_reset")

	data := map[string]interface{}{
		"Name":      user.DisplayName(),
		"ResetURL":  fmt.Sprintf("%s/reset-password?token=%s", s.config.Frontend.BaseURL, resetToken),
		"ExpiresIn": "1 hour",
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.EmailAddress(), tmpl.Subject, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email not configured, skipping send")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return s.sendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"password_reset": {
			Subject: "Reset your Barter password",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>We received a request to reset your password. The link below expires in {{.ExpiresIn}}.</p>
	<a href="{{.ResetURL}}">Reset Password</a>
	<p>If you did not ask for this, you can ignore this email.</p>
</body>
</html>`,
		},
	}

	if t, exists := templates[templateType]; exists {
		return t
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
