package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"skyrent-backend/internal/domain"
	"skyrent-backend/internal/logger"
	"skyrent-backend/internal/utils"
)

// MailSender is the part of the SendGrid client the email service uses
type MailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type emailService struct {
	sender    MailSender
	fromEmail string
	fromName  string
	opsEmail  string
}

// NewEmailService returns a SendGrid backed EmailService. With an empty API key
// messages are logged and dropped.
func NewEmailService(apiKey, fromEmail, fromName, opsEmail string) EmailService {
	var sender MailSender
	if apiKey != "" {
		sender = sendgrid.NewSendClient(apiKey)
	}
	return NewEmailServiceWithSender(sender, fromEmail, fromName, opsEmail)
}

func NewEmailServiceWithSender(sender MailSender, fromEmail, fromName, opsEmail string) EmailService {
	return &emailService{
		sender:    sender,
		fromEmail: fromEmail,
		fromName:  fromName,
		opsEmail:  opsEmail,
	}
}

func (s *emailService) SendRentalStatusNotification(ctx context.Context, rt *domain.Rental, event string) error {
	subject := fmt.Sprintf("Rental %s %s", rt.ID, event)

	var b strings.Builder
	fmt.Fprintf(&b, "Rental %s for aircraft %s is now %s.\n\n", rt.ID, rt.AircraftID, rt.Status)
	fmt.Fprintf(&b, "Owner: %s\nRenter: %s\n", rt.OwnerID, rt.RenterID)
	fmt.Fprintf(&b, "Dates: %s to %s (%d days)\n", rt.StartDate.Format(domain.DateLayout), rt.EndDate.Format(domain.DateLayout),
		utils.RentalDays(rt.StartDate, rt.EndDate))
	fmt.Fprintf(&b, "Renter total: %s\nOwner payout: %s\n", utils.FormatMoney(rt.TotalCostRenter), utils.FormatMoney(rt.OwnerPayout))
	if rt.CancellationReason != "" {
		fmt.Fprintf(&b, "\nReason: %s\n", rt.CancellationReason)
	}
	if rt.ActualHours != nil {
		fmt.Fprintf(&b, "Actual hours: %s\n", rt.ActualHours.StringFixed(2))
	}

	return s.send(ctx, subject, b.String())
}

func (s *emailService) SendPayoutReport(ctx context.Context, rentals []domain.Rental) error {
	if len(rentals) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d completed rental(s) are awaiting owner payout:\n\n", len(rentals))
	for _, rt := range rentals {
		fmt.Fprintf(&b, "%s  owner=%s  payout=%s\n", rt.ID, rt.OwnerID, utils.FormatMoney(rt.OwnerPayout))
	}

	return s.send(ctx, fmt.Sprintf("Pending owner payouts: %d", len(rentals)), b.String())
}

func (s *emailService) send(ctx context.Context, subject, body string) error {
	if s.sender == nil {
		logger.Debug("Email delivery disabled, skipping message", "subject", subject)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("SkyRent Operations", s.opsEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	logger.ExternalServiceCall("SendGrid", "Send", "subject", subject)
	resp, err := s.sender.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("SendGrid", "Send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
		logger.ExternalServiceResult("SendGrid", "Send", err)
		return err
	}
	logger.ExternalServiceResult("SendGrid", "Send", nil, "status", resp.StatusCode)
	return nil
}
