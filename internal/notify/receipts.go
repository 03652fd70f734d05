package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rangemedical/clinic-ops/pkg/logging"
)

// Receipt describes one approved purchase for the confirmation email.
type Receipt struct {
	PatientName  string
	PatientEmail string
	ItemName     string
	Quantity     int
	Amount       float64
	PurchaseDate time.Time
}

// ReceiptService sends purchase receipt emails to patients.
type ReceiptService struct {
	email  EmailSender
	logger *logging.Logger
}

func NewReceiptService(email EmailSender, logger *logging.Logger) *ReceiptService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReceiptService{email: email, logger: logger}
}

// SendPurchaseReceipt emails the patient a receipt for an approved purchase.
// A missing sender or patient email is logged and skipped, not an error:
// receipt delivery never blocks the approval itself.
func (s *ReceiptService) SendPurchaseReceipt(ctx context.Context, r Receipt) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping receipt")
		return nil
	}
	if r.PatientEmail == "" {
		s.logger.Debug("notify: purchase has no patient email, skipping receipt", "item", r.ItemName)
		return nil
	}

	msg := EmailMessage{
		To:      r.PatientEmail,
		ToName:  r.PatientName,
		Subject: fmt.Sprintf("Your Range Medical receipt - %s", r.ItemName),
		Body:    buildReceiptText(r),
		HTML:    buildReceiptHTML(r),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: send receipt: %w", err)
	}

	s.logger.Info("purchase receipt sent",
		"to", r.PatientEmail,
		"item", r.ItemName,
		"amount", r.Amount)
	return nil
}

func buildReceiptText(r Receipt) string {
	var b strings.Builder
	name := r.PatientName
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	b.WriteString("Thank you for your purchase at Range Medical.\n\n")
	fmt.Fprintf(&b, "Item: %s\n", r.ItemName)
	if r.Quantity > 1 {
		fmt.Fprintf(&b, "Quantity: %d\n", r.Quantity)
	}
	fmt.Fprintf(&b, "Amount: $%.2f\n", r.Amount)
	if !r.PurchaseDate.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", r.PurchaseDate.Format("January 2, 2006"))
	}
	b.WriteString("\nQuestions? Reply to this email or call the clinic.\n")
	return b.String()
}

func buildReceiptHTML(r Receipt) string {
	var b strings.Builder
	name := r.PatientName
	if name == "" {
		name = "there"
	}
	b.WriteString("<div style=\"font-family:sans-serif;max-width:480px\">")
	fmt.Fprintf(&b, "<p>Hi %s,</p>", name)
	b.WriteString("<p>Thank you for your purchase at Range Medical.</p><table>")
	fmt.Fprintf(&b, "<tr><td><strong>Item</strong></td><td>%s</td></tr>", r.ItemName)
	if r.Quantity > 1 {
		fmt.Fprintf(&b, "<tr><td><strong>Quantity</strong></td><td>%d</td></tr>", r.Quantity)
	}
	fmt.Fprintf(&b, "<tr><td><strong>Amount</strong></td><td>$%.2f</td></tr>", r.Amount)
	if !r.PurchaseDate.IsZero() {
		fmt.Fprintf(&b, "<tr><td><strong>Date</strong></td><td>%s</td></tr>", r.PurchaseDate.Format("January 2, 2006"))
	}
	b.WriteString("</table><p>Questions? Reply to this email or call the clinic.</p></div>")
	return b.String()
}
