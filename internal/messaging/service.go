package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rangemedical/clinic-ops/internal/messaging/compliance"
	"github.com/rangemedical/clinic-ops/internal/messaging/ghlclient"
	"github.com/rangemedical/clinic-ops/internal/messaging/templates"
	"github.com/rangemedical/clinic-ops/internal/observability/metrics"
	"github.com/rangemedical/clinic-ops/pkg/logging"
)

var sendTracer = otel.Tracer("clinicops.internal.messaging.send")

// ErrSuppressed is returned when quiet hours or an opt-out blocks a send.
var ErrSuppressed = errors.New("messaging: send suppressed")

// CRMClient is the subset of the CRM API the service uses.
type CRMClient interface {
	SendSMS(ctx context.Context, req ghlclient.SendSMSRequest) (*ghlclient.SendSMSResponse, error)
	SearchConversations(ctx context.Context, contactID string) ([]ghlclient.Conversation, error)
	ConversationMessages(ctx context.Context, conversationID string) ([]ghlclient.Message, error)
}

// Service sends patient SMS through the CRM and records each send.
type Service struct {
	client   CRMClient
	repo     *Repository
	renderer templates.Renderer
	detector *compliance.Detector
	quiet    compliance.QuietHours
	metrics  *metrics.TrackerMetrics
	logger   *logging.Logger
	baseURL  string
}

func NewService(client CRMClient, repo *Repository, quiet compliance.QuietHours, m *metrics.TrackerMetrics, baseURL string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		client:   client,
		repo:     repo,
		detector: compliance.NewDetector(),
		quiet:    quiet,
		metrics:  m,
		logger:   logger,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// SendLinkRequest asks for a portal or onboarding link text.
type SendLinkRequest struct {
	PatientID   string
	ContactID   string
	FirstName   string
	AccessToken string
	Kind        string // KindPortal or KindOnboard
}

// SendPatientLink texts the patient their portal or onboarding URL.
func (s *Service) SendPatientLink(ctx context.Context, req SendLinkRequest) (*Message, error) {
	if req.ContactID == "" || req.AccessToken == "" {
		return nil, errors.New("messaging: contact id and access token required")
	}

	tmpl := templates.PortalLink
	path := "/my/"
	kind := KindPortal
	if req.Kind == KindOnboard {
		tmpl = templates.OnboardLink
		path = "/onboard/"
		kind = KindOnboard
	}

	body, err := s.renderer.Render(kind, tmpl, templates.LinkData{
		FirstName: firstNameOrFallback(req.FirstName),
		URL:       s.baseURL + path + req.AccessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("messaging: render %s link: %w", kind, err)
	}

	return s.send(ctx, req.PatientID, req.ContactID, kind, body)
}

// ReminderSend asks for a dosing-day reminder text.
type ReminderSend struct {
	PatientID   string
	ContactID   string
	FirstName   string
	Program     string
	Day         int
	AccessToken string
}

// SendDosingReminder texts the patient that today is an uncompleted dosing
// day. Quiet hours and STOP replies suppress the send.
func (s *Service) SendDosingReminder(ctx context.Context, req ReminderSend) (*Message, error) {
	if req.ContactID == "" {
		return nil, errors.New("messaging: contact id required")
	}
	if s.quiet.Suppress(time.Now()) {
		s.metrics.ObserveReminder("quiet_hours")
		return nil, ErrSuppressed
	}
	optedOut, err := s.OptedOut(ctx, req.ContactID)
	if err != nil {
		s.logger.Error("opt-out check failed, skipping reminder", "contact_id", req.ContactID, "error", err)
		return nil, fmt.Errorf("messaging: opt-out check: %w", err)
	}
	if optedOut {
		s.metrics.ObserveReminder("opted_out")
		return nil, ErrSuppressed
	}

	body, err := s.renderer.Render(KindReminder, templates.DosingReminder, templates.ReminderData{
		FirstName: firstNameOrFallback(req.FirstName),
		Day:       req.Day,
		Program:   req.Program,
		URL:       s.baseURL + "/track/" + req.AccessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("messaging: render reminder: %w", err)
	}

	return s.send(ctx, req.PatientID, req.ContactID, KindReminder, body)
}

// SendCustom texts an arbitrary staff-written message.
func (s *Service) SendCustom(ctx context.Context, patientID, contactID, body string) (*Message, error) {
	if contactID == "" || strings.TrimSpace(body) == "" {
		return nil, errors.New("messaging: contact id and body required")
	}
	return s.send(ctx, patientID, contactID, KindCustom, body)
}

func (s *Service) send(ctx context.Context, patientID, contactID, kind, body string) (*Message, error) {
	ctx, span := sendTracer.Start(ctx, "messaging.ghl.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinicops.contact_id", contactID),
		attribute.String("clinicops.kind", kind),
	)

	msg := &Message{
		PatientID:    patientID,
		GHLContactID: contactID,
		Direction:    DirectionOutbound,
		Kind:         kind,
		Body:         body,
	}

	resp, err := s.client.SendSMS(ctx, ghlclient.SendSMSRequest{
		ContactID: contactID,
		Message:   body,
	})
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveOutboundSMS("failed")
		msg.Status = "failed"
		if s.repo != nil {
			if recErr := s.repo.Record(ctx, msg); recErr != nil {
				s.logger.Error("record failed message", "error", recErr)
			}
		}
		return nil, fmt.Errorf("messaging: send %s: %w", kind, err)
	}

	msg.Status = "sent"
	msg.ProviderMessageID = resp.MessageID
	if s.repo != nil {
		if err := s.repo.Record(ctx, msg); err != nil {
			s.logger.Error("record sent message", "error", err)
		}
	}

	s.metrics.ObserveOutboundSMS("sent")
	s.logger.Info("sms sent",
		"contact_id", contactID,
		"kind", kind,
		"provider_message_id", resp.MessageID)
	return msg, nil
}

// OptedOut reports whether the contact's recent inbound messages contain a
// STOP keyword.
func (s *Service) OptedOut(ctx context.Context, contactID string) (bool, error) {
	entries, err := s.History(ctx, contactID)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Direction == DirectionInbound && s.detector.IsStop(e.Body) {
			return true, nil
		}
	}
	return false, nil
}

// History fetches the contact's SMS history from the CRM, newest first.
// Conversations beyond the first three are ignored; contacts rarely have
// more than one.
func (s *Service) History(ctx context.Context, contactID string) ([]HistoryEntry, error) {
	if contactID == "" {
		return nil, errors.New("messaging: contact id required")
	}
	convs, err := s.client.SearchConversations(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("messaging: search conversations: %w", err)
	}
	if len(convs) > 3 {
		convs = convs[:3]
	}

	var entries []HistoryEntry
	for _, conv := range convs {
		msgs, err := s.client.ConversationMessages(ctx, conv.ID)
		if err != nil {
			s.logger.Error("fetch conversation messages failed", "conversation_id", conv.ID, "error", err)
			continue
		}
		for _, m := range msgs {
			if !m.SMS() {
				continue
			}
			direction := DirectionOutbound
			if m.Inbound() {
				direction = DirectionInbound
			}
			entries = append(entries, HistoryEntry{
				ID:        "ghl_" + m.ID,
				Direction: direction,
				Body:      m.Body,
				Status:    m.Status,
				CreatedAt: m.DateAdded,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt > entries[j].CreatedAt
	})
	return entries, nil
}

func firstNameOrFallback(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "there"
	}
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}
