package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rangemedical/clinic-ops/internal/messaging/compliance"
	"github.com/rangemedical/clinic-ops/internal/messaging/ghlclient"
	"github.com/rangemedical/clinic-ops/internal/observability/metrics"
	"github.com/rangemedical/clinic-ops/pkg/logging"
)

type fakeCRM struct {
	sent     []ghlclient.SendSMSRequest
	sendErr  error
	convs    []ghlclient.Conversation
	messages map[string][]ghlclient.Message
}

func (f *fakeCRM) SendSMS(_ context.Context, req ghlclient.SendSMSRequest) (*ghlclient.SendSMSResponse, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, req)
	return &ghlclient.SendSMSResponse{MessageID: "msg-1", ConversationID: "conv-1"}, nil
}

func (f *fakeCRM) SearchConversations(context.Context, string) ([]ghlclient.Conversation, error) {
	return f.convs, nil
}

func (f *fakeCRM) ConversationMessages(_ context.Context, id string) ([]ghlclient.Message, error) {
	return f.messages[id], nil
}

func newTestService(crm *fakeCRM, quiet compliance.QuietHours) *Service {
	return NewService(crm, nil, quiet,
		metrics.NewTrackerMetrics(prometheus.NewRegistry()),
		"https://app.range-medical.com", logging.Default())
}

func TestSendPatientLink(t *testing.T) {
	crm := &fakeCRM{}
	svc := newTestService(crm, compliance.QuietHours{})

	msg, err := svc.SendPatientLink(context.Background(), SendLinkRequest{
		PatientID:   "p1",
		ContactID:   "contact-1",
		FirstName:   "Jane Smith",
		AccessToken: "tok-1",
		Kind:        KindPortal,
	})
	require.NoError(t, err)
	require.Len(t, crm.sent, 1)
	assert.Contains(t, crm.sent[0].Message, "Hi Jane!")
	assert.Contains(t, crm.sent[0].Message, "https://app.range-medical.com/my/tok-1")
	assert.Equal(t, "sent", msg.Status)
	assert.Equal(t, "msg-1", msg.ProviderMessageID)
	assert.Equal(t, KindPortal, msg.Kind)
}

func TestSendPatientLinkOnboard(t *testing.T) {
	crm := &fakeCRM{}
	svc := newTestService(crm, compliance.QuietHours{})

	_, err := svc.SendPatientLink(context.Background(), SendLinkRequest{
		ContactID:   "contact-1",
		AccessToken: "tok-1",
		Kind:        KindOnboard,
	})
	require.NoError(t, err)
	require.Len(t, crm.sent, 1)
	assert.Contains(t, crm.sent[0].Message, "Hi there!")
	assert.Contains(t, crm.sent[0].Message, "/onboard/tok-1")
}

func TestSendPatientLinkValidation(t *testing.T) {
	svc := newTestService(&fakeCRM{}, compliance.QuietHours{})
	_, err := svc.SendPatientLink(context.Background(), SendLinkRequest{ContactID: "c1"})
	assert.Error(t, err)
}

func TestSendDosingReminder(t *testing.T) {
	crm := &fakeCRM{
		convs: []ghlclient.Conversation{{ID: "conv-1"}},
		messages: map[string][]ghlclient.Message{
			"conv-1": {{ID: "m1", Type: "SMS", Body: "thanks!", Direction: 1}},
		},
	}
	svc := newTestService(crm, compliance.QuietHours{})

	msg, err := svc.SendDosingReminder(context.Background(), ReminderSend{
		PatientID:   "p1",
		ContactID:   "contact-1",
		FirstName:   "Jane",
		Program:     "Recovery & Repair",
		Day:         5,
		AccessToken: "tok-1",
	})
	require.NoError(t, err)
	require.Len(t, crm.sent, 1)
	assert.Contains(t, crm.sent[0].Message, "day 5")
	assert.Contains(t, crm.sent[0].Message, "Recovery & Repair")
	assert.Contains(t, crm.sent[0].Message, "/track/tok-1")
	assert.Equal(t, KindReminder, msg.Kind)
}

func TestSendDosingReminderOptedOut(t *testing.T) {
	crm := &fakeCRM{
		convs: []ghlclient.Conversation{{ID: "conv-1"}},
		messages: map[string][]ghlclient.Message{
			"conv-1": {{ID: "m1", Type: "SMS", Body: "STOP", Direction: 1}},
		},
	}
	svc := newTestService(crm, compliance.QuietHours{})

	_, err := svc.SendDosingReminder(context.Background(), ReminderSend{ContactID: "contact-1"})
	assert.ErrorIs(t, err, ErrSuppressed)
	assert.Empty(t, crm.sent)
}

func TestSendDosingReminderQuietHours(t *testing.T) {
	quiet, err := compliance.ParseQuietHours("00:00", "23:59", "UTC")
	require.NoError(t, err)
	crm := &fakeCRM{}
	svc := newTestService(crm, quiet)

	_, err = svc.SendDosingReminder(context.Background(), ReminderSend{ContactID: "contact-1"})
	assert.ErrorIs(t, err, ErrSuppressed)
	assert.Empty(t, crm.sent)
}

func TestSendCustomFailure(t *testing.T) {
	crm := &fakeCRM{sendErr: errors.New("boom")}
	svc := newTestService(crm, compliance.QuietHours{})

	_, err := svc.SendCustom(context.Background(), "p1", "contact-1", "hello")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSuppressed)
}

func TestHistoryFiltersAndSorts(t *testing.T) {
	crm := &fakeCRM{
		convs: []ghlclient.Conversation{{ID: "conv-1"}, {ID: "conv-2"}},
		messages: map[string][]ghlclient.Message{
			"conv-1": {
				{ID: "m1", Type: "SMS", Body: "older", Direction: 0, DateAdded: "2026-03-01T10:00:00Z"},
				{ID: "m2", Type: "Email", Body: "skip me", DateAdded: "2026-03-02T10:00:00Z"},
			},
			"conv-2": {
				{ID: "m3", MessageType: "TYPE_SMS", Body: "newer", Direction: 1, DateAdded: "2026-03-03T10:00:00Z"},
			},
		},
	}
	svc := newTestService(crm, compliance.QuietHours{})

	entries, err := svc.History(context.Background(), "contact-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ghl_m3", entries[0].ID)
	assert.Equal(t, DirectionInbound, entries[0].Direction)
	assert.Equal(t, "ghl_m1", entries[1].ID)
	assert.Equal(t, DirectionOutbound, entries[1].Direction)
}

func TestFirstNameOrFallback(t *testing.T) {
	assert.Equal(t, "Jane", firstNameOrFallback("Jane Smith"))
	assert.Equal(t, "Jane", firstNameOrFallback("Jane"))
	assert.Equal(t, "there", firstNameOrFallback("  "))
}
