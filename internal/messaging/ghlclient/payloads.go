package ghlclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SendSMSRequest asks the CRM to deliver an SMS to a contact.
type SendSMSRequest struct {
	ContactID string
	Message   string
}

func (r SendSMSRequest) validate() error {
	if strings.TrimSpace(r.ContactID) == "" {
		return errors.New("ghlclient: contact id required")
	}
	if strings.TrimSpace(r.Message) == "" {
		return errors.New("ghlclient: message required")
	}
	return nil
}

// SendSMSResponse is the CRM's acknowledgement of a queued message.
type SendSMSResponse struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
}

// Conversation is one CRM conversation thread for a contact.
type Conversation struct {
	ID          string `json:"id"`
	ContactID   string `json:"contactId"`
	LastMessage string `json:"lastMessageBody"`
	Unread      int    `json:"unreadCount"`
}

// Message is one message within a conversation. Direction 1 is inbound from
// the patient.
type Message struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	MessageType string `json:"messageType"`
	Body        string `json:"body"`
	Status      string `json:"status"`
	Direction   int    `json:"direction"`
	DateAdded   string `json:"dateAdded"`
}

// SMS reports whether the message is an SMS in either schema field.
func (m Message) SMS() bool {
	return m.Type == "SMS" || m.MessageType == "SMS" || strings.Contains(m.MessageType, "SMS")
}

// Inbound reports whether the patient sent the message.
func (m Message) Inbound() bool { return m.Direction == 1 }

// APIError is a non-2xx response from the CRM.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ghlclient: api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ghlclient: api error %d", e.StatusCode)
}

func decodeAPIError(status int, data []byte) error {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if len(data) > 0 && json.Unmarshal(data, &parsed) == nil {
		msg = parsed.Message
		if msg == "" {
			msg = parsed.Error
		}
	}
	return &APIError{StatusCode: status, Message: msg}
}
