package ghlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://services.leadconnectorhq.com"
	defaultUserAgent = "clinic-ops-messaging/0.1"

	// The CRM versions its conversation endpoints separately.
	sendVersion = "2021-04-15"
	readVersion = "2021-07-28"
)

// Config controls how the CRM client behaves.
type Config struct {
	BaseURL    string
	APIKey     string
	LocationID string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
}

// Client wraps the CRM conversation endpoints used for patient SMS.
type Client struct {
	apiKey     string
	baseURL    string
	locationID string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
	userAgent  string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ghlclient: API key is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		locationID: cfg.LocationID,
		httpClient: httpClient,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
		userAgent:  userAgent,
	}, nil
}

// SendSMS queues an SMS to the contact through the CRM.
func (c *Client) SendSMS(ctx context.Context, req SendSMSRequest) (*SendSMSResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(map[string]string{
		"type":      "SMS",
		"contactId": req.ContactID,
		"message":   req.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("ghlclient: marshal send body: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "/conversations/messages", nil, body, sendVersion)
	if err != nil {
		return nil, err
	}
	var resp SendSMSResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("ghlclient: decode send response: %w", err)
	}
	return &resp, nil
}

// SearchConversations lists the contact's conversation threads.
func (c *Client) SearchConversations(ctx context.Context, contactID string) ([]Conversation, error) {
	if strings.TrimSpace(contactID) == "" {
		return nil, errors.New("ghlclient: contact id required")
	}
	q := url.Values{}
	q.Set("contactId", contactID)
	data, err := c.invoke(ctx, http.MethodGet, "/conversations/search", q, nil, readVersion)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("ghlclient: decode conversations: %w", err)
	}
	return parsed.Conversations, nil
}

// ConversationMessages fetches the messages in one conversation.
func (c *Client) ConversationMessages(ctx context.Context, conversationID string) ([]Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, errors.New("ghlclient: conversation id required")
	}
	data, err := c.invoke(ctx, http.MethodGet, fmt.Sprintf("/conversations/%s/messages", conversationID), nil, nil, readVersion)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Messages []Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("ghlclient: decode messages: %w", err)
	}
	return parsed.Messages, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, query url.Values, body []byte, version string) ([]byte, error) {
	fullURL := c.buildURL(path, query)
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("ghlclient: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Version", version)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt == c.maxRetries {
				return nil, fmt.Errorf("ghlclient: http error: %w", err)
			}
			lastErr = err
			c.logRetry(path, attempt, 0, err)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("ghlclient: read response: %w", readErr)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}
		apiErr := decodeAPIError(resp.StatusCode, data)
		if attempt < c.maxRetries && shouldRetry(resp.StatusCode) {
			lastErr = apiErr
			c.logRetry(path, attempt, resp.StatusCode, apiErr)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		return nil, apiErr
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("ghlclient: request failed without response")
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		full = full + "?" + query.Encode()
	}
	return full
}

func shouldRetry(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.backoff * time.Duration(1<<attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) logRetry(path string, attempt, status int, err error) {
	c.logger.Warn("ghl request retrying",
		"path", path,
		"attempt", attempt+1,
		"status", status,
		"error", err)
}
