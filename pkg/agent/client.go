package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const requestTimeout = 5 * time.Second

// retrySchedule spaces the identity-request retries; each delay gets ±50%
// jitter so a fleet of tags recovering from an outage does not stampede.
var retrySchedule = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// TrackRequest carries the page signals forwarded with an identity request.
type TrackRequest struct {
	Referrer string
	Source   string
	FBP      string
	FBC      string
	Extra    url.Values // utm_* and sub1..sub8 passthrough
}

// StatusError is a non-2xx response from the tracking backend.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// Client talks to the tracking backend on behalf of the tag.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

// Track requests a fresh click identity, retrying transient failures up to
// three times. Validation responses (4xx) are not retried.
func (c *Client) Track(ctx context.Context, campaignID string, req TrackRequest) (string, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		id, err := c.track(ctx, campaignID, req)
		if err == nil {
			return id, nil
		}
		lastErr = err
		if !retryable(err) || attempt >= len(retrySchedule) {
			break
		}
		delay := withJitter(retrySchedule[attempt])
		c.logger.Warn("Identity request failed, retrying",
			"campaign", campaignID,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", lastErr
}

func (c *Client) track(ctx context.Context, campaignID string, r TrackRequest) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	if r.Referrer != "" {
		q.Set("referrer", r.Referrer)
	}
	if r.Source != "" {
		q.Set("tsource", r.Source)
	}
	if r.FBP != "" {
		q.Set("_fbp", r.FBP)
	}
	if r.FBC != "" {
		q.Set("_fbc", r.FBC)
	}
	for k, vs := range r.Extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	endpoint := fmt.Sprintf("%s/track/%s?%s", c.baseURL, url.PathEscape(campaignID), q.Encode())
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	var out struct {
		ClickID string `json:"clickid"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode identity response: %w", err)
	}
	if out.ClickID == "" {
		return "", errors.New("identity response missing clickid")
	}
	return out.ClickID, nil
}

// RegisterView records one page view. Single attempt; callers treat failure
// as best-effort.
func (c *Client) RegisterView(ctx context.Context, clickID, referrer string) error {
	q := url.Values{}
	q.Set("clickid", clickID)
	if referrer != "" {
		q.Set("referrer", referrer)
	}
	_, err := c.do(ctx, http.MethodGet, c.baseURL+"/view?"+q.Encode(), nil)
	return err
}

// Convert posts a first-party conversion for an identity.
func (c *Client) Convert(ctx context.Context, clickID, conversionType string, value float64, currency string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"clickId":        clickID,
		"conversionType": conversionType,
		"value":          value,
		"currency":       currency,
	})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, c.baseURL+"/api/conversions", payload)
	return err
}

// ReportError ships an agent-side error to the backend sink. Failures are
// swallowed so a broken reporter cannot spawn more error reports.
func (c *Client) ReportError(ctx context.Context, message, pageURL, clickID string) {
	payload, err := json.Marshal(map[string]string{
		"message": message,
		"url":     pageURL,
		"clickid": clickID,
	})
	if err != nil {
		return
	}
	if _, err := c.do(ctx, http.MethodPost, c.baseURL+"/agent/errors", payload); err != nil {
		c.logger.Debug("Error report dropped", "error", err)
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status >= 500
	}
	// transport-level failure
	return true
}

func withJitter(d time.Duration) time.Duration {
	return d/2 + time.Duration(rand.Int63n(int64(d)))
}
