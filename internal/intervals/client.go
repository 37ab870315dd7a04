// Package intervals is a thin client for the intervals.icu calendar API.
package intervals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"alcyxob/plan-coach/internal/domain"
)

const (
	DefaultBaseURL = "https://intervals.icu/api/v1"

	// basicAuthUser is the fixed username the API expects alongside the key.
	basicAuthUser = "API_KEY"
)

// DefaultStreamTypes are the channels requested when none are given.
var DefaultStreamTypes = []string{"latlng", "heartrate", "watts", "time"}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("intervals: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// CreateResult echoes the outcome of a create call. StatusCode is 0 when the
// request never got a response, in which case Body holds the error text.
type CreateResult struct {
	StatusCode int
	Body       string
}

// OK reports whether the create was accepted.
func (r CreateResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client talks to the calendar API with one fixed credential pair.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Client. A zero timeout leaves the transport default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// ListEvents returns calendar events between from and to, inclusive (YYYY-MM-DD).
func (c *Client) ListEvents(ctx context.Context, athleteID, from, to string) ([]domain.RemoteEvent, error) {
	var events []domain.RemoteEvent
	path := "/athlete/" + url.PathEscape(athleteID) + "/events"
	if err := c.getJSON(ctx, path, rangeQuery(from, to), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListActivities returns completed activities between from and to, inclusive.
func (c *Client) ListActivities(ctx context.Context, athleteID, from, to string) ([]domain.Activity, error) {
	var activities []domain.Activity
	path := "/athlete/" + url.PathEscape(athleteID) + "/activities"
	if err := c.getJSON(ctx, path, rangeQuery(from, to), &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// GetActivityStreams returns the requested streams of an activity. Types the
// activity does not have are simply missing from the result.
func (c *Client) GetActivityStreams(ctx context.Context, activityID string, types []string) ([]domain.Stream, error) {
	if len(types) == 0 {
		types = DefaultStreamTypes
	}
	var streams []domain.Stream
	path := "/activity/" + url.PathEscape(activityID) + "/streams"
	query := url.Values{"types": {strings.Join(types, ",")}}
	if err := c.getJSON(ctx, path, query, &streams); err != nil {
		return nil, err
	}
	return streams, nil
}

// CreateEvent posts a new event. The result is always populated; err is
// non-nil for transport failures and non-2xx statuses.
func (c *Client) CreateEvent(ctx context.Context, athleteID string, payload domain.EventPayload) (CreateResult, error) {
	path := "/athlete/" + url.PathEscape(athleteID) + "/events"
	body, err := json.Marshal(payload)
	if err != nil {
		return CreateResult{Body: err.Error()}, err
	}
	resp, respBody, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return CreateResult{Body: err.Error()}, err
	}
	result := CreateResult{StatusCode: resp.StatusCode, Body: string(respBody)}
	if !result.OK() {
		return result, &StatusError{Method: http.MethodPost, Path: path, StatusCode: resp.StatusCode, Body: result.Body}
	}
	return result, nil
}

// DeleteEvent removes one event.
func (c *Client) DeleteEvent(ctx context.Context, athleteID string, eventID int64) error {
	path := "/athlete/" + url.PathEscape(athleteID) + "/events/" + strconv.FormatInt(eventID, 10)
	resp, body, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: http.MethodDelete, Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("intervals: decoding %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Response, []byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, nil, err
	}
	req.SetBasicAuth(basicAuthUser, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("intervals: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("intervals: reading %s response: %w", path, err)
	}
	return resp, respBody, nil
}

func rangeQuery(from, to string) url.Values {
	return url.Values{"oldest": {from}, "newest": {to}}
}
