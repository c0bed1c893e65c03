package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Backend is the remote story-generation service as seen by this client.
// CampfireClient talks to the real service; MockBackend runs offline.
type Backend interface {
	// FetchSession loads the ongoing session, or a specific past story when
	// title is non-empty. A (nil, nil) result means no session exists yet.
	FetchSession(ctx context.Context, title string) (*SessionResponse, error)
	// SubmitTurn sends the user's input and returns the updated turn list.
	SubmitTurn(ctx context.Context, payload TurnPayload) (*SessionResponse, error)
	// ListTitles returns the titles of the user's stories.
	ListTitles(ctx context.Context) ([]string, error)
	// DeleteStory removes the story with the given title.
	DeleteStory(ctx context.Context, title string) error
}

// CampfireClient is the HTTP Backend implementation. Credentials are looked
// up per request so a token cleared after an unauthorized response is not
// reused.
type CampfireClient struct {
	BaseURL string
	Creds   *CredentialStore
	HTTP    *http.Client
	Logger  *Logger
}

func NewCampfireClient(baseURL string, creds *CredentialStore, logger *Logger) *CampfireClient {
	return &CampfireClient{
		BaseURL: baseURL,
		Creds:   creds,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		Logger:  logger,
	}
}

type titlesResponse struct {
	Titles []string `json:"titles"`
}

func (c *CampfireClient) FetchSession(ctx context.Context, title string) (*SessionResponse, error) {
	u := c.BaseURL + "/api/campfire/story"
	if title != "" {
		u += "?title=" + url.QueryEscape(title)
	}
	var resp SessionResponse
	status, err := c.do(ctx, http.MethodGet, u, nil, &resp)
	if err != nil {
		return nil, err
	}
	// No session yet is a normal outcome, not an error.
	if status == http.StatusNotFound || status == http.StatusNoContent {
		return nil, nil
	}
	return &resp, nil
}

func (c *CampfireClient) SubmitTurn(ctx context.Context, payload TurnPayload) (*SessionResponse, error) {
	var resp SessionResponse
	if _, err := c.do(ctx, http.MethodPost, c.BaseURL+"/api/campfire/story", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *CampfireClient) ListTitles(ctx context.Context) ([]string, error) {
	var resp titlesResponse
	if _, err := c.do(ctx, http.MethodGet, c.BaseURL+"/api/campfire/stories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Titles, nil
}

func (c *CampfireClient) DeleteStory(ctx context.Context, title string) error {
	u := c.BaseURL + "/api/campfire/story/" + url.PathEscape(title)
	_, err := c.do(ctx, http.MethodDelete, u, nil, nil)
	return err
}

// do runs one request and decodes the response into out (when non-nil and
// the body is non-empty). It returns the HTTP status so callers can treat
// 404 as "no session". Error mapping: transport failure -> NetworkError,
// 401/403 -> ErrUnauthorized (after clearing the stored token), any other
// non-2xx (except 404 on GET) -> BackendError with the backend's message.
func (c *CampfireClient) do(ctx context.Context, method, rawURL string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.Creds != nil {
		if token := c.Creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &NetworkError{Err: err}
	}
	if c.Logger != nil {
		c.Logger.Info("backend request", map[string]interface{}{
			"method": method,
			"url":    rawURL,
			"status": resp.StatusCode,
		})
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if c.Creds != nil {
			_ = c.Creds.Clear()
		}
		return resp.StatusCode, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound && method == http.MethodGet:
		return resp.StatusCode, nil
	case resp.StatusCode >= 300:
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(bodyBytes, &errResp)
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		return resp.StatusCode, &BackendError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return resp.StatusCode, &BackendError{
				Status:  resp.StatusCode,
				Message: fmt.Sprintf("invalid backend response: %v", err),
			}
		}
	}
	return resp.StatusCode, nil
}
