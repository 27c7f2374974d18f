// Package api implements the REST client for the remote mock-interview
// service. All calls take a context and map non-2xx responses to errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const basePath = "/api/mock-interview"

// Client talks to the coaching backend.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
}

// NewClient constructs a Client for the given base URL and bearer token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
	}
}

// StartSession allocates a new session on the backend.
func (c *Client) StartSession(ctx context.Context, req StartRequest) (*StartResponse, error) {
	var resp StartResponse
	if err := c.doJSON(ctx, http.MethodPost, basePath+"/start", req, &resp); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return &resp, nil
}

// SubmitAnswer sends one answer (or skip) for evaluation.
func (c *Client) SubmitAnswer(ctx context.Context, sessionID string, req AnswerRequest) (*AnswerResponse, error) {
	var resp AnswerResponse
	path := fmt.Sprintf("%s/%s/answer", basePath, sessionID)
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("submit answer: %w", err)
	}
	return &resp, nil
}

// FetchReport retrieves the final report for a session. A nil report with a
// nil error means the backend has not produced one yet.
func (c *Client) FetchReport(ctx context.Context, sessionID string) (*FinalReport, error) {
	var resp reportResponse
	path := fmt.Sprintf("%s/%s/report", basePath, sessionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch report: %w", err)
	}
	return resp.Report, nil
}

// ListSessions fetches the session history, most recent first as returned
// by the backend. No client-side ordering is applied.
func (c *Client) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	var resp historyResponse
	if err := c.doJSON(ctx, http.MethodGet, basePath+"/history", nil, &resp); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return resp.Sessions, nil
}

// DeleteSession permanently removes a session from the backend store.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	path := fmt.Sprintf("%s/%s", basePath, sessionID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Transcribe uploads one audio blob and returns the recognized text.
// Absence of text is not an error.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("transcribe: build form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("transcribe: write form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("transcribe: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+basePath+"/transcribe-audio", &body)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	httpResp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	defer httpResp.Body.Close()
	if err := checkStatus(httpResp); err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	var resp TranscribeResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("transcribe: decode response: %w", err)
	}
	return resp.Text, nil
}

// doJSON performs one JSON request/response exchange. in may be nil for
// bodyless requests; out may be nil when the response body is irrelevant.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("server error: status=%d body=%s", resp.StatusCode, string(snippet))
}
