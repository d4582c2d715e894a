// Package registrations is a standalone client for the JobStream admin
// review API. It deliberately has no dependency on the service module so
// internal tools can import it on its own.
package registrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = client
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.Token = token
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type Registration struct {
	ID           string  `json:"id"`
	CompanyEmail string  `json:"companyEmail"`
	LegalName    string  `json:"legalName,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"createdAt"`
	SubmittedAt  *string `json:"submittedAt,omitempty"`
	ReviewedAt   *string `json:"reviewedAt,omitempty"`
	ReviewedBy   *string `json:"reviewedBy,omitempty"`
	ReviewNotes  *string `json:"reviewNotes,omitempty"`
}

type PendingPage struct {
	Items      []Registration `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"totalPages"`
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jobstream api: status %d code %s: %s", e.StatusCode, e.Code, e.Message)
}

func (c *Client) ListPending(ctx context.Context, page, pageSize int) (PendingPage, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}
	path := "/api/admin/registrations/pending"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var out PendingPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return PendingPage{}, err
	}
	return out, nil
}

func (c *Client) Approve(ctx context.Context, id, notes string) (Registration, error) {
	var out struct {
		Registration Registration `json:"registration"`
	}
	body := map[string]string{"notes": notes}
	if err := c.do(ctx, http.MethodPost, "/api/admin/registrations/"+url.PathEscape(id)+"/approve", body, &out); err != nil {
		return Registration{}, err
	}
	return out.Registration, nil
}

func (c *Client) Reject(ctx context.Context, id, reason string) (Registration, error) {
	var out struct {
		Registration Registration `json:"registration"`
	}
	body := map[string]string{"reason": reason}
	if err := c.do(ctx, http.MethodPost, "/api/admin/registrations/"+url.PathEscape(id)+"/reject", body, &out); err != nil {
		return Registration{}, err
	}
	return out.Registration, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if c == nil {
		return fmt.Errorf("registrations client is nil")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("jobstream base URL is required")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var decoded struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if payload, readErr := io.ReadAll(resp.Body); readErr == nil {
			if json.Unmarshal(payload, &decoded) == nil {
				apiErr.Code = decoded.Code
				apiErr.Message = decoded.Message
			} else {
				apiErr.Message = string(payload)
			}
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
