// Package mlclient talks to the external company risk-assessment
// provider. The provider runs its own circuit breaker; this client only
// recognizes the "circuit open" signal and translates it for the core.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

const (
	defaultTimeout = 15 * time.Second
	assessPath     = "/v1/assess"
)

// circuitOpenMarker is the fragment the provider puts in its 503 body
// while its breaker is open.
const circuitOpenMarker = "circuit is now open"

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("ml provider base url is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: base, apiKey: cfg.APIKey, httpClient: client}, nil
}

type assessRequest struct {
	RegistrationID     string   `json:"registrationId"`
	LegalName          string   `json:"legalName"`
	CompanyEmail       string   `json:"companyEmail"`
	RegistrationNumber string   `json:"registrationNumber,omitempty"`
	VATID              string   `json:"vatId,omitempty"`
	Industry           string   `json:"industry,omitempty"`
	CompanySize        string   `json:"companySize,omitempty"`
	Description        string   `json:"description,omitempty"`
	StakeAmount        *float64 `json:"stakeAmount,omitempty"`
}

type assessResponse struct {
	OverallRiskScore float64         `json:"overallRiskScore"`
	RiskLevel        string          `json:"riskLevel"`
	Confidence       float64         `json:"confidence"`
	WebIntelligence  json.RawMessage `json:"webIntelligence,omitempty"`
	Sentiment        json.RawMessage `json:"sentimentAnalysis,omitempty"`
	RiskFlags        json.RawMessage `json:"riskFlags,omitempty"`
	Recommendations  json.RawMessage `json:"recommendations,omitempty"`
	ProcessingTimeMs int64           `json:"processingTimeMs"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Assess submits the registration for scoring. A provider-side breaker
// trip surfaces as registration.ErrCircuitOpen; other provider failures
// as *registration.UnavailableError carrying the provider's message.
func (c *Client) Assess(ctx context.Context, reg registration.Registration) (registration.RiskAssessment, error) {
	payload, err := json.Marshal(assessRequest{
		RegistrationID:     reg.ID,
		LegalName:          reg.LegalName,
		CompanyEmail:       reg.CompanyEmail,
		RegistrationNumber: reg.RegistrationNumber,
		VATID:              reg.VATID,
		Industry:           reg.Industry,
		CompanySize:        reg.CompanySize,
		Description:        reg.Description,
		StakeAmount:        reg.StakeAmount,
	})
	if err != nil {
		return registration.RiskAssessment{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+assessPath, bytes.NewReader(payload))
	if err != nil {
		return registration.RiskAssessment{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return registration.RiskAssessment{}, &registration.UnavailableError{Reason: fmt.Sprintf("risk provider unreachable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return registration.RiskAssessment{}, c.mapFailure(resp)
	}

	var decoded assessResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return registration.RiskAssessment{}, fmt.Errorf("decode risk provider response: %w", err)
	}
	level, err := parseRiskLevel(decoded.RiskLevel)
	if err != nil {
		return registration.RiskAssessment{}, err
	}
	return registration.RiskAssessment{
		Score:           decoded.OverallRiskScore,
		Level:           level,
		Confidence:      decoded.Confidence,
		WebIntelligence: decoded.WebIntelligence,
		Sentiment:       decoded.Sentiment,
		RiskFlags:       decoded.RiskFlags,
		Recommendations: decoded.Recommendations,
		ProcessingTime:  time.Duration(decoded.ProcessingTimeMs) * time.Millisecond,
	}, nil
}

func (c *Client) mapFailure(resp *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	message := body.Message
	if message == "" {
		message = body.Error
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		if strings.Contains(strings.ToLower(message), circuitOpenMarker) {
			return fmt.Errorf("risk provider: %w", registration.ErrCircuitOpen)
		}
		if message == "" {
			message = "risk provider unavailable"
		}
		return &registration.UnavailableError{Reason: message}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		if message == "" {
			message = fmt.Sprintf("risk provider error (status %d)", resp.StatusCode)
		}
		return &registration.UnavailableError{Reason: message}
	}
	return fmt.Errorf("risk provider rejected request (status %d): %s", resp.StatusCode, message)
}

func parseRiskLevel(value string) (registration.RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return registration.RiskLow, nil
	case "medium":
		return registration.RiskMedium, nil
	case "high":
		return registration.RiskHigh, nil
	default:
		return "", fmt.Errorf("unknown risk level %q", value)
	}
}
