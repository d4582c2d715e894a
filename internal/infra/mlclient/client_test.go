package mlclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

func testRegistration() registration.Registration {
	return registration.Registration{
		ID:           "reg-1",
		CompanyEmail: "ceo@acme.com",
		LegalName:    "Acme GmbH",
		Status:       registration.StatusPendingReview,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{BaseURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestAssessSuccess(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/assess" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"overallRiskScore": 0.42,
			"riskLevel": "Medium",
			"confidence": 0.88,
			"riskFlags": ["new domain"],
			"processingTimeMs": 350
		}`))
	})

	assessment, err := client.Assess(context.Background(), testRegistration())
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if assessment.Score != 0.42 {
		t.Fatalf("score = %v", assessment.Score)
	}
	if assessment.Level != registration.RiskMedium {
		t.Fatalf("level = %s", assessment.Level)
	}
	if assessment.ProcessingTime.Milliseconds() != 350 {
		t.Fatalf("processingTime = %v", assessment.ProcessingTime)
	}
}

func TestAssessCircuitOpen(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message": "Circuit is now open, requests are being rejected"}`))
	})

	_, err := client.Assess(context.Background(), testRegistration())
	if !errors.Is(err, registration.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestAssessProviderUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message": "scheduled maintenance"}`))
	})

	_, err := client.Assess(context.Background(), testRegistration())
	var unavailable *registration.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if unavailable.Reason != "scheduled maintenance" {
		t.Fatalf("reason = %s", unavailable.Reason)
	}
}

func TestAssessServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Assess(context.Background(), testRegistration())
	var unavailable *registration.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
}

func TestAssessClientErrorIsNotRetryable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "legalName is required"}`))
	})

	_, err := client.Assess(context.Background(), testRegistration())
	if err == nil {
		t.Fatalf("expected error")
	}
	var unavailable *registration.UnavailableError
	if errors.As(err, &unavailable) {
		t.Fatalf("4xx must not map to UnavailableError: %v", err)
	}
}

func TestAssessNetworkErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Assess(context.Background(), testRegistration())
	var unavailable *registration.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
}

func TestAssessUnknownRiskLevel(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"overallRiskScore": 0.1, "riskLevel": "extreme"}`))
	})

	if _, err := client.Assess(context.Background(), testRegistration()); err == nil {
		t.Fatalf("expected error for unknown risk level")
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error")
	}
}
