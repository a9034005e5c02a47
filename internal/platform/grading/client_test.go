package grading

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/scorewire/warroom/internal/domain"
)

func sampleRequest() domain.GradeRequest {
	return domain.TwoTeamGradeRequest{
		HomeTeam:    "nyj",
		PartnerTeam: "chi",
		SessionID:   "sess-1",
	}
}

func TestGradePrimarySuccess(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		json.NewEncoder(w).Encode(domain.GradeResult{Grade: "A-", Reasoning: "fair deal"})
	}))
	defer primary.Close()

	c := NewClient(primary.URL, "", "")
	res, err := c.Grade(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if res.Grade != "A-" || res.Reasoning != "fair deal" {
		t.Fatalf("result = %+v", res)
	}
}

func TestGradeFallbackOnSignal(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"model offline","fallback_to_legacy":true}`)
	}))
	defer primary.Close()

	var legacyPayload atomic.Value
	legacy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		legacyPayload.Store(string(body))
		json.NewEncoder(w).Encode(domain.GradeResult{Grade: "B"})
	}))
	defer legacy.Close()

	c := NewClient(primary.URL, legacy.URL, "")
	res, err := c.Grade(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if res.Grade != "B" {
		t.Fatalf("result = %+v", res)
	}

	// The identical payload must be resubmitted.
	var sent domain.TwoTeamGradeRequest
	if err := json.Unmarshal([]byte(legacyPayload.Load().(string)), &sent); err != nil {
		t.Fatalf("legacy payload: %v", err)
	}
	if sent.HomeTeam != "nyj" || sent.SessionID != "sess-1" {
		t.Fatalf("legacy payload differs: %+v", sent)
	}
}

func TestGradeFallbackOnServiceUnavailable(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	legacy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.GradeResult{Grade: "C+"})
	}))
	defer legacy.Close()

	c := NewClient(primary.URL, legacy.URL, "")
	res, err := c.Grade(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if res.Grade != "C+" {
		t.Fatalf("result = %+v", res)
	}
}

func TestGradeNoFallbackWithoutSignal(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"boom"}`)
	}))
	defer primary.Close()

	var legacyHit atomic.Bool
	legacy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		legacyHit.Store(true)
	}))
	defer legacy.Close()

	c := NewClient(primary.URL, legacy.URL, "")
	if _, err := c.Grade(context.Background(), sampleRequest()); err == nil {
		t.Fatal("expected error")
	}
	if legacyHit.Load() {
		t.Fatal("legacy endpoint must not be hit without the fallback signal")
	}
}

func TestGradeBothEndpointsFail(t *testing.T) {
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":"down"}`)
	})
	primary := httptest.NewServer(failing)
	defer primary.Close()
	legacy := httptest.NewServer(failing)
	defer legacy.Close()

	c := NewClient(primary.URL, legacy.URL, "")
	if _, err := c.Grade(context.Background(), sampleRequest()); err == nil {
		t.Fatal("expected final error when both endpoints fail")
	}
}

func TestGradeRejected(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"roster limit exceeded"}`)
	}))
	defer primary.Close()

	c := NewClient(primary.URL, "", "")
	_, err := c.Grade(context.Background(), sampleRequest())
	if !errors.Is(err, domain.ErrGradeRejected) {
		t.Fatalf("expected ErrGradeRejected, got %v", err)
	}
}
