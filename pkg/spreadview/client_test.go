package spreadview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	c := NewClient(baseURL)

	if c == nil {
		t.Fatal("expected non-nil client")
	}
	if c.baseURL != baseURL {
		t.Errorf("expected baseURL %q, got %q", baseURL, c.baseURL)
	}
	if c.httpClient == nil {
		t.Fatal("expected non-nil httpClient")
	}
}

func TestGetSpread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/spread/TSLA" {
			t.Errorf("path = %s, want /api/spread/TSLA", r.URL.Path)
		}
		if got := r.URL.Query().Get("qty"); got != "3" {
			t.Errorf("qty = %q, want 3", got)
		}
		fmt.Fprint(w, `{"analysis":{"ticker":"TSLA","sellStrike":310,"scenarios":[]},"quantity":3,"totalInvestment":1140}`)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).GetSpread(context.Background(), "TSLA", 3, "")
	if err != nil {
		t.Fatalf("GetSpread: %v", err)
	}
	if got.Analysis.Ticker != "TSLA" || got.Analysis.SellStrike != 310 {
		t.Errorf("analysis = %+v, want TSLA/310", got.Analysis)
	}
	if got.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", got.Quantity)
	}
}

func TestGetSpreadAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"no qualifying spread found for ZZZZ"}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetSpread(context.Background(), "ZZZZ", 1, "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apiErr.Status)
	}
	if apiErr.Message == "" {
		t.Error("APIError should carry the server message")
	}
}

func TestClaimLifecycle(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/claims":
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id":"abc123","symbol":"TSLA","analysis":{"ticker":"TSLA"}}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/claims":
			fmt.Fprint(w, `{"claims":[{"id":"abc123","symbol":"TSLA","analysis":{"ticker":"TSLA"}}]}`)
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	created, err := c.ClaimSpread(ctx, SpreadAnalysis{Ticker: "TSLA", SellStrike: 310})
	if err != nil {
		t.Fatalf("ClaimSpread: %v", err)
	}
	if created.ID != "abc123" {
		t.Errorf("id = %q, want abc123", created.ID)
	}

	claims, err := c.ListClaims(ctx)
	if err != nil {
		t.Fatalf("ListClaims: %v", err)
	}
	if len(claims) != 1 || claims[0].ID != "abc123" {
		t.Errorf("claims = %+v, want the single abc123 entry", claims)
	}

	if err := c.DeleteClaim(ctx, "abc123"); err != nil {
		t.Fatalf("DeleteClaim: %v", err)
	}
	if deleted != "/api/claims/abc123" {
		t.Errorf("deleted path = %q, want /api/claims/abc123", deleted)
	}
}

func TestGetChartPNG(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chart/TSLA.png" {
			t.Errorf("path = %s, want /api/chart/TSLA.png", r.URL.Path)
		}
		if got := r.URL.Query().Get("width"); got != "320" {
			t.Errorf("width = %q, want 320", got)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}))
	defer srv.Close()

	body, err := NewClient(srv.URL).GetChartPNG(context.Background(), "TSLA", "5m", 320, 240)
	if err != nil {
		t.Fatalf("GetChartPNG: %v", err)
	}
	if len(body) != len(png) {
		t.Errorf("body length = %d, want %d", len(body), len(png))
	}
}
