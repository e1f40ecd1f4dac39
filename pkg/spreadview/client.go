// Package spreadview provides a Go SDK for the spreadview-server API.
package spreadview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is an HTTP client for the spreadview-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new spreadview API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ScenarioRow is one profit/loss outcome row.
type ScenarioRow struct {
	PriceChangeLabel  string  `json:"priceChangeLabel"`
	ProjectedPrice    float64 `json:"projectedPrice"`
	ProfitLoss        float64 `json:"profitLoss"`
	ProfitLossPercent float64 `json:"profitLossPercent"`
}

// SpreadAnalysis is the normalized spread record the server returns.
type SpreadAnalysis struct {
	Ticker             string        `json:"ticker"`
	CurrentPrice       float64       `json:"currentPrice"`
	SellStrike         float64       `json:"sellStrike"`
	BuyStrike          float64       `json:"buyStrike"`
	NetCredit          float64       `json:"netCredit"`
	MaxRisk            float64       `json:"maxRisk"`
	ROIPercent         float64       `json:"roiPercent"`
	ExpirationDate     string        `json:"expirationDate"`
	DTE                int           `json:"dte"`
	Breakeven          float64       `json:"breakeven"`
	BufferRoomPercent  float64       `json:"bufferRoomPercent"`
	ContractType       string        `json:"contractType"`
	SellContractSymbol string        `json:"sellContractSymbol,omitempty"`
	BuyContractSymbol  string        `json:"buyContractSymbol,omitempty"`
	Scenarios          []ScenarioRow `json:"scenarios"`
}

// SpreadResponse is the GET /api/spread/{ticker} response.
type SpreadResponse struct {
	Analysis        SpreadAnalysis `json:"analysis"`
	Quantity        int            `json:"quantity"`
	TotalInvestment float64        `json:"totalInvestment"`
	IncomePotential float64        `json:"incomePotential"`
}

// Claim is one claims-journal entry.
type Claim struct {
	ID        string         `json:"id"`
	Symbol    string         `json:"symbol"`
	ClaimedAt time.Time      `json:"claimedAt"`
	Analysis  SpreadAnalysis `json:"analysis"`
}

type claimsResponse struct {
	Claims []Claim `json:"claims"`
}

type claimRequest struct {
	Symbol     string         `json:"symbol"`
	SpreadData SpreadAnalysis `json:"spreadData"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spreadview API: status %d: %s", e.Status, e.Message)
}

// GetSpread retrieves the normalized spread analysis for a ticker. quantity
// sizes the position math; a trend hint, when known, improves contract-type
// detection.
func (c *Client) GetSpread(ctx context.Context, symbol string, quantity int, trend string) (*SpreadResponse, error) {
	q := url.Values{}
	if quantity > 0 {
		q.Set("qty", strconv.Itoa(quantity))
	}
	if trend != "" {
		q.Set("trend", trend)
	}

	var out SpreadResponse
	if err := c.getJSON(ctx, "/api/spread/"+url.PathEscape(symbol), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetChartPNG retrieves the rendered intraday chart for a ticker as PNG
// bytes. Zero width or height uses the server defaults.
func (c *Client) GetChartPNG(ctx context.Context, symbol, interval string, width, height int) ([]byte, error) {
	q := url.Values{}
	if interval != "" {
		q.Set("interval", interval)
	}
	if width > 0 {
		q.Set("width", strconv.Itoa(width))
	}
	if height > 0 {
		q.Set("height", strconv.Itoa(height))
	}

	resp, err := c.do(ctx, http.MethodGet, "/api/chart/"+url.PathEscape(symbol)+".png", q, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// ListClaims retrieves the claims journal, newest first.
func (c *Client) ListClaims(ctx context.Context) ([]Claim, error) {
	var out claimsResponse
	if err := c.getJSON(ctx, "/api/claims", nil, &out); err != nil {
		return nil, err
	}
	return out.Claims, nil
}

// ClaimSpread persists a spread analysis to the claims journal.
func (c *Client) ClaimSpread(ctx context.Context, analysis SpreadAnalysis) (*Claim, error) {
	body, err := json.Marshal(claimRequest{Symbol: analysis.Ticker, SpreadData: analysis})
	if err != nil {
		return nil, fmt.Errorf("encoding claim: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/claims", nil, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out Claim
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding claim response: %w", err)
	}
	return &out, nil
}

// DeleteClaim removes a claim from the journal by id.
func (c *Client) DeleteClaim(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/claims/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}
	return resp, nil
}
