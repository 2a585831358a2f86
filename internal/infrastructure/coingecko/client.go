package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.coingecko.com"

// Client fetches the global market snapshot. Only the BTC market-cap share
// is consumed; the rest of the payload is ignored.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type globalResp struct {
	Data struct {
		MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
	} `json:"data"`
}

// BTCDominance returns Bitcoin's share of total market cap as a percentage.
func (c *Client) BTCDominance(ctx context.Context) (float64, error) {
	u := c.baseURL + "/api/v3/global"
	if c.apiKey != "" {
		u += "?x_cg_demo_api_key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch global metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("global metrics: status %d", resp.StatusCode)
	}
	var body globalResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode global metrics: %w", err)
	}
	dom, ok := body.Data.MarketCapPercentage["btc"]
	if !ok {
		return 0, fmt.Errorf("global metrics: btc dominance missing")
	}
	return dom, nil
}
