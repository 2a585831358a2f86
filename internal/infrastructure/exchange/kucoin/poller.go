package kucoin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/metrics"
)

const (
	Venue           = "kucoin"
	defaultBaseURL  = "https://api.kucoin.com"
	defaultInterval = 10 * time.Second
)

// Poller is the REST-polling flavour of a venue watcher: same Streamer
// contract as the websocket ones, but it fetches level-1 tickers on a fixed
// interval instead of holding a socket.
type Poller struct {
	baseURL  string
	interval time.Duration
	client   *http.Client
	bus      port.Bus
	log      zerolog.Logger

	mu    sync.Mutex
	pairs []string
	kick  chan struct{}
}

func NewPoller(baseURL string, interval time.Duration, b port.Bus, logger zerolog.Logger) *Poller {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		baseURL:  baseURL,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		bus:      b,
		log:      logger.With().Str("venue", Venue).Logger(),
		kick:     make(chan struct{}, 1),
	}
}

func (p *Poller) Venue() string { return Venue }

func (p *Poller) Pairs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.pairs...)
}

func (p *Poller) Restart(pairs []string) {
	p.mu.Lock()
	p.pairs = append([]string(nil), pairs...)
	p.mu.Unlock()
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *Poller) Stop() { p.Restart(nil) }

// Run polls until ctx is cancelled. An empty pair set simply skips the
// round; there is no connection to tear down.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.kick:
			p.poll(ctx)
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	for _, pair := range p.Pairs() {
		price, err := p.fetch(ctx, pair)
		if err != nil {
			p.log.Warn().Err(err).Str("pair", pair).Msg("poll failed")
			continue
		}
		ev := domain.PriceEvent{
			Exchange:   Venue,
			Pair:       pair,
			Price:      price,
			ObservedAt: time.Now().UTC(),
		}
		if err := p.bus.Publish(ctx, ev); err != nil {
			p.log.Debug().Err(err).Str("pair", pair).Msg("publish failed, tick dropped")
			continue
		}
		metrics.TicksPublished.WithLabelValues(Venue).Inc()
	}
}

type level1Resp struct {
	Code string `json:"code"`
	Data struct {
		Price string `json:"price"`
	} `json:"data"`
}

func (p *Poller) fetch(ctx context.Context, pair string) (float64, error) {
	base, quote, ok := domain.SplitPair(Venue, pair)
	if !ok {
		return 0, fmt.Errorf("unparseable pair %q", pair)
	}
	symbol := base + "-" + quote

	u := p.baseURL + "/api/v1/market/orderbook/level1?symbol=" + url.QueryEscape(symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("level1 %s: status %d", symbol, resp.StatusCode)
	}
	var body level1Resp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("level1 %s: %w", symbol, err)
	}
	if body.Code != "200000" || body.Data.Price == "" {
		return 0, fmt.Errorf("level1 %s: code %s", symbol, body.Code)
	}
	price, err := strconv.ParseFloat(body.Data.Price, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("level1 %s: bad price %q", symbol, body.Data.Price)
	}
	return price, nil
}

var _ port.Streamer = (*Poller)(nil)
