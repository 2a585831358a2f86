package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frederickimanuels/tokenscopex8/internal/domain"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/exchange"
)

const (
	Venue        = "binance"
	defaultWSURL = "wss://stream.binance.com:9443"

	readTimeout = 90 * time.Second
)

// Adapter streams Binance spot tickers over one combined-stream connection.
// Subscription is carried entirely in the URL, so a pair-set change means a
// fresh dial; that is exactly how the watcher drives it.
type Adapter struct {
	wsURL string
}

func New(wsURL string) *Adapter {
	wsURL = strings.TrimSpace(wsURL)
	if wsURL == "" {
		wsURL = defaultWSURL
	}
	return &Adapter{wsURL: wsURL}
}

func (a *Adapter) Venue() string { return Venue }

// Binance pings at the protocol level; the websocket library's default ping
// handler answers with a pong, so no app-level keepalive is needed.
func (a *Adapter) KeepaliveInterval() time.Duration { return 0 }

func (a *Adapter) Dial(ctx context.Context, pairs []string) (exchange.Conn, error) {
	u, err := streamURL(a.wsURL, pairs)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("binance dial: %w", err)
	}
	return &wsConn{conn: conn}, nil
}

func streamURL(base string, pairs []string) (string, error) {
	streams := make([]string, 0, len(pairs))
	for _, p := range pairs {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		streams = append(streams, p+"@ticker")
	}
	if len(streams) == 0 {
		return "", errors.New("binance: no pairs to subscribe")
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("binance ws url: %w", err)
	}
	u.Path = "/stream"
	u.RawQuery = "streams=" + strings.Join(streams, "/")
	return u.String(), nil
}

// combined-stream envelope around a 24hrTicker payload
type combinedMsg struct {
	Stream string `json:"stream"`
	Data   struct {
		Event  string `json:"e"`
		Symbol string `json:"s"`
		Close  string `json:"c"`
	} `json:"data"`
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadEvents() ([]domain.PriceEvent, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	_, b, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return parseFrame(b), nil
}

func parseFrame(b []byte) []domain.PriceEvent {
	var msg combinedMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		return nil
	}
	if msg.Data.Event != "24hrTicker" || msg.Data.Symbol == "" || msg.Data.Close == "" {
		return nil
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(msg.Data.Close), 64)
	if err != nil || price <= 0 {
		return nil
	}
	return []domain.PriceEvent{{
		Exchange:   Venue,
		Pair:       strings.ToUpper(msg.Data.Symbol),
		Price:      price,
		ObservedAt: time.Now().UTC(),
	}}
}

func (c *wsConn) Ping() error { return nil }

func (c *wsConn) Close() error { return c.conn.Close() }

var _ exchange.Adapter = (*Adapter)(nil)
