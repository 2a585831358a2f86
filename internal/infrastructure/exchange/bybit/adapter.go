package bybit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frederickimanuels/tokenscopex8/internal/domain"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/exchange"
)

const (
	Venue        = "bybit"
	defaultWSURL = "wss://stream.bybit.com/v5/public/spot"

	readTimeout  = 90 * time.Second
	writeTimeout = 5 * time.Second

	// Bybit closes connections that go 20s without an application ping,
	// regardless of message traffic.
	keepaliveInterval = 20 * time.Second
)

// Adapter streams Bybit v5 spot tickers. Unlike Binance the subscription is
// a post-connect handshake message, not part of the URL.
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

func (a *Adapter) KeepaliveInterval() time.Duration { return keepaliveInterval }

type opMsg struct {
	Op   string   `json:"op"`
	Args []string `json:"args,omitempty"`
}

func (a *Adapter) Dial(ctx context.Context, pairs []string) (exchange.Conn, error) {
	topics := make([]string, 0, len(pairs))
	for _, p := range pairs {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		topics = append(topics, "tickers."+p)
	}
	if len(topics) == 0 {
		return nil, errors.New("bybit: no pairs to subscribe")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, a.wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("bybit dial: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(opMsg{Op: "subscribe", Args: topics}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("bybit subscribe: %w", err)
	}
	return &wsConn{conn: conn}, nil
}

type tickerItem struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
}

// tickerData tolerates Bybit sending data as either a single object or an
// array, which differs across product lines.
type tickerData []tickerItem

func (d *tickerData) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*d = nil
		return nil
	}
	switch b[0] {
	case '[':
		var arr []tickerItem
		if err := json.Unmarshal(b, &arr); err != nil {
			return err
		}
		*d = arr
		return nil
	case '{':
		var one tickerItem
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*d = tickerData{one}
		return nil
	default:
		return fmt.Errorf("unexpected data json: %s", b)
	}
}

type tickerMsg struct {
	Topic   string     `json:"topic"`
	Data    tickerData `json:"data"`
	Success *bool      `json:"success,omitempty"`
	RetMsg  string     `json:"ret_msg,omitempty"`
	Op      string     `json:"op,omitempty"`
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
	var msg tickerMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		return nil
	}
	// subscribe/ping acks carry no ticks
	if !strings.HasPrefix(msg.Topic, "tickers.") || len(msg.Data) == 0 {
		return nil
	}

	events := make([]domain.PriceEvent, 0, len(msg.Data))
	for _, d := range msg.Data {
		sym := strings.ToUpper(strings.TrimSpace(d.Symbol))
		price, err := strconv.ParseFloat(strings.TrimSpace(d.LastPrice), 64)
		if sym == "" || err != nil || price <= 0 {
			continue
		}
		events = append(events, domain.PriceEvent{
			Exchange:   Venue,
			Pair:       sym,
			Price:      price,
			ObservedAt: time.Now().UTC(),
		})
	}
	return events
}

func (c *wsConn) Ping() error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(opMsg{Op: "ping"})
}

func (c *wsConn) Close() error { return c.conn.Close() }

var _ exchange.Adapter = (*Adapter)(nil)
