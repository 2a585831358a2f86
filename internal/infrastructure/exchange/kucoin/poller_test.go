package kucoin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

type captureBus struct {
	mu     sync.Mutex
	events []domain.PriceEvent
}

func (b *captureBus) Publish(_ context.Context, ev domain.PriceEvent) error {
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()
	return nil
}

func (b *captureBus) Subscribe(ctx context.Context, _ port.EventHandler) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestPollerFetchesAndPublishes(t *testing.T) {
	var gotSymbol string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/market/orderbook/level1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotSymbol = r.URL.Query().Get("symbol")
		fmt.Fprint(w, `{"code":"200000","data":{"price":"64123.45"}}`)
	}))
	defer srv.Close()

	bus := &captureBus{}
	p := NewPoller(srv.URL, time.Minute, bus, zerolog.Nop())
	p.Restart([]string{"BTCUSDT"})

	p.poll(context.Background())

	if gotSymbol != "BTC-USDT" {
		t.Errorf("symbol = %q, want BTC-USDT", gotSymbol)
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if len(bus.events) != 1 {
		t.Fatalf("events = %d, want 1", len(bus.events))
	}
	ev := bus.events[0]
	if ev.Exchange != Venue || ev.Pair != "BTCUSDT" || ev.Price != 64123.45 {
		t.Errorf("got %+v", ev)
	}
}

func TestPollerSkipsFailedPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "ETH-USDT" {
			http.Error(w, "teapot", http.StatusTeapot)
			return
		}
		fmt.Fprint(w, `{"code":"200000","data":{"price":"64000"}}`)
	}))
	defer srv.Close()

	bus := &captureBus{}
	p := NewPoller(srv.URL, time.Minute, bus, zerolog.Nop())
	p.Restart([]string{"ETHUSDT", "BTCUSDT"})

	p.poll(context.Background())

	bus.mu.Lock()
	defer bus.mu.Unlock()
	if len(bus.events) != 1 || bus.events[0].Pair != "BTCUSDT" {
		t.Errorf("events = %+v, want only BTCUSDT", bus.events)
	}
}

func TestPollerRejectsBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":"400100","data":{}}`)
	}))
	defer srv.Close()

	bus := &captureBus{}
	p := NewPoller(srv.URL, time.Minute, bus, zerolog.Nop())
	p.Restart([]string{"BTCUSDT"})

	p.poll(context.Background())

	bus.mu.Lock()
	defer bus.mu.Unlock()
	if len(bus.events) != 0 {
		t.Errorf("events = %+v, want none on api error code", bus.events)
	}
}

func TestPollerStopClearsPairs(t *testing.T) {
	p := NewPoller("", time.Minute, &captureBus{}, zerolog.Nop())
	p.Restart([]string{"BTCUSDT"})
	p.Stop()
	if len(p.Pairs()) != 0 {
		t.Errorf("Pairs() = %v after stop", p.Pairs())
	}
}
