package memory

import (
	"context"
	"testing"

	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

func TestActiveSubscriptionsDedupes(t *testing.T) {
	s := NewStore()
	s.Add(domain.Alert{Kind: domain.KindPrice, Exchange: "binance", Base: "BTC", Quote: "USDT", Target: 1})
	s.Add(domain.Alert{Kind: domain.KindPrice, Exchange: "binance", Base: "BTC", Quote: "USDT", Target: 2})
	s.Add(domain.Alert{Kind: domain.KindMetric, MetricName: domain.MetricBTCDominance, Target: 55})

	subs, err := s.ActiveSubscriptions(context.Background())
	if err != nil {
		t.Fatalf("ActiveSubscriptions failed: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("subs = %+v, want one distinct row", subs)
	}
}

func TestCandidatePriceAlertsSentinel(t *testing.T) {
	s := NewStore()
	s.Add(domain.Alert{Kind: domain.KindPrice, Exchange: "binance", Base: "BTC", Quote: "USDT", Target: 1})
	s.Add(domain.Alert{Kind: domain.KindPrice, Exchange: "binance", Base: "BTC", Quote: domain.QuoteAnyStable, Target: 2})
	s.Add(domain.Alert{Kind: domain.KindPrice, Exchange: "binance", Base: "BTC", Quote: "USDC", Target: 3})

	alerts, err := s.CandidatePriceAlerts(context.Background(), "binance", "BTC", "USDT")
	if err != nil {
		t.Fatalf("CandidatePriceAlerts failed: %v", err)
	}
	if len(alerts) != 2 {
		t.Errorf("alerts = %+v, want exact + sentinel", alerts)
	}
}

func TestMarkTriggeredConditional(t *testing.T) {
	s := NewStore()
	id := s.Add(domain.Alert{Kind: domain.KindPrice, Exchange: "binance", Base: "BTC", Quote: "USDT", Target: 1})

	ctx := context.Background()
	if ok, _ := s.MarkTriggered(ctx, id); !ok {
		t.Fatal("first transition should succeed")
	}
	if ok, _ := s.MarkTriggered(ctx, id); ok {
		t.Error("repeat transition should be a no-op")
	}
	if ok, _ := s.MarkTriggered(ctx, 9999); ok {
		t.Error("unknown id should be a no-op")
	}
}
