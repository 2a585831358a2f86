package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/frederickimanuels/tokenscopex8/internal/domain"
	"github.com/frederickimanuels/tokenscopex8/internal/infrastructure/storage/memory"
)

func TestMetricPollerFiresMatchingAlert(t *testing.T) {
	store := memory.NewStore()
	id := store.Add(domain.Alert{
		Kind: domain.KindMetric, MetricName: domain.MetricBTCDominance,
		Condition: domain.ConditionAbove, Target: 55, UserID: "u1", ChannelID: "c1",
	})
	notifier := &fakeNotifier{}
	engine := NewAlertEngine(store, notifier, nil, zerolog.Nop())
	source := MetricSourceFunc(func(context.Context) (float64, error) { return 58.3, nil })
	p := NewMetricPoller(source, store, engine, domain.MetricBTCDominance, time.Minute, zerolog.Nop())

	p.poll(context.Background())
	engine.Wait()

	if got := notifier.sentCount(); got != 1 {
		t.Fatalf("notifications = %d, want 1", got)
	}
	if a, _ := store.Get(id); a.Status != domain.StatusTriggered {
		t.Errorf("status = %q, want triggered", a.Status)
	}
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if notifier.sent[0].Value != 58.3 {
		t.Errorf("notification value = %v, want 58.3", notifier.sent[0].Value)
	}
}

func TestMetricPollerIgnoresNonMatching(t *testing.T) {
	store := memory.NewStore()
	store.Add(domain.Alert{
		Kind: domain.KindMetric, MetricName: domain.MetricBTCDominance,
		Condition: domain.ConditionBelow, Target: 40,
	})
	notifier := &fakeNotifier{}
	engine := NewAlertEngine(store, notifier, nil, zerolog.Nop())
	source := MetricSourceFunc(func(context.Context) (float64, error) { return 58.3, nil })
	p := NewMetricPoller(source, store, engine, domain.MetricBTCDominance, time.Minute, zerolog.Nop())

	p.poll(context.Background())
	engine.Wait()

	if got := notifier.sentCount(); got != 0 {
		t.Errorf("notifications = %d, want 0", got)
	}
}

func TestMetricPollerFetchFailureIsSkipped(t *testing.T) {
	store := memory.NewStore()
	id := store.Add(domain.Alert{
		Kind: domain.KindMetric, MetricName: domain.MetricBTCDominance,
		Condition: domain.ConditionAbove, Target: 1,
	})
	notifier := &fakeNotifier{}
	engine := NewAlertEngine(store, notifier, nil, zerolog.Nop())
	source := MetricSourceFunc(func(context.Context) (float64, error) {
		return 0, errors.New("rate limited")
	})
	p := NewMetricPoller(source, store, engine, domain.MetricBTCDominance, time.Minute, zerolog.Nop())

	p.poll(context.Background())
	engine.Wait()

	if a, _ := store.Get(id); a.Status != domain.StatusActive {
		t.Errorf("fetch failure must not touch alerts, status = %q", a.Status)
	}
}
