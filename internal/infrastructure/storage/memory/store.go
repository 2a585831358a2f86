package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

// Store is an in-memory alert store with the same conditional-transition
// semantics as the SQL ones. It backs service tests and throwaway runs.
type Store struct {
	mu     sync.Mutex
	alerts map[int64]domain.Alert
	nextID int64

	// ReadErr, when set, is returned by every read; simulates store outages.
	ReadErr error
}

func NewStore() *Store {
	return &Store{alerts: make(map[int64]domain.Alert), nextID: 1}
}

// Add inserts an alert and returns its assigned ID. Status defaults to
// active when unset.
func (s *Store) Add(a domain.Alert) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.nextID
		s.nextID++
	}
	if a.Status == "" {
		a.Status = domain.StatusActive
	}
	s.alerts[a.ID] = a
	return a.ID
}

// Get returns the stored alert by ID.
func (s *Store) Get(id int64) (domain.Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	return a, ok
}

func (s *Store) ActiveSubscriptions(_ context.Context) ([]domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	seen := map[domain.Subscription]struct{}{}
	var subs []domain.Subscription
	for _, a := range s.alerts {
		if a.Status != domain.StatusActive || a.Kind != domain.KindPrice {
			continue
		}
		sub := domain.Subscription{Exchange: a.Exchange, Base: a.Base, Quote: a.Quote}
		if _, dup := seen[sub]; dup {
			continue
		}
		seen[sub] = struct{}{}
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].Exchange != subs[j].Exchange {
			return subs[i].Exchange < subs[j].Exchange
		}
		if subs[i].Base != subs[j].Base {
			return subs[i].Base < subs[j].Base
		}
		return subs[i].Quote < subs[j].Quote
	})
	return subs, nil
}

func (s *Store) CandidatePriceAlerts(_ context.Context, exchange, base, quote string) ([]domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	var out []domain.Alert
	for _, a := range s.alerts {
		if a.Status != domain.StatusActive || a.Kind != domain.KindPrice {
			continue
		}
		if !strings.EqualFold(a.Exchange, exchange) || a.Base != base {
			continue
		}
		if a.Quote != quote && a.Quote != domain.QuoteAnyStable {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ActiveMetricAlerts(_ context.Context, metric string) ([]domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	var out []domain.Alert
	for _, a := range s.alerts {
		if a.Status == domain.StatusActive && a.Kind == domain.KindMetric && a.MetricName == metric {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) MarkTriggered(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok || a.Status != domain.StatusActive {
		return false, nil
	}
	a.Status = domain.StatusTriggered
	s.alerts[id] = a
	return true, nil
}

func (s *Store) Close() error { return nil }

var _ port.AlertStore = (*Store)(nil)
