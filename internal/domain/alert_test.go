package domain

import "testing"

func TestAlertMatchesAbove(t *testing.T) {
	a := Alert{Condition: ConditionAbove, Target: 50000}

	if a.Matches(49999.99) {
		t.Error("should not match below target")
	}
	if !a.Matches(50000) {
		t.Error("should match at exactly the target")
	}
	if !a.Matches(51000) {
		t.Error("should match above target")
	}
}

func TestAlertMatchesBelow(t *testing.T) {
	a := Alert{Condition: ConditionBelow, Target: 50000}

	if a.Matches(50000.01) {
		t.Error("should not match above target")
	}
	if !a.Matches(50000) {
		t.Error("should match at exactly the target")
	}
	if !a.Matches(49000) {
		t.Error("should match below target")
	}
}

func TestAlertMatchesUnknownCondition(t *testing.T) {
	a := Alert{Condition: "SIDEWAYS", Target: 1}
	if a.Matches(2) {
		t.Error("unknown condition must never match")
	}
}

func TestAlertLabel(t *testing.T) {
	cases := []struct {
		name string
		a    Alert
		want string
	}{
		{"price pair", Alert{Kind: KindPrice, Base: "BTC", Quote: "USDT"}, "BTC/USDT"},
		{"sentinel quote", Alert{Kind: KindPrice, Base: "ETH", Quote: QuoteAnyStable}, "ETH"},
		{"metric", Alert{Kind: KindMetric, MetricName: MetricBTCDominance}, "BTC_DOMINANCE"},
	}
	for _, tc := range cases {
		if got := tc.a.Label(); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}
