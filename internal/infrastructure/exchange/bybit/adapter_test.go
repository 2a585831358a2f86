package bybit

import "testing"

func TestParseFrameSingleObject(t *testing.T) {
	frame := []byte(`{"topic":"tickers.BTCUSDT","type":"snapshot","data":{"symbol":"BTCUSDT","lastPrice":"64123.45"}}`)
	events := parseFrame(frame)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Exchange != Venue || events[0].Pair != "BTCUSDT" || events[0].Price != 64123.45 {
		t.Errorf("got %+v", events[0])
	}
}

func TestParseFrameArrayData(t *testing.T) {
	frame := []byte(`{"topic":"tickers.ETHUSDT","data":[{"symbol":"ETHUSDT","lastPrice":"3200.5"},{"symbol":"ETHUSDC","lastPrice":"3199.8"}]}`)
	events := parseFrame(frame)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[1].Pair != "ETHUSDC" || events[1].Price != 3199.8 {
		t.Errorf("got %+v", events[1])
	}
}

func TestParseFrameAcksAndPongs(t *testing.T) {
	cases := []struct {
		name  string
		frame string
	}{
		{"subscribe ack", `{"success":true,"ret_msg":"","op":"subscribe","conn_id":"abc"}`},
		{"pong", `{"success":true,"ret_msg":"pong","op":"ping"}`},
		{"other topic", `{"topic":"orderbook.50.BTCUSDT","data":{"symbol":"BTCUSDT"}}`},
		{"empty data", `{"topic":"tickers.BTCUSDT","data":[]}`},
		{"not json", `hello`},
	}
	for _, tc := range cases {
		if events := parseFrame([]byte(tc.frame)); len(events) != 0 {
			t.Errorf("%s: events = %v, want none", tc.name, events)
		}
	}
}

func TestParseFrameSkipsBadItems(t *testing.T) {
	frame := []byte(`{"topic":"tickers.BTCUSDT","data":[{"symbol":"","lastPrice":"1"},{"symbol":"BTCUSDT","lastPrice":"-5"},{"symbol":"BTCUSDT","lastPrice":"64000"}]}`)
	events := parseFrame(frame)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1 valid item", len(events))
	}
	if events[0].Price != 64000 {
		t.Errorf("got %+v", events[0])
	}
}
