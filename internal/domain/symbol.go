package domain

import "strings"

// Not every venue lists the same USD-pegged stablecoins; the sentinel quote
// expands against this table. Unknown venues fall back to USDT only.
var stablesByExchange = map[string][]string{
	"binance": {"USDT", "USDC", "TUSD", "FDUSD"},
	"bybit":   {"USDT", "USDC"},
	"kucoin":  {"USDT"},
	"okx":     {"USDT"},
	"mexc":    {"USDT"},
	"bitget":  {"USDT"},
	"uniswap": {"USDC"},
}

// dexPairs maps venue-native pair tags that do not follow the base+quote
// suffix convention. Decentralized pools publish under fixed tags.
var dexPairs = map[string][2]string{
	"WETHUSDC_UNISWAP": {"WETH", "USDC"},
}

// Stables returns the venue's configured stablecoin list.
func Stables(exchange string) []string {
	if s, ok := stablesByExchange[strings.ToLower(exchange)]; ok {
		return s
	}
	return []string{"USDT"}
}

// DefaultQuote is the stablecoin assumed when an on-demand query omits the
// quote symbol.
func DefaultQuote(exchange string) string {
	return Stables(exchange)[0]
}

// PairSymbol builds the concatenated identifier most venues use, with the
// fixed-tag exceptions for decentralized pools.
func PairSymbol(exchange, base, quote string) string {
	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	for tag, bq := range dexPairs {
		if strings.ToLower(exchange) == venueOfTag(tag) && bq[0] == base && bq[1] == quote {
			return tag
		}
	}
	return base + quote
}

func venueOfTag(tag string) string {
	if i := strings.LastIndexByte(tag, '_'); i >= 0 {
		return strings.ToLower(tag[i+1:])
	}
	return ""
}

// SubscriptionPairs expands one rule row into the pair identifiers the
// venue must stream. A sentinel quote yields one pair per venue stablecoin;
// duplicates are left to the caller's set semantics.
func SubscriptionPairs(sub Subscription) []string {
	base := strings.ToUpper(strings.TrimSpace(sub.Base))
	quote := strings.ToUpper(strings.TrimSpace(sub.Quote))
	if base == "" {
		return nil
	}
	if quote == QuoteAnyStable {
		stables := Stables(sub.Exchange)
		pairs := make([]string, 0, len(stables))
		for _, s := range stables {
			pairs = append(pairs, PairSymbol(sub.Exchange, base, s))
		}
		return pairs
	}
	if quote == "" {
		return nil
	}
	return []string{PairSymbol(sub.Exchange, base, quote)}
}

// SplitPair recovers (base, quote) from a venue pair identifier. Standard
// identifiers are matched by stablecoin suffix against the venue's list;
// non-standard tags go through the fixed table. ok is false when no rule
// applies, in which case the event cannot match any alert.
func SplitPair(exchange, pair string) (base, quote string, ok bool) {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	if bq, found := dexPairs[pair]; found {
		return bq[0], bq[1], true
	}
	for _, stable := range Stables(exchange) {
		if len(pair) > len(stable) && strings.HasSuffix(pair, stable) {
			return pair[:len(pair)-len(stable)], stable, true
		}
	}
	return "", "", false
}
