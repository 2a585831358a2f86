package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frederickimanuels/tokenscopex8/internal/application/service"
)

// PriceSource answers on-demand lookups. Satisfied by service.PriceQuery.
type PriceSource interface {
	Lookup(ctx context.Context, exchange, coin, quote string) (service.Quote, bool, error)
}

type priceHandler struct {
	prices PriceSource
}

// getPrice handles GET /api/v1/price?coin=BTC[&exchange=binance][&quote=USDT].
// Only pairs warmed by an active alert are served; everything else is a 404.
func (h *priceHandler) getPrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	coin := q.Get("coin")
	if coin == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coin is required"})
		return
	}

	quote, ok, err := h.prices.Lookup(r.Context(), q.Get("exchange"), coin, q.Get("quote"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
