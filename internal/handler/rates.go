package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"pricefx/internal/domain"
	"pricefx/internal/forex"
	"pricefx/pkg/errors"
	"pricefx/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Pair is an ordered currency pair streamed over the rates websocket.
type Pair struct {
	From domain.Currency `json:"from"`
	To   domain.Currency `json:"to"`
}

// RatesHandler exposes market rate lookups and a live rate stream.
type RatesHandler struct {
	source forex.RateSource
	pairs  []Pair
	logger logger.Logger
}

func NewRatesHandler(source forex.RateSource, pairs []Pair, log logger.Logger) *RatesHandler {
	return &RatesHandler{
		source: source,
		pairs:  pairs,
		logger: log,
	}
}

// GetRate returns the current market rate for a pair.
func (h *RatesHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	from := domain.Currency(vars["from"])
	to := domain.Currency(vars["to"])

	rate, err := h.source.Rate(r.Context(), from, to)
	if err != nil {
		status := http.StatusServiceUnavailable
		kind := errors.KindOf(err)
		if kind != errors.KindRateUnavailable {
			status = http.StatusInternalServerError
			kind = errors.KindInternal
		}
		h.respondJSON(w, status, map[string]interface{}{
			"error": "Rate not available",
			"kind":  kind,
		})
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"from": from,
		"to":   to,
		"rate": rate,
	})
}

// Stream pushes the configured pairs over a websocket on an interval.
func (h *RatesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	h.sendRates(r.Context(), conn)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := h.sendRates(r.Context(), conn); err != nil {
				h.logger.Error("Failed to push rates", map[string]interface{}{"error": err.Error()})
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (h *RatesHandler) sendRates(ctx context.Context, conn *websocket.Conn) error {
	type rateEntry struct {
		Pair
		Rate string `json:"rate"`
	}

	var rates []rateEntry
	for _, p := range h.pairs {
		rate, err := h.source.Rate(ctx, p.From, p.To)
		if err != nil {
			continue
		}
		rates = append(rates, rateEntry{Pair: p, Rate: rate.String()})
	}

	return conn.WriteJSON(map[string]interface{}{
		"type":      "rates_update",
		"timestamp": time.Now(),
		"rates":     rates,
	})
}

func (h *RatesHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("json encode failed", map[string]interface{}{"error": err.Error()})
	}
}
