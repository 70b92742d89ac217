// Package handler provides the HTTP surface of the pricing service.
package handler

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"pricefx/internal/pricing"
	"pricefx/internal/quotelock"
	"pricefx/pkg/errors"
	"pricefx/pkg/logger"
	"pricefx/pkg/validator"
)

// QuoteHandler manages quote preview, lock and read endpoints.
type QuoteHandler struct {
	service   *pricing.Service
	locks     *quotelock.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewQuoteHandler(service *pricing.Service, locks *quotelock.Service, val *validator.Validator, log logger.Logger) *QuoteHandler {
	return &QuoteHandler{
		service:   service,
		locks:     locks,
		validator: val,
		logger:    log,
	}
}

type lockRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	pricing.RawRequest
}

// Preview computes a quote with no side effects.
func (h *QuoteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req pricing.RawRequest
	if !h.decode(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		h.respondValidationErrors(w, valErrs)
		return
	}

	result, err := h.service.Preview(r.Context(), req)
	if err != nil {
		h.respondPricingError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// Lock computes a quote and persists it as a time-bounded reservation.
func (h *QuoteHandler) Lock(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if !h.decode(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		h.respondValidationErrors(w, valErrs)
		return
	}

	quote, err := h.service.Lock(r.Context(), req.UserID, req.RawRequest)
	if err != nil {
		h.respondPricingError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, quote)
}

// Get returns a persisted quote lock with its effective status.
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid quote id")
		return
	}

	quote, err := h.locks.Get(r.Context(), id)
	if err != nil {
		h.respondPricingError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "Request body is required")
			return false
		}
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondPricingError maps the error taxonomy onto HTTP statuses.
func (h *QuoteHandler) respondPricingError(w http.ResponseWriter, err error) {
	kind := errors.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case errors.KindInvalidInput:
		status = http.StatusBadRequest
	case errors.KindNoRuleMatched, errors.KindFeeExceedsAmount:
		status = http.StatusUnprocessableEntity
	case errors.KindRateUnavailable:
		status = http.StatusServiceUnavailable
	case errors.KindQuoteNotFound:
		status = http.StatusNotFound
	case errors.KindQuoteNotActive:
		status = http.StatusConflict
	case errors.KindInvalidRuleConfig, errors.KindInvalidAdjustedRate:
		// Configuration defects are server-side; hide the rule details.
		h.logger.Error("Pricing configuration defect", map[string]interface{}{
			"error": err.Error(),
		})
		h.respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "Pricing configuration error",
			"kind":  kind,
		})
		return
	}

	var kinded *errors.Error
	if stderrors.As(err, &kinded) {
		body := map[string]interface{}{
			"error": kinded.Message,
			"kind":  kinded.Kind,
		}
		if len(kinded.Details) > 0 {
			body["details"] = kinded.Details
		}
		h.respondJSON(w, status, body)
		return
	}

	h.logger.Error("Unhandled pricing error", map[string]interface{}{"error": err.Error()})
	h.respondError(w, http.StatusInternalServerError, "Internal server error")
}

func (h *QuoteHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("json encode failed", map[string]interface{}{"error": err.Error()})
		_, _ = w.Write([]byte(`{"error":"response encoding failed"}`))
	}
}

func (h *QuoteHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *QuoteHandler) respondValidationErrors(w http.ResponseWriter, errs map[string]string) {
	h.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":             "Validation failed",
		"kind":              errors.KindInvalidInput,
		"validation_errors": errs,
	})
}
