package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"freshcart/internal/cart"
	"freshcart/internal/coupon"
	"freshcart/internal/engine"
	"freshcart/internal/sync"
)

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeError maps domain errors onto HTTP status codes. Coupon minimum-order
// rejections additionally report how much is missing so the UI can show it.
func writeError(w http.ResponseWriter, err error) {
	var minOrder *coupon.MinOrderNotMetError
	if errors.As(err, &minOrder) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":            minOrder.Error(),
			"code":             minOrder.Code,
			"min_order_amount": minOrder.MinOrderAmount,
			"deficit":          minOrder.Deficit(),
		})
		return
	}

	writeJSONError(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	var remote *sync.RemoteError

	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrProductNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, coupon.ErrInvalidCoupon):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sync.ErrRemoteUnavailable):
		return http.StatusBadGateway
	case errors.As(err, &remote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
