package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// respondJSON сериализует payload и пишет его с заданным статусом.
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// respondError пишет JSON с текстом ошибки.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

// respondDomainError мапит доменную ошибку на HTTP-статус.
func respondDomainError(w http.ResponseWriter, err error) {
	respondError(w, statusFromError(err), err.Error())
}

// statusFromError переводит доменные ошибки в HTTP-статусы:
// not found — 404, конфликты состояния — 409, отказ по остаткам — 422,
// ошибки валидации — 400, всё прочее — 500.
func statusFromError(err error) int {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderExists),
		errors.Is(err, domain.ErrProductExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case isValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isValidationError(err error) bool {
	validationErrors := []error{
		domain.ErrCustomerNameRequired,
		domain.ErrPhoneRequired,
		domain.ErrAddressRequired,
		domain.ErrItemsRequired,
		domain.ErrStatusUnknown,
		domain.ErrItemProductRequired,
		domain.ErrItemQtyInvalid,
		domain.ErrItemPriceInvalid,
		domain.ErrAmountMismatch,
		domain.ErrProductNameRequired,
		domain.ErrProductCategoryRequired,
		domain.ErrProductPriceNegative,
		domain.ErrProductQuantityNegative,
	}
	for _, known := range validationErrors {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
