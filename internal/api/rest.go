package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/fairshare/internal/calculator"
	"github.com/mmynk/fairshare/internal/models"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SessionDTO is a session snapshot together with its ID.
type SessionDTO struct {
	ID string `json:"id"`
	models.Snapshot
}

// AllocationsDTO is the summary view of a session.
type AllocationsDTO struct {
	SessionID string `json:"sessionId"`
	*calculator.Result
	TableTotals calculator.TableTotals `json:"tableTotals"`
}

type PeopleCountRequest struct {
	Count *int `json:"count"`
}

type RenameRequest struct {
	Name string `json:"name"`
}

type AddItemRequest struct {
	Name        string        `json:"name"`
	Price       *models.Cents `json:"price"`
	Quantity    int           `json:"quantity"`
	PricingMode string        `json:"pricingMode"`
}

type OverrideRequest struct {
	Value *models.Cents `json:"value"`
}

type StepRequest struct {
	Step models.Step `json:"step"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrPersonNotFound),
		errors.Is(err, models.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrOverrideExceedsBill):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNegativeAmount),
		errors.Is(err, models.ErrInvalidConfig),
		errors.Is(err, models.ErrInvalidStep),
		errors.Is(err, models.ErrInvalidPricingMode),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInvalidPeopleCount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// writeServiceError reports err with the status it maps to. Internal errors
// are logged and their details hidden from the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "Internal server error", "")
		return
	}
	writeError(w, status, http.StatusText(status), err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return false
	}
	return true
}
