// Package api exposes bill sessions over a JSON REST API.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/fairshare/internal/calculator"
	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/storage"
)

// Service is the session API the handlers depend on.
type Service interface {
	CreateSession(ctx context.Context) (string, models.Snapshot, error)
	GetSession(ctx context.Context, sessionID string) (models.Snapshot, error)
	DeleteSession(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]storage.SessionInfo, error)

	SetPeopleCount(ctx context.Context, sessionID string, n int) (models.Snapshot, error)
	RenamePerson(ctx context.Context, sessionID, personID, name string) (models.Snapshot, error)
	ResetAllNames(ctx context.Context, sessionID string) (models.Snapshot, error)

	AddItem(ctx context.Context, sessionID, name string, unitPrice models.Cents, quantity int, mode models.PricingMode) (models.ExpenseItem, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (models.Snapshot, error)
	Increment(ctx context.Context, sessionID, itemID, personID string) (models.Snapshot, error)
	Decrement(ctx context.Context, sessionID, itemID, personID string) (models.Snapshot, error)
	TogglePerson(ctx context.Context, sessionID, itemID, personID string) (models.Snapshot, error)
	ToggleAll(ctx context.Context, sessionID, itemID string) (models.Snapshot, error)

	UpdateConfig(ctx context.Context, sessionID string, cfg models.BillConfig) (models.Snapshot, error)
	SetOverride(ctx context.Context, sessionID, personID string, value *models.Cents) (models.Snapshot, error)
	SetStep(ctx context.Context, sessionID string, step models.Step) (models.Snapshot, error)
	Reset(ctx context.Context, sessionID string) (models.Snapshot, error)

	Summary(ctx context.Context, sessionID string) (*calculator.Result, calculator.TableTotals, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// respond writes the snapshot returned by a mutation.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, sessionID string, snap models.Snapshot, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionDTO{ID: sessionID, Snapshot: snap})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, snap, err := h.svc.CreateSession(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionDTO{ID: id, Snapshot: snap})
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.ListSessions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []storage.SessionInfo{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]
	snap, err := h.svc.GetSession(r.Context(), id)
	h.respond(w, r, id, snap, err)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]
	if err := h.svc.DeleteSession(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetPeopleCount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]
	var req PeopleCountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Count == nil {
		writeError(w, http.StatusBadRequest, "Count is required", "")
		return
	}
	snap, err := h.svc.SetPeopleCount(r.Context(), id, *req.Count)
	h.respond(w, r, id, snap, err)
}

func (h *Handler) RenamePerson(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["sessionId"]
	var req RenameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := h.svc.RenamePerson(r.Context(), id, vars["personId"], req.Name)
	h.respond(w, r, id, snap, err)
}

func (h *Handler) ResetNames(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]
	snap, err := h.svc.ResetAllNames(r.Context(), id)
	h.respond(w, r, id, snap, err)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]
	var req AddItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, "Price is required", "price is an amount in cents")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	mode := models.PricingUnit
	if req.PricingMode != "" {
		mode = models.PricingMode(req.PricingMode)
	}

	item, err := h.svc.AddItem(r.Context(), id, req.Name, *req.Price, req.Quantity, mode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["sessionId"]
	snap, err := h.svc.RemoveItem(r.Context(), id, vars["itemId"])
	h.respond(w, r, id, snap, err)
}

func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["sessionId"]
	snap, err := h.svc.Increment(r.Context(), id, vars["itemId"], vars["personId"])
	h.respond(w, r, id, snap, err)
}

func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["sessionId"]
	snap, err := h.svc.Decrement(r.Context(), id, vars["itemId"], vars["personId"])
	h.respond(w, r, id, snap, err)
}

func (h *Handler) TogglePerson(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["sessionId"]
	snap, err := h.svc.TogglePerson(r.Context(), id, vars["itemId"], vars["personId"])
	h.respond(w, r, id, snap, err)
}

func (h *Handler) ToggleAll(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["sessionId"]
	snap, err := h.svc.ToggleAll(r.Context(), id, vars["itemId"])
	h.respond(w, r, id, snap, err)
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]
	var cfg models.BillConfig
	if !decodeBody(w, r, &cfg) {
		return
	}
	snap, err := h.svc.UpdateConfig(r.Context(), id, cfg)
	h.respond(w, r, id, snap, err)
}

func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["sessionId"]
	var req OverrideRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "Value is required", "use DELETE to clear an override")
		return
	}
	snap, err := h.svc.SetOverride(r.Context(), id, vars["personId"], req.Value)
	h.respond(w, r, id, snap, err)
}

func (h *Handler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["sessionId"]
	snap, err := h.svc.SetOverride(r.Context(), id, vars["personId"], nil)
	h.respond(w, r, id, snap, err)
}

func (h *Handler) SetStep(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]
	var req StepRequest
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := h.svc.SetStep(r.Context(), id, req.Step)
	h.respond(w, r, id, snap, err)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]
	snap, err := h.svc.Reset(r.Context(), id)
	h.respond(w, r, id, snap, err)
}

func (h *Handler) GetAllocations(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]
	res, totals, err := h.svc.Summary(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AllocationsDTO{SessionID: id, Result: res, TableTotals: totals})
}
