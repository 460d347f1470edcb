package api

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, h *Handler) {

	// Sessions
	r.HandleFunc("/api/sessions", h.CreateSession).Methods("POST")
	r.HandleFunc("/api/sessions", h.ListSessions).Methods("GET")
	r.HandleFunc("/api/sessions/{sessionId}", h.GetSession).Methods("GET")
	r.HandleFunc("/api/sessions/{sessionId}", h.DeleteSession).Methods("DELETE")

	// People
	r.HandleFunc("/api/sessions/{sessionId}/people", h.SetPeopleCount).Methods("PUT")
	r.HandleFunc("/api/sessions/{sessionId}/people/reset-names", h.ResetNames).Methods("POST")
	r.HandleFunc("/api/sessions/{sessionId}/people/{personId}", h.RenamePerson).Methods("PUT")

	// Items and assignments
	r.HandleFunc("/api/sessions/{sessionId}/items", h.AddItem).Methods("POST")
	r.HandleFunc("/api/sessions/{sessionId}/items/{itemId}", h.RemoveItem).Methods("DELETE")
	r.HandleFunc("/api/sessions/{sessionId}/items/{itemId}/assignments/toggle-all", h.ToggleAll).Methods("POST")
	r.HandleFunc("/api/sessions/{sessionId}/items/{itemId}/assignments/{personId}/increment", h.Increment).Methods("POST")
	r.HandleFunc("/api/sessions/{sessionId}/items/{itemId}/assignments/{personId}/decrement", h.Decrement).Methods("POST")
	r.HandleFunc("/api/sessions/{sessionId}/items/{itemId}/assignments/{personId}/toggle", h.TogglePerson).Methods("POST")

	// Bill configuration and overrides
	r.HandleFunc("/api/sessions/{sessionId}/config", h.UpdateConfig).Methods("PUT")
	r.HandleFunc("/api/sessions/{sessionId}/overrides/{personId}", h.SetOverride).Methods("PUT")
	r.HandleFunc("/api/sessions/{sessionId}/overrides/{personId}", h.ClearOverride).Methods("DELETE")

	// Flow
	r.HandleFunc("/api/sessions/{sessionId}/step", h.SetStep).Methods("PUT")
	r.HandleFunc("/api/sessions/{sessionId}/reset", h.Reset).Methods("POST")
	r.HandleFunc("/api/sessions/{sessionId}/allocations", h.GetAllocations).Methods("GET")
}
