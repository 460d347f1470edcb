package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/fairshare/internal/calculator"
	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/service"
	"github.com/mmynk/fairshare/internal/storage/sqlite"
)

// Test setup helper
func setupRouter(t *testing.T) *mux.Router {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := service.NewSessionService(store, service.Config{DefaultPeople: 2})
	r := mux.NewRouter()
	RegisterRoutes(r, NewHandler(svc))
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createSession(t *testing.T, r http.Handler) SessionDTO {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[SessionDTO](t, w)
}

func TestCreateAndGetSession(t *testing.T) {
	r := setupRouter(t)
	created := createSession(t, r)
	assert.NotEmpty(t, created.ID)
	assert.Len(t, created.People, 2)
	assert.Equal(t, models.SnapshotSchemaVersion, created.SchemaVersion)

	w := do(t, r, http.MethodGet, "/api/sessions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[SessionDTO](t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.People, got.People)

	w = do(t, r, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.ID)
}

func TestGetSession_NotFound(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "Not Found", resp.Error)
	assert.Contains(t, resp.Details, "session not found")
}

func TestDeleteSession(t *testing.T) {
	r := setupRouter(t)
	s := createSession(t, r)

	w := do(t, r, http.MethodDelete, "/api/sessions/"+s.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/api/sessions/"+s.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPeopleEndpoints(t *testing.T) {
	r := setupRouter(t)
	s := createSession(t, r)
	base := "/api/sessions/" + s.ID

	w := do(t, r, http.MethodPut, base+"/people", map[string]int{"count": 4})
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[SessionDTO](t, w)
	require.Len(t, snap.People, 4)
	assert.Equal(t, "Pessoa 4", snap.People[3].Name)

	w = do(t, r, http.MethodPut, base+"/people", map[string]int{"count": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, base+"/people", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, base+"/people/"+snap.People[1].ID, RenameRequest{Name: "Bruno"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bruno", decode[SessionDTO](t, w).People[1].Name)

	w = do(t, r, http.MethodPut, base+"/people/ghost", RenameRequest{Name: "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, base+"/people/reset-names", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pessoa 2", decode[SessionDTO](t, w).People[1].Name)
}

func TestAddItem_Validation(t *testing.T) {
	r := setupRouter(t)
	s := createSession(t, r)
	base := "/api/sessions/" + s.ID

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing price", map[string]any{"name": "Beer"}, http.StatusBadRequest},
		{"negative price", map[string]any{"name": "Beer", "price": -100}, http.StatusBadRequest},
		{"bad mode", map[string]any{"name": "Beer", "price": 100, "pricingMode": "weird"}, http.StatusBadRequest},
		{"negative quantity", map[string]any{"name": "Beer", "price": 100, "quantity": -2}, http.StatusBadRequest},
		{"unknown field", map[string]any{"name": "Beer", "price": 100, "color": "red"}, http.StatusBadRequest},
		{"zero price", map[string]any{"name": "Water", "price": 0}, http.StatusCreated},
		{"defaults", map[string]any{"name": "Beer", "price": 1200}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, base+"/items", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestFullBillFlow(t *testing.T) {
	r := setupRouter(t)
	s := createSession(t, r)
	base := "/api/sessions/" + s.ID
	a, b := s.People[0].ID, s.People[1].ID

	w := do(t, r, http.MethodPut, base+"/config", models.BillConfig{
		BillMode:    models.BillModeBar,
		CouvertMode: models.CouvertPerTable,
		Couvert:     2000,
		ServiceTax:  0.1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, base+"/items", AddItemRequest{Name: "Pizza", Price: cents(8000), PricingMode: "shared"})
	require.Equal(t, http.StatusCreated, w.Code)
	pizza := decode[models.ExpenseItem](t, w)

	w = do(t, r, http.MethodPost, base+"/items", AddItemRequest{Name: "Beer", Price: cents(1000)})
	require.Equal(t, http.StatusCreated, w.Code)
	beer := decode[models.ExpenseItem](t, w)
	assert.Equal(t, models.PricingUnit, beer.PricingMode)

	w = do(t, r, http.MethodPost, base+"/items/"+pizza.ID+"/assignments/toggle-all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for i := 0; i < 2; i++ {
		w = do(t, r, http.MethodPost, base+"/items/"+beer.ID+"/assignments/"+a+"/increment", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = do(t, r, http.MethodPut, base+"/step", StepRequest{Step: models.StepSummary})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, base+"/allocations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[AllocationsDTO](t, w)
	require.NotNil(t, res.Result)
	require.Len(t, res.Allocations, 2)

	// a: couvert 1000 + pizza 4000 + beer 2000 = 7000, tax 700 -> 7700
	// b: couvert 1000 + pizza 4000 = 5000, tax 500 -> 5500
	assert.Equal(t, a, res.Allocations[0].PersonID)
	assert.InDelta(t, 7700, res.Allocations[0].FinalToPay, 0.001)
	assert.InDelta(t, 5500, res.Allocations[1].FinalToPay, 0.001)
	assert.InDelta(t, 13200, res.GrandTotalOriginal, 0.001)
	assert.Equal(t, models.Cents(9000), res.TableTotals.ItemsTotal)
	assert.Equal(t, models.Cents(2000), res.TableTotals.CouvertTotal)

	w = do(t, r, http.MethodPut, base+"/overrides/"+b, OverrideRequest{Value: cents(7000)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, base+"/allocations", nil)
	res = decode[AllocationsDTO](t, w)
	assert.True(t, res.HasSponsor)
	assert.Equal(t, b, res.Allocations[0].PersonID)
	assert.Equal(t, calculator.StatusSponsor, res.Allocations[0].Status)
	// 13200 - 7000 left for a alone
	assert.InDelta(t, 6200, res.Allocations[1].FinalToPay, 0.001)
	assert.InDelta(t, 6200, res.RemainingBill, 0.001)

	w = do(t, r, http.MethodPut, base+"/overrides/"+a, OverrideRequest{Value: cents(7000)})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodDelete, base+"/overrides/"+b, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[SessionDTO](t, w).ManualPayments)

	w = do(t, r, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[SessionDTO](t, w)
	assert.Equal(t, models.StepSetup, snap.Step)
	assert.Empty(t, snap.Items)
}

func TestAssignmentErrors(t *testing.T) {
	r := setupRouter(t)
	s := createSession(t, r)
	base := "/api/sessions/" + s.ID

	w := do(t, r, http.MethodPost, base+"/items/missing/assignments/"+s.People[0].ID+"/toggle", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, base+"/items", AddItemRequest{Name: "Beer", Price: cents(500)})
	item := decode[models.ExpenseItem](t, w)

	w = do(t, r, http.MethodPost, base+"/items/"+item.ID+"/assignments/ghost/decrement", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodDelete, base+"/items/"+item.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvalidStepAndConfig(t *testing.T) {
	r := setupRouter(t)
	s := createSession(t, r)
	base := "/api/sessions/" + s.ID

	w := do(t, r, http.MethodPut, base+"/step", StepRequest{Step: "checkout"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, base+"/config", map[string]any{"billMode": "buffet", "couvertMode": "person"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, base+"/overrides/"+s.People[0].ID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(models.ErrItemNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(models.ErrOverrideExceedsBill))
	assert.Equal(t, http.StatusBadRequest, statusFor(models.ErrInvalidQuantity))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

func cents(v models.Cents) *models.Cents { return &v }
