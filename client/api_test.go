package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dararith/vehicle-inventory/backend/client"
	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *client.API {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return client.NewAPI(srv.URL, "session-token", nil)
}

func TestAPIList_QueryAndAuth(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vehicles", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("lite"))
		assert.Equal(t, "200", r.URL.Query().Get("maxRows"))
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":   true,
			"data": []map[string]any{{"VehicleId": "1", "Brand": "Honda"}},
			"meta": map[string]any{"total": 1},
		})
	})

	vehicles, meta, err := api.List(context.Background(), client.ListOptions{Lite: true, MaxRows: 200})

	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "Honda", vehicles[0].Brand)
	assert.Equal(t, 1, meta.Total)
}

func TestAPIList_ServerErrorMessageSurfaces(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "the upstream spreadsheet took too long to respond"})
	})

	_, _, err := api.List(context.Background(), client.ListOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "took too long")
}

func TestAPIGet_OK(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vehicles/7", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":   true,
			"data": map[string]any{"VehicleId": "7", "Brand": "Toyota"},
		})
	})

	v, err := api.Get(context.Background(), "7")

	require.NoError(t, err)
	assert.Equal(t, "Toyota", v.Brand)
}

func TestAPIUpdate_SendsFullRecord(t *testing.T) {
	var captured domain.Vehicle
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "data": captured})
	})

	_, err := api.Update(context.Background(), "7", domain.Vehicle{Brand: "Mazda", Model: "2"})

	require.NoError(t, err)
	assert.Equal(t, "Mazda", captured.Brand)
}

func TestAPIDelete_BodyCarriesImageRefs(t *testing.T) {
	var captured map[string]string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "data": map[string]string{"VehicleId": "7"}})
	})

	err := api.Delete(context.Background(), "7", "", "https://drive.google.com/uc?id=f-1")

	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/uc?id=f-1", captured["imageUrl"])
	_, hasFileID := captured["imageFileId"]
	assert.False(t, hasFileID)
}

func TestAPI_NonJSONResponse(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	})

	_, err := api.Get(context.Background(), "7")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
