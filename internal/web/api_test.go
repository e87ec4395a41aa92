package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type optionsBody struct {
	Count   int  `json:"count"`
	Loading bool `json:"loading"`
}

type selectorBody struct {
	SessionID         string      `json:"sessionId"`
	Phase             string      `json:"phase"`
	SelectionComplete bool        `json:"selectionComplete"`
	Loading           bool        `json:"loading"`
	MakeID            string      `json:"makeId"`
	ModelID           string      `json:"modelId"`
	Makes             optionsBody `json:"makes"`
	Models            optionsBody `json:"models"`
	Series            optionsBody `json:"series"`
	Bodies            optionsBody `json:"bodies"`
	VehicleStatus     string      `json:"vehicleStatus"`
	VehicleURL        string      `json:"vehicleUrl"`
	Vehicle           *struct {
		ID    string  `json:"id"`
		Price float64 `json:"price"`
	} `json:"vehicle"`
}

func doJSON(t *testing.T, method, url, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestSelectorAPI_ResolvesVehicle(t *testing.T) {
	srv, site := newTestSite(t)

	var created selectorBody
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, site.URL+"/api/selector", "", &created))
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, "no_make", created.Phase)
	assert.Equal(t, 2, created.Makes.Count)
	assert.Equal(t, 1, srv.sessions.len())

	base := site.URL + "/api/selector/" + created.SessionID

	var state selectorBody
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/make?wait=true", `{"id":"make_1"}`, &state))
	assert.Equal(t, created.SessionID, state.SessionID)
	assert.Equal(t, "make_selected", state.Phase)
	assert.Equal(t, 2, state.Models.Count)
	assert.False(t, state.Loading)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/model?wait=true", `{"id":"model_1"}`, &state))
	assert.Equal(t, "model_selected", state.Phase)
	assert.Equal(t, 2, state.Series.Count)
	assert.Equal(t, 0, state.Bodies.Count)
	assert.False(t, state.SelectionComplete)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/series?wait=true", `{"id":"series_1"}`, &state))
	assert.True(t, state.SelectionComplete)
	assert.Equal(t, "vehicle_resolved", state.Phase)
	assert.Equal(t, "found", state.VehicleStatus)
	require.NotNil(t, state.Vehicle)
	assert.Equal(t, "veh_1", state.Vehicle.ID)
	assert.Equal(t, 29999.0, state.Vehicle.Price)
	assert.Equal(t, "/vehicle/veh_1", state.VehicleURL)

	var fetched selectorBody
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, base, "", &fetched))
	assert.Equal(t, "veh_1", fetched.Vehicle.ID)
}

func TestSelectorAPI_Errors(t *testing.T) {
	_, site := newTestSite(t)

	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, site.URL+"/api/selector/unknown", "", nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, site.URL+"/api/selector/unknown/make", `{"id":"make_1"}`, nil))

	var created selectorBody
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, site.URL+"/api/selector", "", &created))
	base := site.URL + "/api/selector/" + created.SessionID

	assert.Equal(t, http.StatusConflict, doJSON(t, http.MethodPost, base+"/model", `{"id":"model_1"}`, nil))
	assert.Equal(t, http.StatusConflict, doJSON(t, http.MethodPost, base+"/make", `{"id":"make_9"}`, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, base+"/make", `{`, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, base+"/trim", `{"id":"x"}`, nil))

	assert.Equal(t, http.StatusNoContent, doJSON(t, http.MethodDelete, base, "", nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, base, "", nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodDelete, base, "", nil))
}

func TestMakesAPI(t *testing.T) {
	_, site := newTestSite(t)

	var listing struct {
		Items []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
		Count    int  `json:"count"`
		NextPage *int `json:"nextPage"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, site.URL+"/api/makes?page=1", "", &listing))
	assert.Equal(t, 2, listing.Count)
	require.Len(t, listing.Items, 2)
	assert.Equal(t, "Toyota", listing.Items[0].Name)
	assert.Nil(t, listing.NextPage)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodGet, site.URL+"/api/makes?page=0", "", nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodGet, site.URL+"/api/makes?page=two", "", nil))
}

func TestVehicleAPI(t *testing.T) {
	_, site := newTestSite(t)

	var detail struct {
		Vehicle struct {
			Title string `json:"title"`
		} `json:"vehicle"`
		Kits struct {
			Count int `json:"count"`
		} `json:"kits"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, site.URL+"/api/vehicles/veh_1", "", &detail))
	assert.Equal(t, "2018 Toyota Camry", detail.Vehicle.Title)
	assert.Equal(t, 2, detail.Kits.Count)

	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, site.URL+"/api/vehicles/missing", "", nil))
}

func TestHealthz(t *testing.T) {
	_, site := newTestSite(t)

	var body map[string]string
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, site.URL+"/healthz", "", &body))
	assert.Equal(t, "ok", body["status"])
}
