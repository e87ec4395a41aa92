package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"wipertech/storefront/internal/client"
	"wipertech/storefront/internal/config"
	"wipertech/storefront/internal/fallback"
	"wipertech/storefront/internal/service"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// commerceAPI fakes the remote store routes. Each list answers in a
// different envelope shape.
func commerceAPI() http.Handler {
	raw := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}
	byParam := func(param string, bodies map[string]string, otherwise string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			body, ok := bodies[r.URL.Query().Get(param)]
			if !ok {
				body = otherwise
			}
			raw(body)(w, r)
		}
	}

	r := mux.NewRouter()
	r.HandleFunc("/store/vehicles/makes", raw(`{
		"vehicleMakes": [{"id":"make_1","name":"Toyota"},{"id":"make_2","name":"Honda"}],
		"count": 2
	}`))
	r.HandleFunc("/store/vehicles/models", byParam("make_id", map[string]string{
		"make_1": `{"data":{"vehicleModels":[
			{"id":"model_1","name":"Camry","makeId":"make_1"},
			{"id":"model_2","name":"RAV4","makeId":"make_1"}
		],"count":2}}`,
	}, `{"vehicleModels":[],"count":0}`))
	r.HandleFunc("/store/vehicles/series", byParam("model_id", map[string]string{
		"model_1": `[
			{"id":"series_1","start_year":2018,"end_year":2100,"modelId":"model_1"},
			{"id":"series_3","start_year":2010,"end_year":2014,"modelId":"model_1"}
		]`,
		"model_2": `[{"id":"series_2","start_year":2019,"end_year":2023,"modelId":"model_2"}]`,
	}, `[]`))
	r.HandleFunc("/store/vehicles/bodies", byParam("model_id", map[string]string{
		"model_2": `{"data":{"vehicleBodies":[{"id":"body_1","name":"SUV"}],"count":1}}`,
	}, `{"data":[]}`))
	r.HandleFunc("/store/vehicles", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("model_id") == "model_1" && q.Get("series_id") == "series_1":
			raw(`{"vehicles":[{"id":"veh_1","make_id":"make_1","model_id":"model_1","series_id":"series_1",
				"title":"2018 Toyota Camry","price":29999,"images":["https://img.example.com/camry.jpg"]}],"count":1}`)(w, r)
		case q.Get("model_id") == "model_2" && q.Get("series_id") == "series_2" && q.Get("body_id") == "body_1":
			raw(`{"vehicles":[{"id":"veh_2","make_id":"make_1","model_id":"model_2","series_id":"series_2",
				"body_id":"body_1","title":"2020 Toyota RAV4","price":31000}],"count":1}`)(w, r)
		default:
			raw(`{"vehicles":[],"count":0}`)(w, r)
		}
	})
	r.HandleFunc("/store/vehicles/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch mux.Vars(r)["id"] {
		case "veh_1":
			raw(`{"vehicle":{"id":"veh_1","make_id":"make_1","model_id":"model_1","series_id":"series_1",
				"title":"2018 Toyota Camry","price":29999,"images":["https://img.example.com/camry.jpg"]}}`)(w, r)
		case "veh_2":
			raw(`{"vehicle":{"id":"veh_2","make_id":"make_1","model_id":"model_2","series_id":"series_2",
				"body_id":"body_1","title":"2020 Toyota RAV4","price":31000}}`)(w, r)
		default:
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		}
	})
	r.HandleFunc("/store/wipers/kits", byParam("vehicle_id", map[string]string{
		"veh_1": `{"wiperKits":[
			{"id":"kit_front","title":"Front Kit","price":39.99,"images":["https://img.example.com/front.jpg"],
			 "vehicle_ids":["veh_1"],"compatibility":{"frontSet":true,"rear":false}},
			{"id":"kit_complete","title":"Complete Kit","description":"<p>All three <b>blades</b></p>","price":49.99,
			 "vehicle_ids":["veh_1"],"compatibility":{"frontSet":true,"rear":true}}
		],"count":2}`,
	}, `{"wiperKits":[],"count":0}`))

	return r
}

// newTestSite serves the storefront over the real client and catalog
// service against the fake commerce API.
func newTestSite(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	api := httptest.NewServer(commerceAPI())
	t.Cleanup(api.Close)

	commerce := client.NewCommerceClient(
		config.CommerceConfig{BaseURL: api.URL, Timeout: 5},
		config.CacheConfig{},
		nil,
	)
	catalog := service.NewService(commerce, nil, fallback.ModeOff, 0)

	srv, err := NewServer(config.ServerConfig{Host: "127.0.0.1", SessionTTL: 60}, catalog)
	require.NoError(t, err)
	t.Cleanup(srv.sessions.closeAll)

	site := httptest.NewServer(srv.Handler())
	t.Cleanup(site.Close)

	return srv, site
}

func getPage(t *testing.T, url string) (int, *goquery.Document) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, doc
}
