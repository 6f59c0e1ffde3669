package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

// Show is a TV entry served by the fake TMDB API.
type Show struct {
	ID           int64
	Name         string
	FirstAirDate string
	Seasons      int
}

// NewTMDBServer serves /search/tv, /tv/{id} and /configuration for the given
// shows. Search matches on a case-insensitive substring of the name.
func NewTMDBServer(t testing.TB, shows ...Show) *httptest.Server {
	t.Helper()

	router := mux.NewRouter()
	router.HandleFunc("/configuration", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"images": map[string]any{}})
	}).Methods(http.MethodGet)

	router.HandleFunc("/search/tv", func(w http.ResponseWriter, r *http.Request) {
		query := strings.ToLower(r.URL.Query().Get("query"))
		results := []map[string]any{}
		for _, show := range shows {
			if strings.Contains(strings.ToLower(show.Name), query) || strings.Contains(query, strings.ToLower(show.Name)) {
				results = append(results, map[string]any{
					"id":             show.ID,
					"name":           show.Name,
					"original_name":  show.Name,
					"first_air_date": show.FirstAirDate,
				})
			}
		}
		writeJSON(w, map[string]any{"page": 1, "results": results, "total_results": len(results), "total_pages": 1})
	}).Methods(http.MethodGet)

	router.HandleFunc("/tv/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		for _, show := range shows {
			if show.ID == id {
				writeJSON(w, map[string]any{
					"id":                show.ID,
					"name":              show.Name,
					"original_name":     show.Name,
					"first_air_date":    show.FirstAirDate,
					"number_of_seasons": show.Seasons,
				})
				return
			}
		}
		http.NotFound(w, r)
	}).Methods(http.MethodGet)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
