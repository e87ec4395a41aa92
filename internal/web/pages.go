package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"wipertech/storefront/internal/domain"
	"wipertech/storefront/internal/selector"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	pageHome     = "home.html"
	pageVehicle  = "vehicle.html"
	pageNotFound = "not_found.html"
)

var templateFuncs = template.FuncMap{
	"currency": domain.FormatUSD,
}

func loadPages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{pageHome, pageVehicle, pageNotFound} {
		t, err := template.New(name).
			Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Errorf("❌ Failed to render %s: %v", page, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type homePage struct {
	State selector.State
}

// handleHome renders the selector. The make, model, series and body query
// parameters are replayed against a fresh resolver so the cascade works
// without JavaScript: each form submit carries the whole selection.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.settleTimeout)
	defer cancel()

	res := selector.NewResolver(ctx, s.store, s.store.ListMakes(ctx, 1))
	defer res.Close()

	replaySelection(ctx, res, r.URL.Query())

	s.render(w, http.StatusOK, pageHome, homePage{State: res.Snapshot()})
}

// replaySelection applies the selection levels in order and stops at the
// first one the resolver rejects. A parameter left over from an earlier
// choice (a model of the previously selected make) is rejected as an
// unknown option, which is how changing an upper level resets the ones
// below it.
func replaySelection(ctx context.Context, res *selector.Resolver, query url.Values) {
	steps := []struct {
		param  string
		choose func(string) error
	}{
		{"make", res.SelectMake},
		{"model", res.SelectModel},
		{"series", res.SelectSeries},
		{"body", res.SelectBody},
	}

	for _, step := range steps {
		id := query.Get(step.param)
		if id == "" {
			continue
		}
		if err := step.choose(id); err != nil {
			log.Debugf("Stopped replaying selection at %s=%q: %v", step.param, id, err)
			return
		}
		if err := res.Wait(ctx); err != nil {
			log.Warnf("⚠️ Selector did not settle after %s=%q: %v", step.param, id, err)
			return
		}
	}
}

func (s *Server) handleVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	detail := s.store.VehicleDetail(r.Context(), id)
	if detail == nil {
		s.render(w, http.StatusNotFound, pageNotFound, nil)
		return
	}

	s.render(w, http.StatusOK, pageVehicle, detail)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusNotFound, pageNotFound, nil)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
