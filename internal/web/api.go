package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"wipertech/storefront/internal/selector"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
}

type selectRequest struct {
	ID string `json:"id"`
}

// selectorResponse is a selector snapshot plus the derived fields a client
// would otherwise have to compute.
type selectorResponse struct {
	SessionID string `json:"sessionId"`
	selector.State
	Phase             selector.Phase `json:"phase"`
	SelectionComplete bool           `json:"selectionComplete"`
	Loading           bool           `json:"loading"`
	VehicleURL        string         `json:"vehicleUrl,omitempty"`
}

func newSelectorResponse(sessionID string, state selector.State) selectorResponse {
	resp := selectorResponse{
		SessionID:         sessionID,
		State:             state,
		Phase:             state.Phase(),
		SelectionComplete: state.SelectionComplete(),
		Loading:           state.Loading(),
	}
	if state.Vehicle != nil {
		resp.VehicleURL = "/vehicle/" + state.Vehicle.ID
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("❌ Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) handleMakes(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}

	writeJSON(w, http.StatusOK, s.store.ListMakes(r.Context(), page))
}

func (s *Server) handleVehicleJSON(w http.ResponseWriter, r *http.Request) {
	detail := s.store.VehicleDetail(r.Context(), mux.Vars(r)["id"])
	if detail == nil {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreateSelector(w http.ResponseWriter, r *http.Request) {
	makes := s.store.ListMakes(r.Context(), 1)

	// Session fetches outlive this request.
	res := selector.NewResolver(context.Background(), s.store, makes)
	sid := s.sessions.create(res)

	log.Debugf("Created selector session %s", sid)
	writeJSON(w, http.StatusCreated, newSelectorResponse(sid, res.Snapshot()))
}

func (s *Server) handleGetSelector(w http.ResponseWriter, r *http.Request) {
	sid := mux.Vars(r)["sid"]
	res, ok := s.sessions.get(sid)
	if !ok {
		writeError(w, http.StatusNotFound, "selector session not found")
		return
	}

	s.maybeWait(r, res)
	writeJSON(w, http.StatusOK, newSelectorResponse(sid, res.Snapshot()))
}

func (s *Server) handleDeleteSelector(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.remove(mux.Vars(r)["sid"]) {
		writeError(w, http.StatusNotFound, "selector session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sid := vars["sid"]

	res, ok := s.sessions.get(sid)
	if !ok {
		writeError(w, http.StatusNotFound, "selector session not found")
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	switch vars["level"] {
	case "make":
		err = res.SelectMake(req.ID)
	case "model":
		err = res.SelectModel(req.ID)
	case "series":
		err = res.SelectSeries(req.ID)
	case "body":
		err = res.SelectBody(req.ID)
	}

	switch {
	case errors.Is(err, selector.ErrClosed):
		writeError(w, http.StatusNotFound, "selector session not found")
		return
	case err != nil:
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	s.maybeWait(r, res)
	writeJSON(w, http.StatusOK, newSelectorResponse(sid, res.Snapshot()))
}

// maybeWait blocks until the session's fetches settle when the request
// asks for it with ?wait=true. A timeout still returns the current state.
func (s *Server) maybeWait(r *http.Request, res *selector.Resolver) {
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); !wait {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.settleTimeout)
	defer cancel()

	if err := res.Wait(ctx); err != nil {
		log.Warnf("⚠️ Selector session did not settle: %v", err)
	}
}
