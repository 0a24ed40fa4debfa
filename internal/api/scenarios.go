package api

import (
	"net/http"
	"strings"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/idhash"
)

type saveScenarioRequest struct {
	Name   string                  `json:"name"`
	Params domain.SimulationParams `json:"params"`
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.scenarios.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, scenarios)
}

// handleSaveScenario simulates the submitted parameters once to record the
// median final wealth next to the saved scenario.
func (s *Server) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	req := saveScenarioRequest{Params: domain.DefaultParams()}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	params := req.Params
	params.Sensitivity = false
	result, err := s.orch.Run(r.Context(), params)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// Pin the resolved seed so later runs reproduce the summary value.
	stored := req.Params
	stored.Seed = result.Seed

	now := s.now()
	scenario := &domain.Scenario{
		ID:           idhash.ComputeScenarioID(req.Name, now.UnixMilli()),
		Name:         req.Name,
		Params:       stored,
		SummaryValue: result.Summary.Median,
		CreatedAt:    now,
	}
	if err := s.scenarios.Save(r.Context(), scenario); err != nil {
		writeStoreError(w, err)
		return
	}

	s.logf("Saved scenario %s (%s): median=%.2f", scenario.ID, scenario.Name, scenario.SummaryValue)
	writeJSONStatus(w, http.StatusCreated, scenario)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	id, ok := scenarioID(w, r)
	if !ok {
		return
	}
	scenario, err := s.scenarios.Load(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, scenario)
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	id, ok := scenarioID(w, r)
	if !ok {
		return
	}
	if err := s.scenarios.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRunScenario simulates a saved scenario. The stored seed is reused,
// so a scenario saved with a fixed seed reproduces its numbers.
func (s *Server) handleRunScenario(w http.ResponseWriter, r *http.Request) {
	id, ok := scenarioID(w, r)
	if !ok {
		return
	}
	scenario, err := s.scenarios.Load(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if !validFormat(format) {
		writeError(w, http.StatusBadRequest, "unknown format")
		return
	}

	result, err := s.orch.Run(r.Context(), scenario.Params)
	if err != nil {
		s.logf("Scenario %s run error: %v", id, err)
		writeStoreError(w, err)
		return
	}
	s.writeResult(r.Context(), w, result, format)
}

// scenarioID reads the path id and rejects values that are not identifiers.
func scenarioID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := idhash.Decode(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid scenario id")
		return "", false
	}
	return id, true
}
