package gateway

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/newsdesk/planning-coordinator/internal/model"
)

func (g *Gateway) searchPlanningsHandler(w http.ResponseWriter, r *http.Request) {
	params, err := parseSearchParams(r)
	if err != nil {
		g.badRequestResponse(w, r, err)
		return
	}

	plannings, err := g.coordinator.SearchPlannings(r.Context(), params)
	if err != nil {
		g.backendErrorResponse(w, r, fmt.Errorf("search plannings: %w", err))
		return
	}

	if err := g.writeJSON(w, http.StatusOK, listResponse{Items: plannings, SearchParams: params}, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) spikePlanningsHandler(w http.ResponseWriter, r *http.Request) {
	g.spikePlannings(w, r, false)
}

func (g *Gateway) unspikePlanningsHandler(w http.ResponseWriter, r *http.Request) {
	g.spikePlannings(w, r, true)
}

func (g *Gateway) spikePlannings(w http.ResponseWriter, r *http.Request, unspike bool) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		g.serverErrorResponse(w, r, errCantRetrieveSession)
		return
	}

	req := &struct {
		IDs []string `json:"ids"`
	}{}
	if err := g.readJSON(w, r, req); err != nil {
		g.badRequestResponse(w, r, err)
		return
	}

	plannings := make([]*model.Planning, 0, len(req.IDs))
	for _, id := range req.IDs {
		planning, err := g.coordinator.GetPlanning(r.Context(), id)
		if err != nil {
			g.backendErrorResponse(w, r, err)
			return
		}
		plannings = append(plannings, planning)
	}

	var updated []*model.Planning
	var err error
	if unspike {
		updated, err = g.coordinator.UnspikePlanning(r.Context(), sess, plannings...)
	} else {
		updated, err = g.coordinator.SpikePlanning(r.Context(), sess, plannings...)
	}
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	if err := g.writeJSON(w, http.StatusOK, map[string]interface{}{"_items": updated}, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) lockPlanningHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		g.serverErrorResponse(w, r, errCantRetrieveSession)
		return
	}

	req := &struct {
		LockAction string `json:"lock_action"`
	}{}
	if err := g.readJSON(w, r, req); err != nil {
		g.badRequestResponse(w, r, err)
		return
	}

	planning, err := g.coordinator.GetPlanning(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	locked, err := g.coordinator.LockPlanning(r.Context(), sess, planning, req.LockAction)
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	if err := g.writeJSON(w, http.StatusOK, locked, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) unlockPlanningHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		g.serverErrorResponse(w, r, errCantRetrieveSession)
		return
	}

	planning, err := g.coordinator.GetPlanning(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	unlocked, err := g.coordinator.UnlockPlanning(r.Context(), sess, planning)
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	if err := g.writeJSON(w, http.StatusOK, unlocked, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}
