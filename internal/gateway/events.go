package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/newsdesk/planning-coordinator/internal/coordinator"
	"github.com/newsdesk/planning-coordinator/internal/model"
)

// searchParamsKey is the query-string key search parameters are mirrored
// under, as JSON. Bookmarking the URL reproduces the search.
const searchParamsKey = "searchParams"

func parseSearchParams(r *http.Request) (model.SearchParams, error) {
	params := model.SearchParams{}

	raw := r.URL.Query().Get(searchParamsKey)
	if raw == "" {
		return params, nil
	}

	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return params, fmt.Errorf("malformed %s: %w", searchParamsKey, err)
	}

	return params, nil
}

type listResponse struct {
	Items        interface{}        `json:"_items"`
	SearchParams model.SearchParams `json:"searchParams"`
}

func (g *Gateway) searchEventsHandler(w http.ResponseWriter, r *http.Request) {
	params, err := parseSearchParams(r)
	if err != nil {
		g.badRequestResponse(w, r, err)
		return
	}

	events, err := g.coordinator.SearchEvents(r.Context(), params)
	if err != nil {
		g.backendErrorResponse(w, r, fmt.Errorf("search events: %w", err))
		return
	}

	if err := g.writeJSON(w, http.StatusOK, listResponse{Items: events, SearchParams: params}, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) loadMoreEventsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := g.coordinator.LoadMoreEvents(r.Context())
	if err != nil {
		g.backendErrorResponse(w, r, fmt.Errorf("load more events: %w", err))
		return
	}

	if err := g.writeJSON(w, http.StatusOK, map[string]interface{}{"_items": events}, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) getEventHandler(w http.ResponseWriter, r *http.Request) {
	event, err := g.coordinator.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	if err := g.writeJSON(w, http.StatusOK, event, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) eventActionDataHandler(w http.ResponseWriter, r *http.Request) {
	event, err := g.coordinator.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	q := r.URL.Query()
	data, err := g.coordinator.LoadEventDataForAction(r.Context(), event, coordinator.ActionDataOptions{
		LoadPlannings:              q.Get("load_plannings") == "true",
		Post:                       q.Get("post") == "true",
		LoadEvents:                 q.Get("load_events") != "false",
		LoadEveryRecurringPlanning: q.Get("load_every_recurring_planning") == "true",
	})
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	resp := map[string]interface{}{
		"event":             data.Event,
		"_recurring":        data.Series,
		"_plannings":        data.Plannings,
		"_relatedPlannings": data.RelatedPlannings,
		"_originalEvent":    data.Original,
	}
	if err := g.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) lockEventHandler(w http.ResponseWriter, r *http.Request) {
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

	event, err := g.coordinator.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	locked, err := g.coordinator.Lock(r.Context(), sess, event, req.LockAction)
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	if err := g.writeJSON(w, http.StatusOK, locked, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) unlockEventHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		g.serverErrorResponse(w, r, errCantRetrieveSession)
		return
	}

	event, err := g.coordinator.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	unlocked, err := g.coordinator.Unlock(r.Context(), sess, event)
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	if err := g.writeJSON(w, http.StatusOK, unlocked, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

type spikeRequest struct {
	Items []struct {
		ID           string             `json:"id"`
		UpdateMethod model.UpdateMethod `json:"update_method,omitempty"`
	} `json:"items"`
}

func (g *Gateway) spikeEventsHandler(w http.ResponseWriter, r *http.Request) {
	g.spikeEvents(w, r, false)
}

func (g *Gateway) unspikeEventsHandler(w http.ResponseWriter, r *http.Request) {
	g.spikeEvents(w, r, true)
}

func (g *Gateway) spikeEvents(w http.ResponseWriter, r *http.Request, unspike bool) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		g.serverErrorResponse(w, r, errCantRetrieveSession)
		return
	}

	req := &spikeRequest{}
	if err := g.readJSON(w, r, req); err != nil {
		g.badRequestResponse(w, r, err)
		return
	}

	events := make([]*model.Event, 0, len(req.Items))
	for _, item := range req.Items {
		event, err := g.coordinator.GetEvent(r.Context(), item.ID)
		if err != nil {
			g.backendErrorResponse(w, r, err)
			return
		}
		event.UpdateMethod = item.UpdateMethod
		events = append(events, event)
	}

	var updated []*model.Event
	var err error
	if unspike {
		updated, err = g.coordinator.Unspike(r.Context(), sess, events...)
	} else {
		updated, err = g.coordinator.Spike(r.Context(), sess, events...)
	}
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	if err := g.writeJSON(w, http.StatusOK, map[string]interface{}{"_items": updated}, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) cancelEventHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		g.serverErrorResponse(w, r, errCantRetrieveSession)
		return
	}

	req := &struct {
		UpdateMethod model.UpdateMethod `json:"update_method,omitempty"`
		Reason       string             `json:"reason,omitempty"`
	}{}
	if err := g.readJSON(w, r, req); err != nil {
		g.badRequestResponse(w, r, err)
		return
	}

	event, err := g.coordinator.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	updated, err := g.coordinator.Cancel(r.Context(), sess, event, coordinator.CancelUpdates{
		Method: req.UpdateMethod,
		Reason: req.Reason,
	})
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	if err := g.writeJSON(w, http.StatusOK, updated, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) postponeEventHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		g.serverErrorResponse(w, r, errCantRetrieveSession)
		return
	}

	req := &struct {
		UpdateMethod model.UpdateMethod `json:"update_method,omitempty"`
		Reason       string             `json:"reason,omitempty"`
	}{}
	if err := g.readJSON(w, r, req); err != nil {
		g.badRequestResponse(w, r, err)
		return
	}

	event, err := g.coordinator.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	updated, err := g.coordinator.Postpone(r.Context(), sess, event, coordinator.PostponeUpdates{
		Method: req.UpdateMethod,
		Reason: req.Reason,
	})
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	if err := g.writeJSON(w, http.StatusOK, updated, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) rescheduleEventHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		g.serverErrorResponse(w, r, errCantRetrieveSession)
		return
	}

	req := &struct {
		UpdateMethod model.UpdateMethod `json:"update_method,omitempty"`
		Dates        model.EventDates   `json:"dates"`
		Reason       string             `json:"reason,omitempty"`
	}{}
	if err := g.readJSON(w, r, req); err != nil {
		g.badRequestResponse(w, r, err)
		return
	}

	event, err := g.coordinator.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	result, err := g.coordinator.Reschedule(r.Context(), sess, event, coordinator.RescheduleUpdates{
		Method: req.UpdateMethod,
		Dates:  req.Dates,
		Reason: req.Reason,
	})
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	// The reschedule succeeded even when the replacement could not be
	// opened; that failure rides along as a secondary notice.
	resp := map[string]interface{}{"event": result.Event}
	if result.Replacement != nil {
		resp["replacement"] = result.Replacement
	}
	if result.FollowUpErr != nil {
		resp["follow_up_error"] = result.FollowUpErr.Error()
	}

	if err := g.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) updateTimeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		g.serverErrorResponse(w, r, errCantRetrieveSession)
		return
	}

	req := &struct {
		UpdateMethod model.UpdateMethod `json:"update_method,omitempty"`
		Dates        model.EventDates   `json:"dates"`
	}{}
	if err := g.readJSON(w, r, req); err != nil {
		g.badRequestResponse(w, r, err)
		return
	}

	event, err := g.coordinator.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	updated, err := g.coordinator.UpdateTime(r.Context(), sess, event, coordinator.TimeUpdates{
		Method: req.UpdateMethod,
		Dates:  req.Dates,
	})
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	if err := g.writeJSON(w, http.StatusOK, updated, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) updateRepetitionsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		g.serverErrorResponse(w, r, errCantRetrieveSession)
		return
	}

	req := &struct {
		UpdateMethod model.UpdateMethod `json:"update_method,omitempty"`
		Rule         model.RepeatRule   `json:"recurring_rule"`
	}{}
	if err := g.readJSON(w, r, req); err != nil {
		g.badRequestResponse(w, r, err)
		return
	}

	event, err := g.coordinator.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	updated, err := g.coordinator.UpdateRepetitions(r.Context(), sess, event, coordinator.RepetitionsUpdates{
		Method: req.UpdateMethod,
		Rule:   req.Rule,
	})
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	if err := g.writeJSON(w, http.StatusOK, updated, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}

func (g *Gateway) postEventHandler(w http.ResponseWriter, r *http.Request) {
	g.postEvent(w, r, false)
}

func (g *Gateway) unpostEventHandler(w http.ResponseWriter, r *http.Request) {
	g.postEvent(w, r, true)
}

func (g *Gateway) postEvent(w http.ResponseWriter, r *http.Request, unpost bool) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		g.serverErrorResponse(w, r, errCantRetrieveSession)
		return
	}

	req := &struct {
		UpdateMethod model.UpdateMethod `json:"update_method,omitempty"`
	}{}
	if err := g.readJSON(w, r, req); err != nil {
		g.badRequestResponse(w, r, err)
		return
	}

	event, err := g.coordinator.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	var updated *model.Event
	if unpost {
		updated, err = g.coordinator.Unpost(r.Context(), sess, event, req.UpdateMethod)
	} else {
		updated, err = g.coordinator.Post(r.Context(), sess, event, req.UpdateMethod)
	}
	if err != nil {
		g.backendErrorResponse(w, r, err)
		return
	}

	if err := g.writeJSON(w, http.StatusOK, updated, nil); err != nil {
		g.serverErrorResponse(w, r, err)
	}
}
