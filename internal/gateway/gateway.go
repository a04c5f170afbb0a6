// Package gateway is the HTTP surface UI clients attach to. It is a thin
// layer: handlers parse, call the coordinator and render; every decision
// about locks, scopes and store state lives below it.
package gateway

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/newsdesk/planning-coordinator/internal/coordinator"
	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/newsdesk/planning-coordinator/internal/session"
	"go.uber.org/zap"
)

type eventsCoordinator interface {
	Lock(ctx context.Context, sess session.Context, event *model.Event, action string) (*model.Event, error)
	Unlock(ctx context.Context, sess session.Context, event *model.Event) (*model.Event, error)
	LockPlanning(ctx context.Context, sess session.Context, planning *model.Planning, action string) (*model.Planning, error)
	UnlockPlanning(ctx context.Context, sess session.Context, planning *model.Planning) (*model.Planning, error)

	GetEvent(ctx context.Context, id string) (*model.Event, error)
	GetPlanning(ctx context.Context, id string) (*model.Planning, error)
	SearchEvents(ctx context.Context, params model.SearchParams) ([]*model.Event, error)
	LoadMoreEvents(ctx context.Context) ([]*model.Event, error)
	SearchPlannings(ctx context.Context, params model.SearchParams) ([]*model.Planning, error)
	LoadEventDataForAction(ctx context.Context, event *model.Event, opts coordinator.ActionDataOptions) (*model.EventContext, error)

	Spike(ctx context.Context, sess session.Context, events ...*model.Event) ([]*model.Event, error)
	Unspike(ctx context.Context, sess session.Context, events ...*model.Event) ([]*model.Event, error)
	SpikePlanning(ctx context.Context, sess session.Context, plannings ...*model.Planning) ([]*model.Planning, error)
	UnspikePlanning(ctx context.Context, sess session.Context, plannings ...*model.Planning) ([]*model.Planning, error)
	Cancel(ctx context.Context, sess session.Context, original *model.Event, upd coordinator.CancelUpdates) (*model.Event, error)
	Postpone(ctx context.Context, sess session.Context, original *model.Event, upd coordinator.PostponeUpdates) (*model.Event, error)
	Reschedule(ctx context.Context, sess session.Context, original *model.Event, upd coordinator.RescheduleUpdates) (*coordinator.RescheduleResult, error)
	UpdateTime(ctx context.Context, sess session.Context, original *model.Event, upd coordinator.TimeUpdates) (*model.Event, error)
	UpdateRepetitions(ctx context.Context, sess session.Context, original *model.Event, upd coordinator.RepetitionsUpdates) (*model.Event, error)
	Post(ctx context.Context, sess session.Context, original *model.Event, method model.UpdateMethod) (*model.Event, error)
	Unpost(ctx context.Context, sess session.Context, original *model.Event, method model.UpdateMethod) (*model.Event, error)
}

type sessionParser interface {
	Parse(token string) (session.Context, error)
}

type Gateway struct {
	handler http.Handler
	logger  *zap.SugaredLogger

	sessions    sessionParser
	coordinator eventsCoordinator

	upgrader websocket.Upgrader
	connsMu  connGuard
}

func NewGateway(
	logger *zap.SugaredLogger,
	sessions sessionParser,
	coord eventsCoordinator,
) *Gateway {
	g := &Gateway{
		logger:      logger,
		sessions:    sessions,
		coordinator: coord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	g.connsMu.conns = map[*websocket.Conn]struct{}{}
	g.setupHandler()

	return g
}

func (g *Gateway) setupHandler() {
	middleware.DefaultLogger = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.logger.Debugw(r.URL.RequestURI(),
				"addr", r.RemoteAddr,
				"protocol", r.Proto,
				"method", r.Method,
			)
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewMux()

	r.Use(middleware.Logger, middleware.Recoverer, middleware.StripSlashes)
	r.NotFound(g.notFoundResponse)
	r.MethodNotAllowed(g.methodNotAllowedResponse)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.With(g.auth).Route("/", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", g.searchEventsHandler)
			r.Post("/load_more", g.loadMoreEventsHandler)
			r.Post("/spike", g.spikeEventsHandler)
			r.Post("/unspike", g.unspikeEventsHandler)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", g.getEventHandler)
				r.Get("/action_data", g.eventActionDataHandler)
				r.Post("/lock", g.lockEventHandler)
				r.Post("/unlock", g.unlockEventHandler)
				r.Post("/cancel", g.cancelEventHandler)
				r.Post("/postpone", g.postponeEventHandler)
				r.Post("/reschedule", g.rescheduleEventHandler)
				r.Post("/update_time", g.updateTimeHandler)
				r.Post("/update_repetitions", g.updateRepetitionsHandler)
				r.Post("/post", g.postEventHandler)
				r.Post("/unpost", g.unpostEventHandler)
			})
		})

		r.Route("/planning", func(r chi.Router) {
			r.Get("/", g.searchPlanningsHandler)
			r.Post("/spike", g.spikePlanningsHandler)
			r.Post("/unspike", g.unspikePlanningsHandler)

			r.Route("/{id}", func(r chi.Router) {
				r.Post("/lock", g.lockPlanningHandler)
				r.Post("/unlock", g.unlockPlanningHandler)
			})
		})

		r.Get("/ws", g.wsHandler)
	})

	g.handler = r
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.handler.ServeHTTP(w, r)
}
