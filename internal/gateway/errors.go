package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/newsdesk/planning-coordinator/internal/model"
)

func (g *Gateway) logError(_ *http.Request, err error) {
	g.logger.Errorw("server error", "error", err)
}

func (g *Gateway) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	data := map[string]interface{}{"error": message}

	if err := g.writeJSON(w, status, data, nil); err != nil {
		g.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (g *Gateway) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	g.logError(r, err)

	message := "the server encountered a problem and could not process your request"
	g.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (g *Gateway) clientErrorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	g.logger.Debugw("client error", "err", message)
	g.errorResponse(w, r, status, message)
}

func (g *Gateway) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	g.clientErrorResponse(w, r, http.StatusNotFound, message)
}

func (g *Gateway) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	g.clientErrorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (g *Gateway) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	g.clientErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (g *Gateway) unauthorizedResponse(w http.ResponseWriter, r *http.Request, err error) {
	g.clientErrorResponse(w, r, http.StatusUnauthorized, err.Error())
}

// backendErrorResponse relays an action failure. The backend's envelope
// passes through with its own status; anything else is a server error.
func (g *Gateway) backendErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNoRecord) {
		g.notFoundResponse(w, r)
		return
	}

	apiErr := &model.APIError{}
	if errors.As(err, &apiErr) {
		g.clientErrorResponse(w, r, apiErr.StatusCode, apiErr.Error())
		return
	}

	g.serverErrorResponse(w, r, err)
}
