package handlers

import (
	"context"
	stderrors "errors"
	"net/http"

	"view-router/internal/common/errors"
	"view-router/internal/common/logging"
	"view-router/internal/common/validation"
	"view-router/internal/navigation"
)

// NavigateRequest asks for navigation to a raw token, or to a route pattern
// formatted with params in the router's dialect.
type NavigateRequest struct {
	Token  string   `json:"token,omitempty" validate:"required_without=Route,excluded_with=Route"`
	Route  string   `json:"route,omitempty" validate:"required_without=Token"`
	Params []string `json:"params,omitempty"`
}

// NavigationResponse is a navigation result with its error flattened.
type NavigationResponse struct {
	*navigation.Result
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
}

// CurrentResponse describes what the router displays.
type CurrentResponse struct {
	Token        string                        `json:"token"`
	Route        string                        `json:"route,omitempty"`
	Parameters   []string                      `json:"parameters,omitempty"`
	Active       []navigation.ActiveController `json:"active"`
	RoutingError *RoutingErrorResponse         `json:"routing_error,omitempty"`
	Screen       interface{}                   `json:"screen,omitempty"`
}

// RoutingErrorResponse is the last token absorbed by the error route.
type RoutingErrorResponse struct {
	Token string `json:"token"`
	Error string `json:"error"`
	Type  string `json:"type"`
}

// RouteResponse lists one registered route.
type RouteResponse struct {
	Route      string   `json:"route"`
	Shell      string   `json:"shell"`
	Pattern    string   `json:"pattern"`
	Controller string   `json:"controller"`
	Selector   string   `json:"selector"`
	Setters    []string `json:"setters,omitempty"`
}

// GetCurrent returns the current route
// @Summary Get the current route
// @Tags navigation
// @Produce json
// @Success 200 {object} CurrentResponse
// @Router /navigation/current [get]
func (h *Handlers) GetCurrent(w http.ResponseWriter, r *http.Request) {
	resp := CurrentResponse{
		Token:  h.history.CurrentToken(),
		Active: h.router.Active(),
	}
	if resp.Active == nil {
		resp.Active = []navigation.ActiveController{}
	}
	if tok, ok := h.router.CurrentRoute(); ok {
		resp.Route = tok.Route()
		resp.Parameters = tok.ParameterValues
	}
	if rerr := h.router.LastRoutingError(); rerr != nil {
		resp.RoutingError = &RoutingErrorResponse{
			Token: rerr.Token,
			Error: rerr.Err.Error(),
			Type:  string(errors.GetType(rerr.Err)),
		}
	}
	if h.screen != nil {
		resp.Screen = h.screen()
	}

	writeJSON(w, http.StatusOK, resp)
}

// Navigate queues a navigation and waits for it to settle
// @Summary Navigate to a token or route
// @Tags navigation
// @Accept json
// @Produce json
// @Param request body NavigateRequest true "Target"
// @Success 200 {object} NavigationResponse
// @Failure 400 {object} errorResponse
// @Failure 422 {object} NavigationResponse "Navigation failed"
// @Failure 503 {object} NavigationResponse "Router not running"
// @Router /navigation [post]
func (h *Handlers) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var nav *navigation.Navigation
	if req.Token != "" {
		nav = h.router.Navigate(req.Token)
	} else {
		var err error
		if nav, err = h.router.Route(req.Route, req.Params...); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	h.await(w, r, nav)
}

// Back navigates to the previous history entry
// @Summary Navigate back
// @Tags navigation
// @Produce json
// @Success 200 {object} NavigationResponse
// @Failure 404 {object} errorResponse "No previous entry"
// @Router /navigation/back [post]
func (h *Handlers) Back(w http.ResponseWriter, r *http.Request) {
	token, ok := h.history.Back()
	if !ok {
		writeError(w, http.StatusNotFound, errors.NotFoundError("previous history entry"))
		return
	}
	if res := h.await(w, r, h.router.Navigate(token)); res != nil && res.Err != nil {
		h.history.Forward()
	}
}

// Forward navigates to the next history entry
// @Summary Navigate forward
// @Tags navigation
// @Produce json
// @Success 200 {object} NavigationResponse
// @Failure 404 {object} errorResponse "No next entry"
// @Router /navigation/forward [post]
func (h *Handlers) Forward(w http.ResponseWriter, r *http.Request) {
	token, ok := h.history.Forward()
	if !ok {
		writeError(w, http.StatusNotFound, errors.NotFoundError("next history entry"))
		return
	}
	if res := h.await(w, r, h.router.Navigate(token)); res != nil && res.Err != nil {
		h.history.Back()
	}
}

// GetHistory returns the history entries, oldest first
// @Summary Get navigation history
// @Tags navigation
// @Produce json
// @Router /navigation/history [get]
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries := h.history.Entries()
	if entries == nil {
		entries = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current": h.history.CurrentToken(),
		"entries": entries,
	})
}

// GetRoutes lists the registered routes in match order
// @Summary List routes
// @Tags navigation
// @Produce json
// @Success 200 {array} RouteResponse
// @Router /navigation/routes [get]
func (h *Handlers) GetRoutes(w http.ResponseWriter, r *http.Request) {
	routes := h.router.Table().Routes()
	out := make([]RouteResponse, 0, len(routes))
	for _, rt := range routes {
		resp := RouteResponse{
			Route:      "/" + rt.ShellID + rt.Pattern(),
			Shell:      rt.ShellID,
			Pattern:    rt.RouteID,
			Controller: rt.Controller.String(),
			Selector:   rt.Selector,
		}
		for _, acc := range rt.ParameterAcceptors {
			resp.Setters = append(resp.Setters, acc.Setter)
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

// await writes the result of nav. It returns nil when nav did not complete
// in time.
func (h *Handlers) await(w http.ResponseWriter, r *http.Request, nav *navigation.Navigation) *navigation.Result {
	ctx, cancel := context.WithTimeout(r.Context(), navigateTimeout)
	defer cancel()

	res, err := nav.Wait(ctx)
	if res == nil {
		h.logger.Warn("navigation did not complete", logging.String("token", nav.Token), logging.Err(err))
		writeError(w, http.StatusGatewayTimeout, errors.InternalError("navigation did not complete", err))
		return nil
	}

	resp := NavigationResponse{Result: res}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		resp.ErrorType = string(errors.GetType(err))
		switch {
		case stderrors.Is(err, navigation.ErrNotRunning), stderrors.Is(err, navigation.ErrStopped):
			status = http.StatusServiceUnavailable
		case errors.IsFatal(err):
			status = http.StatusUnprocessableEntity
		}
	}
	writeJSON(w, status, resp)
	return res
}
