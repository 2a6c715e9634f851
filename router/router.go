// Package router maps a controller name to a freshly built controller and
// runs it.
package router

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/minus-twelve/relay/controller"
	"github.com/minus-twelve/relay/errs"
	"github.com/minus-twelve/relay/request"
)

// Factory builds a controller for one request. It must not retain state
// across calls.
type Factory func(req *request.Request) controller.Controller

type Router struct {
	routes map[string]Factory
	logger *slog.Logger
}

// New returns a router over routes. Names not in routes resolve to
// controller.Missing.
func New(routes map[string]Factory, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	copied := make(map[string]Factory, len(routes))
	for name, f := range routes {
		copied[name] = f
	}
	return &Router{routes: copied, logger: logger}
}

// Deps are the persistence collaborators of the shipped controllers.
type Deps struct {
	Widgets controller.WidgetRepository
	Users   controller.UserRepository
}

// Default wires the closed set of shipped controllers.
func Default(deps Deps, logger *slog.Logger) *Router {
	return New(map[string]Factory{
		"": func(req *request.Request) controller.Controller {
			return controller.NewRoot(req.Method, req.Parameters.Header)
		},
		"widgets": func(req *request.Request) controller.Controller {
			return controller.NewWidgets(deps.Widgets, req.Method, req.Parameters.Header)
		},
		"users": func(req *request.Request) controller.Controller {
			return controller.NewUsers(deps.Users, req.Method, req.Parameters.Header)
		},
		"sessions": func(req *request.Request) controller.Controller {
			return controller.NewSessions(deps.Users, req.Method, req.Parameters.Header)
		},
	}, logger)
}

// Route builds the controller for req.
func (r *Router) Route(req *request.Request) controller.Controller {
	if f, ok := r.routes[req.Controller]; ok {
		return f(req)
	}
	return controller.NewMissing(req.Controller)
}

// Dispatch routes scope.Request, runs the selected action once and returns
// the controller that ran. A panic inside the action comes back as an
// Internal error.
func (r *Router) Dispatch(ctx context.Context, scope *controller.Scope) (c controller.Controller, err error) {
	c = r.Route(scope.Request)

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("action panicked",
				"controller", c.Name(),
				"action", c.Action(),
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
			err = errs.InternalError("action panicked", fmt.Errorf("%v", rec))
		}
	}()

	err = c.Execute(ctx, scope)
	return c, err
}
