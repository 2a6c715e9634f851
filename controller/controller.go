// Package controller selects and runs one action per request.
//
// A controller picks its action when it is constructed, from the request
// method and the shape of the header parameters, before any I/O. Each
// instance serves exactly one request.
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/minus-twelve/relay/errs"
	"github.com/minus-twelve/relay/repository"
	"github.com/minus-twelve/relay/request"
	"github.com/minus-twelve/relay/response"
	"github.com/minus-twelve/relay/types"
)

// Action names a unit of behavior chosen from method and path shape.
type Action string

const (
	Create    Action = "create"
	List      Action = "list"
	NewForm   Action = "new-item-form"
	Show      Action = "show"
	EditForm  Action = "edit-form"
	Edit      Action = "edit"
	Delete    Action = "delete"
	BadMethod Action = "error"
	NotFound  Action = "not-found"
)

// SentinelNew is the segment that selects NewForm in a one-segment GET.
const SentinelNew = "new"

// Session keys written by the sessions and users controllers.
const (
	SessionUserID   = "userId"
	SessionUserName = "userName"
)

// Resolve is the generic action table. sentinel, when non-empty, turns a
// one-segment GET whose segment equals it into NewForm. A GET with more than
// two segments has no action and resolves to NotFound.
func Resolve(method string, header []string, sentinel string) Action {
	switch method {
	case http.MethodPost:
		return Create
	case http.MethodGet:
		switch len(header) {
		case 0:
			return List
		case 1:
			if sentinel != "" && header[0] == sentinel {
				return NewForm
			}
			return Show
		case 2:
			return EditForm
		default:
			return NotFound
		}
	case http.MethodPut, http.MethodPatch:
		return Edit
	case http.MethodDelete:
		return Delete
	default:
		return BadMethod
	}
}

// SessionControl ends a session before its expiry or moves its data to a
// fresh id.
type SessionControl interface {
	Destroy(ctx context.Context, session *types.Session) error
	Rotate(ctx context.Context, session *types.Session) (*types.Session, error)
}

// Scope is everything an action may touch. It belongs to one request. An
// action that rotates the session replaces Session, and the caller must
// issue the cookie for whatever Session holds afterwards.
type Scope struct {
	Request  *request.Request
	Session  *types.Session
	Response *response.Builder
	Sessions SessionControl
}

// Controller runs the action it resolved at construction.
type Controller interface {
	Name() string
	Action() Action
	Execute(ctx context.Context, scope *Scope) error
}

type WidgetRepository interface {
	Create(ctx context.Context, w *repository.Widget) error
	FindByID(ctx context.Context, id int64) (*repository.Widget, error)
	FindAll(ctx context.Context) ([]repository.Widget, error)
	Save(ctx context.Context, w *repository.Widget) error
	Remove(ctx context.Context, id int64) error
}

type UserRepository interface {
	Create(ctx context.Context, name, password string) (*repository.User, error)
	FindByID(ctx context.Context, id int64) (*repository.User, error)
	Authenticate(ctx context.Context, name, password string) (*repository.User, error)
}

func unsupported(scope *Scope) error {
	return errs.MethodNotAllowedError(scope.Request.Method)
}

// noRoute reports a path shape the controller does not serve.
func noRoute(scope *Scope, name string) error {
	return errs.NotFoundError("no %s route for %v", name, scope.Request.Parameters.Header)
}

// logIn rotates the session to a fresh id before marking it as belonging to
// u, so an id handed out before login never carries the login.
func logIn(ctx context.Context, scope *Scope, u *repository.User) error {
	fresh, err := scope.Sessions.Rotate(ctx, scope.Session)
	if err != nil {
		return errs.InternalError("could not start session", err)
	}
	scope.Session = fresh
	scope.Session.Set(SessionUserID, u.ID)
	scope.Session.Set(SessionUserName, u.Name)
	return nil
}

// currentUser returns the user id stored in the session or an
// Unauthenticated error.
func currentUser(scope *Scope) (int64, error) {
	if scope.Session != nil {
		if v, ok := scope.Session.Get(SessionUserID); ok {
			if id, ok := toInt64(v); ok && id > 0 {
				return id, nil
			}
		}
	}
	return 0, errs.UnauthenticatedError("login required")
}

// toInt64 accepts the numeric shapes a value takes after a trip through a
// session store.
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func idParam(scope *Scope, what string) (int64, error) {
	seg, ok := scope.Request.Segment(0)
	if !ok {
		return 0, errs.ValidationError("%s id is required", what)
	}
	id, err := strconv.ParseInt(seg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.ValidationError("invalid %s id %q", what, seg)
	}
	return id, nil
}

// lookupErr turns a persistence error into the taxonomy.
func lookupErr(err error, what string, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errs.NotFoundError("%s %d not found", what, id)
	}
	return errs.InternalError("could not load "+what, err)
}
