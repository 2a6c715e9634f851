package controller

import (
	"context"
	"errors"

	"github.com/minus-twelve/relay/errs"
	"github.com/minus-twelve/relay/repository"
	"github.com/minus-twelve/relay/response"
)

// Sessions logs users in and out of the current session.
type Sessions struct {
	action Action
	users  UserRepository
}

func NewSessions(users UserRepository, method string, header []string) *Sessions {
	return &Sessions{
		action: Resolve(method, header, SentinelNew),
		users:  users,
	}
}

func (c *Sessions) Name() string   { return "sessions" }
func (c *Sessions) Action() Action { return c.action }

func (c *Sessions) Execute(ctx context.Context, scope *Scope) error {
	switch c.action {
	case Create:
		return c.login(ctx, scope)
	case List:
		return c.whoami(scope)
	case NewForm:
		scope.Response.Merge(
			response.Payload(map[string]interface{}{"fields": []string{"name", "password"}}),
			response.Template("sessions/new"),
			response.Title("Log in"),
		)
		return nil
	case Delete:
		return c.logout(ctx, scope)
	case Show, EditForm, NotFound:
		return noRoute(scope, "session")
	default:
		return unsupported(scope)
	}
}

func (c *Sessions) login(ctx context.Context, scope *Scope) error {
	name := scope.Request.BodyString("name")
	password, _ := scope.Request.Parameters.Body["password"].(string)
	if name == "" || password == "" {
		return errs.ValidationError("name and password are required")
	}

	u, err := c.users.Authenticate(ctx, name, password)
	if errors.Is(err, repository.ErrInvalidCredentials) {
		return errs.UnauthenticatedError("invalid name or password")
	}
	if err != nil {
		return errs.InternalError("could not log in", err)
	}

	if err := logIn(ctx, scope, u); err != nil {
		return err
	}

	scope.Response.Merge(
		response.Message("logged in as "+u.Name),
		response.Payload(map[string]interface{}{"userId": u.ID, "userName": u.Name}),
	)
	return nil
}

func (c *Sessions) whoami(scope *Scope) error {
	userID, err := currentUser(scope)
	if err != nil {
		return err
	}
	scope.Response.Merge(response.Payload(map[string]interface{}{
		"userId":    userID,
		"userName":  scope.Session.GetString(SessionUserName),
		"expiresAt": scope.Session.ExpiresAt(),
	}))
	return nil
}

func (c *Sessions) logout(ctx context.Context, scope *Scope) error {
	if err := scope.Sessions.Destroy(ctx, scope.Session); err != nil {
		return errs.InternalError("could not end session", err)
	}
	scope.Response.Merge(
		response.Message("logged out"),
		response.Redirect("/"),
	)
	return nil
}
