package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/minus-twelve/relay/errs"
	"github.com/minus-twelve/relay/repository"
	"github.com/minus-twelve/relay/response"
)

const minPasswordLength = 8

// Users handles sign-up and public profiles.
type Users struct {
	action Action
	repo   UserRepository
}

func NewUsers(repo UserRepository, method string, header []string) *Users {
	return &Users{
		action: Resolve(method, header, SentinelNew),
		repo:   repo,
	}
}

func (c *Users) Name() string   { return "users" }
func (c *Users) Action() Action { return c.action }

func (c *Users) Execute(ctx context.Context, scope *Scope) error {
	switch c.action {
	case Create:
		return c.create(ctx, scope)
	case NewForm:
		scope.Response.Merge(
			response.Payload(map[string]interface{}{"fields": []string{"name", "password"}}),
			response.Template("users/new"),
			response.Title("Sign up"),
		)
		return nil
	case Show:
		return c.show(ctx, scope)
	case EditForm, NotFound:
		return noRoute(scope, "user")
	default:
		return unsupported(scope)
	}
}

// create signs the user up and logs the current session in as them.
func (c *Users) create(ctx context.Context, scope *Scope) error {
	name := scope.Request.BodyString("name")
	password, _ := scope.Request.Parameters.Body["password"].(string)
	if name == "" {
		return errs.ValidationError("name is required")
	}
	if len(password) < minPasswordLength {
		return errs.ValidationError("password must be at least %d characters", minPasswordLength)
	}

	u, err := c.repo.Create(ctx, name, password)
	if errors.Is(err, repository.ErrDuplicate) {
		return errs.ValidationError("name %q is already taken", name)
	}
	if err != nil {
		return errs.InternalError("could not create user", err)
	}

	if err := logIn(ctx, scope, u); err != nil {
		return err
	}

	scope.Response.Merge(
		response.Status(http.StatusCreated),
		response.Message("welcome, "+u.Name),
		response.Payload(u),
		response.Template("users/show"),
	)
	return nil
}

func (c *Users) show(ctx context.Context, scope *Scope) error {
	id, err := idParam(scope, "user")
	if err != nil {
		return err
	}
	u, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "user", id)
	}
	scope.Response.Merge(
		response.Payload(u),
		response.Template("users/show"),
		response.Title(u.Name),
	)
	return nil
}
