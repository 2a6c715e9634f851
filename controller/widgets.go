package controller

import (
	"context"
	"net/http"

	"github.com/minus-twelve/relay/errs"
	"github.com/minus-twelve/relay/repository"
	"github.com/minus-twelve/relay/response"
)

// Widgets follows the generic table with the "new" sentinel. Mutations need
// a logged-in owner.
type Widgets struct {
	action Action
	repo   WidgetRepository
}

func NewWidgets(repo WidgetRepository, method string, header []string) *Widgets {
	return &Widgets{
		action: Resolve(method, header, SentinelNew),
		repo:   repo,
	}
}

func (c *Widgets) Name() string   { return "widgets" }
func (c *Widgets) Action() Action { return c.action }

func (c *Widgets) Execute(ctx context.Context, scope *Scope) error {
	switch c.action {
	case Create:
		return c.create(ctx, scope)
	case List:
		return c.list(ctx, scope)
	case NewForm:
		return c.newForm(scope)
	case Show:
		return c.show(ctx, scope)
	case EditForm:
		return c.editForm(ctx, scope)
	case Edit:
		return c.edit(ctx, scope)
	case Delete:
		return c.delete(ctx, scope)
	case NotFound:
		return noRoute(scope, "widget")
	default:
		return unsupported(scope)
	}
}

func (c *Widgets) create(ctx context.Context, scope *Scope) error {
	userID, err := currentUser(scope)
	if err != nil {
		return err
	}

	name := scope.Request.BodyString("name")
	if name == "" {
		return errs.ValidationError("name is required")
	}

	w := &repository.Widget{
		Name:    name,
		Color:   scope.Request.BodyString("color"),
		OwnerID: userID,
	}
	if err := c.repo.Create(ctx, w); err != nil {
		return errs.InternalError("could not create widget", err)
	}

	scope.Response.Merge(
		response.Status(http.StatusCreated),
		response.Message("widget created"),
		response.Payload(w),
		response.Template("widgets/show"),
	)
	return nil
}

func (c *Widgets) list(ctx context.Context, scope *Scope) error {
	widgets, err := c.repo.FindAll(ctx)
	if err != nil {
		return errs.InternalError("could not list widgets", err)
	}
	scope.Response.Merge(
		response.Payload(map[string]interface{}{"widgets": widgets}),
		response.Template("widgets/index"),
		response.Title("Widgets"),
	)
	return nil
}

func (c *Widgets) newForm(scope *Scope) error {
	if _, err := currentUser(scope); err != nil {
		return err
	}
	scope.Response.Merge(
		response.Payload(map[string]interface{}{"fields": []string{"name", "color"}}),
		response.Template("widgets/new"),
		response.Title("New widget"),
	)
	return nil
}

func (c *Widgets) show(ctx context.Context, scope *Scope) error {
	w, err := c.load(ctx, scope)
	if err != nil {
		return err
	}
	scope.Response.Merge(
		response.Payload(w),
		response.Template("widgets/show"),
		response.Title(w.Name),
	)
	return nil
}

func (c *Widgets) editForm(ctx context.Context, scope *Scope) error {
	w, err := c.loadOwned(ctx, scope)
	if err != nil {
		return err
	}
	scope.Response.Merge(
		response.Payload(w),
		response.Template("widgets/edit"),
		response.Title("Edit "+w.Name),
	)
	return nil
}

func (c *Widgets) edit(ctx context.Context, scope *Scope) error {
	w, err := c.loadOwned(ctx, scope)
	if err != nil {
		return err
	}

	body := scope.Request.Parameters.Body
	if _, ok := body["name"]; ok {
		name := scope.Request.BodyString("name")
		if name == "" {
			return errs.ValidationError("name must not be empty")
		}
		w.Name = name
	}
	if _, ok := body["color"]; ok {
		w.Color = scope.Request.BodyString("color")
	}

	if err := c.repo.Save(ctx, w); err != nil {
		return lookupErr(err, "widget", w.ID)
	}
	scope.Response.Merge(
		response.Message("widget updated"),
		response.Payload(w),
		response.Template("widgets/show"),
	)
	return nil
}

func (c *Widgets) delete(ctx context.Context, scope *Scope) error {
	w, err := c.loadOwned(ctx, scope)
	if err != nil {
		return err
	}
	if err := c.repo.Remove(ctx, w.ID); err != nil {
		return lookupErr(err, "widget", w.ID)
	}
	scope.Response.Merge(
		response.Message("widget deleted"),
		response.Payload(map[string]interface{}{"id": w.ID}),
	)
	return nil
}

func (c *Widgets) load(ctx context.Context, scope *Scope) (*repository.Widget, error) {
	id, err := idParam(scope, "widget")
	if err != nil {
		return nil, err
	}
	w, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "widget", id)
	}
	return w, nil
}

// loadOwned authenticates before touching the id so an anonymous caller
// always sees 401.
func (c *Widgets) loadOwned(ctx context.Context, scope *Scope) (*repository.Widget, error) {
	userID, err := currentUser(scope)
	if err != nil {
		return nil, err
	}
	w, err := c.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	if w.OwnerID != userID {
		return nil, errs.ForbiddenError("widget belongs to another user")
	}
	return w, nil
}
