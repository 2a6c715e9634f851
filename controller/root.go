package controller

import (
	"context"

	"github.com/minus-twelve/relay/response"
)

const sessionVisits = "visits"

// Root serves "/". It counts visits in the session.
type Root struct {
	action Action
}

func NewRoot(method string, header []string) *Root {
	return &Root{action: Resolve(method, header, "")}
}

func (c *Root) Name() string   { return "" }
func (c *Root) Action() Action { return c.action }

func (c *Root) Execute(_ context.Context, scope *Scope) error {
	if c.action != List {
		return unsupported(scope)
	}

	var visits int64
	if v, ok := scope.Session.Get(sessionVisits); ok {
		visits, _ = toInt64(v)
	}
	visits++
	scope.Session.Set(sessionVisits, visits)

	payload := map[string]interface{}{"visits": visits}
	if scope.Session.Exists(SessionUserName) {
		payload["userName"] = scope.Session.GetString(SessionUserName)
	}
	scope.Response.Merge(
		response.Message("welcome"),
		response.Payload(payload),
		response.Template("home"),
		response.Title("Home"),
	)
	return nil
}
