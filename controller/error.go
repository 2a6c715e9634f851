package controller

import (
	"context"

	"github.com/minus-twelve/relay/errs"
)

// Missing stands in for an unknown controller name and always resolves to
// NotFound.
type Missing struct {
	name string
}

func NewMissing(name string) *Missing {
	return &Missing{name: name}
}

func (c *Missing) Name() string   { return c.name }
func (c *Missing) Action() Action { return NotFound }

func (c *Missing) Execute(context.Context, *Scope) error {
	return errs.NotFoundError("no controller named %q", c.name)
}
