package pipeline

import (
	"io"

	"github.com/danielgtaylor/huma/v2"
)

// statusHookContext lets a response stage act right before the status line
// and headers are written.
type statusHookContext struct {
	humaContext
	hook func(ctx huma.Context, status int) int
}

func (c *statusHookContext) SetStatus(status int) {
	c.humaContext.SetStatus(c.hook(c.humaContext, status))
}

func (c *statusHookContext) Unwrap() huma.Context { return c.humaContext }

// bodyContext replaces the request body seen by inner stages.
type bodyContext struct {
	humaContext
	body io.Reader
}

func (c *bodyContext) BodyReader() io.Reader { return c.body }

func (c *bodyContext) Unwrap() huma.Context { return c.humaContext }

// humaContext names the embedded huma.Context so that its Context method is
// promoted instead of being shadowed by a field of the same name.
type humaContext = huma.Context
