package pipeline

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

const (
	DefaultMaxBodyBytes = 1024

	CustomHeaderName  = "X-Custom-Header"
	CustomHeaderValue = "Damn this is a nice header!"

	statusMetadataKey = "pipeline.status"
)

// RestrictRequestSize aborts requests whose body exceeds max bytes with 400,
// before anything tries to parse them.
func RestrictRequestSize(max int64) Stage {
	return Stage{
		Name:    "restrict-request-size",
		Binding: Global,
		Kind:    RequestFilter,
		Middleware: func(api huma.API) func(huma.Context, func(huma.Context)) {
			return func(ctx huma.Context, next func(huma.Context)) {
				length, err := strconv.ParseInt(ctx.Header("Content-Length"), 10, 64)
				if err == nil && length > max {
					_ = huma.WriteErr(api, ctx, http.StatusBadRequest, "request body too large")
					return
				}

				// the length header is optional, count what is actually sent
				body, err := io.ReadAll(io.LimitReader(ctx.BodyReader(), max+1))
				switch {
				case err != nil:
					_ = huma.WriteErr(api, ctx, http.StatusBadRequest, "unable to read request body", err)
				case int64(len(body)) > max:
					_ = huma.WriteErr(api, ctx, http.StatusBadRequest, "request body too large")
				default:
					next(&bodyContext{humaContext: ctx, body: bytes.NewReader(body)})
				}
			}
		},
	}
}

// CustomHeader sets name: value on every response.
func CustomHeader(name, value string) Stage {
	return Stage{
		Name:    "custom-header",
		Binding: Global,
		Kind:    ResponseFilter,
		Middleware: func(huma.API) func(huma.Context, func(huma.Context)) {
			return func(ctx huma.Context, next func(huma.Context)) {
				next(&statusHookContext{humaContext: ctx, hook: func(ctx huma.Context, status int) int {
					ctx.SetHeader(name, value)
					return status
				}})
			}
		},
	}
}

// Status replaces a 200 response status by the one declared with [WithStatus].
// The OpenAPI document of the endpoint declares that status instead of 200.
func Status() Stage {
	return Stage{
		Name:    "status",
		Binding: BindStatus,
		Kind:    ResponseFilter,
		Middleware: func(api huma.API) func(huma.Context, func(huma.Context)) {
			documentStatus(api.OpenAPI())
			return func(ctx huma.Context, next func(huma.Context)) {
				next(&statusHookContext{humaContext: ctx, hook: func(ctx huma.Context, status int) int {
					if status != http.StatusOK {
						return status
					}
					if declared, ok := ctx.Operation().Metadata[statusMetadataKey].(int); ok {
						return declared
					}
					return status
				}})
			}
		},
	}
}

// WithStatus is an operation option declaring the success status used by [Status].
func WithStatus(status int) func(*huma.Operation) {
	return func(o *huma.Operation) {
		if o.Metadata == nil {
			o.Metadata = make(map[string]any)
		}
		o.Metadata[statusMetadataKey] = status
	}
}

var documented sync.Map //nolint: gochecknoglobals // *huma.OpenAPI already hooked

// documentStatus moves the generated 200 response of operations declaring
// a status with [WithStatus] to that status, once per document.
func documentStatus(oapi *huma.OpenAPI) {
	if _, loaded := documented.LoadOrStore(oapi, struct{}{}); loaded {
		return
	}
	oapi.OnAddOperation = append(oapi.OnAddOperation, func(_ *huma.OpenAPI, op *huma.Operation) {
		status, ok := op.Metadata[statusMetadataKey].(int)
		generated := op.Responses[strconv.Itoa(http.StatusOK)]
		if !ok || generated == nil || status == http.StatusOK {
			return
		}
		generated.Description = http.StatusText(status)
		op.Responses[strconv.Itoa(status)] = generated
		delete(op.Responses, strconv.Itoa(http.StatusOK))
	})
}
