// Package pipeline composes per-endpoint chains of request/response filters
// and interceptors as huma middlewares.
//
// Filters only touch metadata (status, headers) or abort a request.
// Interceptors rewrite the request or response body. The chain for an
// endpoint is resolved once, when the endpoint is registered, and always
// nests stages in this order, outermost first:
//
//	response filters > request filters > response interceptors > request interceptors > handler
//
// so a response filter also sees responses produced by a request filter abort.
package pipeline

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/danielgtaylor/huma/v2"
)

type Kind int

const (
	ResponseFilter Kind = iota
	RequestFilter
	ResponseInterceptor
	RequestInterceptor
)

func (k Kind) String() string {
	switch k {
	case ResponseFilter:
		return "response filter"
	case RequestFilter:
		return "request filter"
	case ResponseInterceptor:
		return "response interceptor"
	case RequestInterceptor:
		return "request interceptor"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Binding names a capability an endpoint opts in to.
// Stages with an empty Binding apply to every endpoint.
type Binding string

const (
	Global        Binding = ""
	BindStatus    Binding = "status"
	BindCompress  Binding = "compress"
	BindBlacklist Binding = "blacklist"
)

type Stage struct {
	Name     string
	Binding  Binding
	Kind     Kind
	Priority int // lower runs first within a Kind

	// Middleware is instantiated once per endpoint, with the API the endpoint is registered on.
	Middleware func(huma.API) func(huma.Context, func(huma.Context))
}

// Chain holds the registered stages.
type Chain struct {
	stages []Stage
}

func NewChain(stages ...Stage) *Chain {
	return new(Chain).Use(stages...)
}

func (c *Chain) Use(stages ...Stage) *Chain {
	c.stages = append(c.stages, stages...)
	return c
}

// For returns the middlewares of an endpoint declaring bindings.
// It panics on a binding no stage provides.
func (c *Chain) For(api huma.API, bindings ...Binding) huma.Middlewares {
	selected := c.resolve(bindings)
	mws := make(huma.Middlewares, 0, len(selected))
	for _, s := range selected {
		mws = append(mws, s.Middleware(api))
	}
	return mws
}

// Describe returns the names of the stages For would chain, outermost first.
func (c *Chain) Describe(bindings ...Binding) []string {
	selected := c.resolve(bindings)
	names := make([]string, 0, len(selected))
	for _, s := range selected {
		names = append(names, s.Name)
	}
	return names
}

func (c *Chain) resolve(bindings []Binding) []Stage {
	for _, b := range bindings {
		if !slices.ContainsFunc(c.stages, func(s Stage) bool { return s.Binding == b }) {
			panic(fmt.Sprintf("pipeline: no stage bound to %q", b))
		}
	}

	var selected []Stage
	for _, s := range c.stages {
		if s.Binding == Global || slices.Contains(bindings, s.Binding) {
			selected = append(selected, s)
		}
	}
	slices.SortStableFunc(selected, func(a, b Stage) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Priority, b.Priority))
	})
	return selected
}

// Bind is an operation option adding the chain of bindings to the operation.
func Bind(api huma.API, chain *Chain, bindings ...Binding) func(*huma.Operation) {
	return func(o *huma.Operation) {
		o.Middlewares = append(o.Middlewares, chain.For(api, bindings...)...)
	}
}
