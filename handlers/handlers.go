package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/oaiiae/person-api/apierror"
	"github.com/oaiiae/person-api/calllog"
	"github.com/oaiiae/person-api/pipeline"
	"github.com/oaiiae/person-api/validation"
)

type handler[I, O any] = func(context.Context, *I) (*O, error)

func handlerWithErrorHandler[I, O any](handler handler[I, O], do func(context.Context, error)) handler[I, O] {
	if do == nil {
		return handler
	}

	return func(ctx context.Context, i *I) (*O, error) {
		o, err := handler(ctx, i)
		if err != nil {
			do(ctx, err)
		}
		return o, err
	}
}

// translated turns any error of handler into the response sent to the client.
func translated[I, O any](handler handler[I, O]) handler[I, O] {
	return func(ctx context.Context, i *I) (*O, error) {
		o, err := handler(ctx, i)
		if err != nil {
			return nil, apierror.Translate(err)
		}
		return o, nil
	}
}

// validated rejects inputs whose extracted value breaks its validation rules.
// The handler is not called then.
func validated[I, O any](v *validation.Validator, op string, extract func(*I) any, handler handler[I, O]) handler[I, O] {
	if v == nil {
		return handler
	}

	return func(ctx context.Context, i *I) (*O, error) {
		if err := v.Validate(op, extract(i)); err != nil {
			return nil, err
		}
		return handler(ctx, i)
	}
}

// traced records "entering <op>" and "exiting <op>" around every call of handler,
// failed ones included.
func traced[I, O any](log calllog.Logger, component, op string, handler handler[I, O]) handler[I, O] {
	if log == nil {
		return handler
	}

	return func(ctx context.Context, i *I) (*O, error) {
		log.Debug(component, "entering "+op)
		defer log.Debug(component, "exiting "+op)
		return handler(ctx, i)
	}
}

func opErrors(codes ...int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.Errors = codes }
}

// bind adds the stages of chain selected by bindings to the operation.
func bind(api huma.API, chain *pipeline.Chain, bindings ...pipeline.Binding) func(*huma.Operation) {
	if chain == nil {
		return func(*huma.Operation) {}
	}
	return pipeline.Bind(api, chain, bindings...)
}
