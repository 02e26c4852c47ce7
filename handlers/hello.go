package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/oaiiae/person-api/pipeline"
)

type Hello struct {
	Chain *pipeline.Chain
}

func (h *Hello) RegisterAPI(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/hello", h.handle, bind(api, h.Chain))
}

func (h *Hello) handle(_ context.Context, _ *struct{}) (*TextOutput, error) {
	return &TextOutput{ContentType: "text/plain", Body: []byte("Hi DevCon")}, nil
}
