package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/oaiiae/person-api/calllog"
	"github.com/oaiiae/person-api/pipeline"
)

// Log exposes the call log recorded by the traced endpoints.
type Log struct {
	CallLog *calllog.InMemory
	Chain   *pipeline.Chain
}

func (h *Log) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/log", h.list, bind(api, h.Chain))
}

type LogListOutput struct {
	Body struct {
		Items []string `json:"items" example:"handlers.Persons entering findById"`
	}
}

func (h *Log) list(_ context.Context, _ *struct{}) (*LogListOutput, error) {
	entries := h.CallLog.Entries()
	out := &LogListOutput{}
	out.Body.Items = make([]string, 0, len(entries))
	for _, e := range entries {
		out.Body.Items = append(out.Body.Items, e.String())
	}
	return out, nil
}

func (h *Log) RegisterReset(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/log", h.reset, bind(api, h.Chain))
}

func (h *Log) reset(_ context.Context, _ *struct{}) (*struct{}, error) {
	h.CallLog.Reset()
	return nil, nil
}
