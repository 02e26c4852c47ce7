package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/oaiiae/person-api/calllog"
	ds "github.com/oaiiae/person-api/datastores"
	"github.com/oaiiae/person-api/pipeline"
	"github.com/oaiiae/person-api/validation"
)

// PersonsComponent names the persons endpoints in the call log.
const PersonsComponent = "handlers.Persons"

type Persons struct {
	Store        ds.PersonsStore
	Chain        *pipeline.Chain
	CallLog      calllog.Logger
	Validator    *validation.Validator
	ErrorHandler func(context.Context, error)
}

type PersonModel struct {
	ID ds.PersonID `json:"id" required:"false" doc:"zero or absent lets the store assign one"`

	FirstName string `json:"firstName" example:"Jan"     validate:"required,min=2"`
	LastName  string `json:"lastName"  example:"Janssen" validate:"required,min=2"`
}

func newPersonModel(p *ds.Person) PersonModel {
	return PersonModel{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
}

func (m *PersonModel) person() *ds.Person {
	return &ds.Person{ID: m.ID, FirstName: m.FirstName, LastName: m.LastName}
}

type PersonsList struct {
	Items []PersonModel `json:"items"`
}

func newPersonsList(ps []*ds.Person) PersonsList {
	items := make([]PersonModel, 0, len(ps))
	for _, p := range ps {
		items = append(items, newPersonModel(p))
	}
	return PersonsList{Items: items}
}

type PersonInput struct {
	Body PersonModel
}

type PersonOutput struct {
	Body PersonModel
}

type PersonsListOutput struct {
	Body PersonsList
}

// personBody is the value checked by the validation layer.
func personBody(i *PersonInput) any { return &i.Body }

// skipBodyValidation leaves request bodies to the validation layer,
// so that every violation is reported in one response.
func skipBodyValidation(o *huma.Operation) { o.SkipValidateBody = true }

func (h *Persons) RegisterIsAlive(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/person/isAlive", h.isAlive, bind(api, h.Chain))
}

type TextOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func (h *Persons) isAlive(_ context.Context, _ *struct{}) (*TextOutput, error) {
	return &TextOutput{ContentType: "text/plain", Body: []byte("OK")}, nil
}

func (h *Persons) RegisterFindAll(api huma.API) { // called by [huma.AutoRegister]
	findAll := handlerWithErrorHandler(
		translated(traced(h.CallLog, PersonsComponent, "findAllPersons", h.findAll)),
		h.ErrorHandler,
	)
	huma.Get(api, "/person", findAll,
		bind(api, h.Chain, pipeline.BindCompress),
		opErrors(http.StatusInternalServerError),
	)
	huma.Get(api, "/person/all", findAll,
		bind(api, h.Chain, pipeline.BindCompress),
		opErrors(http.StatusInternalServerError),
	)
}

func (h *Persons) findAll(ctx context.Context, _ *struct{}) (*PersonsListOutput, error) {
	persons, err := h.Store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return &PersonsListOutput{Body: newPersonsList(persons)}, nil
}

func (h *Persons) RegisterFindByID(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/person/{id}",
		handlerWithErrorHandler(
			translated(traced(h.CallLog, PersonsComponent, "findById", h.findByID)),
			h.ErrorHandler,
		),
		bind(api, h.Chain),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

func (h *Persons) findByID(ctx context.Context, input *struct {
	ID ds.PersonID `path:"id" doc:"ID of the person to get"`
}) (*PersonOutput, error) {
	person, err := h.Store.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PersonOutput{Body: newPersonModel(person)}, nil
}

func (h *Persons) RegisterFindByLastName(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/person/lastName/{lastName}",
		handlerWithErrorHandler(
			translated(traced(h.CallLog, PersonsComponent, "findPersonsByLastName", h.findByLastName)),
			h.ErrorHandler,
		),
		bind(api, h.Chain),
		opErrors(http.StatusInternalServerError),
	)
}

func (h *Persons) findByLastName(ctx context.Context, input *struct {
	LastName string `path:"lastName" doc:"exact, case-sensitive last name"`
}) (*PersonsListOutput, error) {
	persons, err := h.Store.FindWithLastName(ctx, input.LastName)
	if err != nil {
		return nil, err
	}
	return &PersonsListOutput{Body: newPersonsList(persons)}, nil
}

func (h *Persons) RegisterAdd(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/person",
		handlerWithErrorHandler(
			translated(validated(h.Validator, "add", personBody,
				traced(h.CallLog, PersonsComponent, "add", h.add))),
			h.ErrorHandler,
		),
		bind(api, h.Chain, pipeline.BindStatus, pipeline.BindBlacklist),
		pipeline.WithStatus(http.StatusCreated),
		skipBodyValidation,
		opErrors(http.StatusBadRequest, http.StatusInternalServerError),
	)
}

func (h *Persons) add(ctx context.Context, input *PersonInput) (*PersonOutput, error) {
	person, err := h.Store.Add(ctx, input.Body.person())
	if err != nil {
		return nil, err
	}
	return &PersonOutput{Body: newPersonModel(person)}, nil
}

func (h *Persons) RegisterUpdate(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/person",
		handlerWithErrorHandler(
			translated(validated(h.Validator, "update", personBody,
				traced(h.CallLog, PersonsComponent, "update", h.update))),
			h.ErrorHandler,
		),
		bind(api, h.Chain),
		skipBodyValidation,
		opErrors(http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError),
	)
}

func (h *Persons) update(ctx context.Context, input *PersonInput) (*PersonOutput, error) {
	if err := h.Store.Update(ctx, input.Body.person()); err != nil {
		return nil, err
	}
	return &PersonOutput{Body: input.Body}, nil
}

func (h *Persons) RegisterDelete(api huma.API) { // called by [huma.AutoRegister]
	huma.Delete(api, "/person/{id}",
		handlerWithErrorHandler(
			translated(traced(h.CallLog, PersonsComponent, "delete", h.del)),
			h.ErrorHandler,
		),
		bind(api, h.Chain),
		opErrors(http.StatusInternalServerError),
	)
}

func (h *Persons) del(ctx context.Context, input *struct {
	ID ds.PersonID `path:"id" doc:"ID of the person to delete"`
}) (*struct{}, error) {
	return nil, h.Store.Delete(ctx, input.ID)
}
