package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaiiae/person-api/apierror"
	"github.com/oaiiae/person-api/calllog"
	ds "github.com/oaiiae/person-api/datastores"
	"github.com/oaiiae/person-api/handlers"
	"github.com/oaiiae/person-api/pipeline"
	"github.com/oaiiae/person-api/validation"
)

func TestMain(m *testing.M) {
	huma.NewError = apierror.New
	os.Exit(m.Run())
}

type testAPI struct {
	http.Handler
	log    *calllog.InMemory
	store  *ds.PersonsInmem
	errors []error
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	compress, err := pipeline.Compress(pipeline.EncodingGzip)
	require.NoError(t, err)
	chain := pipeline.NewChain(
		pipeline.Blacklist(pipeline.DefaultBlacklist...),
		compress,
		pipeline.CustomHeader(pipeline.CustomHeaderName, pipeline.CustomHeaderValue),
		pipeline.RestrictRequestSize(pipeline.DefaultMaxBodyBytes),
		pipeline.Status(),
	)

	mux := http.NewServeMux()
	ta := &testAPI{Handler: mux, log: new(calllog.InMemory), store: ds.NewPersonsInmem()}
	config := huma.DefaultConfig("test", "1.0.0")
	config.CreateHooks = nil // no $schema links in bodies
	api := huma.NewGroup(humago.New(mux, config), "/api")
	huma.AutoRegister(api, &handlers.Persons{
		Store:        ta.store,
		Chain:        chain,
		CallLog:      ta.log,
		Validator:    validation.New(),
		ErrorHandler: func(_ context.Context, err error) { ta.errors = append(ta.errors, err) },
	})
	huma.AutoRegister(api, &handlers.Log{CallLog: ta.log, Chain: chain})
	huma.AutoRegister(api, &handlers.Hello{Chain: chain})
	return ta
}

func (ta *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ta.ServeHTTP(rec, req)
	return rec
}

func (ta *testAPI) trace() []string {
	var out []string
	for _, e := range ta.log.Entries() {
		out = append(out, e.String())
	}
	return out
}

// decode reads the JSON body of rec, decompressing it when needed.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	r, err := pipeline.Decompress(rec.Header().Get("Content-Encoding"), rec.Body)
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, json.NewDecoder(r).Decode(v))
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Test_Persons_Scenario runs each step against the seeded store.
func Test_Persons_Scenario(t *testing.T) {
	t.Run("find_all", func(t *testing.T) {
		rec := newTestAPI(t).do(t, http.MethodGet, "/api/person/all", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, pipeline.EncodingGzip, rec.Header().Get("Content-Encoding"))
		var list handlers.PersonsList
		decode(t, rec, &list)
		require.Len(t, list.Items, 3)
		assert.Equal(t, handlers.PersonModel{ID: 1, FirstName: "Jan", LastName: "Janssen"}, list.Items[0])
	})

	t.Run("add", func(t *testing.T) {
		rec := newTestAPI(t).do(t, http.MethodPost, "/api/person", `{"firstName":"Despicable","lastName":"Me"}`)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created handlers.PersonModel
		decode(t, rec, &created)
		assert.NotContains(t, []ds.PersonID{0, 1, 2, 3}, created.ID)
		assert.Equal(t, "Despicable", created.FirstName)
		assert.Equal(t, "Me", created.LastName)
	})

	t.Run("update", func(t *testing.T) {
		ta := newTestAPI(t)

		rec := ta.do(t, http.MethodPut, "/api/person", `{"id":1,"firstName":"Jan-Klaas","lastName":"Janssen"}`)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated handlers.PersonModel
		decode(t, rec, &updated)
		assert.Equal(t, "Jan-Klaas", updated.FirstName)
		stored, err := ta.store.FindByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Jan-Klaas", stored.FirstName)
	})

	t.Run("delete", func(t *testing.T) {
		ta := newTestAPI(t)

		rec := ta.do(t, http.MethodDelete, "/api/person/3", "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = ta.do(t, http.MethodGet, "/api/person", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var list handlers.PersonsList
		decode(t, rec, &list)
		assert.Len(t, list.Items, 2)
	})

	t.Run("update_without_names", func(t *testing.T) {
		rec := newTestAPI(t).do(t, http.MethodPut, "/api/person", `{"id":1,"firstName":null,"lastName":null}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body errorBody
		decode(t, rec, &body)
		assert.Equal(t, "BAD_REQUEST", body.Code)
		assert.Contains(t, body.Message, "update.firstName firstName is not allowed to be empty")
		assert.Contains(t, body.Message, "update.lastName lastName is not allowed to be empty")
	})
}

func Test_Persons_FindByID(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, http.MethodGet, "/api/person/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.JSONEq(t, `{"id":2,"firstName":"Pieter","lastName":"Pietersen"}`, rec.Body.String())

	rec = ta.do(t, http.MethodGet, "/api/person/42", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"code":"NOT_FOUND","message":"person does not exist"}`, rec.Body.String())

	assert.Equal(t, []string{
		"handlers.Persons entering findById",
		"handlers.Persons exiting findById",
		"handlers.Persons entering findById",
		"handlers.Persons exiting findById",
	}, ta.trace())
	require.Len(t, ta.errors, 1)
	assert.ErrorIs(t, ta.errors[0], ds.ErrNotFound)
}

func Test_Persons_FindByLastName(t *testing.T) {
	ta := newTestAPI(t)
	ta.do(t, http.MethodPost, "/api/person", `{"firstName":"Piet","lastName":"Pietersen"}`)

	tests := []struct {
		lastName string
		want     []string
	}{
		{lastName: "Pietersen", want: []string{"Pieter", "Piet"}},
		{lastName: "pietersen"},
		{lastName: "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.lastName, func(t *testing.T) {
			rec := ta.do(t, http.MethodGet, "/api/person/lastName/"+tt.lastName, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `"items":[`)

			var list handlers.PersonsList
			decode(t, rec, &list)
			var names []string
			for _, p := range list.Items {
				names = append(names, p.FirstName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func Test_Persons_Blacklist(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, http.MethodPost, "/api/person", `{"firstName":"Despicable","lastName":"Asshole"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created handlers.PersonModel
	decode(t, rec, &created)
	assert.Equal(t, "A***e", created.LastName)

	stored, err := ta.store.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A***e", stored.LastName)

	// update is not bound to the blacklist
	rec = ta.do(t, http.MethodPut, "/api/person", `{"id":1,"firstName":"Jan","lastName":"Shitface"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":1,"firstName":"Jan","lastName":"Shitface"}`, rec.Body.String())
}

func Test_Persons_Add(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
		trace   []string
	}{
		{
			name:   "created",
			body:   `{"firstName":"Despicable","lastName":"Me"}`,
			status: http.StatusCreated,
			trace:  []string{"handlers.Persons entering add", "handlers.Persons exiting add"},
		},
		{
			name:    "already_exists",
			body:    `{"id":1,"firstName":"Jan","lastName":"Janssen"}`,
			status:  http.StatusBadRequest,
			message: "person already exists",
			trace:   []string{"handlers.Persons entering add", "handlers.Persons exiting add"},
		},
		{
			name:    "invalid_input_is_not_traced",
			body:    `{"firstName":"D","lastName":"Me"}`,
			status:  http.StatusBadRequest,
			message: "add.firstName firstName should have at least 2 characters",
		},
		{
			name:    "too_large_is_not_traced",
			body:    `{"firstName":"Despicable","lastName":"` + strings.Repeat("Me", 600) + `"}`,
			status:  http.StatusBadRequest,
			message: `{"code":"BAD_REQUEST","message":"request body too large"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestAPI(t)

			rec := ta.do(t, http.MethodPost, "/api/person", tt.body)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, pipeline.CustomHeaderValue, rec.Header().Get(pipeline.CustomHeaderName))
			if tt.message != "" {
				assert.Contains(t, rec.Body.String(), tt.message)
			}
			assert.Equal(t, tt.trace, ta.trace())
		})
	}
}

func Test_Persons_Update_NotFound(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, http.MethodPut, "/api/person", `{"id":99,"firstName":"Nobody","lastName":"Atall"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"code":"NOT_FOUND","message":"person does not exist"}`, rec.Body.String())
	persons, err := ta.store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ds.Seed(), persons)
	assert.Equal(t, []string{"handlers.Persons entering update", "handlers.Persons exiting update"}, ta.trace())
}

func Test_Persons_Delete_Idempotent(t *testing.T) {
	ta := newTestAPI(t)

	for range 2 {
		rec := ta.do(t, http.MethodDelete, "/api/person/42", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	persons, err := ta.store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ds.Seed(), persons)
}

func Test_Persons_IsAlive(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, http.MethodGet, "/api/person/isAlive", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, pipeline.CustomHeaderValue, rec.Header().Get(pipeline.CustomHeaderName))
	assert.Empty(t, ta.trace())
}

func Test_Log(t *testing.T) {
	ta := newTestAPI(t)
	ta.do(t, http.MethodGet, "/api/person/1", "")

	rec := ta.do(t, http.MethodGet, "/api/log", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":["handlers.Persons entering findById","handlers.Persons exiting findById"]}`, rec.Body.String())

	rec = ta.do(t, http.MethodPut, "/api/log", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ta.do(t, http.MethodGet, "/api/log", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func Test_Hello(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, http.MethodGet, "/api/hello", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hi DevCon", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}
