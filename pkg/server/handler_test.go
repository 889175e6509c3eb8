package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"k3l.io/go-amge/pkg/amge"
	"k3l.io/go-amge/pkg/api/openapi"
	"k3l.io/go-amge/pkg/sparse"
	spopt "k3l.io/go-amge/pkg/sparse/option"
)

func newTestServer(
	t *testing.T,
	build func(ctx context.Context, req *Request) (*Restriction, error),
) *echo.Echo {
	e := echo.New()
	s := NewServer()
	if build != nil {
		s.build = build
	}
	require.NoError(t, s.Register(e, "/v1"))
	return e
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	var body openapi.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Message
}

func TestServer_Lifecycle(t *testing.T) {
	e := newTestServer(t, func(ctx context.Context, req *Request) (*Restriction, error) {
		assert.Equal(t, 3, req.Ranks)
		assert.Equal(t, EvaluatorIdentity, req.Evaluator)
		assert.Equal(t, []int{1, 2}, req.Config.AgglomerateShape)
		m := sparse.NewCSRMatrix(2, 3, []sparse.CooEntry{
			{Row: 0, Column: 0, Value: 0.5},
			{Row: 1, Column: 2, Value: -1},
		}, spopt.Signed)
		return &Restriction{Matrix: m, Agglomerates: 2}, nil
	})
	rec := serve(e, http.MethodPost, "/v1/restrictions", `{
		"dim": 2, "refinements": 2, "ranks": 3, "evaluator": "identity",
		"config": {
			"agglomerate_shape": [1, 2],
			"num_eigenvectors": 1,
			"eigen_tolerance": 1e-12
		}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var summary openapi.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.NotEmpty(t, summary.Id)
	assert.Equal(t, 2, summary.Rows)
	assert.Equal(t, 3, summary.Cols)
	assert.Equal(t, 2, summary.Nnz)
	assert.Nil(t, summary.Deviation)

	rec = serve(e, http.MethodGet, "/v1/restrictions/"+summary.Id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got openapi.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, summary, got)

	rec = serve(e, http.MethodGet, "/v1/restrictions/"+summary.Id+"/matrix", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "row,dof,value\n0,0,0.5\n1,2,-1\n", rec.Body.String())

	rec = serve(e, http.MethodDelete, "/v1/restrictions/"+summary.Id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(e, http.MethodGet, "/v1/restrictions/"+summary.Id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = serve(e, http.MethodGet, "/v1/restrictions/"+summary.Id+"/matrix", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = serve(e, http.MethodDelete, "/v1/restrictions/"+summary.Id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Verified(t *testing.T) {
	e := newTestServer(t, func(ctx context.Context, req *Request) (*Restriction, error) {
		assert.True(t, req.Verify)
		m := sparse.NewCSRMatrix(1, 1, []sparse.CooEntry{{Value: 1}})
		return &Restriction{Matrix: m, Verified: true, Deviation: 0}, nil
	})
	rec := serve(e, http.MethodPost, "/v1/restrictions",
		`{"dim": 1, "refinements": 1, "ranks": 1, "verify": true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var summary openapi.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.NotNil(t, summary.Deviation)
	assert.Zero(t, *summary.Deviation)
}

// Requests the API document rejects never reach the build.
func TestServer_InvalidRequests(t *testing.T) {
	e := newTestServer(t, func(ctx context.Context, req *Request) (*Restriction, error) {
		t.Errorf("build called with %+v", req)
		return nil, assert.AnError
	})
	tests := []struct {
		name string
		body string
	}{
		{"NoRanks", `{"dim": 2, "refinements": 1, "ranks": 0}`},
		{"TooManyRanks", `{"dim": 2, "refinements": 12, "ranks": 100000}`},
		{"MissingRanks", `{"dim": 2, "refinements": 1}`},
		{"Dim", `{"dim": 4, "refinements": 1, "ranks": 1}`},
		{"Refinements", `{"dim": 2, "refinements": 13, "ranks": 1}`},
		{"Evaluator", `{"dim": 2, "refinements": 1, "ranks": 1, "evaluator": "helmholtz"}`},
		{"UnknownField", `{"dim": 2, "refinements": 1, "ranks": 1, "rank": 1}`},
		{"ZeroShapeAxis", `{"dim": 2, "refinements": 1, "ranks": 1, "config": {
			"agglomerate_shape": [0, 2], "num_eigenvectors": 1, "eigen_tolerance": 1e-12}}`},
		{"ZeroTolerance", `{"dim": 2, "refinements": 1, "ranks": 1, "config": {
			"agglomerate_shape": [2, 2], "num_eigenvectors": 1, "eigen_tolerance": 0}}`},
		{"BadJSON", `{"dim": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, "/v1/restrictions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.NotEmpty(t, errorMessage(t, rec))
		})
	}
}

// Requests the API document accepts but a build cannot honor.
func TestServer_BuildLimits(t *testing.T) {
	e := newTestServer(t, nil)
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"RanksOverLayers", `{"dim": 2, "refinements": 2, "ranks": 8}`, "ranks"},
		{"TooManyDoFs", `{"dim": 2, "refinements": 12, "ranks": 1}`, "refinements"},
		{"LargeAgglomerate", `{"dim": 2, "refinements": 6, "ranks": 1, "config": {
			"agglomerate_shape": [64, 64], "num_eigenvectors": 1, "eigen_tolerance": 1e-12}}`,
			"agglomerate_shape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, "/v1/restrictions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, errorMessage(t, rec), tt.field)
		})
	}
}

func TestServer_BuildErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"Solver", &amge.SolverError{Agglomerate: 7, Err: assert.AnError},
			http.StatusUnprocessableEntity},
		{"Internal", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(t, func(context.Context, *Request) (*Restriction, error) {
				return nil, tt.err
			})
			rec := serve(e, http.MethodPost, "/v1/restrictions",
				`{"dim": 1, "refinements": 1, "ranks": 1}`)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, errorMessage(t, rec), tt.err.Error())
		})
	}
}

func TestErrorHandler(t *testing.T) {
	var fallbackErr error
	handler := ErrorHandler(func(err error, c echo.Context) { fallbackErr = err })
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	handler(HTTPError{Code: http.StatusTeapot, Inner: assert.AnError}, c)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, assert.AnError.Error(), errorMessage(t, rec))
	assert.Nil(t, fallbackErr)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	handler(assert.AnError, c)
	assert.Equal(t, assert.AnError, fallbackErr)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest,
		statusOf(&amge.ConfigError{Field: "ranks", Reason: "zero"}))
	assert.Equal(t, http.StatusUnprocessableEntity,
		statusOf(&amge.SolverError{Agglomerate: 3, Err: assert.AnError}))
	assert.Equal(t, http.StatusTeapot,
		statusOf(HTTPError{Code: http.StatusTeapot, Inner: assert.AnError}))
	assert.Equal(t, http.StatusInternalServerError, statusOf(assert.AnError))
}
