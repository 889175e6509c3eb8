package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"k3l.io/go-amge/pkg/amge"
	"k3l.io/go-amge/pkg/api/openapi"
	"k3l.io/go-amge/pkg/sparse"
	spopt "k3l.io/go-amge/pkg/sparse/option"
)

// Server implements the restriction API (openapi.StrictServerInterface).
type Server struct {
	stored NamedRestrictions
	build  func(ctx context.Context, req *Request) (*Restriction, error)
}

func NewServer() *Server {
	return &Server{build: Build}
}

// Register installs the API on e under baseURL.
// Requests are validated against the API document before they reach
// the handlers, and HTTPError responses carry their inner error
// as the message.
func (s *Server) Register(e *echo.Echo, baseURL string) error {
	validator, err := RequestValidator(baseURL)
	if err != nil {
		return err
	}
	e.HTTPErrorHandler = ErrorHandler(e.DefaultHTTPErrorHandler)
	openapi.RegisterHandlersWithBaseURL(e.Group(baseURL, validator),
		openapi.NewStrictHandler(s, nil), "")
	return nil
}

func summarize(id string, r *Restriction) openapi.Summary {
	rows, cols := r.Matrix.Dims()
	summary := openapi.Summary{
		Id:             id,
		Rows:           rows,
		Cols:           cols,
		Nnz:            r.Matrix.NNZ(),
		Agglomerates:   r.Agglomerates,
		Truncated:      r.Truncated,
		ElapsedSeconds: r.Elapsed.Seconds(),
	}
	if r.Verified {
		deviation := r.Deviation
		summary.Deviation = &deviation
	}
	return summary
}

func requestFromBody(body *openapi.BuildRequest) *Request {
	req := &Request{
		Dim:         body.Dim,
		Refinements: body.Refinements,
		Ranks:       body.Ranks,
	}
	if body.Evaluator != nil {
		req.Evaluator = string(*body.Evaluator)
	}
	if body.Verify != nil {
		req.Verify = *body.Verify
	}
	if cfg := body.Config; cfg != nil {
		req.Config = &amge.Config{
			AgglomerateShape: cfg.AgglomerateShape,
			NumEigenvectors:  cfg.NumEigenvectors,
			EigenTolerance:   cfg.EigenTolerance,
		}
	}
	return req
}

func (s *Server) create(ctx context.Context, req *Request) (*openapi.Summary, error) {
	r, err := s.build(ctx, req)
	if err != nil {
		return nil, HTTPError{
			Code: statusOf(err), Inner: errors.Wrap(err, "cannot build restriction"),
		}
	}
	id, err := s.stored.Add(ctx, r)
	if err != nil {
		return nil, HTTPError{
			Code:  http.StatusServiceUnavailable,
			Inner: errors.Wrap(err, "cannot store restriction"),
		}
	}
	summary := summarize(id, r)
	return &summary, nil
}

func (s *Server) CreateRestriction(
	ctx context.Context, request openapi.CreateRestrictionRequestObject,
) (openapi.CreateRestrictionResponseObject, error) {
	summary, err := s.create(ctx, requestFromBody(request.Body))
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("build failed")
		httpError := asHTTPError(err)
		switch httpError.Code {
		case http.StatusBadRequest:
			return openapi.CreateRestriction400JSONResponse{
				Message: httpError.Inner.Error(),
			}, nil
		case http.StatusUnprocessableEntity:
			return openapi.CreateRestriction422JSONResponse{
				Message: httpError.Inner.Error(),
			}, nil
		}
		return nil, httpError
	}
	return openapi.CreateRestriction201JSONResponse(*summary), nil
}

func (s *Server) GetRestriction(
	_ context.Context, request openapi.GetRestrictionRequestObject,
) (openapi.GetRestrictionResponseObject, error) {
	r, ok := s.stored.Load(request.Id)
	if !ok {
		return openapi.GetRestriction404Response{}, nil
	}
	return openapi.GetRestriction200JSONResponse(summarize(request.Id, r)), nil
}

func (s *Server) GetRestrictionMatrix(
	ctx context.Context, request openapi.GetRestrictionMatrixRequestObject,
) (openapi.GetRestrictionMatrixResponseObject, error) {
	r, ok := s.stored.Load(request.Id)
	if !ok {
		return openapi.GetRestrictionMatrix404Response{}, nil
	}
	var buf bytes.Buffer
	if err := WriteCSV(ctx, &buf, r.Matrix); err != nil {
		return nil, HTTPError{Code: http.StatusInternalServerError, Inner: err}
	}
	return openapi.GetRestrictionMatrix200TextcsvResponse{
		Body:          &buf,
		ContentLength: int64(buf.Len()),
	}, nil
}

func (s *Server) DeleteRestriction(
	_ context.Context, request openapi.DeleteRestrictionRequestObject,
) (openapi.DeleteRestrictionResponseObject, error) {
	if _, deleted := s.stored.LoadAndDelete(request.Id); !deleted {
		return openapi.DeleteRestriction404Response{}, nil
	}
	return openapi.DeleteRestriction204Response{}, nil
}

// WriteCSV writes the matrix as "row,dof,value" CSV records
// with a header line.
func WriteCSV(ctx context.Context, w io.Writer, m *sparse.CSRMatrix) error {
	csvWriter := csv.NewWriter(w)
	err := m.WriteIntoCSV(ctx, csvWriter, 0,
		spopt.RowIndexNamed("row"), spopt.ColumnIndexNamed("dof"),
		spopt.ValueNamed("value"))
	if err != nil {
		return errors.Wrap(err, "cannot write matrix")
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
