package server

import (
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"k3l.io/go-amge/pkg/api/openapi"
)

// RequestValidator returns a middleware that checks requests under
// baseURL against the API document.  A request failing the check is
// answered with 400; requests for routes the document lacks pass through.
func RequestValidator(baseURL string) (echo.MiddlewareFunc, error) {
	swagger, err := openapi.GetSwagger()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load API document")
	}
	// routes are matched on the path below baseURL
	swagger.Servers = nil
	router, err := legacy.NewRouter(swagger)
	if err != nil {
		return nil, errors.Wrap(err, "cannot route API document")
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			r := req.Clone(req.Context())
			r.URL.Path = strings.TrimPrefix(req.URL.Path, baseURL)
			r.URL.RawPath = ""
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				return next(c)
			}
			err = openapi3filter.ValidateRequest(r.Context(),
				&openapi3filter.RequestValidationInput{
					Request:    r,
					PathParams: pathParams,
					Route:      route,
				})
			// the validator consumes and replaces the body
			req.Body = r.Body
			if err != nil {
				return HTTPError{Code: http.StatusBadRequest, Inner: err}
			}
			return next(c)
		}
	}, nil
}
