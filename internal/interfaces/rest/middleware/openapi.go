package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/interfaces/rest"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

// OpenAPIValidator rejects requests under prefix that do not match the
// document. Paths the document does not describe pass through.
func OpenAPIValidator(spec *rest.Spec, prefix string) func(http.Handler) http.Handler {
	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		MultiError:         false,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			route, pathParams, err := spec.Router.FindRoute(r)
			if err != nil {
				if errors.Is(err, routers.ErrMethodNotAllowed) {
					rest.WriteJSON(w, http.StatusMethodNotAllowed, rest.ErrorResponse{
						Error: rest.ErrorDetail{Code: "METHOD_NOT_ALLOWED", Message: err.Error()},
					})
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				rest.WriteError(w, application.NewInvalidInputError(sanitize(err)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// sanitize drops the offending value from schema errors so card data
// never echoes back.
func sanitize(err error) error {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return err
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(reqErr.Err, &schemaErr) {
		return errors.New(reqErr.Reason + ": " + strings.Join(schemaErr.JSONPointer(), ".") + " " + schemaErr.Reason)
	}
	if reqErr.Parameter != nil {
		return errors.New("invalid parameter " + reqErr.Parameter.Name)
	}
	return errors.New(reqErr.Reason)
}
