package httpadapter

import (
	_ "embed"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

//go:embed openapi.yaml
var contractYAML []byte

// contract is the embedded API description, compiled once at startup.
var contract = mustContract()

type contractValidator struct {
	router routers.Router
}

func mustContract() *contractValidator {
	v, err := newContractValidator(contractYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded openapi contract: %v", err))
	}
	return v
}

func newContractValidator(raw []byte) (*contractValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse contract: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate contract: %w", err)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build contract router: %w", err)
	}
	return &contractValidator{router: router}, nil
}

// middleware rejects requests that violate the contract before they reach
// a handler. Unknown paths fall through to the mux; multipart bodies are
// routed but not body-validated, the upload handler owns those checks.
func (v *contractValidator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/") {
			next.ServeHTTP(w, r)
			return
		}

		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		opts := &openapi3filter.Options{}
		if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mediaType == "multipart/form-data" {
			opts.ExcludeRequestBody = true
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options:    opts,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: compactValidationError(err)})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// kin-openapi errors span several indented lines; keep the first one.
func compactValidationError(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimSpace(msg)
}

func serveContract(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(contractYAML)
}
