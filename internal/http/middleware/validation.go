package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"

	"github.com/rezkam/taskflow/internal/http/response"
)

// ValidationConfig holds configuration for the OpenAPI validation middleware.
type ValidationConfig struct {
	// BasePath is the prefix the API is mounted under, e.g. "/api".
	BasePath string
	// MultiError collects every violation instead of stopping at the first.
	MultiError bool
}

// NewValidator validates requests against spec and answers violations with
// 400 and the standard error envelope. Authentication is the Auth
// middleware's job, so security requirements are not checked here.
func NewValidator(spec *openapi3.T, config ValidationConfig) func(http.Handler) http.Handler {
	spec.Servers = openapi3.Servers{{URL: config.BasePath}}

	opts := &nethttpmiddleware.Options{
		Options: openapi3filter.Options{
			MultiError: config.MultiError,
			AuthenticationFunc: func(context.Context, *openapi3filter.AuthenticationInput) error {
				return nil
			},
		},
		ErrorHandlerWithOpts:  validationErrorHandler,
		SilenceServersWarning: true,
	}

	return nethttpmiddleware.OapiRequestValidatorWithOptions(spec, opts)
}

func validationErrorHandler(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, opts nethttpmiddleware.ErrorHandlerOpts) {
	details := parseValidationError(err)

	slog.WarnContext(ctx, "request validation failed",
		"path", r.URL.Path,
		"method", r.Method,
		"invalid_field_count", len(details),
		"error", err.Error())

	status := opts.StatusCode
	code, message := "VALIDATION_ERROR", "validation failed"
	if status == http.StatusNotFound {
		code, message = "NOT_FOUND", "no such route"
	} else if status == http.StatusMethodNotAllowed {
		code, message = "METHOD_NOT_ALLOWED", "method not allowed"
	}

	response.JSON(w, status, response.ErrorResponse{Error: response.ErrorDetail{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// parseValidationError extracts field details from kin-openapi messages such as
//
//	request body has an error: doesn't match schema: Error at "/title": minimum string length is 1
//	parameter "filter" in query has an error: value is not one of the allowed values
func parseValidationError(err error) []response.ErrorField {
	details := []response.ErrorField{}
	if err == nil {
		return details
	}
	msg := err.Error()

	if field, rest, ok := quotedAfter(msg, `Error at "/`); ok {
		issue := "validation failed"
		if _, after, found := strings.Cut(rest, ":"); found && strings.TrimSpace(after) != "" {
			issue = strings.TrimSpace(after)
		}
		return append(details, response.ErrorField{Field: strings.ReplaceAll(field, "/", "."), Issue: issue})
	}

	if field, rest, ok := quotedAfter(msg, `parameter "`); ok {
		issue := "invalid parameter"
		if _, after, found := strings.Cut(rest, "has an error:"); found {
			issue = strings.TrimSpace(after)
		}
		return append(details, response.ErrorField{Field: field, Issue: issue})
	}

	if strings.Contains(msg, "request body") {
		issue := "invalid request body"
		switch {
		case strings.Contains(msg, "doesn't match schema"), strings.Contains(msg, "doesn't match the schema"):
			issue = "request body doesn't match schema"
		case strings.Contains(msg, "required"):
			issue = "required field missing"
		}
		return append(details, response.ErrorField{Field: "body", Issue: issue})
	}

	return details
}

// quotedAfter returns the text between marker and the next double quote,
// and whatever follows that quote.
func quotedAfter(msg, marker string) (quoted, rest string, ok bool) {
	_, after, found := strings.Cut(msg, marker)
	if !found {
		return "", "", false
	}
	quoted, rest, found = strings.Cut(after, `"`)
	if !found {
		return "", "", false
	}
	return quoted, rest, true
}
