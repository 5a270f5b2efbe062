package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskflow/internal/application/auth"
	"github.com/rezkam/taskflow/internal/domain"
	"github.com/rezkam/taskflow/internal/http/openapi"
	"github.com/rezkam/taskflow/internal/http/response"
)

type validatorFunc func(ctx context.Context, token string) (*auth.Principal, error)

func (f validatorFunc) ValidateToken(ctx context.Context, token string) (*auth.Principal, error) {
	return f(ctx, token)
}

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_StoresPrincipal(t *testing.T) {
	user := &domain.User{ID: "u1", Role: domain.UserRoleOperator}
	a := NewAuth(validatorFunc(func(_ context.Context, token string) (*auth.Principal, error) {
		assert.Equal(t, "tf_abc_secret", token)
		return &auth.Principal{User: user}, nil
	}))

	var got *auth.Principal
	h := a.Validate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer tf_abc_secret")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, user, got.User)
}

func TestAuth_StorageErrorIsStillUnauthorized(t *testing.T) {
	a := NewAuth(validatorFunc(func(context.Context, string) (*auth.Principal, error) {
		return nil, errors.New("connection refused")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	a.Validate(ok()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestPrincipalFrom_Empty(t *testing.T) {
	_, found := PrincipalFrom(context.Background())
	assert.False(t, found)

	_, found = PrincipalFrom(WithPrincipal(context.Background(), nil))
	assert.False(t, found)
}

func TestMaxBodyBytes(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		_, _ = w.Write(body)
	})
	h := MaxBodyBytes(8)(echo)

	t.Run("within limit is passed through", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("12345678")))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "12345678", w.Body.String())
	})

	t.Run("declared length over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("123456789")))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("unknown length over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader("123456789")))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestParseValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []response.ErrorField
	}{
		{
			name: "body field",
			err:  errors.New(`request body has an error: doesn't match schema: Error at "/title": minimum string length is 1`),
			want: []response.ErrorField{{Field: "title", Issue: "minimum string length is 1"}},
		},
		{
			name: "nested body field",
			err:  errors.New(`request body has an error: doesn't match schema: Error at "/tasks/0": property "title" is missing`),
			want: []response.ErrorField{{Field: "tasks.0", Issue: `property "title" is missing`}},
		},
		{
			name: "query parameter",
			err:  errors.New(`parameter "filter" in query has an error: value is not one of the allowed values`),
			want: []response.ErrorField{{Field: "filter", Issue: "value is not one of the allowed values"}},
		},
		{
			name: "missing body",
			err:  errors.New("request body has an error: value is required but missing"),
			want: []response.ErrorField{{Field: "body", Issue: "required field missing"}},
		},
		{
			name: "unrecognized",
			err:  errors.New("no matching operation was found"),
			want: []response.ErrorField{},
		},
		{name: "nil", err: nil, want: []response.ErrorField{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValidationError(tt.err))
		})
	}
}

func TestNewValidator_AgainstAPIDocument(t *testing.T) {
	spec, err := openapi.GetSwagger()
	require.NoError(t, err)
	h := NewValidator(spec, ValidationConfig{BasePath: "/api", MultiError: true})(ok())

	send := func(method, path, body string) *httptest.ResponseRecorder {
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, r)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	t.Run("valid task creation", func(t *testing.T) {
		w := send(http.MethodPost, "/api/v1/tasks", `{"title":"Ship it","due_date":"2024-01-12"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		w := send(http.MethodPost, "/api/v1/tasks", `{"due_date":"2024-01-12"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body response.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.NotNil(t, body.Error.Details)
	})

	t.Run("unknown status", func(t *testing.T) {
		w := send(http.MethodPatch, "/api/v1/tasks/abc/status", `{"status":"OVERDUE"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad board filter", func(t *testing.T) {
		w := send(http.MethodGet, "/api/v1/tasks?filter=team", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		w := send(http.MethodGet, "/api/v1/nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
