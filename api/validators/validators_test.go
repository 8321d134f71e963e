package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
)

type signupBody struct {
	Email      string `json:"email" validate:"required,email"`
	PostalCode string `json:"postal_code" validate:"required,postalcode"`
}

func TestDecodeJSONBodyPostalCode(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","postal_code":"12345"}`))
	var body signupBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be exactly 6 digits", details["postal_code"])

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","postal_code":"560001"}`))
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, "560001", body.PostalCode)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","postal_code":"560001","role":"admin"}`))
	var body signupBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := BearerToken(req)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))

	req.Header.Set("Authorization", "Bearer abc.def")
	token, err := BearerToken(req)
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	req.Header.Set("Authorization", "raw-token")
	token, err = BearerToken(req)
	require.NoError(t, err)
	assert.Equal(t, "raw-token", token)
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "lotId", id.String())
	got, err := ParseUUIDParam(req, "lotId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "lotId", "nope")
	_, err = ParseUUIDParam(req, "lotId")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestParseQueryIntBounds(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	_, err := ParseQueryInt(req, "limit", 20, 1, 100)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	v, err := ParseQueryInt(req, "limit", 20, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

func TestSearchQueryTrims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?q=%20%20market%20", nil)
	assert.Equal(t, "market", SearchQuery(req))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}
