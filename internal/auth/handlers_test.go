package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fabocv/santi-pos/internal/auth"
	"github.com/fabocv/santi-pos/internal/common"
)

func TestLoginHandler(t *testing.T) {
	handler := &auth.Handler{Service: newService(t)}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"code":"OP001"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data auth.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "2", body.Data.Operator.ID)
	require.NotEmpty(t, body.Data.AccessToken)
}

func TestLoginHandlerRejectsBadCode(t *testing.T) {
	handler := &auth.Handler{Service: newService(t)}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"code":"nope"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")
}

func TestMeHandler(t *testing.T) {
	handler := &auth.Handler{Service: newService(t)}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(common.WithOperator(req.Context(), "3", auth.RoleOperator))
	rec := httptest.NewRecorder()
	handler.Me(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Cajera Mar")

	rec = httptest.NewRecorder()
	handler.Me(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthMiddleware(t *testing.T) {
	svc := newService(t)
	mw := auth.Middleware{Service: svc}

	var gotID, gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = common.OperatorID(r.Context())
		gotRole, _ = common.OperatorRole(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	result, err := svc.Login(context.Background(), "ADM001")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/register", nil)
	req.Header.Set("Authorization", "Bearer "+result.AccessToken)
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "1", gotID)
	require.Equal(t, auth.RoleAdmin, gotRole)

	rec = httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/register", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/register", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
