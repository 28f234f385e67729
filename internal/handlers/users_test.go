package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/marketly-dev/marketly/internal/auth"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/testutil"
	"github.com/marketly-dev/marketly/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, s *testServer, username, password string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/users/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return s.do(t, req, "")
}

func TestCreateUser(t *testing.T) {
	s := newTestServer(t)

	w := s.json(t, http.MethodPost, "/users", map[string]string{
		"email":    "  Alice@Example.com",
		"password": "supersecret",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	user := decode[types.UserResponse](t, w)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleBuyer, user.Role)
	assert.True(t, user.IsActive)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.json(t, http.MethodPost, "/users", map[string]string{
		"email":    "alice@example.com",
		"password": "anothersecret",
		"role":     "seller",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already registered", errorDetail(t, w))
}

func TestCreateUserValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"admin role", map[string]string{"email": "a@example.com", "password": "supersecret", "role": "admin"}},
		{"short password", map[string]string{"email": "a@example.com", "password": "short"}},
		{"bad email", map[string]string{"email": "not-an-email", "password": "supersecret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.json(t, http.MethodPost, "/users", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "seller@example.com", models.RoleSeller)

	w := login(t, s, "Seller@example.com", testutil.DefaultPassword)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tokens := decode[types.TokenResponse](t, w)
	assert.Equal(t, "bearer", tokens.TokenType)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	w = s.json(t, http.MethodGet, "/users/me", nil, tokens.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[types.UserResponse](t, w)
	assert.Equal(t, "seller@example.com", me.Email)
	assert.Equal(t, models.RoleSeller, me.Role)

	// a refresh token is not an access token
	w = s.json(t, http.MethodGet, "/users/me", nil, tokens.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Could not validate credentials", errorDetail(t, w))
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "buyer@example.com", models.RoleBuyer)

	w := login(t, s, "buyer@example.com", "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Incorrect email or password", errorDetail(t, w))
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = login(t, s, "nobody@example.com", testutil.DefaultPassword)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	testutil.Deactivate(t, s.db, user)
	w = login(t, s, "buyer@example.com", testutil.DefaultPassword)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := s.json(t, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.json(t, http.MethodGet, "/users/me", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Could not validate credentials", errorDetail(t, w))
}

func TestRefreshToken(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "buyer@example.com", models.RoleBuyer)
	identity := auth.Identity{Email: user.Email, Role: user.Role, UserID: user.ID}

	refresh, err := auth.CreateRefreshToken(identity)
	require.NoError(t, err)
	access, err := auth.CreateAccessToken(identity)
	require.NoError(t, err)

	w := s.json(t, http.MethodPost, "/users/refresh-token", map[string]string{"refresh_token": refresh}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]string](t, w)
	assert.Equal(t, "bearer", body["token_type"])
	assert.NotContains(t, body, "refresh_token")

	claims, err := auth.VerifyAccessToken(body["access_token"])
	require.NoError(t, err)
	assert.Equal(t, user.Email, claims.Subject)
	assert.Equal(t, user.ID, claims.UserID)

	w = s.json(t, http.MethodPost, "/users/refresh-token?refresh_token="+url.QueryEscape(refresh), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.json(t, http.MethodPost, "/users/refresh-token", map[string]string{"refresh_token": access}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Could not validate refresh token", errorDetail(t, w))

	testutil.Deactivate(t, s.db, user)
	w = s.json(t, http.MethodPost, "/users/refresh-token", map[string]string{"refresh_token": refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshTokenBody(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "buyer@example.com", models.RoleBuyer)
	refresh, err := auth.CreateRefreshToken(auth.Identity{Email: user.Email, Role: user.Role, UserID: user.ID})
	require.NoError(t, err)

	post := func(path, contentType, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		return s.do(t, req, "")
	}

	w := post("/users/refresh-token", "application/json", `{"refresh_token":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request", errorDetail(t, w))

	// a broken body is not masked by the query string
	w = post("/users/refresh-token?refresh_token="+url.QueryEscape(refresh), "application/json", `{"refresh_token": 42}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post("/users/refresh-token", "application/x-www-form-urlencoded", url.Values{"refresh_token": {refresh}}.Encode())
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = post("/users/refresh-token?refresh_token="+url.QueryEscape(refresh), "text/plain", "ignored")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = post("/users/refresh-token", "application/json", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "refresh_token is required", errorDetail(t, w))
}
