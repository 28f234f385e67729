package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/internal/auth"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/router"
	"github.com/marketly-dev/marketly/internal/storage"
	"github.com/marketly-dev/marketly/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	router    *gin.Engine
	db        *gorm.DB
	mediaRoot string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	return newServer(t, testutil.NewTestDB(t))
}

// newServer builds the router over conn, which must already be installed as db.DB.
func newServer(t *testing.T, conn *gorm.DB) *testServer {
	t.Helper()

	gin.SetMode(gin.TestMode)

	require.NoError(t, auth.Configure(auth.TokenConfig{
		Secret:     "handlers-test-secret",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}))

	mediaRoot := t.TempDir()
	store, err := storage.NewDiskStore(mediaRoot, "/media")
	require.NoError(t, err)

	r := router.NewRouter(router.Options{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		ServiceName: "marketly-test",
		Origins:     []string{"http://localhost:3000"},
		Media:       store,
		MediaRoot:   mediaRoot,
	})

	return &testServer{router: r, db: conn, mediaRoot: mediaRoot}
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) *httptest.ResponseRecorder {
	t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

func (s *testServer) json(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	return s.do(t, s.request(t, method, path, body), token)
}

func (s *testServer) request(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}

// user creates an account directly in the database and returns it with an access token.
func (s *testServer) user(t *testing.T, email string, role models.Role) (*models.User, string) {
	t.Helper()

	user := testutil.CreateUser(t, s.db, email, role)

	token, err := auth.CreateAccessToken(auth.Identity{Email: user.Email, Role: user.Role, UserID: user.ID})
	require.NoError(t, err)

	return user, token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())

	return out
}

func errorDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	return decode[map[string]string](t, w)["error"]
}
