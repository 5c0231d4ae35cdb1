package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/notblessy/studio-core/backend"
	"github.com/notblessy/studio-core/model"
	"github.com/notblessy/studio-core/observability"
	"github.com/notblessy/studio-core/repository"
	"github.com/notblessy/studio-core/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testJWTSecret    = "test-jwt-secret"
	testBackendToken = "backend-token"
)

type backendRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]interface{}
}

// fakeBackend stands in for the studio REST backend.
type fakeBackend struct {
	mu       sync.Mutex
	requests []backendRequest
	routes   map[string]http.HandlerFunc
}

func newFakeBackend() *fakeBackend {
	fb := &fakeBackend{routes: make(map[string]http.HandlerFunc)}
	fb.handle("GET /api/user/profile", http.StatusOK, `{
		"success": true,
		"user": {
			"id": 7,
			"first_name": "Ada",
			"last_name": "Lovelace",
			"email": "ada@example.com",
			"billing": {"selected_plan": "builder", "billing_cycle": "monthly", "add_ons": [], "document_credits": 0, "image_credits": 0}
		}
	}`)
	return fb
}

func (fb *fakeBackend) handle(route string, status int, body string) {
	fb.handleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (fb *fakeBackend) handleFunc(route string, fn http.HandlerFunc) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[route] = fn
}

func (fb *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := backendRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
	raw, _ := io.ReadAll(r.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.Body)
	}

	fb.mu.Lock()
	fb.requests = append(fb.requests, rec)
	fn, ok := fb.routes[r.Method+" "+r.URL.Path]
	fb.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success": false, "message": "not found"}`))
		return
	}
	fn(w, r)
}

func (fb *fakeBackend) calls(method, path string) []backendRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var out []backendRequest
	for _, r := range fb.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

type fakeAvatars struct {
	uploads []string
	deletes []string
}

func (f *fakeAvatars) UploadAvatar(ctx context.Context, file io.Reader, publicID string) (string, error) {
	f.uploads = append(f.uploads, publicID)
	return "https://res.cloudinary.com/demo/image/upload/v1/studio/avatars/" + publicID + ".png", nil
}

func (f *fakeAvatars) DeleteAvatar(ctx context.Context, publicID string) error {
	f.deletes = append(f.deletes, publicID)
	return nil
}

type testEnv struct {
	e        *echo.Echo
	backend  *fakeBackend
	sessions repository.SessionRepository
	avatars  *fakeAvatars
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Session{}))

	fb := newFakeBackend()
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	sealer, err := utils.NewSealer("test-session-secret")
	require.NoError(t, err)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	sessions := repository.NewCachedSessionRepository(repository.NewSessionRepository(db), 32, time.Minute, metrics)
	avatars := &fakeAvatars{}

	e := echo.New()
	SetupRoutes(e, Dependencies{
		Sessions:   sessions,
		Backend:    backend.NewClient(srv.URL, backend.WithMetrics(metrics)),
		Sealer:     sealer,
		Avatars:    avatars,
		Metrics:    metrics,
		JWTSecret:  testJWTSecret,
		SessionTTL: time.Hour,
	})

	return &testEnv{e: e, backend: fb, sessions: sessions, avatars: avatars}
}

type testResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Redirect string          `json:"redirect"`
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var resp testResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

// login opens a dashboard session and returns its bearer token.
func (env *testEnv) login(t *testing.T) string {
	t.Helper()

	rec, resp := env.do(t, http.MethodPost, "/api/session", "", map[string]string{"token": testBackendToken})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sess model.SessionResponse
	require.NoError(t, json.Unmarshal(resp.Data, &sess))
	require.NotEmpty(t, sess.Token)
	return sess.Token
}

func sessionIDOf(t *testing.T, token string) string {
	t.Helper()
	claims, err := validateToken(testJWTSecret, token)
	require.NoError(t, err)
	return claims.SessionID
}
