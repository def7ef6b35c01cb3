package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/adapters/db/postgres"
	redisrepo "github.com/Miraines/MoonyAndStarry/blog-auth/internal/adapters/db/redis"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/app/auth/password"
	appsvc "github.com/Miraines/MoonyAndStarry/blog-auth/internal/app/auth/service"
	userservice "github.com/Miraines/MoonyAndStarry/blog-auth/internal/app/user/service"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/infra/config"
	"github.com/alexedwards/argon2id"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/* ───────────────────────────── helpers ───────────────────────────── */

type testServer struct {
	router http.Handler
	mr     *miniredis.Miniredis
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(postgres.Models()...))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		Issuer:           "blog-auth",
		AccessTokenTTL:   time.Hour,
		LoginMaxAttempts: 3,
		LoginLockout:     time.Minute,
	}
	codec, err := jwt.NewJWTUtil(cfg)
	require.NoError(t, err)
	hasher, err := password.New("pepper", password.WithParams(&argon2id.Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	}))
	require.NoError(t, err)

	v := dto.NewValidator()
	users := postgres.NewPostgresUserRepo(db)
	attempts := redisrepo.NewRedisAttemptRepo(rdb)

	h := NewHandler(
		appsvc.New(users, attempts, codec, hasher, cfg, v, nil),
		userservice.New(users, hasher, v),
		map[string]HealthCheck{
			"postgres": sqlDB.PingContext,
			"redis":    attempts.Ping,
		},
		nil,
	)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return testServer{
		router: NewRouter(ctx, cfg, h, prometheus.NewRegistry(), nil),
		mr:     mr,
	}
}

func (s testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error  string            `json:"error"`
	Field  string            `json:"field"`
	Fields map[string]string `json:"fields"`
}

var alice = map[string]string{
	"username":        "alice",
	"email":           "a@x.com",
	"password":        "secret123",
	"repeat_password": "secret123",
}

/* ───────────────────────────── tests ───────────────────────────── */

func TestAliceScenario(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/signup", "", alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	signed := decode[dto.TokenResponse](t, w)
	require.NotEmpty(t, signed.AccessToken)
	require.Equal(t, "Bearer", signed.TokenType)

	w = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[dto.TokenResponse](t, w).AccessToken

	w = s.do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	require.Equal(t, "alice", me["username"])
	require.Equal(t, "a@x.com", me["email"])
	require.NotContains(t, w.Body.String(), "argon2id")
	require.NotContains(t, w.Body.String(), "secret123")

	w = s.do(t, http.MethodPut, "/users/me/edit", token, map[string]any{"about": "hello", "age": 30})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/users/alice", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	pub := decode[map[string]any](t, w)
	require.Equal(t, "hello", pub["about"])
	require.NotContains(t, pub, "email")

	w = s.do(t, http.MethodPut, "/users/me/edit/password", token,
		map[string]string{"password": "newsecret1", "repeat_password": "newsecret1"})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "alice", "password": "newsecret1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/users/me", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// the token outlives the account but no longer opens anything
	w = s.do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "wrong credentials", decode[errorBody](t, w).Error)

	w = s.do(t, http.MethodGet, "/users/alice", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSignup_ConflictAndValidation(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/auth/signup", "", alice).Code)

	w := s.do(t, http.MethodPost, "/auth/signup", "", alice)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "username", decode[errorBody](t, w).Field)

	other := map[string]string{
		"username": "bobby", "email": "a@x.com",
		"password": "secret123", "repeat_password": "secret123",
	}
	w = s.do(t, http.MethodPost, "/auth/signup", "", other)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "email", decode[errorBody](t, w).Field)

	bad := map[string]string{"username": "Bo", "email": "x", "password": "1", "repeat_password": "2"}
	w = s.do(t, http.MethodPost, "/auth/signup", "", bad)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode[errorBody](t, w).Fields
	require.Contains(t, fields, "username")
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "password")

	w = s.do(t, http.MethodPost, "/auth/signup", "", "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Failures(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/auth/signup", "", alice).Code)

	wrong := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "alice", "password": "nope-nope"})
	unknown := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "nobody", "password": "secret123"})
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, wrong.Body.String(), unknown.Body.String())

	w := s.do(t, http.MethodPost, "/auth/login", "", "[]")
	require.Equal(t, http.StatusBadRequest, w.Code)

	keys := len(s.mr.Keys())
	w = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": strings.Repeat("a", 4096), "password": "secret123"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "max", decode[errorBody](t, w).Fields["username"])
	require.Len(t, s.mr.Keys(), keys, "rejected logins must not create limiter keys")
}

func TestLogin_Lockout(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/auth/signup", "", alice).Code)

	creds := map[string]string{"username": "alice", "password": "nope-nope"}
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/auth/login", "", creds).Code)
	}
	creds["password"] = "secret123"
	require.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/auth/login", "", creds).Code)

	// the same account from another address is still open
	body, err := json.Marshal(creds)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "198.51.100.7:4321"
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	s.mr.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/auth/login", "", creds).Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/users/me"},
		{http.MethodDelete, "/users/me"},
		{http.MethodPut, "/users/me/edit"},
		{http.MethodPut, "/users/me/edit/email"},
		{http.MethodPut, "/users/me/edit/password"},
	} {
		require.Equal(t, http.StatusUnauthorized, s.do(t, tc.method, tc.path, "", nil).Code, tc.path)
		require.Equal(t, http.StatusUnauthorized, s.do(t, tc.method, tc.path, "garbage", nil).Code, tc.path)
	}
}

func TestEditEmail_Conflict(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/auth/signup", "", alice)
	require.Equal(t, http.StatusCreated, w.Code)
	token := decode[dto.TokenResponse](t, w).AccessToken

	bob := map[string]string{
		"username": "bobby", "email": "b@x.com",
		"password": "secret123", "repeat_password": "secret123",
	}
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/auth/signup", "", bob).Code)

	w = s.do(t, http.MethodPut, "/users/me/edit/email", token, map[string]string{"email": "b@x.com"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "email", decode[errorBody](t, w).Field)

	w = s.do(t, http.MethodPut, "/users/me/edit/email", token, map[string]string{"email": "alice@x.com"})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPut, "/users/me/edit", token, map[string]any{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", decode[map[string]string](t, w)["status"])

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "http_requests_total")

	s.mr.Close()
	w = s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "down", decode[map[string]string](t, w)["redis"])
}

func TestHandleError_InternalNotLeaked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.handleError(c, errors.New("pq: password authentication failed for user postgres"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "postgres")
}
