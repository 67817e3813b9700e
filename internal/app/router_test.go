package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edudash/edudash/internal/access"
	"github.com/edudash/edudash/internal/auth"
	"github.com/edudash/edudash/internal/guard"
	"github.com/edudash/edudash/internal/observability"
	"github.com/edudash/edudash/internal/school"
	"github.com/edudash/edudash/internal/shared"
	_ "github.com/edudash/edudash/testing"
)

type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
	token   string
}

func newTestApp(t *testing.T, opts ...func(*Config)) (*client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second, RateLimitPerMinute: 1000, RoleSlot: RoleSlotCookie, SessionTTL: time.Hour}
	for _, opt := range opts {
		opt(cfg)
	}
	sessions := shared.NewSessionManager(rdb, "edudash_session", "secret", time.Hour, false)
	metrics := observability.NewMetrics()
	policy, err := access.NewPolicy(access.DefaultRules(), access.WithObserver(metrics.ObserveAccess))
	require.NoError(t, err)
	csrf := shared.NewCSRFManager("csrfsecret")
	guards := guard.Middleware{OnDecision: func(r *http.Request, outcome guard.Outcome) {
		metrics.ObserveGuard(r, outcome.Decision.String())
	}}

	handler := NewRouter(RouterParams{
		Config:         cfg,
		SessionManager: sessions,
		CSRFManager:    csrf,
		AuthHandler:    auth.NewHandler(nil, auth.NewService(policy), sessions, csrf),
		SchoolHandler:  school.NewHandler(nil, school.NewService(school.NewSeededRepository(), policy), policy, guards),
		Metrics:        metrics,
		Redis:          rdb,
	})
	return &client{t: t, handler: handler}, mr
}

func (c *client) do(method, path, body string, jsonClient bool) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if jsonClient {
		req.Header.Set("Accept", "application/json")
	}
	if c.token != "" {
		req.Header.Set(shared.CSRFHeader, c.token)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	if cookies := rr.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}
	return rr
}

// bootstrap opens a session and picks up its CSRF token.
func (c *client) bootstrap() {
	c.t.Helper()
	rr := c.do(http.MethodGet, "/auth/me", "", true)
	require.Equal(c.t, http.StatusOK, rr.Code)
	var profile auth.Profile
	require.NoError(c.t, json.Unmarshal(rr.Body.Bytes(), &profile))
	require.NotEmpty(c.t, profile.CSRFToken)
	c.token = profile.CSRFToken
}

func (c *client) login(role string) {
	c.t.Helper()
	rr := c.do(http.MethodPost, "/auth/login", `{"role":"`+role+`"}`, true)
	require.Equal(c.t, http.StatusOK, rr.Code, rr.Body.String())
}

func itemCount(t *testing.T, rr *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return len(body.Items)
}

func TestHealthz(t *testing.T) {
	c, _ := newTestApp(t)
	rr := c.do(http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestStudentSessionEndToEnd(t *testing.T) {
	c, _ := newTestApp(t)
	c.bootstrap()
	c.login("student")

	rr := c.do(http.MethodGet, "/attendance", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, itemCount(t, rr))

	rr = c.do(http.MethodGet, "/results", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, itemCount(t, rr))

	rr = c.do(http.MethodGet, "/contacts", "", true)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = c.do(http.MethodGet, "/contacts", "", false)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestLoginSurvivesAcrossRequests(t *testing.T) {
	c, mr := newTestApp(t)
	c.bootstrap()
	c.login("teacher")

	// Another client presenting the same cookie sees the same principal.
	other := &client{t: t, handler: c.handler, cookies: c.cookies}
	rr := other.do(http.MethodGet, "/", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	var home struct {
		Principal  access.Principal `json:"principal"`
		Navigation []school.NavItem `json:"navigation"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &home))
	assert.Equal(t, "teacher-1", home.Principal.ID)
	assert.Len(t, home.Navigation, 6)

	assert.Len(t, mr.Keys(), 1)
}

func TestLogoutEmptiesScopedViews(t *testing.T) {
	c, _ := newTestApp(t)
	c.bootstrap()
	c.login("admin")

	rr := c.do(http.MethodGet, "/attendance", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, itemCount(t, rr))

	rr = c.do(http.MethodPost, "/auth/logout", "", true)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = c.do(http.MethodGet, "/attendance", "", true)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestCookieSlotKeepsRolePerBrowser(t *testing.T) {
	c, mr := newTestApp(t)
	c.bootstrap()
	c.login("student")

	assert.False(t, mr.Exists("edudash:role"))

	// A second browser has its own session and stays anonymous.
	other := &client{t: t, handler: c.handler}
	rr := other.do(http.MethodGet, "/attendance", "", true)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRedisSlotSharesRoleAcrossBrowsers(t *testing.T) {
	c, mr := newTestApp(t, func(cfg *Config) {
		cfg.RoleSlot = RoleSlotRedis
		cfg.RoleSlotKey = "kiosk:role"
	})
	c.bootstrap()
	c.login("teacher")
	assert.Equal(t, "teacher", mustRedisGet(t, mr, "kiosk:role"))

	// The role lives in one key, so a fresh browser rehydrates it too.
	other := &client{t: t, handler: c.handler}
	rr := other.do(http.MethodGet, "/lesson-plans", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, itemCount(t, rr))

	rr = c.do(http.MethodPost, "/auth/logout", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, mr.Exists("kiosk:role"))

	rr = other.do(http.MethodGet, "/lesson-plans", "", true)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func mustRedisGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	value, err := mr.Get(key)
	require.NoError(t, err)
	return value
}

func TestMutationsRequireCSRFToken(t *testing.T) {
	c, _ := newTestApp(t)
	c.bootstrap()
	c.login("admin")

	token := c.token
	c.token = ""
	rr := c.do(http.MethodDelete, "/events/evt-1", "", true)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	c.token = token
	rr = c.do(http.MethodDelete, "/events/evt-1", "", true)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestHomeOffersLoginToAnonymous(t *testing.T) {
	c, _ := newTestApp(t)
	rr := c.do(http.MethodGet, "/", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	var home struct {
		Login      string            `json:"login"`
		Roles      []string          `json:"roles"`
		Navigation []json.RawMessage `json:"navigation"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &home))
	assert.Equal(t, "/auth/login", home.Login)
	assert.Equal(t, []string{"admin", "teacher", "student"}, home.Roles)
	assert.Empty(t, home.Navigation)
}

func TestSessionBackendDownAnswersUnavailable(t *testing.T) {
	c, mr := newTestApp(t)
	c.bootstrap()
	mr.Close()

	rr := c.do(http.MethodGet, "/attendance", "", true)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestMetricsEndpointCountsDecisions(t *testing.T) {
	c, _ := newTestApp(t)
	c.bootstrap()
	c.login("student")
	c.do(http.MethodGet, "/contacts", "", true)
	c.do(http.MethodGet, "/attendance", "", true)

	rr := c.do(http.MethodGet, "/metrics", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `edudash_guard_decisions_total{decision="redirect"`)
	assert.Contains(t, body, `edudash_access_decisions_total{action="read",kind="attendance",outcome="allowed",role="student"}`)
	assert.Contains(t, body, `edudash_session_transitions_total{role="student"} 1`)
}
