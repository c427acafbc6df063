package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/internal/event"
	"github.com/utafrali/shopfront/internal/service"
	"github.com/utafrali/shopfront/internal/upstream"
	"github.com/utafrali/shopfront/pkg/health"
	"github.com/utafrali/shopfront/pkg/httpclient"
)

func newTestRouter(t *testing.T, upstreamURL string, sessions *mockSessions) chi.Router {
	t.Helper()
	logger := newTestLogger()
	up := upstream.New(httpclient.New(httpclient.SingleShotConfig()), upstreamURL, "")
	producer := event.NewProducer(nopPublisher{}, logger)

	cartSvc := service.NewCartService(sessions, up, producer, logger, time.Hour)
	storefrontSvc := service.NewStorefrontService(up, producer, logger, authTestSecret, time.Hour)

	return NewRouter(RouterConfig{
		Cart:           NewCartHandler(cartSvc, logger),
		Catalog:        NewCatalogHandler(storefrontSvc, logger),
		Forum:          NewForumHandler(storefrontSvc, logger),
		Users:          NewUserHandler(storefrontSvc, logger),
		Health:         health.NewHandler(),
		Logger:         logger,
		JWTSecret:      authTestSecret,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	})
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, "http://unused", new(mockSessions))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_PublicCatalogNeedsNoToken(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":{"products":[{"id":"p1","name":"Widget"}]}}`))
	}))
	defer upstreamSrv.Close()

	router := newTestRouter(t, upstreamSrv.URL, new(mockSessions))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Widget")
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, "http://unused", new(mockSessions))

	for _, path := range []string{"/api/v1/cart", "/api/v1/users/me"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_ProtectedRouteWithToken(t *testing.T) {
	sessions := new(mockSessions)
	cart := seededCart(1)
	sessions.On("Get", mock.Anything, "u1").Return(cart, nil)

	router := newTestRouter(t, "http://unused", sessions)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(authTestSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"u1"`)
}

func TestRouter_UserLookupSelfAllowed(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":{"user":{"id":"u1","username":"pat","role":"member"}}}`))
	}))
	defer upstreamSrv.Close()

	router := newTestRouter(t, upstreamSrv.URL, new(mockSessions))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, authTestSecret, jwt.MapClaims{
		"user_id": "u1",
		"role":    "member",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"pat"`)
}

func TestRouter_UserLookupOtherProfileNeedsAdmin(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":{"user":{"id":"u2","username":"sam","role":"member"}}}`))
	}))
	defer upstreamSrv.Close()

	router := newTestRouter(t, upstreamSrv.URL, new(mockSessions))

	asRole := func(role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u2", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, authTestSecret, jwt.MapClaims{
			"user_id": "u1",
			"role":    role,
			"exp":     time.Now().Add(time.Hour).Unix(),
		}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := asRole("member")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")

	rec = asRole("admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"sam"`)
}

func TestRouter_UnknownRouteIs404(t *testing.T) {
	router := newTestRouter(t, "http://unused", new(mockSessions))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
