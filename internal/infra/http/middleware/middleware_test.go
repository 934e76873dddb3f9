package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type fakeParser map[string]entity.Session

func (f fakeParser) Parse(token string) (entity.Session, error) {
	s, ok := f[token]
	if !ok {
		return entity.Session{}, errors.New("invalid")
	}
	return s, nil
}

var parser = fakeParser{
	"admin":  {UserID: "a-1", Role: entity.RoleAdmin},
	"seller": {UserID: "u-1", Role: entity.RoleUser},
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	var got entity.Session
	h := Authenticate(parser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
	}))

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "forged").Code)

	rec := serve(h, "seller")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", got.UserID)
}

func TestRequireAdmin(t *testing.T) {
	h := Authenticate(parser)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	assert.Equal(t, http.StatusForbidden, serve(h, "seller").Code)
	assert.Equal(t, http.StatusNoContent, serve(h, "admin").Code)
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/leads/{id}", "418"))
	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/"+id, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/leads/{id}", "418"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecordWhatsAppMessage(t *testing.T) {
	before := testutil.ToFloat64(whatsappMessages.WithLabelValues("sent"))
	RecordWhatsAppMessage("sent")
	assert.Equal(t, 1.0, testutil.ToFloat64(whatsappMessages.WithLabelValues("sent"))-before)
}

func TestTrustedRealIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.10 "})
	require.NoError(t, err)

	var seen string
	handler := TrustedRealIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	cases := []struct {
		name, peer, want string
	}{
		{"proxy in range", "10.1.2.3:443", "203.0.113.7"},
		{"single proxy", "192.0.2.10:443", "203.0.113.7"},
		{"direct client", "198.51.100.9:4000", "198.51.100.9:4000"},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = c.peer
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.1.2.3")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, c.want, seen, c.name)
	}
}

func TestParseTrustedProxiesRejectsGarbage(t *testing.T) {
	_, err := ParseTrustedProxies([]string{"proxy.local"})
	assert.Error(t, err)

	none, err := ParseTrustedProxies(nil)
	require.NoError(t, err)
	assert.False(t, peerTrusted("10.0.0.1:80", none))
}
