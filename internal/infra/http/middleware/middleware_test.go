package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/leaddesk/internal/infra/auth"
	"github.com/xavierca1/leaddesk/internal/usecase"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(Actor(r.Context())))
}

func newJWT(t *testing.T) *auth.JWTManager {
	t.Helper()
	m, err := auth.NewJWTManager("test-secret-with-enough-length", time.Hour)
	require.NoError(t, err)
	return m
}

func TestJWTAuth(t *testing.T) {
	jwt := newJWT(t)
	h := JWTAuth(jwt)(http.HandlerFunc(okHandler))

	t.Run("sem token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token inválido", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token válido expõe o ator", func(t *testing.T) {
		token, err := jwt.GenerateToken("ops@agency.dev", auth.RoleOperator)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ops@agency.dev", rec.Body.String())
	})
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(auth.RoleAdmin)(http.HandlerFunc(okHandler))

	cases := []struct {
		name   string
		claims *auth.Claims
		want   int
	}{
		{"sem claims", nil, http.StatusForbidden},
		{"operador", &auth.Claims{Email: "op@x.com", Role: auth.RoleOperator}, http.StatusForbidden},
		{"admin", &auth.Claims{Email: "admin@x.com", Role: auth.RoleAdmin}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/settings", nil)
			if tc.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tc.claims))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

type fixedLimit int

func (f fixedLimit) Resolve(context.Context) usecase.ResolvedSettings {
	return usecase.ResolvedSettings{RateLimitPerHour: int(f)}
}

func hit(h http.Handler, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/leads/capture", nil)
	req.RemoteAddr = ip + ":5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestCaptureRateLimit_Fallback(t *testing.T) {
	h := CaptureRateLimit(nil, 3, time.Hour, false)(http.HandlerFunc(okHandler))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(h, "198.51.100.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "198.51.100.1"))
	assert.Equal(t, http.StatusOK, hit(h, "198.51.100.2"))
}

func TestCaptureRateLimit_SettingsOverride(t *testing.T) {
	h := CaptureRateLimit(fixedLimit(1), 30, time.Hour, false)(http.HandlerFunc(okHandler))

	assert.Equal(t, http.StatusOK, hit(h, "198.51.100.7"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "198.51.100.7"))
}

func hitBehindProxy(h http.Handler, visitorIP string) int {
	req := httptest.NewRequest(http.MethodPost, "/leads/capture", nil)
	req.RemoteAddr = "10.0.0.2:443"
	req.Header.Set("X-Forwarded-For", visitorIP+", 10.0.0.2")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestCaptureRateLimit_TrustProxyKeysByVisitor(t *testing.T) {
	h := CaptureRateLimit(nil, 2, time.Hour, true)(http.HandlerFunc(okHandler))

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, hitBehindProxy(h, "203.0.113.10"))
	}
	assert.Equal(t, http.StatusTooManyRequests, hitBehindProxy(h, "203.0.113.10"))
	assert.Equal(t, http.StatusOK, hitBehindProxy(h, "203.0.113.11"))
}

func TestCaptureRateLimit_DefaultIgnoresForwardedHeaders(t *testing.T) {
	h := CaptureRateLimit(nil, 2, time.Hour, false)(http.HandlerFunc(okHandler))

	require.Equal(t, http.StatusOK, hitBehindProxy(h, "203.0.113.20"))
	require.Equal(t, http.StatusOK, hitBehindProxy(h, "203.0.113.21"))
	assert.Equal(t, http.StatusTooManyRequests, hitBehindProxy(h, "203.0.113.22"))
}

func TestPromRecorder(t *testing.T) {
	before := testutil.ToFloat64(notificationsTotal.WithLabelValues("whatsapp", "manual"))
	PromRecorder{}.RecordDelivery("whatsapp", "manual")
	assert.Equal(t, before+1, testutil.ToFloat64(notificationsTotal.WithLabelValues("whatsapp", "manual")))

	before = testutil.ToFloat64(leadsCaptured.WithLabelValues("form"))
	PromRecorder{}.RecordLeadCaptured("form")
	assert.Equal(t, before+1, testutil.ToFloat64(leadsCaptured.WithLabelValues("form")))
}

func TestPromRecorder_LeadLabelIsBounded(t *testing.T) {
	before := testutil.ToFloat64(leadsCaptured.WithLabelValues("other"))
	series := testutil.CollectAndCount(leadsCaptured)

	PromRecorder{}.RecordLeadCaptured("campanha-black-friday-2026")
	PromRecorder{}.RecordLeadCaptured("<script>")

	assert.Equal(t, before+2, testutil.ToFloat64(leadsCaptured.WithLabelValues("other")))
	assert.Equal(t, series, testutil.CollectAndCount(leadsCaptured))
}
