package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rubrics_backend/internal/config"

	"github.com/gin-gonic/gin"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/api/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.OPTIONS("/api/ping", func(c *gin.Context) {})
	return r
}

func send(r http.Handler, method, remote string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/ping", nil)
	req.RemoteAddr = remote
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	r := newRouter(RateLimiter(2, time.Hour, ClientIP))

	for i := 0; i < 2; i++ {
		if w := send(r, http.MethodGet, "10.0.0.1:1234", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, w.Code)
		}
	}
	w := send(r, http.MethodGet, "10.0.0.1:1234", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("Retry-After missing")
	}

	// 其他 IP 有独立的额度
	if w := send(r, http.MethodGet, "10.0.0.2:1234", nil); w.Code != http.StatusOK {
		t.Fatalf("other client: %d", w.Code)
	}
}

func TestRateLimiterKeyFunc(t *testing.T) {
	byHeader := func(c *gin.Context) string { return c.GetHeader("X-Rater") }
	r := newRouter(RateLimiter(1, time.Hour, byHeader))

	if w := send(r, http.MethodGet, "10.0.0.1:1", map[string]string{"X-Rater": "a"}); w.Code != http.StatusOK {
		t.Fatalf("first a: %d", w.Code)
	}
	if w := send(r, http.MethodGet, "10.0.0.1:1", map[string]string{"X-Rater": "b"}); w.Code != http.StatusOK {
		t.Fatalf("first b: %d", w.Code)
	}
	if w := send(r, http.MethodGet, "10.0.0.9:1", map[string]string{"X-Rater": "a"}); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second a from another IP: %d", w.Code)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newRouter(RateLimiter(0, time.Minute, nil))
	for i := 0; i < 50; i++ {
		if w := send(r, http.MethodGet, "10.0.0.1:1234", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, w.Code)
		}
	}
}

func TestLimiterStoreSweep(t *testing.T) {
	s := newLimiterStore(1, time.Minute)
	now := time.Now()
	if d := s.reserve("a", now); d != 0 {
		t.Fatalf("first reserve delayed %v", d)
	}
	if d := s.reserve("a", now); d <= 0 {
		t.Fatal("second reserve not delayed")
	}

	s.sweep(now.Add(2 * time.Minute))
	if len(s.visitors) != 1 {
		t.Fatalf("active visitor swept: %d", len(s.visitors))
	}
	s.sweep(now.Add(10 * time.Minute))
	if len(s.visitors) != 0 {
		t.Fatalf("%d idle visitors left", len(s.visitors))
	}
}

func TestCORSAndSecureHeaders(t *testing.T) {
	const origin = "https://aulavirtual.utb.edu.co"
	r := newRouter(CORS(config.CORSConfig{AllowedOrigins: []string{origin + "/"}, MaxAgeSeconds: 600}), Secure())

	w := send(r, http.MethodGet, "10.0.0.1:1", map[string]string{"Origin": origin})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != origin {
		t.Fatalf("allowed origin header %q", got)
	}
	if w.Header().Get("Cache-Control") != "no-store" || w.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("secure headers %v", w.Header())
	}

	w = send(r, http.MethodGet, "10.0.0.1:1", map[string]string{"Origin": "https://evil.example"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unknown origin allowed: %q", got)
	}

	w = send(r, http.MethodOptions, "10.0.0.1:1", map[string]string{"Origin": origin})
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Max-Age") != "600" {
		t.Fatalf("preflight %d %v", w.Code, w.Header())
	}
}
