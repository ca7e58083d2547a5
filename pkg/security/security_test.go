package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("burst should allow two requests")
	}
	if l.Allow("a") {
		t.Fatalf("third request should be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("other key should not be limited")
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l := NewLimiter(1, time.Second)
	l.Allow("a")
	l.cleanup(time.Now().Add(2 * time.Minute))
	if len(l.visitors) != 0 {
		t.Fatalf("expired visitor not removed")
	}
}

func TestLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewLimiter(1, time.Minute)
	r := gin.New()
	r.POST("/save", l.Middleware(ByClientIP), func(c *gin.Context) { c.Status(http.StatusCreated) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/save", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusCreated || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://allowed.test"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin string
		want   string
	}{
		{origin: "http://allowed.test", want: "http://allowed.test"},
		{origin: "http://evil.test", want: ""},
	}
	for _, tc := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", tc.origin)
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
			t.Errorf("origin %s: allow = %q, want %q", tc.origin, got, tc.want)
		}
	}
}
