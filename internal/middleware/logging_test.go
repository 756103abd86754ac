package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriterCapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK) // second call must be ignored
	if _, err := rw.Write([]byte("not found")); err != nil {
		t.Fatal(err)
	}

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rw.statusCode)
	}
	if rw.bytesWritten != int64(len("not found")) {
		t.Errorf("Expected %d bytes written, got %d", len("not found"), rw.bytesWritten)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected underlying recorder status 404, got %d", rec.Code)
	}
}

func TestResponseWriterDefaultsToOK(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	if _, err := rw.Write([]byte("hi")); err != nil {
		t.Fatal(err)
	}
	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rw.statusCode)
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Plain string unchanged", input: "/thumbnails/large", want: "/thumbnails/large"},
		{name: "Newlines become spaces", input: "a\nb\rc", want: "a b c"},
		{name: "Control characters stripped", input: "a\x1b[31mb\x00c", want: "a[31mbc"},
		{name: "Unicode preserved", input: "café", want: "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.input); got != tt.want {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{
			name:       "RemoteAddr host only",
			remoteAddr: "192.0.2.10:54321",
			want:       "192.0.2.10",
		},
		{
			name:       "X-Forwarded-For wins",
			remoteAddr: "10.0.0.1:1234",
			forwarded:  "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "First of forwarded chain",
			remoteAddr: "10.0.0.1:1234",
			forwarded:  "203.0.113.7, 10.0.0.2",
			want:       "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggerSkipsHealthChecks(t *testing.T) {
	called := false
	handler := Logger(LoggingConfig{LogHealthChecks: false})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("Expected wrapped handler to be called for health check path")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}
